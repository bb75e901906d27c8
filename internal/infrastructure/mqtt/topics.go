package mqtt

import "fmt"

// Topic prefixes for the AVM MQTT scheme.
//
// All topics use the flat scheme: avm/{category}/{subject}
const (
	// TopicPrefix is the base for all AVM topics.
	TopicPrefix = "avm"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "avm/system"
)

// Topics provides builders for AVM MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.StateSessions()
//	// Returns: "avm/state/sessions"
type Topics struct{}

// StateSessions returns the topic audio adapters publish session state
// snapshots on. The engine subscribes here.
//
// Example: avm/state/sessions
func (Topics) StateSessions() string {
	return fmt.Sprintf("%s/state/sessions", TopicPrefix)
}

// CommandAudio returns the topic behaviour actions publish audio commands on.
// Audio adapters subscribe here and apply volume/mute changes.
//
// Example: avm/command/audio
func (Topics) CommandAudio() string {
	return fmt.Sprintf("%s/command/audio", TopicPrefix)
}

// BehaviourFired returns the topic for behaviour firing notifications.
//
// Example: avm/behaviour/quiet-hours/fired
func (Topics) BehaviourFired(behaviourID string) string {
	return fmt.Sprintf("%s/behaviour/%s/fired", TopicPrefix, behaviourID)
}

// SystemStatus returns the system status topic. The LWT publishes an
// offline payload here when the connection drops uncleanly.
//
// Example: avm/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// SystemShutdown returns the shutdown signal topic.
//
// Example: avm/system/shutdown
func (Topics) SystemShutdown() string {
	return fmt.Sprintf("%s/shutdown", TopicPrefixSystem)
}

// AllBehaviourFirings returns a pattern matching all firing notifications.
//
// Pattern: avm/behaviour/+/fired
func (Topics) AllBehaviourFirings() string {
	return fmt.Sprintf("%s/behaviour/+/fired", TopicPrefix)
}

// AllTopics returns a pattern matching all AVM topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: avm/#
func (Topics) AllTopics() string {
	return "avm/#"
}
