package audio

import (
	"encoding/json"
	"fmt"
)

// Publisher is the publish interface the commander needs from the MQTT
// client.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// MQTTCommander publishes audio commands as JSON on a fixed topic.
type MQTTCommander struct {
	pub   Publisher
	topic string
	qos   byte
}

// NewMQTTCommander creates a commander publishing on the given topic.
func NewMQTTCommander(pub Publisher, topic string, qos byte) *MQTTCommander {
	return &MQTTCommander{pub: pub, topic: topic, qos: qos}
}

// PublishCommand implements Commander.
func (c *MQTTCommander) PublishCommand(cmd Command) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshalling command: %w", err)
	}
	if err := c.pub.Publish(c.topic, payload, c.qos, false); err != nil {
		return fmt.Errorf("publishing to %q: %w", c.topic, err)
	}
	return nil
}
