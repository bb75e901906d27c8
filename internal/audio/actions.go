package audio

import (
	"encoding/json"
	"fmt"

	"github.com/tomarikawa/avm-core/internal/behaviour"
)

// Built-in action type identifiers.
const (
	TypeSetVolume = "set_volume"
	TypeSetMute   = "set_mute"
)

// Command is the payload published to audio adapters on the command
// topic. Exactly one of Volume or Muted is set, per the command kind.
type Command struct {
	ID      string   `json:"id"`
	Process string   `json:"process"`
	Command string   `json:"command"`
	Volume  *float64 `json:"volume,omitempty"`
	Muted   *bool    `json:"muted,omitempty"`
	Source  string   `json:"source,omitempty"`
}

// Commander publishes commands to the audio adapters. Implemented by
// the MQTT publisher wiring in cmd/avm.
type Commander interface {
	PublishCommand(cmd Command) error
}

// ActionBase carries the enable flag shared by built-in actions.
type ActionBase struct {
	On bool `json:"enabled"`
}

// Enabled implements behaviour.Action.
func (b ActionBase) Enabled() bool { return b.On }

func enabledActionBase() ActionBase {
	return ActionBase{On: true}
}

// ─── set_volume ─────────────────────────────────────────────────────────────

// SetVolumeAction publishes a volume command for the target process.
type SetVolumeAction struct {
	ActionBase
	Process string  `json:"process"`
	Volume  float64 `json:"volume"`

	commander Commander
}

// Execute implements behaviour.Action.
func (a *SetVolumeAction) Execute(behaviour.Event) error {
	if a.commander == nil {
		return fmt.Errorf("set_volume: no commander configured")
	}
	v := a.Volume
	return a.commander.PublishCommand(Command{
		ID:      behaviour.GenerateID(),
		Process: a.Process,
		Command: TypeSetVolume,
		Volume:  &v,
		Source:  "behaviour",
	})
}

// TypeName implements behaviour.Documented.
func (a *SetVolumeAction) TypeName() string { return TypeSetVolume }

// MarshalConfig implements behaviour.Documented.
func (a *SetVolumeAction) MarshalConfig() (json.RawMessage, error) {
	return json.Marshal(a)
}

// ─── set_mute ───────────────────────────────────────────────────────────────

// SetMuteAction publishes a mute command for the target process.
type SetMuteAction struct {
	ActionBase
	Process string `json:"process"`
	Muted   bool   `json:"muted"`

	commander Commander
}

// Execute implements behaviour.Action.
func (a *SetMuteAction) Execute(behaviour.Event) error {
	if a.commander == nil {
		return fmt.Errorf("set_mute: no commander configured")
	}
	m := a.Muted
	return a.commander.PublishCommand(Command{
		ID:      behaviour.GenerateID(),
		Process: a.Process,
		Command: TypeSetMute,
		Muted:   &m,
		Source:  "behaviour",
	})
}

// TypeName implements behaviour.Documented.
func (a *SetMuteAction) TypeName() string { return TypeSetMute }

// MarshalConfig implements behaviour.Documented.
func (a *SetMuteAction) MarshalConfig() (json.RawMessage, error) {
	return json.Marshal(a)
}
