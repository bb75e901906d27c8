package audio

import (
	"encoding/json"
	"fmt"

	"github.com/tomarikawa/avm-core/internal/behaviour"
)

// Register binds the built-in audio trigger and action types to the
// codec. Actions capture the commander for publishing; decoded
// configs default to enabled unless they say otherwise.
func Register(c *behaviour.Codec, commander Commander) error {
	triggers := map[string]behaviour.TriggerFactory{
		TypePeak: func(cfg json.RawMessage) (behaviour.Trigger, error) {
			t := &PeakTrigger{TriggerBase: enabledBase()}
			return t, decodeConfig(cfg, t)
		},
		TypeProcessRunning: func(cfg json.RawMessage) (behaviour.Trigger, error) {
			t := &ProcessRunningTrigger{TriggerBase: enabledBase()}
			return t, decodeConfig(cfg, t)
		},
		TypeIdle: func(cfg json.RawMessage) (behaviour.Trigger, error) {
			t := &IdleTrigger{TriggerBase: enabledBase()}
			return t, decodeConfig(cfg, t)
		},
	}
	for name, factory := range triggers {
		if err := c.RegisterTrigger(name, factory); err != nil {
			return err
		}
	}

	actions := map[string]behaviour.ActionFactory{
		TypeSetVolume: func(cfg json.RawMessage) (behaviour.Action, error) {
			a := &SetVolumeAction{ActionBase: enabledActionBase(), commander: commander}
			return a, decodeConfig(cfg, a)
		},
		TypeSetMute: func(cfg json.RawMessage) (behaviour.Action, error) {
			a := &SetMuteAction{ActionBase: enabledActionBase(), commander: commander}
			return a, decodeConfig(cfg, a)
		},
	}
	for name, factory := range actions {
		if err := c.RegisterAction(name, factory); err != nil {
			return err
		}
	}
	return nil
}

// decodeConfig unmarshals a config payload onto a pre-defaulted
// value. An absent payload keeps the defaults.
func decodeConfig(cfg json.RawMessage, v any) error {
	if len(cfg) == 0 {
		return nil
	}
	if err := json.Unmarshal(cfg, v); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return nil
}
