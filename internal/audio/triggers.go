package audio

import (
	"encoding/json"
	"fmt"

	"github.com/tomarikawa/avm-core/internal/behaviour"
)

// Built-in trigger type identifiers.
const (
	TypePeak           = "session_peak"
	TypeProcessRunning = "process_running"
	TypeIdle           = "session_idle"
)

// TriggerBase carries the capabilities shared by every built-in
// trigger and condition: an enable flag and result inversion.
type TriggerBase struct {
	On     bool `json:"enabled"`
	Invert bool `json:"invert,omitempty"`
}

// Enabled implements behaviour.Trigger.
func (b TriggerBase) Enabled() bool { return b.On }

// InvertResult implements behaviour.Trigger.
func (b TriggerBase) InvertResult() bool { return b.Invert }

// enabledBase is the default state for decoded triggers: enabled
// unless the config says otherwise.
func enabledBase() TriggerBase {
	return TriggerBase{On: true}
}

// asUpdate narrows the opaque engine event to the audio payload.
func asUpdate(ev behaviour.Event) (*StateUpdate, error) {
	u, ok := ev.(*StateUpdate)
	if !ok {
		return nil, fmt.Errorf("unexpected event payload %T", ev)
	}
	return u, nil
}

// ─── session_peak ───────────────────────────────────────────────────────────

// PeakTrigger fires when any session of the target process meters a
// peak at or above the threshold.
type PeakTrigger struct {
	TriggerBase
	Process   string  `json:"process,omitempty"`
	Threshold float64 `json:"threshold"`
}

// Evaluate implements behaviour.Trigger.
func (t *PeakTrigger) Evaluate(ev behaviour.Event) (bool, error) {
	u, err := asUpdate(ev)
	if err != nil {
		return false, err
	}
	for _, s := range u.sessionsFor(t.Process) {
		if s.Peak >= t.Threshold {
			return true, nil
		}
	}
	return false, nil
}

// TypeName implements behaviour.Documented.
func (t *PeakTrigger) TypeName() string { return TypePeak }

// MarshalConfig implements behaviour.Documented.
func (t *PeakTrigger) MarshalConfig() (json.RawMessage, error) {
	return json.Marshal(t)
}

// ─── process_running ────────────────────────────────────────────────────────

// ProcessRunningTrigger fires while a session for the target process
// exists. Typically used as a condition.
type ProcessRunningTrigger struct {
	TriggerBase
	Process string `json:"process"`
}

// Evaluate implements behaviour.Trigger.
func (t *ProcessRunningTrigger) Evaluate(ev behaviour.Event) (bool, error) {
	u, err := asUpdate(ev)
	if err != nil {
		return false, err
	}
	return len(u.sessionsFor(t.Process)) > 0, nil
}

// TypeName implements behaviour.Documented.
func (t *ProcessRunningTrigger) TypeName() string { return TypeProcessRunning }

// MarshalConfig implements behaviour.Documented.
func (t *ProcessRunningTrigger) MarshalConfig() (json.RawMessage, error) {
	return json.Marshal(t)
}

// ─── session_idle ───────────────────────────────────────────────────────────

// IdleTrigger fires while every session of the target process meters
// below the threshold. With no matching session it fires too: silence
// is idle.
type IdleTrigger struct {
	TriggerBase
	Process string  `json:"process,omitempty"`
	Below   float64 `json:"below"`
}

// Evaluate implements behaviour.Trigger.
func (t *IdleTrigger) Evaluate(ev behaviour.Event) (bool, error) {
	u, err := asUpdate(ev)
	if err != nil {
		return false, err
	}
	for _, s := range u.sessionsFor(t.Process) {
		if s.Peak >= t.Below {
			return false, nil
		}
	}
	return true, nil
}

// TypeName implements behaviour.Documented.
func (t *IdleTrigger) TypeName() string { return TypeIdle }

// MarshalConfig implements behaviour.Documented.
func (t *IdleTrigger) MarshalConfig() (json.RawMessage, error) {
	return json.Marshal(t)
}
