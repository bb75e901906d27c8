package audio

import (
	"testing"
	"time"
)

func testUpdate(sessions ...Session) *StateUpdate {
	return &StateUpdate{
		Time:     time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		Sessions: sessions,
	}
}

func gameSession(peak float64) Session {
	return Session{
		Name:    "Game",
		Process: "game.exe",
		PID:     101,
		Volume:  0.8,
		Peak:    peak,
		Active:  true,
	}
}

func musicSession(peak float64) Session {
	return Session{
		Name:    "Spotify",
		Process: "spotify.exe",
		PID:     202,
		Volume:  0.6,
		Peak:    peak,
		Active:  true,
	}
}

// =============================================================================
// StateUpdate Tests
// =============================================================================

func TestDecodeStateUpdate(t *testing.T) {
	payload := []byte(`{
		"time": "2026-03-14T12:00:00Z",
		"sessions": [
			{"name":"Game","process":"game.exe","pid":101,"volume":0.8,"peak":0.45,"muted":false,"active":true}
		]
	}`)

	u, err := DecodeStateUpdate(payload)
	if err != nil {
		t.Fatalf("DecodeStateUpdate() error = %v", err)
	}
	if len(u.Sessions) != 1 {
		t.Fatalf("Sessions = %d, want 1", len(u.Sessions))
	}
	s := u.Sessions[0]
	if s.Process != "game.exe" || s.Peak != 0.45 || !s.Active {
		t.Errorf("session did not decode: %+v", s)
	}
	if u.EventTime().IsZero() {
		t.Error("EventTime() is zero")
	}
}

func TestDecodeStateUpdate_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "malformed json", payload: `{"time":`},
		{name: "missing time", payload: `{"sessions":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeStateUpdate([]byte(tt.payload)); err == nil {
				t.Error("DecodeStateUpdate() expected error")
			}
		})
	}
}

// =============================================================================
// PeakTrigger Tests
// =============================================================================

func TestPeakTrigger(t *testing.T) {
	tests := []struct {
		name     string
		trigger  PeakTrigger
		update   *StateUpdate
		expected bool
	}{
		{
			name:     "peak above threshold",
			trigger:  PeakTrigger{Process: "game.exe", Threshold: 0.3},
			update:   testUpdate(gameSession(0.5)),
			expected: true,
		},
		{
			name:     "peak at threshold",
			trigger:  PeakTrigger{Process: "game.exe", Threshold: 0.5},
			update:   testUpdate(gameSession(0.5)),
			expected: true,
		},
		{
			name:     "peak below threshold",
			trigger:  PeakTrigger{Process: "game.exe", Threshold: 0.6},
			update:   testUpdate(gameSession(0.5)),
			expected: false,
		},
		{
			name:     "other process ignored",
			trigger:  PeakTrigger{Process: "game.exe", Threshold: 0.3},
			update:   testUpdate(musicSession(0.9)),
			expected: false,
		},
		{
			name:     "empty process matches any session",
			trigger:  PeakTrigger{Threshold: 0.3},
			update:   testUpdate(gameSession(0.1), musicSession(0.9)),
			expected: true,
		},
		{
			name:     "no sessions",
			trigger:  PeakTrigger{Threshold: 0.3},
			update:   testUpdate(),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.trigger.Evaluate(tt.update)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("Evaluate() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPeakTrigger_WrongEventType(t *testing.T) {
	trigger := &PeakTrigger{Threshold: 0.3}
	if _, err := trigger.Evaluate(bogusEvent{}); err == nil {
		t.Error("Evaluate() expected error for non-audio event")
	}
}

type bogusEvent struct{}

func (bogusEvent) EventTime() time.Time { return time.Now() }

// =============================================================================
// ProcessRunningTrigger Tests
// =============================================================================

func TestProcessRunningTrigger(t *testing.T) {
	trigger := ProcessRunningTrigger{Process: "game.exe"}

	got, err := trigger.Evaluate(testUpdate(gameSession(0.0)))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !got {
		t.Error("Evaluate() = false with a matching session, want true")
	}

	got, err = trigger.Evaluate(testUpdate(musicSession(0.5)))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got {
		t.Error("Evaluate() = true without a matching session, want false")
	}
}

// =============================================================================
// IdleTrigger Tests
// =============================================================================

func TestIdleTrigger(t *testing.T) {
	tests := []struct {
		name     string
		trigger  IdleTrigger
		update   *StateUpdate
		expected bool
	}{
		{
			name:     "all sessions quiet",
			trigger:  IdleTrigger{Process: "game.exe", Below: 0.1},
			update:   testUpdate(gameSession(0.05)),
			expected: true,
		},
		{
			name:     "one session loud",
			trigger:  IdleTrigger{Process: "game.exe", Below: 0.1},
			update:   testUpdate(gameSession(0.5)),
			expected: false,
		},
		{
			name:     "no matching session is idle",
			trigger:  IdleTrigger{Process: "game.exe", Below: 0.1},
			update:   testUpdate(musicSession(0.9)),
			expected: true,
		},
		{
			name:     "empty process checks every session",
			trigger:  IdleTrigger{Below: 0.1},
			update:   testUpdate(gameSession(0.05), musicSession(0.5)),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.trigger.Evaluate(tt.update)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("Evaluate() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// =============================================================================
// TriggerBase Tests
// =============================================================================

func TestTriggerBase_Flags(t *testing.T) {
	base := TriggerBase{On: true, Invert: true}
	if !base.Enabled() {
		t.Error("Enabled() = false, want true")
	}
	if !base.InvertResult() {
		t.Error("InvertResult() = false, want true")
	}

	if (TriggerBase{}).Enabled() {
		t.Error("zero TriggerBase is enabled, want disabled")
	}
}
