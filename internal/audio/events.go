// Package audio defines the audio-session event payload consumed by
// the behaviour engine, together with the built-in trigger, condition
// and action types that operate on it.
//
// Session snapshots arrive as state updates from audio adapters over
// MQTT; actions publish volume and mute commands back the same way.
// The behaviour engine itself treats the payload as opaque and reads
// only the timestamp.
package audio

import (
	"encoding/json"
	"fmt"
	"time"
)

// Session is a point-in-time snapshot of one audio session.
type Session struct {
	// Name is the session display name (e.g. "Spotify").
	Name string `json:"name"`

	// Process is the owning process image name (e.g. "spotify.exe").
	Process string `json:"process"`

	// PID is the owning process ID.
	PID int `json:"pid"`

	// Volume is the session volume, 0.0–1.0.
	Volume float64 `json:"volume"`

	// Peak is the current peak meter value, 0.0–1.0.
	Peak float64 `json:"peak"`

	// Muted reports the session mute state.
	Muted bool `json:"muted"`

	// Active reports whether the session is in the active state
	// (rendering audio) rather than inactive or expired.
	Active bool `json:"active"`
}

// StateUpdate is one state-update event: the wall-clock snapshot time
// and the audio sessions visible at that instant.
type StateUpdate struct {
	Time     time.Time `json:"time"`
	Sessions []Session `json:"sessions"`
}

// EventTime implements behaviour.Event.
func (u *StateUpdate) EventTime() time.Time {
	return u.Time
}

// DecodeStateUpdate parses a state-update payload as published by
// audio adapters on the session state topic.
func DecodeStateUpdate(payload []byte) (*StateUpdate, error) {
	var u StateUpdate
	if err := json.Unmarshal(payload, &u); err != nil {
		return nil, fmt.Errorf("decoding state update: %w", err)
	}
	if u.Time.IsZero() {
		return nil, fmt.Errorf("decoding state update: missing time")
	}
	return &u, nil
}

// sessionsFor returns the sessions belonging to the named process.
// An empty process name matches every session.
func (u *StateUpdate) sessionsFor(process string) []Session {
	if process == "" {
		return u.Sessions
	}
	var out []Session
	for _, s := range u.Sessions {
		if s.Process == process {
			out = append(out, s)
		}
	}
	return out
}
