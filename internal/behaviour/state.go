package behaviour

import (
	"sync/atomic"
	"time"
)

// runtimeState is the per-behaviour mutable evaluation state. It is
// owned by the engine, keyed by behaviour identity, never persisted,
// and rebuilt whenever the collection is cleared or reloaded.
type runtimeState struct {
	// lastTriggerState remembers the previous cycle's combined result
	// for edge detection. Starts false.
	lastTriggerState bool

	// pendingSince marks the opening of a timed-mode window: the event
	// time at which the combined result was last false. nil means no
	// window is open ("unset").
	pendingSince *time.Time

	// inFlight is set while an ungrouped action run is outstanding.
	// A new fire that finds it set is silently dropped rather than
	// queued — a behaviour never has two concurrent runs.
	inFlight atomic.Bool
}

func newRuntimeState() *runtimeState {
	return &runtimeState{}
}
