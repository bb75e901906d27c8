package behaviour

import "time"

// TriggeringKind selects the edge policy applied to a behaviour's
// combined trigger/condition result on each evaluation cycle.
type TriggeringKind string

const (
	// TriggeringRisingEdge fires on a false→true transition.
	TriggeringRisingEdge TriggeringKind = "rising_edge"

	// TriggeringFallingEdge fires on a true→false transition.
	TriggeringFallingEdge TriggeringKind = "falling_edge"

	// TriggeringAlways fires on every cycle where the combined result is true.
	TriggeringAlways TriggeringKind = "always"

	// TriggeringBothEdges fires on any transition, in either direction.
	TriggeringBothEdges TriggeringKind = "both_edges"

	// TriggeringTimed fires once the combined result has held true for at
	// least MinimalTimedTriggerDelay, measured on event timestamps.
	TriggeringTimed TriggeringKind = "timed"
)

// AllTriggeringKinds returns all valid triggering kinds.
func AllTriggeringKinds() []TriggeringKind {
	return []TriggeringKind{
		TriggeringRisingEdge,
		TriggeringFallingEdge,
		TriggeringAlways,
		TriggeringBothEdges,
		TriggeringTimed,
	}
}

// Valid reports whether k is a recognised triggering kind.
func (k TriggeringKind) Valid() bool {
	switch k {
	case TriggeringRisingEdge, TriggeringFallingEdge, TriggeringAlways,
		TriggeringBothEdges, TriggeringTimed:
		return true
	default:
		return false
	}
}

// Event is a single state update delivered to Engine.Process.
//
// The engine reads only the timestamp; triggers, conditions and actions
// interpret the rest of the payload.
type Event interface {
	// EventTime returns the wall-clock snapshot time of the update.
	EventTime() time.Time
}

// Trigger is a boolean-producing check evaluated against an event.
//
// A behaviour's trigger list is combined with OR; its condition list
// (same type) is combined with AND. Evaluation errors are logged by the
// engine and treated as "did not fire" — they never abort the cycle.
type Trigger interface {
	// Enabled reports whether this trigger participates in evaluation.
	Enabled() bool

	// InvertResult reports whether the raw result is logically inverted.
	InvertResult() bool

	// Evaluate tests the trigger against the event.
	Evaluate(ev Event) (bool, error)
}

// Action is a side effect executed when a behaviour fires.
type Action interface {
	// Enabled reports whether this action participates in dispatch.
	Enabled() bool

	// Execute performs the action for the triggering event.
	Execute(ev Event) error
}

// Behaviour is a single automation rule: an ordered set of triggers,
// conditions and actions plus the policy that decides when a satisfied
// rule actually fires.
//
// Identity is pointer identity: two Behaviour values with equal fields
// are distinct entities for runtime state, counters and queue dedup.
// A Behaviour is mutated only by replacing field or list contents.
type Behaviour struct {
	ID   string
	Name string

	// Enabled gates evaluation entirely; a disabled behaviour holds its
	// runtime state frozen.
	Enabled bool

	// CooldownPeriod is the minimum gap after a fire before the
	// behaviour is evaluated again. Zero disables the gate.
	CooldownPeriod time.Duration

	// Triggering selects the edge policy.
	Triggering TriggeringKind

	// MinimalTimedTriggerDelay is the hold time for TriggeringTimed.
	MinimalTimedTriggerDelay time.Duration

	// Group names the serialisation domain for action runs. Behaviours
	// sharing a group never have overlapping runs; the empty string
	// means ungrouped (independent, coalescing) dispatch.
	Group string

	// Ordered evaluation lists. Conditions share the Trigger type but
	// are AND-combined and gate the OR-combined trigger result.
	Triggers   []Trigger
	Conditions []Trigger
	Actions    []Action
}
