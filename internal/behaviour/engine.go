package behaviour

import (
	"fmt"
	"sync"
	"time"

	"github.com/tomarikawa/avm-core/internal/counter"
)

// Logger defines the logging interface used by the Engine and Codec.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// FiringObserver is notified after a behaviour's action run completes.
// Implementations must be safe for concurrent use; runs for different
// behaviours (and different groups) complete in parallel.
type FiringObserver interface {
	BehaviourFired(b *Behaviour, at time.Time, actionsRun, actionsFailed int)
}

// Engine owns the behaviour collection and evaluates every enabled
// behaviour against each incoming state-update event, dispatching the
// actions of satisfied behaviours without blocking the caller.
//
// Thread Safety: the collection and its runtime/group state tables are
// guarded by one mutex; Process snapshots under the lock and evaluates
// outside it, so evaluation runs concurrently with later structural
// mutations. Per-behaviour runtime state is not further synchronised:
// the host must not call Process concurrently with itself (the single
// MQTT inbound handler satisfies this). Add, Remove, Clear, Load, Save
// and List are safe from any goroutine.
type Engine struct {
	tracker counter.Tracker
	codec   *Codec
	logger  Logger

	mu         sync.Mutex
	enabled    bool
	behaviours []*Behaviour
	states     map[*Behaviour]*runtimeState
	groups     map[string]*groupQueue
	onChange   []func()

	// observer is wiring-time configuration; set it before the first
	// Process call.
	observer FiringObserver
}

// NewEngine creates a behaviour engine.
//
// Parameters:
//   - tracker: last-fired counter store for cooldown gating and
//     trigger/action/behaviour bookkeeping
//   - codec: document codec used by Load and Save
//   - logger: logger instance (nil for no logging)
func NewEngine(tracker counter.Tracker, codec *Codec, logger Logger) *Engine {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Engine{
		tracker: tracker,
		codec:   codec,
		logger:  logger,
		enabled: true,
		states:  make(map[*Behaviour]*runtimeState),
		groups:  make(map[string]*groupQueue),
	}
}

// SetFiringObserver installs the observer notified after each action
// run. Call before the first Process.
func (e *Engine) SetFiringObserver(obs FiringObserver) {
	e.observer = obs
}

// SetEnabled toggles the engine-level evaluation gate. While disabled,
// Process is a no-op; the collection itself stays intact.
func (e *Engine) SetEnabled(enabled bool) {
	e.mu.Lock()
	e.enabled = enabled
	e.mu.Unlock()
}

// OnChange subscribes to the zero-payload "behaviours changed" signal.
// The callback runs synchronously at the end of any structural
// mutation (add, remove, clear, bulk load) and must not block.
func (e *Engine) OnChange(fn func()) {
	e.mu.Lock()
	e.onChange = append(e.onChange, fn)
	e.mu.Unlock()
}

// Add appends a behaviour with fresh runtime state.
func (e *Engine) Add(b *Behaviour) error {
	if err := ValidateBehaviour(b); err != nil {
		return err
	}
	if b.ID == "" {
		b.ID = GenerateID()
	}

	e.mu.Lock()
	e.behaviours = append(e.behaviours, b)
	e.states[b] = newRuntimeState()
	e.mu.Unlock()

	e.logger.Info("behaviour added", "id", b.ID, "name", b.Name)
	e.notifyChanged()
	return nil
}

// Remove removes all entries identical to the given behaviour and
// drops its runtime state. Identity is pointer identity.
func (e *Engine) Remove(b *Behaviour) {
	e.mu.Lock()
	kept := e.behaviours[:0]
	removed := 0
	for _, cur := range e.behaviours {
		if cur == b {
			removed++
			continue
		}
		kept = append(kept, cur)
	}
	e.behaviours = kept
	delete(e.states, b)
	e.mu.Unlock()

	if removed == 0 {
		return
	}
	e.logger.Info("behaviour removed", "id", b.ID, "name", b.Name)
	e.notifyChanged()
}

// Clear discards the whole collection along with all runtime state and
// group queues.
func (e *Engine) Clear() {
	e.mu.Lock()
	e.clearLocked()
	e.mu.Unlock()

	e.logger.Info("behaviour collection cleared")
	e.notifyChanged()
}

// clearLocked resets the collection and both state tables. Caller
// holds e.mu. A group worker still draining keeps running to
// completion; it belongs to the discarded generation.
func (e *Engine) clearLocked() {
	e.behaviours = nil
	e.states = make(map[*Behaviour]*runtimeState)
	e.groups = make(map[string]*groupQueue)
}

// List returns a point-in-time copy of the behaviour collection. The
// slice is the caller's; the behaviours themselves are the live
// entities, as required for identity-based Remove.
func (e *Engine) List() []*Behaviour {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Behaviour(nil), e.behaviours...)
}

// Count returns the number of registered behaviours.
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.behaviours)
}

// Load decodes behaviours from a document and installs them. With
// clearPrevious the prior collection and all runtime/group state are
// discarded atomically before the new entries appear; otherwise the
// decoded behaviours are appended. A malformed document returns
// ErrDecode and mutates nothing.
func (e *Engine) Load(doc []byte, clearPrevious bool) error {
	decoded, err := e.codec.Decode(doc)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if clearPrevious {
		e.clearLocked()
	}
	for _, b := range decoded {
		e.behaviours = append(e.behaviours, b)
		e.states[b] = newRuntimeState()
	}
	e.mu.Unlock()

	e.logger.Info("behaviours loaded", "count", len(decoded), "cleared_previous", clearPrevious)
	e.notifyChanged()
	return nil
}

// Save encodes the current collection. compact controls whitespace
// only, never content.
func (e *Engine) Save(compact bool) ([]byte, error) {
	return e.codec.Encode(e.List(), compact)
}

// Process evaluates every enabled behaviour against the event, in
// insertion order, and dispatches the actions of those that fire.
// Dispatch never blocks the caller: ungrouped behaviours run on a
// fresh goroutine, grouped behaviours on their group's worker.
//
// Process must not be called concurrently with itself; per-behaviour
// runtime state is only safe when one event is fully evaluated for a
// behaviour before the next begins.
func (e *Engine) Process(ev Event) {
	type item struct {
		b  *Behaviour
		st *runtimeState
	}

	e.mu.Lock()
	if !e.enabled {
		e.mu.Unlock()
		return
	}
	snapshot := make([]item, 0, len(e.behaviours))
	for _, b := range e.behaviours {
		if !b.Enabled {
			continue
		}
		snapshot = append(snapshot, item{b: b, st: e.states[b]})
	}
	e.mu.Unlock()

	for _, it := range snapshot {
		if it.st == nil {
			// Behaviour removed between snapshot and evaluation.
			continue
		}
		if err := e.evaluate(it.st, it.b, ev); err != nil {
			e.logger.Error("behaviour evaluation failed",
				"behaviour", it.b.Name,
				"error", err,
			)
		}
	}
}

// evaluate runs one evaluation cycle for a single behaviour:
// cooldown gate, trigger OR, condition AND, edge policy, dispatch.
// The returned error is an invalid-configuration failure of this one
// call; trigger and action errors are logged, never propagated.
func (e *Engine) evaluate(st *runtimeState, b *Behaviour, ev Event) error {
	now := ev.EventTime()

	// Cooldown gate: skip entirely, with no state mutation.
	if last := e.tracker.Get(b); !last.IsZero() && last.Add(b.CooldownPeriod).After(now) {
		return nil
	}

	// Triggers combine with OR. Every enabled trigger is evaluated so
	// each firing trigger gets its counter bumped.
	fired := false
	for _, t := range b.Triggers {
		if t == nil || !t.Enabled() {
			continue
		}
		if e.test(t, ev, now, b) {
			fired = true
		}
	}

	// Conditions combine with AND and are skipped when no trigger fired.
	combined := fired
	if fired {
		for _, c := range b.Conditions {
			if c == nil || !c.Enabled() {
				continue
			}
			if !e.test(c, ev, now, b) {
				combined = false
			}
		}
	}

	fire, err := e.applyEdgePolicy(st, b, combined, now)
	if err != nil {
		return err
	}

	// Edge memory updates every cycle, fired or not.
	st.lastTriggerState = combined

	if !fire {
		return nil
	}

	e.tracker.Bump(b, now)
	e.dispatch(st, b, ev)
	return nil
}

// test evaluates one trigger or condition: run it, apply the invert
// flag, bump its counter when it testifies true. Errors count as
// "did not fire".
func (e *Engine) test(t Trigger, ev Event, now time.Time, b *Behaviour) bool {
	res, err := t.Evaluate(ev)
	if err != nil {
		e.logger.Warn("trigger evaluation failed",
			"behaviour", b.Name,
			"error", err,
		)
		return false
	}
	res = res != t.InvertResult()
	if res {
		e.tracker.Bump(t, now)
	}
	return res
}

// applyEdgePolicy maps the previous and current combined state to a
// fire decision per the behaviour's triggering kind. Timed mode keeps
// its pending-window marker in the runtime state.
func (e *Engine) applyEdgePolicy(st *runtimeState, b *Behaviour, combined bool, now time.Time) (bool, error) {
	prev := st.lastTriggerState

	switch b.Triggering {
	case TriggeringRisingEdge:
		return !prev && combined, nil

	case TriggeringFallingEdge:
		return prev && !combined, nil

	case TriggeringAlways:
		return combined, nil

	case TriggeringBothEdges:
		return prev != combined, nil

	case TriggeringTimed:
		if !combined {
			// Restart the pending window at every false cycle.
			ts := now
			st.pendingSince = &ts
			return false, nil
		}
		if st.pendingSince == nil {
			// No window open; a fire already consumed it.
			return false, nil
		}
		if !now.Before(st.pendingSince.Add(b.MinimalTimedTriggerDelay)) {
			st.pendingSince = nil
			return true, nil
		}
		return false, nil

	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidTriggering, b.Triggering)
	}
}

// dispatch hands the behaviour's action run to its execution domain:
// the group worker for grouped behaviours, a fresh goroutine for
// ungrouped ones. An ungrouped behaviour with a run still in flight
// drops the new pulse instead of queueing it.
func (e *Engine) dispatch(st *runtimeState, b *Behaviour, ev Event) {
	run := func() { e.runActions(b, ev) }

	if b.Group == "" {
		if !st.inFlight.CompareAndSwap(false, true) {
			e.logger.Debug("behaviour run still in flight, pulse dropped",
				"behaviour", b.Name,
			)
			return
		}
		go func() {
			defer st.inFlight.Store(false)
			run()
		}()
		return
	}

	e.groupFor(b.Group).submit(b, run)
}

// groupFor returns the queue for the named group, creating it on
// first use.
func (e *Engine) groupFor(name string) *groupQueue {
	e.mu.Lock()
	defer e.mu.Unlock()
	q, ok := e.groups[name]
	if !ok {
		q = newGroupQueue(name)
		e.groups[name] = q
	}
	return q
}

// runActions executes the behaviour's enabled actions in list order.
// A failing action is logged and the remaining actions still execute;
// each successful action bumps its own counter with the event time.
func (e *Engine) runActions(b *Behaviour, ev Event) {
	now := ev.EventTime()
	ran, failed := 0, 0

	for _, a := range b.Actions {
		if a == nil || !a.Enabled() {
			continue
		}
		if err := a.Execute(ev); err != nil {
			failed++
			e.logger.Error("action execution failed",
				"behaviour", b.Name,
				"error", err,
			)
			continue
		}
		ran++
		e.tracker.Bump(a, now)
	}

	e.logger.Debug("behaviour fired",
		"behaviour", b.Name,
		"group", b.Group,
		"actions_run", ran,
		"actions_failed", failed,
	)

	if e.observer != nil {
		e.observer.BehaviourFired(b, now, ran, failed)
	}
}

// notifyChanged invokes the change subscribers outside the engine
// lock, so a subscriber may call back into List or Save.
func (e *Engine) notifyChanged() {
	e.mu.Lock()
	subs := append(make([]func(), 0, len(e.onChange)), e.onChange...)
	e.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
