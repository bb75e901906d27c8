// Package counter tracks last-fired timestamps for triggerable
// entities: triggers, conditions, actions and behaviours.
//
// Entities are keyed by identity, not value: two distinct trigger
// instances with identical configuration have independent counters.
// Keys are interface values, so any comparable entity works — in
// practice pointers to behaviour, trigger and action instances.
package counter

import (
	"sync"
	"time"
)

// Tracker is the last-fired counter interface consumed by the engine.
//
// Writes are independent per entity with last-write-wins semantics;
// concurrent bumps for different entities never conflict.
type Tracker interface {
	// Get returns the entity's last-fired time, or the zero time if it
	// has never fired.
	Get(entity any) time.Time

	// Bump records that the entity fired at the given time.
	Bump(entity any, at time.Time)
}

// MemoryTracker is an in-memory Tracker guarded by a single mutex.
// Safe for concurrent use.
type MemoryTracker struct {
	mu   sync.Mutex
	last map[any]time.Time
}

// NewMemoryTracker creates an empty in-memory tracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{
		last: make(map[any]time.Time),
	}
}

// Get returns the entity's last-fired time, or the zero time.
func (t *MemoryTracker) Get(entity any) time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last[entity]
}

// Bump records the entity's last-fired time.
func (t *MemoryTracker) Bump(entity any, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last[entity] = at
}

// Forget drops the counters for the given entities. Used when
// behaviours are removed so stale identities do not pin map entries.
func (t *MemoryTracker) Forget(entities ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range entities {
		delete(t.last, e)
	}
}

// Len returns the number of tracked entities.
func (t *MemoryTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.last)
}
