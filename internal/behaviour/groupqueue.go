package behaviour

import "sync"

// runUnit is one queued action run for a behaviour.
type runUnit func()

// groupQueue serialises action runs for behaviours that share a group
// name. Different groups run independently and concurrently; within a
// group at most one run executes at any instant.
//
// Submission order is FIFO, except that resubmitting a behaviour whose
// prior entry is still queued (not yet started) replaces that entry
// with the newer run — a behaviour has at most one pending run, always
// the most recent.
type groupQueue struct {
	name string

	mu      sync.Mutex
	pending []pendingRun
	active  bool // exactly one worker while true
}

// pendingRun pairs a queued run with its owning behaviour for dedup.
type pendingRun struct {
	owner *Behaviour
	run   runUnit
}

func newGroupQueue(name string) *groupQueue {
	return &groupQueue{name: name}
}

// submit queues a run for the behaviour, replacing any entry of the
// same behaviour that has not started yet, and starts a worker if none
// is active.
func (q *groupQueue) submit(owner *Behaviour, run runUnit) {
	q.mu.Lock()
	for i := range q.pending {
		if q.pending[i].owner == owner {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			break
		}
	}
	q.pending = append(q.pending, pendingRun{owner: owner, run: run})

	start := !q.active
	if start {
		q.active = true
	}
	q.mu.Unlock()

	if start {
		go q.work()
	}
}

// work drains the queue, executing runs outside the lock, and exits
// when the queue is empty. A later submit finding no active worker
// starts a fresh one.
func (q *groupQueue) work() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.active = false
			q.mu.Unlock()
			return
		}
		next := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		// Errors inside a run are the run's own responsibility.
		next.run()
	}
}

// depth returns the number of queued (not yet started) runs.
func (q *groupQueue) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
