// Package behaviour provides the rule engine at the core of AVM Core.
//
// Behaviours are named automation rules: ordered triggers (OR),
// conditions (AND) and actions, plus an edge-triggering policy, a
// cooldown and an optional serialisation group. The engine evaluates
// every enabled behaviour against each incoming state-update event and
// dispatches the actions of those that fire.
//
// Architecture:
//
//	┌───────────────────────────────────────────────────────┐
//	│                  Engine (engine.go)                    │
//	│  Evaluates behaviours against state-update events      │
//	│                                                        │
//	│  ┌──────────────────────────────────────────────┐     │
//	│  │  Evaluation Pipeline (per behaviour)          │     │
//	│  │  1. Cooldown gate (counter.Tracker)           │     │
//	│  │  2. Triggers: OR over enabled testers         │     │
//	│  │  3. Conditions: AND, gating the result        │     │
//	│  │  4. Edge policy (rising/falling/always/       │     │
//	│  │     both/timed) against edge memory           │     │
//	│  │  5. Dispatch: goroutine (ungrouped, coalesce) │     │
//	│  │     or groupQueue (serialised per group)      │     │
//	│  └──────────────────────────────────────────────┘     │
//	│                                                        │
//	│  ┌──────────────┐    ┌──────────────┐                 │
//	│  │    Codec     │    │  Repository  │                 │
//	│  │ (codec.go)   │    │(repository.go)│                │
//	│  │ type-tagged  │    │ document +    │                │
//	│  │ JSON docs    │    │ firing log    │                │
//	│  └──────────────┘    └──────────────┘                 │
//	└───────────────────────────────────────────────────────┘
//
// # Key Types
//
//   - Behaviour: triggers + conditions + actions + policy
//   - Engine: evaluation and dispatch orchestrator
//   - Codec: type-tagged JSON document serialisation with a
//     string-keyed factory registry
//   - groupQueue: at-most-one-worker queue serialising runs per group
//   - Repository: SQLite persistence (current document, firing history)
//
// # Concurrency
//
// One mutex guards the collection and its runtime/group state tables.
// Process snapshots under the lock and evaluates outside it, so
// evaluation overlaps structural mutations safely. Per-behaviour edge
// state is intentionally unsynchronised: callers must not invoke
// Process concurrently with itself (see Engine.Process).
//
// # Usage
//
//	codec := behaviour.NewCodec()
//	audio.Register(codec, commander)
//
//	engine := behaviour.NewEngine(tracker, codec, log)
//	if err := engine.Load(doc, true); err != nil {
//	    return err
//	}
//	engine.Process(update)
package behaviour
