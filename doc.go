// Package threadpool provides a generic, keyed registry for long-running
// worker goroutines: start an arbitrary number of independently identified
// background workers, look up which ones are live, and stop any one of them
// (or all, at teardown) with a cooperative shutdown signal followed by a
// blocking join.
//
// The registry knows nothing about what the workers compute. There is no
// work queue, no scheduling, no supervision or restart policy, and no
// cross-worker communication: worker bodies are caller-supplied, and the
// pool only tracks their presence and retires them.
//
// Shutdown contract
//
// The shutdown protocol is cooperative, not preemptive. Every worker body
// receives a shutdown channel through its Factory and is contractually
// required to select on it and return promptly once it is closed. Nothing
// in this package can terminate a goroutine that ignores its signal;
// StopContext and WithStopTimeout only bound how long the caller waits.
//
// Backing strategies
//
// The worker table is pluggable at construction time:
//   - StrategyLocked (default): one RWMutex around the whole table. Simple;
//     serializes all registry mutations.
//   - StrategySharded: independently locked shards with per-key atomicity,
//     so distinct ids spawn and stop in parallel.
//
// Both expose identical behavior (same errors, same postconditions) and
// differ only in contention characteristics.
//
// State
//
// The State value given to New is cloned, not shared by reference, into each
// worker at spawn time: by plain value copy, or through WithCloneState when
// State holds reference types. Any true sharing must be built into State
// itself by the caller.
//
// Defaults
// Unless overridden, a newly created Pool uses:
//   - Strategy: StrategyLocked
//   - Shards: 32 (sharded strategy only)
//   - StopTimeout: 0 (Close waits forever per worker)
//   - Logger: nil (no logging)
//   - Metrics: no-op provider
package threadpool
