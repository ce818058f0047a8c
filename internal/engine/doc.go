// Package engine runs compiled dataflow programs one transaction at a time.
//
// # Model
//
// A Program is a fixed list of node records in compiler order plus a frozen
// edge table (package graph) and a list of constants. Constants have no record:
// their value never changes and they count as dirty only during the very first
// transaction. Every record owns its state, its output slots, its dirty bitset
// and, when the node declared it, a timeout deadline.
//
// # Transaction
//
// RunTransaction executes one tick. The phases always run in this order:
//
//  1. Sample the transaction time once; every node evaluated in this tick sees
//     the same value.
//  2. Inject a pending debug tweak, if an Injector is configured.
//  3. Check timeouts: any record whose deadline has been reached becomes
//     node-dirty.
//  4. Defer pre-pass: dirty defer nodes are evaluated with all inputs reported
//     clean, their outputs are propagated, and their node bit and timeout are
//     cleared.
//  5. Main pass: every record is visited in order; dirty ones are evaluated and
//     their outputs propagated to downstream records.
//  6. Reset: all dirty flags are zeroed and timeouts that were not re-armed are
//     dropped.
//
// Propagation is a single forward pass. A dirtyable output marks its consumers
// dirty only if the node marked that output dirty while evaluating; a
// non-dirtyable output marks them dirty whenever the node evaluates. Effects of
// a record evaluated later never reach records evaluated earlier in the same
// tick.
//
// # Errors
//
// Evaluation errors are node-scoped. They are stored on the record, logged and
// counted in the Report; the transaction carries on with the next record. A
// panic inside an evaluation is recovered into a *PanicError the same way.
//
// # Concurrency
//
// A Runtime is single-threaded. RunTransaction must not be called concurrently
// or re-entered; doing so panics.
package engine
