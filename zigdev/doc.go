// Package zigdev implements the device-side data model: Device,
// Endpoint, and Cluster entities, the join->interview->initialized
// lifecycle state machine, and the retry/backoff policy that drives
// interview steps.
//
// The state enum is an integer backed by a String method and a small
// validTransitions table; interview retry bookkeeping is mutex-guarded
// progress tracking over a bounded step sequence.
package zigdev
