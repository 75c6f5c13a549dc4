// Package state implements the shared state record for a single workflow run.
//
// A run owns one [Store]. Node handlers receive a [Record] snapshot and return
// a partial [Update]; the scheduler merges updates into the store as nodes
// complete. Merge is last-writer-wins per field and safe under concurrent
// invocation, with the guarantee that disjoint-field updates commute —
// the property fan-out/fan-in execution relies on.
package state
