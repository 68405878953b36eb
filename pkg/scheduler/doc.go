// Package scheduler runs tasks cooperatively in a fixed-capacity slot table.
//
// The table is allocated once by New and never grows. Add places a task in the
// lowest free slot and returns the slot index as its TaskID; Remove clears the
// slot and leaves a hole that the next Add reuses. Process walks every slot in
// index order and runs each occupied one, so execution order is registration
// order (by slot position) and there is no other policy.
//
// A Scheduler is not safe for concurrent use. Process must not run concurrently
// with Add, Remove or Get on the same instance; hosts that drive it from more
// than one goroutine provide their own mutual exclusion.
package scheduler
