// Package task defines the schedulable unit used by package scheduler.
//
// A Task pairs an explicit State with a caller-supplied Executor. Tasks never
// change state on their own: every transition is an explicit call by the owner,
// and any state may be entered from any other.
package task
