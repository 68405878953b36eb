// Package softtimer implements software countdown timers.
//
// A Timer counts abstract ticks down to zero. Something outside this package
// (a hardware tick, a goroutine, a test) calls Update once per tick; application
// code asks SignalState whether the countdown has expired.
//
// Counting down and consuming the expiry are decoupled on purpose. An
// auto-restart timer is reloaded when its expiry is read by SignalState, not
// when Update reaches zero. Callers must therefore poll to catch every expiry,
// and when several readers poll one auto-restart timer only the first reader
// after expiry sees Signaled and restarts it.
//
// Update may run concurrently with SignalState and Data: the counter and timer
// fields are atomics, and Update never moves the counter below zero.
//
// A Registry holds a fixed number of timers addressed by Handle, the index of
// their slot. Deleting a timer un-registers it, so a *Timer obtained earlier
// reports ErrNotRegistered instead of silently driving a freed slot.
package softtimer
