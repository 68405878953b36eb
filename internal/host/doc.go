// Package host runs a scheduler and a timer registry as a long-lived daemon.
//
// A Host owns three loops under one supervisor:
//   - tick: paced by a token bucket, advances every timer by one tick
//   - cycle: runs one scheduler cycle, then applies signal rules
//   - events: persists bus events when storage is enabled
//
// A cron job logs and stores a report on the configured schedule, and a
// watchdog loop keeps systemd informed while cycles make progress.
//
// The scheduler itself is not safe for concurrent use; every access goes
// through Host.mu. The timer registry has its own locking.
package host
