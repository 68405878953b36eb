// Package storage persists host reports and events.
//
// Two drivers are available:
//   - "file": JSON Lines files next to the configured path
//   - "sqlite": a SQLite database (modernc.org/sqlite, no cgo)
//
// An empty driver or "none" disables storage; Open then returns (nil, nil)
// and callers must treat a nil Store as "don't persist".
package storage
