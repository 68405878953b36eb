package storage

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrClosed = errors.New("storage closed")

// Config configures storage.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default

	// MaxEvents bounds the sqlite event table; 0 means DefaultMaxEvents.
	// The file driver never prunes.
	MaxEvents int
}

const DefaultMaxEvents = 10000

// Report is a point-in-time snapshot of a running host.
type Report struct {
	ID     string        `json:"id"`
	At     time.Time     `json:"at"`
	Ticks  uint64        `json:"ticks"`
	Cycles uint64        `json:"cycles"`
	Tasks  []TaskEntry   `json:"tasks"`
	Timers []TimerEntry  `json:"timers"`
	Uptime time.Duration `json:"uptime"`
}

type TaskEntry struct {
	ID    uint   `json:"id"`
	Name  string `json:"name,omitempty"`
	State string `json:"state"`
	Runs  uint64 `json:"runs"`
}

type TimerEntry struct {
	Handle      uint   `json:"handle"`
	Name        string `json:"name,omitempty"`
	State       string `json:"state"`
	Counter     uint64 `json:"counter"`
	Threshold   uint64 `json:"threshold"`
	AutoRestart bool   `json:"auto_restart"`
}

// EventRecord is a persisted bus event. Data is stored verbatim.
type EventRecord struct {
	At   time.Time       `json:"at"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}
