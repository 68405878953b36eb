package config

// Config is the lwosd configuration file.
//
// Files may be JSON or YAML (selected by extension). Unknown keys are rejected.
type Config struct {
	Kernel  KernelConfig   `json:"kernel"`
	Logging LoggingConfig  `json:"logging"`
	Storage *StorageConfig `json:"storage,omitempty"`
	Status  StatusConfig   `json:"status,omitempty"`
	Report  ReportConfig   `json:"report,omitempty"`
	Systemd SystemdConfig  `json:"systemd,omitempty"`

	Tasks  []TaskConfig  `json:"tasks,omitempty"`
	Timers []TimerConfig `json:"timers,omitempty"`
	Rules  []RuleConfig  `json:"rules,omitempty"`
}

// KernelConfig sizes the slot tables and paces the drivers.
//
// Durations are Go duration strings (e.g. "10ms", "1s").
//
// Defaults (when fields are omitted/zero):
//   - task_capacity: 16
//   - timer_capacity: 16
//   - tick_interval: "10ms"
//   - cycle_interval: "100ms"
//   - tick_burst: 1
type KernelConfig struct {
	TaskCapacity  int    `json:"task_capacity,omitempty"`
	TimerCapacity int    `json:"timer_capacity,omitempty"`
	TickInterval  string `json:"tick_interval,omitempty"`
	CycleInterval string `json:"cycle_interval,omitempty"`

	// TickBurst lets the tick loop catch up on this many missed ticks at once.
	TickBurst int `json:"tick_burst,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	Format  string      `json:"format,omitempty"` // "pretty" (default) or "json"
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig controls the optional persistence of reports and events.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./lwosd.db" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
	MaxEvents   int    `json:"max_events,omitempty"`   // sqlite event retention; default 10000
}

// StatusConfig controls the optional HTTP status API.
//
// Prefer binding to localhost; the API can suspend and remove tasks.
//
// When Token is set, requests must carry "Authorization: Bearer <token>".
// A non-loopback Addr without a token is refused unless AllowInsecure is set.
type StatusConfig struct {
	Enabled       bool   `json:"enabled"`
	Addr          string `json:"addr,omitempty"` // default: "127.0.0.1:7070"
	Token         string `json:"token,omitempty"`
	AllowInsecure bool   `json:"allow_insecure,omitempty"`

	// Pprof mounts net/http/pprof under /debug/pprof.
	Pprof bool `json:"pprof,omitempty"`
}

// ReportConfig controls the periodic snapshot report.
type ReportConfig struct {
	// Schedule is a cron spec ("*/5 * * * * *", "@every 30s"). Default "@every 30s".
	Schedule string `json:"schedule,omitempty"`
}

type SystemdConfig struct {
	// Notify sends READY/WATCHDOG/STOPPING to systemd when NOTIFY_SOCKET is set.
	Notify bool `json:"notify"`
}

// TaskConfig declares a built-in print task.
type TaskConfig struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	State   string `json:"state,omitempty"` // running (default), suspended, waiting
}

// TimerConfig declares a software timer. Threshold counts ticks.
type TimerConfig struct {
	Name        string `json:"name"`
	Threshold   uint64 `json:"threshold"`
	AutoRestart bool   `json:"auto_restart,omitempty"`
	Start       bool   `json:"start,omitempty"`
}

// RuleConfig applies Action to Task whenever Timer reads as signaled.
type RuleConfig struct {
	Timer  string `json:"timer"`
	Action string `json:"action"`
	Task   string `json:"task"`
}

// Rule actions.
const (
	ActionSuspend = "suspend"
	ActionResume  = "resume"
	ActionToggle  = "toggle"
	ActionWait    = "wait"
	ActionRemove  = "remove"
)
