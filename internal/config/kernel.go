package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultTaskCapacity   = 16
	DefaultTimerCapacity  = 16
	DefaultTickInterval   = 10 * time.Millisecond
	DefaultCycleInterval  = 100 * time.Millisecond
	DefaultReportSchedule = "@every 30s"
	DefaultStatusAddr     = "127.0.0.1:7070"
)

// Kernel is KernelConfig with defaults applied and durations parsed.
type Kernel struct {
	TaskCapacity  int
	TimerCapacity int
	TickInterval  time.Duration
	CycleInterval time.Duration
	TickBurst     int
}

// ResolveKernel applies defaults to k.
func ResolveKernel(k KernelConfig) (Kernel, error) {
	tick, err := ParseDurationOrDefault("kernel.tick_interval", k.TickInterval, DefaultTickInterval)
	if err != nil {
		return Kernel{}, err
	}
	cycle, err := ParseDurationOrDefault("kernel.cycle_interval", k.CycleInterval, DefaultCycleInterval)
	if err != nil {
		return Kernel{}, err
	}
	out := Kernel{
		TaskCapacity:  k.TaskCapacity,
		TimerCapacity: k.TimerCapacity,
		TickInterval:  tick,
		CycleInterval: cycle,
		TickBurst:     k.TickBurst,
	}
	if out.TaskCapacity == 0 {
		out.TaskCapacity = DefaultTaskCapacity
	}
	if out.TimerCapacity == 0 {
		out.TimerCapacity = DefaultTimerCapacity
	}
	if out.TickBurst <= 0 {
		out.TickBurst = 1
	}
	return out, nil
}

// ReportSchedule returns the configured cron spec or the default.
func (c *Config) ReportSchedule() string {
	if s := strings.TrimSpace(c.Report.Schedule); s != "" {
		return s
	}
	return DefaultReportSchedule
}

// StatusAddr returns the configured listen address or the default.
func (c *Config) StatusAddr() string {
	if s := strings.TrimSpace(c.Status.Addr); s != "" {
		return s
	}
	return DefaultStatusAddr
}

func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}
