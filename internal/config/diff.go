package config

import (
	"fmt"
	"reflect"

	"lwos/pkg/logx"
)

// SummarizeConfigChange lists the top-level sections that differ between old
// and new, plus a few fields worth logging on their own.
func SummarizeConfigChange(old, new *Config) ([]string, []logx.Field) {
	if old == nil || new == nil {
		return []string{"config"}, nil
	}

	var (
		changed []string
		fields  []logx.Field
	)
	if old.Kernel != new.Kernel {
		changed = append(changed, "kernel")
		if old.Kernel.TickInterval != new.Kernel.TickInterval {
			fields = append(fields, logx.String("tick_interval", fmt.Sprintf("%q -> %q", old.Kernel.TickInterval, new.Kernel.TickInterval)))
		}
		if old.Kernel.CycleInterval != new.Kernel.CycleInterval {
			fields = append(fields, logx.String("cycle_interval", fmt.Sprintf("%q -> %q", old.Kernel.CycleInterval, new.Kernel.CycleInterval)))
		}
	}
	if old.Logging != new.Logging {
		changed = append(changed, "logging")
		if old.Logging.Level != new.Logging.Level {
			fields = append(fields, logx.String("log_level", fmt.Sprintf("%s -> %s", old.Logging.Level, new.Logging.Level)))
		}
	}
	if !reflect.DeepEqual(old.Storage, new.Storage) {
		changed = append(changed, "storage")
	}
	if old.Status != new.Status {
		changed = append(changed, "status")
	}
	if old.Report != new.Report {
		changed = append(changed, "report")
		fields = append(fields, logx.String("report_schedule", new.ReportSchedule()))
	}
	if old.Systemd != new.Systemd {
		changed = append(changed, "systemd")
	}
	if !reflect.DeepEqual(old.Tasks, new.Tasks) {
		changed = append(changed, "tasks")
		fields = append(fields, logx.Int("tasks", len(new.Tasks)))
	}
	if !reflect.DeepEqual(old.Timers, new.Timers) {
		changed = append(changed, "timers")
		fields = append(fields, logx.Int("timers", len(new.Timers)))
	}
	if !reflect.DeepEqual(old.Rules, new.Rules) {
		changed = append(changed, "rules")
	}
	return changed, fields
}

// NeedsRebuild reports whether the change cannot be applied to a running
// kernel in place (slot tables are fixed size, and declared tasks/timers own
// their slots).
func NeedsRebuild(old, new *Config) bool {
	if old == nil || new == nil {
		return true
	}
	return old.Kernel.TaskCapacity != new.Kernel.TaskCapacity ||
		old.Kernel.TimerCapacity != new.Kernel.TimerCapacity ||
		!reflect.DeepEqual(old.Tasks, new.Tasks) ||
		!reflect.DeepEqual(old.Timers, new.Timers)
}
