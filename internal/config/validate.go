package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"lwos/pkg/task"
)

// ReportParser accepts 5- and 6-field cron specs plus descriptors (@every, @hourly).
var ReportParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks cross-field constraints. All problems are reported together.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	var errs []error

	k, err := ResolveKernel(cfg.Kernel)
	if err != nil {
		errs = append(errs, err)
	}
	if cfg.Kernel.TaskCapacity < 0 {
		errs = append(errs, fmt.Errorf("kernel.task_capacity: must be >= 0 (0 = default)"))
	}
	if cfg.Kernel.TimerCapacity < 0 {
		errs = append(errs, fmt.Errorf("kernel.timer_capacity: must be >= 0 (0 = default)"))
	}
	if err == nil {
		if len(cfg.Tasks) > k.TaskCapacity {
			errs = append(errs, fmt.Errorf("tasks: %d declared, task_capacity is %d", len(cfg.Tasks), k.TaskCapacity))
		}
		if len(cfg.Timers) > k.TimerCapacity {
			errs = append(errs, fmt.Errorf("timers: %d declared, timer_capacity is %d", len(cfg.Timers), k.TimerCapacity))
		}
	}

	tasks := map[string]struct{}{}
	for i, t := range cfg.Tasks {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("tasks[%d].name: required", i))
			continue
		}
		if _, dup := tasks[name]; dup {
			errs = append(errs, fmt.Errorf("tasks[%d].name: duplicate %q", i, name))
		}
		tasks[name] = struct{}{}
		if strings.TrimSpace(t.State) != "" {
			if _, err := task.ParseState(t.State); err != nil {
				errs = append(errs, fmt.Errorf("tasks[%d].state: %w", i, err))
			}
		}
	}

	timers := map[string]struct{}{}
	for i, t := range cfg.Timers {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("timers[%d].name: required", i))
			continue
		}
		if _, dup := timers[name]; dup {
			errs = append(errs, fmt.Errorf("timers[%d].name: duplicate %q", i, name))
		}
		timers[name] = struct{}{}
		if t.AutoRestart && t.Threshold == 0 {
			errs = append(errs, fmt.Errorf("timers[%d].threshold: must be >= 1 with auto_restart", i))
		}
	}

	for i, r := range cfg.Rules {
		if _, ok := timers[strings.TrimSpace(r.Timer)]; !ok {
			errs = append(errs, fmt.Errorf("rules[%d].timer: unknown timer %q", i, r.Timer))
		}
		if _, ok := tasks[strings.TrimSpace(r.Task)]; !ok {
			errs = append(errs, fmt.Errorf("rules[%d].task: unknown task %q", i, r.Task))
		}
		switch strings.ToLower(strings.TrimSpace(r.Action)) {
		case ActionSuspend, ActionResume, ActionToggle, ActionWait, ActionRemove:
		default:
			errs = append(errs, fmt.Errorf("rules[%d].action: unknown action %q", i, r.Action))
		}
	}

	if _, err := ReportParser.Parse(cfg.ReportSchedule()); err != nil {
		errs = append(errs, fmt.Errorf("report.schedule: %w", err))
	}

	if cfg.Storage != nil {
		switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
		case "", "none", "file", "sqlite", "sqlite3":
		default:
			errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q", cfg.Storage.Driver))
		}
		if _, err := ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
