package host

import (
	"fmt"
	"strings"
	"sync/atomic"

	"lwos/internal/config"
	"lwos/pkg/logx"
	"lwos/pkg/scheduler"
	"lwos/pkg/softtimer"
	"lwos/pkg/task"
)

// taskMeta is the host-side bookkeeping for one scheduler slot.
type taskMeta struct {
	name    string
	message string
	runs    atomic.Uint64
}

// printExecutor is the built-in task body: it logs its message.
type printExecutor struct {
	meta *taskMeta
	log  logx.Logger
}

func (p printExecutor) Execute(id task.TaskID) {
	n := p.meta.runs.Add(1)
	p.log.Info(p.meta.message,
		logx.String("task", p.meta.name),
		logx.Uint64("id", uint64(id)),
		logx.Uint64("run", n),
	)
}

type rule struct {
	timer  string
	action string
	task   string
}

// kernel is everything built from the tasks/timers/rules sections.
type kernel struct {
	sched   *scheduler.Scheduler
	tasks   map[task.TaskID]*taskMeta
	taskIDs map[string]task.TaskID

	timers     *softtimer.Registry
	timerNames map[softtimer.Handle]string
	timerIDs   map[string]softtimer.Handle

	rules []rule
}

func buildKernel(cfg *config.Config, k config.Kernel, log logx.Logger) (*kernel, error) {
	sched, err := scheduler.New(k.TaskCapacity)
	if err != nil {
		return nil, fmt.Errorf("kernel.task_capacity: %w", err)
	}
	reg, err := softtimer.NewRegistry(k.TimerCapacity)
	if err != nil {
		return nil, fmt.Errorf("kernel.timer_capacity: %w", err)
	}

	kn := &kernel{
		sched:      sched,
		tasks:      map[task.TaskID]*taskMeta{},
		taskIDs:    map[string]task.TaskID{},
		timers:     reg,
		timerNames: map[softtimer.Handle]string{},
		timerIDs:   map[string]softtimer.Handle{},
	}

	taskLog := log.With(logx.String("comp", "task"))
	for _, tc := range cfg.Tasks {
		state := task.Running
		if strings.TrimSpace(tc.State) != "" {
			if state, err = task.ParseState(tc.State); err != nil {
				return nil, fmt.Errorf("task %q: %w", tc.Name, err)
			}
		}
		meta := &taskMeta{name: tc.Name, message: tc.Message}
		id, err := sched.Add(printExecutor{meta: meta, log: taskLog}, state)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", tc.Name, err)
		}
		kn.tasks[id] = meta
		kn.taskIDs[tc.Name] = id
	}

	for _, tc := range cfg.Timers {
		h, err := reg.Create()
		if err != nil {
			return nil, fmt.Errorf("timer %q: %w", tc.Name, err)
		}
		if tc.Start {
			if err := reg.Start(h, tc.Threshold, tc.AutoRestart); err != nil {
				return nil, fmt.Errorf("timer %q: %w", tc.Name, err)
			}
		}
		kn.timerNames[h] = tc.Name
		kn.timerIDs[tc.Name] = h
	}

	kn.rules = compileRules(cfg.Rules)
	return kn, nil
}

func compileRules(in []config.RuleConfig) []rule {
	out := make([]rule, 0, len(in))
	for _, r := range in {
		out = append(out, rule{
			timer:  strings.TrimSpace(r.Timer),
			action: strings.ToLower(strings.TrimSpace(r.Action)),
			task:   strings.TrimSpace(r.Task),
		})
	}
	return out
}
