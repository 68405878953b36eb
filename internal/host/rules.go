package host

import (
	"lwos/internal/config"
	"lwos/internal/eventbus"
	"lwos/pkg/logx"
	"lwos/pkg/softtimer"
	"lwos/pkg/task"
)

type timerEvent struct {
	Timer  string           `json:"timer"`
	Handle softtimer.Handle `json:"handle"`
}

type taskEvent struct {
	Task   string      `json:"task"`
	ID     task.TaskID `json:"id"`
	State  task.State  `json:"state"`
	Action string      `json:"action"`
}

// evaluateRulesLocked reads each referenced timer once, then applies the
// rules of every timer that fired. Reading once matters: an auto-restart
// timer reloads on the read that reports the expiry.
//
// A one-shot timer stays signaled until restarted; it fires its rules only
// on the first cycle that sees it signaled.
func (h *Host) evaluateRulesLocked() {
	if len(h.kn.rules) == 0 {
		return
	}
	fired := map[string]bool{}
	for _, r := range h.kn.rules {
		if _, seen := fired[r.timer]; seen {
			continue
		}
		hd, ok := h.kn.timerIDs[r.timer]
		if !ok {
			fired[r.timer] = false
			continue
		}
		fired[r.timer] = h.signaledLocked(hd)
		if fired[r.timer] {
			h.publish(eventbus.TimerSignaled, timerEvent{Timer: r.timer, Handle: hd})
		}
	}

	for _, r := range h.kn.rules {
		if !fired[r.timer] {
			continue
		}
		id, ok := h.kn.taskIDs[r.task]
		if !ok {
			continue
		}
		if err := h.applyLocked(id, r.action); err != nil {
			h.log.Debug("rule not applied",
				logx.String("timer", r.timer),
				logx.String("task", r.task),
				logx.String("action", r.action),
				logx.Err(err),
			)
		}
	}
}

func (h *Host) signaledLocked(hd softtimer.Handle) bool {
	st, err := h.kn.timers.SignalState(hd)
	if err != nil {
		return false
	}
	data, err := h.kn.timers.Get(hd)
	if err != nil {
		return false
	}
	if data.AutoRestart {
		return st == softtimer.Signaled
	}
	was := h.prevSignaled[hd]
	h.prevSignaled[hd] = st == softtimer.Signaled
	return st == softtimer.Signaled && !was
}

// applyLocked performs action on task id and publishes the outcome.
func (h *Host) applyLocked(id task.TaskID, action string) error {
	name := h.taskName(id)
	if action == config.ActionRemove {
		if err := h.kn.sched.Remove(id); err != nil {
			return err
		}
		delete(h.kn.tasks, id)
		if h.kn.taskIDs[name] == id {
			delete(h.kn.taskIDs, name)
		}
		h.publish(eventbus.TaskRemoved, taskEvent{Task: name, ID: id, Action: action})
		return nil
	}

	t, err := h.kn.sched.Get(id)
	if err != nil {
		return err
	}
	switch action {
	case config.ActionSuspend:
		t.Suspend()
	case config.ActionResume:
		t.Resume()
	case config.ActionWait:
		t.Wait()
	case config.ActionToggle:
		if t.State() == task.Running {
			t.Suspend()
		} else {
			t.Resume()
		}
	default:
		return errUnknownAction
	}
	h.publish(eventbus.TaskState, taskEvent{Task: name, ID: id, State: t.State(), Action: action})
	return nil
}
