package host

import (
	"errors"
	"time"

	"lwos/internal/config"
	"lwos/internal/eventbus"
	"lwos/internal/runtime/supervisor"
	"lwos/pkg/softtimer"
	"lwos/pkg/task"
)

var errUnknownAction = errors.New("host: unknown action")

type TaskView struct {
	ID    task.TaskID `json:"id"`
	Name  string      `json:"name"`
	State task.State  `json:"state"`
	Runs  uint64      `json:"runs"`
}

type TimerView struct {
	Handle softtimer.Handle `json:"handle"`
	Name   string           `json:"name"`
	softtimer.Data
}

type Stats struct {
	RunID   string                 `json:"run_id"`
	Started time.Time              `json:"started"`
	Ticks   uint64                 `json:"ticks"`
	Cycles  uint64                 `json:"cycles"`
	Dropped uint64                 `json:"events_dropped"`
	Loops   []supervisor.LoopStats `json:"loops,omitempty"`
}

func (h *Host) Stats() Stats {
	s := Stats{
		RunID:   h.runID,
		Started: h.started,
		Ticks:   h.ticks.Load(),
		Cycles:  h.cycles.Load(),
		Dropped: h.bus.Dropped(),
	}
	if h.sup != nil {
		s.Loops = h.sup.Snapshot()
	}
	return s
}

// Tasks lists occupied task slots in slot order.
func (h *Host) Tasks() []TaskView {
	h.mu.Lock()
	defer h.mu.Unlock()
	infos := h.kn.sched.Snapshot()
	out := make([]TaskView, 0, len(infos))
	for _, ti := range infos {
		out = append(out, h.taskViewLocked(ti.ID, ti.State))
	}
	return out
}

func (h *Host) Task(id task.TaskID) (TaskView, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, err := h.kn.sched.Get(id)
	if err != nil {
		return TaskView{}, err
	}
	return h.taskViewLocked(id, t.State()), nil
}

func (h *Host) taskViewLocked(id task.TaskID, st task.State) TaskView {
	v := TaskView{ID: id, State: st, Name: h.taskName(id)}
	if m := h.kn.tasks[id]; m != nil {
		v.Runs = m.runs.Load()
	}
	return v
}

func (h *Host) SuspendTask(id task.TaskID) error { return h.apply(id, config.ActionSuspend) }
func (h *Host) ResumeTask(id task.TaskID) error  { return h.apply(id, config.ActionResume) }
func (h *Host) WaitTask(id task.TaskID) error    { return h.apply(id, config.ActionWait) }
func (h *Host) RemoveTask(id task.TaskID) error  { return h.apply(id, config.ActionRemove) }

func (h *Host) apply(id task.TaskID, action string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.applyLocked(id, action)
}

// TaskID resolves a configured task name.
func (h *Host) TaskID(name string) (task.TaskID, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id, ok := h.kn.taskIDs[name]
	return id, ok
}

// Timers lists occupied timer slots in slot order.
func (h *Host) Timers() []TimerView {
	infos := h.kn.timers.Snapshot()
	out := make([]TimerView, 0, len(infos))
	for _, ti := range infos {
		out = append(out, TimerView{Handle: ti.Handle, Name: h.kn.timerNames[ti.Handle], Data: ti.Data})
	}
	return out
}

func (h *Host) Timer(hd softtimer.Handle) (TimerView, error) {
	d, err := h.kn.timers.Get(hd)
	if err != nil {
		return TimerView{}, err
	}
	return TimerView{Handle: hd, Name: h.kn.timerNames[hd], Data: d}, nil
}

// TimerHandle resolves a configured timer name.
func (h *Host) TimerHandle(name string) (softtimer.Handle, bool) {
	hd, ok := h.kn.timerIDs[name]
	return hd, ok
}

func (h *Host) StartTimer(hd softtimer.Handle, threshold uint64, autoRestart bool) error {
	return h.timerOp(hd, func() error { return h.kn.timers.Start(hd, threshold, autoRestart) })
}

func (h *Host) RestartTimer(hd softtimer.Handle) error {
	return h.timerOp(hd, func() error { return h.kn.timers.Restart(hd) })
}

func (h *Host) StopTimer(hd softtimer.Handle) error {
	return h.timerOp(hd, func() error { return h.kn.timers.Stop(hd) })
}

func (h *Host) DisableTimer(hd softtimer.Handle) error {
	return h.timerOp(hd, func() error { return h.kn.timers.Disable(hd) })
}

// timerOp runs op and re-arms rule edge detection for the timer.
func (h *Host) timerOp(hd softtimer.Handle, op func() error) error {
	if err := op(); err != nil {
		return err
	}
	h.mu.Lock()
	delete(h.prevSignaled, hd)
	h.mu.Unlock()

	d, err := h.kn.timers.Get(hd)
	if err == nil {
		h.publish(eventbus.TimerState, TimerView{Handle: hd, Name: h.kn.timerNames[hd], Data: d})
	}
	return nil
}

// Signal reads the timer's signal state. Like any read, it consumes the
// expiry of an auto-restart timer, so rules on that timer will not see it.
func (h *Host) Signal(hd softtimer.Handle) (softtimer.SignalState, error) {
	return h.kn.timers.SignalState(hd)
}
