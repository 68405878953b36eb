package scheduler

import (
	"lwos/pkg/task"
)

// Scheduler owns a fixed number of task slots.
type Scheduler struct {
	slots []slot
}

type slot struct {
	used bool
	t    task.Task
}

// TaskInfo is a point-in-time view of an occupied slot.
type TaskInfo struct {
	ID    task.TaskID `json:"id"`
	State task.State  `json:"state"`
}

// New creates a scheduler with room for capacity tasks.
func New(capacity int) (*Scheduler, error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	return &Scheduler{slots: make([]slot, capacity)}, nil
}

// MustNew is New for capacities known to be valid at build time.
func MustNew(capacity int) *Scheduler {
	s, err := New(capacity)
	if err != nil {
		panic(err)
	}
	return s
}

// Capacity returns the number of slots.
func (s *Scheduler) Capacity() int { return len(s.slots) }

// Len returns the number of occupied slots.
func (s *Scheduler) Len() int {
	n := 0
	for i := range s.slots {
		if s.slots[i].used {
			n++
		}
	}
	return n
}

// Add registers exec in the lowest free slot with the given initial state.
// It returns ErrLimitExceeded, without touching existing tasks, when every
// slot is taken.
func (s *Scheduler) Add(exec task.Executor, state task.State) (task.TaskID, error) {
	if exec == nil {
		return task.InvalidID, ErrInvalidParameter
	}
	for i := range s.slots {
		if s.slots[i].used {
			continue
		}
		id := task.TaskID(i)
		s.slots[i] = slot{used: true, t: task.New(id, exec, state)}
		return id, nil
	}
	return task.InvalidID, ErrLimitExceeded
}

// Remove frees the slot held by id. Later cycles skip it.
func (s *Scheduler) Remove(id task.TaskID) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	s.slots[id] = slot{}
	return nil
}

// Get returns the task in slot id so the caller can change its state.
//
// The pointer is only valid until the task is removed.
func (s *Scheduler) Get(id task.TaskID) (*task.Task, error) {
	if uint64(id) >= uint64(len(s.slots)) {
		return nil, ErrInvalidParameter
	}
	sl := &s.slots[id]
	if !sl.used {
		return nil, ErrNoSuchTaskID
	}
	return &sl.t, nil
}

// Process runs one cycle: every occupied slot, in index order, exactly once.
func (s *Scheduler) Process() {
	for i := range s.slots {
		sl := &s.slots[i]
		if !sl.used {
			continue
		}
		sl.t.Process(task.TaskID(i))
	}
}

// Snapshot lists occupied slots in slot order.
func (s *Scheduler) Snapshot() []TaskInfo {
	out := make([]TaskInfo, 0, len(s.slots))
	for i := range s.slots {
		sl := &s.slots[i]
		if !sl.used {
			continue
		}
		out = append(out, TaskInfo{ID: task.TaskID(i), State: sl.t.State()})
	}
	return out
}
