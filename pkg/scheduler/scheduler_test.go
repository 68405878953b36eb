package scheduler

import (
	"errors"
	"testing"

	"lwos/pkg/task"
)

type nopExecutor struct{}

func (nopExecutor) Execute(task.TaskID) {}

// recorder appends a label to a shared trace every time it runs.
type recorder struct {
	label string
	trace *[]string
}

func (r recorder) Execute(task.TaskID) { *r.trace = append(*r.trace, r.label) }

func TestNewRejectsZeroCapacity(t *testing.T) {
	t.Parallel()
	for _, c := range []int{0, -1} {
		if _, err := New(c); !errors.Is(err, ErrInvalidCapacity) {
			t.Fatalf("New(%d) error = %v, want %v", c, err, ErrInvalidCapacity)
		}
	}
}

func TestAddFillsCapacityInOrder(t *testing.T) {
	t.Parallel()
	for _, capacity := range []int{1, 3, 16} {
		s := MustNew(capacity)
		if s.Capacity() != capacity {
			t.Fatalf("Capacity() = %d, want %d", s.Capacity(), capacity)
		}
		for i := 0; i < capacity; i++ {
			id, err := s.Add(nopExecutor{}, task.Running)
			if err != nil {
				t.Fatalf("Add #%d error: %v", i, err)
			}
			if id != task.TaskID(i) {
				t.Fatalf("Add #%d id = %d, want %d", i, id, i)
			}
		}

		id, err := s.Add(nopExecutor{}, task.Suspended)
		if !errors.Is(err, ErrLimitExceeded) {
			t.Fatalf("Add over capacity error = %v, want %v", err, ErrLimitExceeded)
		}
		if id != task.InvalidID {
			t.Fatalf("Add over capacity id = %d, want InvalidID", id)
		}
		for i := 0; i < capacity; i++ {
			tk, err := s.Get(task.TaskID(i))
			if err != nil {
				t.Fatalf("Get(%d) error: %v", i, err)
			}
			if tk.State() != task.Running || tk.ID() != task.TaskID(i) {
				t.Fatalf("slot %d changed after failed add: id=%d state=%v", i, tk.ID(), tk.State())
			}
		}
		if s.Len() != capacity {
			t.Fatalf("Len() = %d, want %d", s.Len(), capacity)
		}
	}
}

func TestAddStoresInitialState(t *testing.T) {
	t.Parallel()
	s := MustNew(1)
	id, err := s.Add(nopExecutor{}, task.Suspended)
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	tk, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if tk.State() != task.Suspended {
		t.Fatalf("state = %v, want %v", tk.State(), task.Suspended)
	}
}

func TestAddNilExecutor(t *testing.T) {
	t.Parallel()
	s := MustNew(2)
	if _, err := s.Add(nil, task.Running); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("Add(nil) error = %v, want %v", err, ErrInvalidParameter)
	}
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
}

func TestProcessRoundRobinOrder(t *testing.T) {
	t.Parallel()
	var trace []string
	s := MustNew(4)
	for _, l := range []string{"A", "B", "C"} {
		if _, err := s.Add(recorder{label: l, trace: &trace}, task.Running); err != nil {
			t.Fatalf("Add(%s) error: %v", l, err)
		}
	}

	s.Process()
	want := []string{"A", "B", "C"}
	if !equal(trace, want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
}

func TestProcessPassesSlotID(t *testing.T) {
	t.Parallel()
	s := MustNew(3)
	var got []task.TaskID
	exec := task.ExecutorFunc(func(id task.TaskID) { got = append(got, id) })
	for i := 0; i < 3; i++ {
		if _, err := s.Add(exec, task.Running); err != nil {
			t.Fatalf("Add error: %v", err)
		}
	}
	if err := s.Remove(1); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	s.Process()
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("ids = %v, want [0 2]", got)
	}
}

func TestSuspendedTaskSkipped(t *testing.T) {
	t.Parallel()
	var trace []string
	s := MustNew(3)
	ids := make([]task.TaskID, 0, 3)
	for _, l := range []string{"Hello", "scheduler", "world!"} {
		id, err := s.Add(recorder{label: l, trace: &trace}, task.Running)
		if err != nil {
			t.Fatalf("Add(%s) error: %v", l, err)
		}
		ids = append(ids, id)
	}

	s.Process()
	if want := []string{"Hello", "scheduler", "world!"}; !equal(trace, want) {
		t.Fatalf("first cycle = %v, want %v", trace, want)
	}

	tk, err := s.Get(ids[1])
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	tk.Suspend()
	tk.Suspend()

	trace = trace[:0]
	s.Process()
	if want := []string{"Hello", "world!"}; !equal(trace, want) {
		t.Fatalf("second cycle = %v, want %v", trace, want)
	}

	tk.Resume()
	trace = trace[:0]
	s.Process()
	if want := []string{"Hello", "scheduler", "world!"}; !equal(trace, want) {
		t.Fatalf("third cycle = %v, want %v", trace, want)
	}
}

func TestRemoveReusesSlot(t *testing.T) {
	t.Parallel()
	s := MustNew(3)
	for i := 0; i < 3; i++ {
		if _, err := s.Add(nopExecutor{}, task.Running); err != nil {
			t.Fatalf("Add error: %v", err)
		}
	}
	if err := s.Remove(1); err != nil {
		t.Fatalf("Remove(1) error: %v", err)
	}
	if _, err := s.Get(1); !errors.Is(err, ErrNoSuchTaskID) {
		t.Fatalf("Get(1) after remove error = %v, want %v", err, ErrNoSuchTaskID)
	}
	id, err := s.Add(nopExecutor{}, task.Waiting)
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if id != 1 {
		t.Fatalf("re-added id = %d, want 1", id)
	}
}

func TestRemoveAndGetErrors(t *testing.T) {
	t.Parallel()
	s := MustNew(1)
	if _, err := s.Add(nopExecutor{}, task.Running); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if err := s.Remove(0); err != nil {
		t.Fatalf("Remove(0) error: %v", err)
	}

	tests := []struct {
		name string
		id   task.TaskID
		want error
	}{
		{name: "empty slot", id: 0, want: ErrNoSuchTaskID},
		{name: "out of range", id: 1, want: ErrInvalidParameter},
		{name: "invalid id", id: task.InvalidID, want: ErrInvalidParameter},
	}
	for _, tt := range tests {
		if err := s.Remove(tt.id); !errors.Is(err, tt.want) {
			t.Fatalf("%s: Remove error = %v, want %v", tt.name, err, tt.want)
		}
		if _, err := s.Get(tt.id); !errors.Is(err, tt.want) {
			t.Fatalf("%s: Get error = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestSnapshot(t *testing.T) {
	t.Parallel()
	s := MustNew(3)
	_, _ = s.Add(nopExecutor{}, task.Running)
	_, _ = s.Add(nopExecutor{}, task.Suspended)
	_, _ = s.Add(nopExecutor{}, task.Waiting)
	_ = s.Remove(0)

	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("len(snapshot) = %d, want 2", len(snap))
	}
	if snap[0].ID != 1 || snap[0].State != task.Suspended {
		t.Fatalf("snapshot[0] = %+v", snap[0])
	}
	if snap[1].ID != 2 || snap[1].State != task.Waiting {
		t.Fatalf("snapshot[1] = %+v", snap[1])
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
