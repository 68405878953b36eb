package task

import "testing"

type countingExecutor struct {
	calls int
	last  TaskID
}

func (c *countingExecutor) Execute(id TaskID) {
	c.calls++
	c.last = id
}

func TestProcessDispatchesOnState(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		state State
		calls int
	}{
		{name: "running", state: Running, calls: 1},
		{name: "suspended", state: Suspended, calls: 0},
		{name: "waiting", state: Waiting, calls: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			exec := &countingExecutor{}
			tk := New(4, exec, tt.state)
			tk.Process(4)
			if exec.calls != tt.calls {
				t.Fatalf("calls = %d, want %d", exec.calls, tt.calls)
			}
			if tt.calls > 0 && exec.last != 4 {
				t.Fatalf("executor id = %d, want 4", exec.last)
			}
		})
	}
}

func TestSuspendResumeIdempotent(t *testing.T) {
	t.Parallel()
	exec := &countingExecutor{}
	tk := New(0, exec, Running)

	tk.Suspend()
	tk.Suspend()
	if tk.State() != Suspended {
		t.Fatalf("state = %v, want %v", tk.State(), Suspended)
	}
	tk.Process(0)
	if exec.calls != 0 {
		t.Fatalf("suspended task executed %d times", exec.calls)
	}

	tk.Resume()
	tk.Resume()
	if tk.State() != Running {
		t.Fatalf("state = %v, want %v", tk.State(), Running)
	}
	tk.Process(0)
	if exec.calls != 1 {
		t.Fatalf("calls = %d, want 1", exec.calls)
	}
}

func TestAllTransitionsAllowed(t *testing.T) {
	t.Parallel()
	states := []State{Running, Suspended, Waiting}
	for _, from := range states {
		for _, to := range states {
			tk := New(1, ExecutorFunc(func(TaskID) {}), from)
			tk.SetState(to)
			if tk.State() != to {
				t.Fatalf("%v -> %v: state = %v", from, to, tk.State())
			}
		}
	}

	tk := New(1, ExecutorFunc(func(TaskID) {}), Running)
	tk.Wait()
	if tk.State() != Waiting {
		t.Fatalf("state = %v, want %v", tk.State(), Waiting)
	}
	if tk.ID() != 1 {
		t.Fatalf("ID = %d, want 1", tk.ID())
	}
}

func TestParseState(t *testing.T) {
	t.Parallel()
	for _, s := range []State{Running, Suspended, Waiting} {
		got, err := ParseState(s.String())
		if err != nil {
			t.Fatalf("ParseState(%q) error: %v", s.String(), err)
		}
		if got != s {
			t.Fatalf("ParseState(%q) = %v, want %v", s.String(), got, s)
		}
	}
	if _, err := ParseState(" Running "); err != nil {
		t.Fatalf("expected case-insensitive parse, got %v", err)
	}
	if _, err := ParseState("blocked"); err == nil {
		t.Fatal("expected error for unknown state")
	}
}
