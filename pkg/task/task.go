package task

import (
	"fmt"
	"math"
	"strings"
)

// TaskID is the slot index a task occupies inside its scheduler.
//
// IDs are reused after removal. Do not retain an ID across a remove/add of a
// different task without fetching it again.
type TaskID uint

// InvalidID represents "no task".
const InvalidID TaskID = math.MaxUint

// State is the execution state of a task.
type State uint8

const (
	// Suspended tasks are skipped by the scheduler.
	Suspended State = iota
	// Running tasks are executed once per scheduler cycle.
	Running
	// Waiting is reserved for future signal processing. It behaves like
	// Suspended: the executor is not called.
	Waiting
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Suspended:
		return "suspended"
	case Waiting:
		return "waiting"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	v, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseState parses the lowercase names produced by State.String.
func ParseState(s string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "running":
		return Running, nil
	case "suspended":
		return Suspended, nil
	case "waiting":
		return Waiting, nil
	default:
		return Suspended, fmt.Errorf("unknown task state %q", s)
	}
}

// Executor is the work performed by a task.
//
// Execute is called once per scheduler cycle while the task is Running. It may
// keep and mutate its own state across calls.
type Executor interface {
	Execute(id TaskID)
}

// ExecutorFunc adapts a plain function to Executor.
type ExecutorFunc func(id TaskID)

func (f ExecutorFunc) Execute(id TaskID) { f(id) }

// Task is a single schedulable unit.
//
// Tasks are created by the scheduler; the zero value is not usable.
type Task struct {
	state State
	id    TaskID
	exec  Executor
}

// New builds a task for slot id. The initial state is required.
func New(id TaskID, exec Executor, state State) Task {
	return Task{state: state, id: id, exec: exec}
}

func (t *Task) ID() TaskID   { return t.id }
func (t *Task) State() State { return t.state }

// Suspend stops the task from being executed. Idempotent.
func (t *Task) Suspend() { t.state = Suspended }

// Resume makes the task execute on the next cycle. Idempotent.
func (t *Task) Resume() { t.state = Running }

// Wait parks the task in the Waiting state.
func (t *Task) Wait() { t.state = Waiting }

// SetState moves the task to s. Every transition is allowed.
func (t *Task) SetState(s State) { t.state = s }

// Process runs one step of the task.
func (t *Task) Process(id TaskID) {
	switch t.state {
	case Running:
		t.exec.Execute(id)
	case Waiting:
		// TODO: unblock on signal delivery once tasks can wait on a timer.
	case Suspended:
	}
}
