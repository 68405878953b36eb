package softtimer

import (
	"fmt"
	"strings"
)

// State is the lifecycle state of a timer.
type State uint32

const (
	// Disabled timers ignore updates and never signal. Freshly created and
	// un-registered timers are Disabled.
	Disabled State = iota
	// Stopped timers keep their counter but ignore updates and never signal.
	Stopped
	// Running timers count down on Update and signal at zero.
	Running
)

func (s State) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("state(%d)", uint32(s))
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "disabled":
		*s = Disabled
	case "stopped":
		*s = Stopped
	case "running":
		*s = Running
	default:
		return fmt.Errorf("unknown timer state %q", string(b))
	}
	return nil
}

// SignalState reports whether a timer has expired.
type SignalState uint8

const (
	NotSignaled SignalState = iota
	Signaled
)

func (s SignalState) String() string {
	if s == Signaled {
		return "signaled"
	}
	return "not_signaled"
}

func (s SignalState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Signal is implemented by anything that exposes an expiry condition.
type Signal interface {
	SignalState() SignalState
}

// Handle is the slot index of a timer inside a Registry.
type Handle uint

// Data is a by-value snapshot of a timer.
type Data struct {
	State       State  `json:"state"`
	Counter     uint64 `json:"counter"`
	Threshold   uint64 `json:"threshold"`
	AutoRestart bool   `json:"auto_restart"`
}

// TimerInfo pairs a handle with its snapshot.
type TimerInfo struct {
	Handle Handle `json:"handle"`
	Data
}
