package softtimer

import "sync/atomic"

// Timer is a single countdown counter.
//
// The zero value is an un-registered timer: Start and friends return
// ErrNotRegistered. Use NewTimer or Registry.Create to get a usable one.
type Timer struct {
	state       atomic.Uint32
	counter     atomic.Uint64
	threshold   atomic.Uint64
	autoRestart atomic.Bool
	registered  atomic.Bool
}

var _ Signal = (*Timer)(nil)

// NewTimer returns a standalone registered timer in the Disabled state.
func NewTimer() *Timer {
	t := &Timer{}
	t.registered.Store(true)
	return t
}

// Start loads the counter with threshold and runs the timer. Calling it on a
// running timer restarts it with the new parameters.
func (t *Timer) Start(threshold uint64, autoRestart bool) error {
	if !t.registered.Load() {
		return ErrNotRegistered
	}
	t.threshold.Store(threshold)
	t.counter.Store(threshold)
	t.autoRestart.Store(autoRestart)
	t.state.Store(uint32(Running))
	return nil
}

// Restart reloads the counter with the current threshold and runs the timer.
func (t *Timer) Restart() error {
	if !t.registered.Load() {
		return ErrNotRegistered
	}
	t.counter.Store(t.threshold.Load())
	t.state.Store(uint32(Running))
	return nil
}

// Stop freezes the counter. A stopped timer does not signal, even at zero.
func (t *Timer) Stop() error {
	if !t.registered.Load() {
		return ErrNotRegistered
	}
	t.state.Store(uint32(Stopped))
	return nil
}

// Disable takes the timer out of both counting and signaling.
func (t *Timer) Disable() error {
	if !t.registered.Load() {
		return ErrNotRegistered
	}
	t.state.Store(uint32(Disabled))
	return nil
}

// Update is one tick: a running timer above zero is decremented by one.
// Anything else is left alone.
func (t *Timer) Update() {
	if State(t.state.Load()) != Running {
		return
	}
	for {
		c := t.counter.Load()
		if c == 0 {
			return
		}
		if t.counter.CompareAndSwap(c, c-1) {
			return
		}
	}
}

// SignalState reports Signaled when the timer is running and its counter is
// zero. An auto-restart timer is reloaded with its threshold by this call.
func (t *Timer) SignalState() SignalState {
	if State(t.state.Load()) != Running || t.counter.Load() != 0 {
		return NotSignaled
	}
	if t.autoRestart.Load() {
		// Another reader may have consumed this expiry first.
		if !t.counter.CompareAndSwap(0, t.threshold.Load()) {
			return NotSignaled
		}
	}
	return Signaled
}

// Data returns a snapshot without side effects.
func (t *Timer) Data() Data {
	return Data{
		State:       State(t.state.Load()),
		Counter:     t.counter.Load(),
		Threshold:   t.threshold.Load(),
		AutoRestart: t.autoRestart.Load(),
	}
}

func (t *Timer) unregister() {
	t.registered.Store(false)
	t.state.Store(uint32(Disabled))
}
