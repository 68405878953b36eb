package softtimer

import "sync"

// DefaultMaxTimers is the capacity used by NewDefaultRegistry.
const DefaultMaxTimers = 16

// Registry owns a fixed number of timer slots.
//
// Slot changes (Create, Delete) take a write lock; everything else, including
// the tick-driven Update, only reads the slot table.
type Registry struct {
	mu     sync.RWMutex
	timers []*Timer
}

// NewRegistry creates a registry with maxTimers slots.
func NewRegistry(maxTimers int) (*Registry, error) {
	if maxTimers < 1 {
		return nil, ErrInvalidCapacity
	}
	return &Registry{timers: make([]*Timer, maxTimers)}, nil
}

// NewDefaultRegistry creates a registry with DefaultMaxTimers slots.
func NewDefaultRegistry() *Registry {
	return &Registry{timers: make([]*Timer, DefaultMaxTimers)}
}

// Capacity returns the number of slots.
func (r *Registry) Capacity() int { return len(r.timers) }

// Len returns the number of occupied slots.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, t := range r.timers {
		if t != nil {
			n++
		}
	}
	return n
}

// Create registers a new Disabled timer in the lowest free slot.
func (r *Registry) Create() (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.timers {
		if t != nil {
			continue
		}
		r.timers[i] = NewTimer()
		return Handle(i), nil
	}
	return 0, ErrLimitExceeded
}

// Delete frees the slot and un-registers its timer.
func (r *Registry) Delete(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.lookupLocked(h)
	if err != nil {
		return err
	}
	t.unregister()
	r.timers[h] = nil
	return nil
}

// Timer returns the live timer behind h.
func (r *Registry) Timer(h Handle) (*Timer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookupLocked(h)
}

// Start starts the timer behind h. See Timer.Start.
func (r *Registry) Start(h Handle, threshold uint64, autoRestart bool) error {
	t, err := r.Timer(h)
	if err != nil {
		return err
	}
	return t.Start(threshold, autoRestart)
}

// Restart restarts the timer behind h. See Timer.Restart.
func (r *Registry) Restart(h Handle) error {
	t, err := r.Timer(h)
	if err != nil {
		return err
	}
	return t.Restart()
}

// Stop stops the timer behind h.
func (r *Registry) Stop(h Handle) error {
	t, err := r.Timer(h)
	if err != nil {
		return err
	}
	return t.Stop()
}

// Disable disables the timer behind h.
func (r *Registry) Disable(h Handle) error {
	t, err := r.Timer(h)
	if err != nil {
		return err
	}
	return t.Disable()
}

// Get returns a snapshot of the timer behind h.
func (r *Registry) Get(h Handle) (Data, error) {
	t, err := r.Timer(h)
	if err != nil {
		return Data{}, err
	}
	return t.Data(), nil
}

// SignalState reads (and, for auto-restart timers, consumes) the expiry of
// the timer behind h.
func (r *Registry) SignalState(h Handle) (SignalState, error) {
	t, err := r.Timer(h)
	if err != nil {
		return NotSignaled, err
	}
	return t.SignalState(), nil
}

// Update ticks every registered timer once.
func (r *Registry) Update() {
	r.mu.RLock()
	for _, t := range r.timers {
		if t != nil {
			t.Update()
		}
	}
	r.mu.RUnlock()
}

// Snapshot lists occupied slots in slot order.
func (r *Registry) Snapshot() []TimerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]TimerInfo, 0, len(r.timers))
	for i, t := range r.timers {
		if t == nil {
			continue
		}
		out = append(out, TimerInfo{Handle: Handle(i), Data: t.Data()})
	}
	return out
}

func (r *Registry) lookupLocked(h Handle) (*Timer, error) {
	if uint64(h) >= uint64(len(r.timers)) {
		return nil, ErrInvalidParameter
	}
	t := r.timers[h]
	if t == nil {
		return nil, ErrNoSuchTimer
	}
	return t, nil
}
