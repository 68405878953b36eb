// Package supervisor runs the host's long-lived loops under one context.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"lwos/pkg/logx"
)

// Supervisor starts named goroutines, recovers their panics and waits for
// them on Stop. The first error returned (or panic) is kept in Err.
type Supervisor struct {
	ctx    context.Context
	cancel context.CancelFunc

	log         logx.Logger
	cancelOnErr bool

	wg       sync.WaitGroup
	active   atomic.Int64
	firstErr atomic.Pointer[error]

	mu    sync.Mutex
	loops map[string]*LoopStats
}

type Option func(*Supervisor)

func WithLogger(log logx.Logger) Option {
	return func(s *Supervisor) { s.log = log }
}

// WithCancelOnError cancels the shared context on the first failure.
func WithCancelOnError(enabled bool) Option {
	return func(s *Supervisor) { s.cancelOnErr = enabled }
}

// LoopStats aggregates runs of every goroutine started under one name.
type LoopStats struct {
	Name      string    `json:"name"`
	Running   int       `json:"running"`
	Starts    uint64    `json:"starts"`
	Restarts  uint64    `json:"restarts"`
	Panics    uint64    `json:"panics"`
	LastStart time.Time `json:"last_start"`
	LastErr   string    `json:"last_err,omitempty"`
}

func New(parent context.Context, opts ...Option) *Supervisor {
	ctx, cancel := context.WithCancel(parent)
	s := &Supervisor{ctx: ctx, cancel: cancel, loops: map[string]*LoopStats{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Supervisor) Context() context.Context { return s.ctx }

func (s *Supervisor) Active() int64 { return s.active.Load() }

func (s *Supervisor) Err() error {
	if p := s.firstErr.Load(); p != nil {
		return *p
	}
	return nil
}

// Snapshot returns per-name stats sorted by name.
func (s *Supervisor) Snapshot() []LoopStats {
	s.mu.Lock()
	out := make([]LoopStats, 0, len(s.loops))
	for _, st := range s.loops {
		out = append(out, *st)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Supervisor) stats(name string) *LoopStats {
	st := s.loops[name]
	if st == nil {
		st = &LoopStats{Name: name}
		s.loops[name] = st
	}
	return st
}

func (s *Supervisor) noteStart(name string, restart bool) {
	s.mu.Lock()
	st := s.stats(name)
	st.Running++
	st.Starts++
	if restart {
		st.Restarts++
	}
	st.LastStart = time.Now()
	s.mu.Unlock()
}

func (s *Supervisor) noteStop(name string, err error, panicked bool) {
	s.mu.Lock()
	st := s.stats(name)
	st.Running--
	if panicked {
		st.Panics++
	}
	if err != nil {
		st.LastErr = err.Error()
	}
	s.mu.Unlock()
}

// run calls fn once, converting a panic into an error.
func (s *Supervisor) run(name string, fn func(ctx context.Context) error) (err error, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			err = fmt.Errorf("panic: %v", r)
			if !s.log.IsZero() {
				s.log.Error("goroutine panicked", logx.String("name", name), logx.Any("panic", r), logx.Stack(string(debug.Stack())))
			}
		}
	}()
	return fn(s.ctx), false
}

func (s *Supervisor) fail(err error) {
	if err == nil {
		return
	}
	s.firstErr.CompareAndSwap(nil, &err)
	if s.cancelOnErr {
		s.cancel()
	}
}

func clean(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

// Go runs fn once. A non-nil error other than context.Canceled is recorded.
func (s *Supervisor) Go(name string, fn func(ctx context.Context) error) {
	if fn == nil {
		return
	}
	s.wg.Add(1)
	s.active.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.active.Add(-1)

		s.noteStart(name, false)
		err, panicked := s.run(name, fn)
		if clean(err) {
			err = nil
		} else {
			err = fmt.Errorf("%s: %w", name, err)
		}
		s.noteStop(name, err, panicked)
		s.fail(err)
	}()
}

// GoRestart runs fn and restarts it after a failure, backing off
// exponentially between min and max, until the context is canceled or fn
// returns cleanly.
func (s *Supervisor) GoRestart(name string, fn func(ctx context.Context) error, min, max time.Duration) {
	if fn == nil {
		return
	}
	if min <= 0 {
		min = 250 * time.Millisecond
	}
	if max < min {
		max = min
	}
	s.wg.Add(1)
	s.active.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.active.Add(-1)

		backoff := min
		for restart := false; ; restart = true {
			s.noteStart(name, restart)
			err, panicked := s.run(name, fn)
			if clean(err) {
				s.noteStop(name, nil, panicked)
				return
			}
			err = fmt.Errorf("%s: %w", name, err)
			s.noteStop(name, err, panicked)
			if s.ctx.Err() != nil {
				return
			}
			if !s.log.IsZero() {
				s.log.Warn("goroutine restarting", logx.String("name", name), logx.Duration("backoff", backoff), logx.Err(err))
			}
			select {
			case <-s.ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = backoff * 2
			if backoff > max {
				backoff = max
			}
		}
	}()
}

// Stop cancels the shared context and waits for every goroutine, or for ctx.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return s.Err()
	}
}
