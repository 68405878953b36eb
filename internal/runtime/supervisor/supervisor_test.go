package supervisor

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestGoRecordsFirstError(t *testing.T) {
	t.Parallel()
	s := New(context.Background(), WithCancelOnError(true))
	boom := errors.New("boom")
	s.Go("failing", func(ctx context.Context) error { return boom })
	s.Go("waiter", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	select {
	case <-s.Context().Done():
	case <-ctx.Done():
		t.Fatal("context not canceled after error")
	}
	err := s.Stop(ctx)
	if !errors.Is(err, boom) {
		t.Fatalf("Stop() = %v, want %v", err, boom)
	}
	if s.Active() != 0 {
		t.Fatalf("Active() = %d, want 0", s.Active())
	}
}

func TestGoRecoversPanic(t *testing.T) {
	t.Parallel()
	s := New(context.Background())
	s.Go("panicky", func(ctx context.Context) error { panic("oops") })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.Stop(ctx)
	if err == nil || !strings.Contains(err.Error(), "panic: oops") {
		t.Fatalf("Stop() = %v, want panic error", err)
	}
	snap := s.Snapshot()
	if len(snap) != 1 || snap[0].Panics != 1 || snap[0].Running != 0 {
		t.Fatalf("Snapshot() = %+v", snap)
	}
}

func TestGoRestartRetriesUntilClean(t *testing.T) {
	t.Parallel()
	s := New(context.Background())
	var runs atomic.Int32
	done := make(chan struct{})
	s.GoRestart("flaky", func(ctx context.Context) error {
		if runs.Add(1) < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}, time.Millisecond, 2*time.Millisecond)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("loop never succeeded")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop() = %v, want nil (restarts do not fail the supervisor)", err)
	}
	snap := s.Snapshot()
	if len(snap) != 1 || snap[0].Starts != 3 || snap[0].Restarts != 2 {
		t.Fatalf("Snapshot() = %+v, want 3 starts and 2 restarts", snap)
	}
}

func TestCanceledIsClean(t *testing.T) {
	t.Parallel()
	s := New(context.Background())
	s.Go("loop", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop() = %v, want nil", err)
	}
}

func TestGoRestartKeepsErrorAtShutdown(t *testing.T) {
	t.Parallel()
	s := New(context.Background())
	s.GoRestart("drain", func(ctx context.Context) error {
		<-ctx.Done()
		return errors.New("flush failed")
	}, time.Millisecond, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop() = %v, want nil", err)
	}
	snap := s.Snapshot()
	if len(snap) != 1 || snap[0].LastErr != "drain: flush failed" || snap[0].Restarts != 0 || snap[0].Running != 0 {
		t.Fatalf("Snapshot() = %+v, want LastErr %q and no restart", snap, "drain: flush failed")
	}
}
