package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lwos/pkg/logx"
)

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"", "none", " NONE "} {
		st, err := Open(Config{Driver: driver}, logx.Logger{})
		if err != nil || st != nil {
			t.Fatalf("Open(%q) = %v, %v; want nil, nil", driver, st, err)
		}
	}
	if _, err := Open(Config{Driver: "bolt", Path: "x"}, logx.Logger{}); err == nil {
		t.Fatal("Open(bolt) succeeded, want error")
	}
	if _, err := Open(Config{Driver: "file"}, logx.Logger{}); err == nil {
		t.Fatal("Open(file) without path succeeded, want error")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"file", "sqlite"} {
		driver := driver
		t.Run(driver, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "state", "lwosd.db")
			cfg := Config{Driver: driver, Path: path, BusyTimeout: time.Second}

			st, err := Open(cfg, logx.Nop())
			if err != nil {
				t.Fatalf("Open error: %v", err)
			}
			if _, ok, err := st.LastReport(ctx); err != nil || ok {
				t.Fatalf("LastReport on empty store = ok %v, err %v; want false, nil", ok, err)
			}

			for i, id := range []string{"r1", "r2"} {
				r := Report{
					ID:     id,
					At:     time.Now(),
					Ticks:  uint64(10 * (i + 1)),
					Tasks:  []TaskEntry{{ID: 0, Name: "hello", State: "running", Runs: 3}},
					Timers: []TimerEntry{{Handle: 0, Name: "blink", State: "running", Counter: 2, Threshold: 5}},
				}
				if err := st.AppendReport(ctx, r); err != nil {
					t.Fatalf("AppendReport(%s) error: %v", id, err)
				}
			}
			data, _ := json.Marshal(map[string]int{"handle": 0})
			if err := st.AppendEvent(ctx, EventRecord{Type: "timer.signaled", Data: data}); err != nil {
				t.Fatalf("AppendEvent error: %v", err)
			}
			if err := st.Close(); err != nil {
				t.Fatalf("Close error: %v", err)
			}

			// reopen: the last report survives
			st, err = Open(cfg, logx.Nop())
			if err != nil {
				t.Fatalf("reopen error: %v", err)
			}
			defer st.Close()
			got, ok, err := st.LastReport(ctx)
			if err != nil || !ok {
				t.Fatalf("LastReport = ok %v, err %v; want true, nil", ok, err)
			}
			if got.ID != "r2" || got.Ticks != 20 {
				t.Fatalf("LastReport = %s/%d, want r2/20", got.ID, got.Ticks)
			}
			if len(got.Timers) != 1 || got.Timers[0].Name != "blink" || got.Timers[0].Threshold != 5 {
				t.Fatalf("LastReport.Timers = %+v", got.Timers)
			}
		})
	}
}

func TestFileStoreClosed(t *testing.T) {
	t.Parallel()
	st, err := Open(Config{Driver: "file", Path: filepath.Join(t.TempDir(), "x.jsonl")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	_ = st.Close()
	if err := st.AppendReport(context.Background(), Report{}); err != ErrClosed {
		t.Fatalf("AppendReport after Close = %v, want %v", err, ErrClosed)
	}
}

func TestSQLitePrunesEvents(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st, err := Open(Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "ev.db"), MaxEvents: 3}, logx.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer st.Close()
	sq := st.(*sqliteStore)
	sq.pruneEvery = 5

	for i := 0; i < 5; i++ {
		if err := st.AppendEvent(ctx, EventRecord{Type: "task.state"}); err != nil {
			t.Fatalf("AppendEvent error: %v", err)
		}
	}
	var n int
	if err := sq.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		t.Fatalf("count events: %v", err)
	}
	if n != 3 {
		t.Fatalf("stored events = %d, want 3", n)
	}
}

func TestFileStoreSkipsTornReport(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "lwosd.db")
	cfg := Config{Driver: "file", Path: path}

	st, err := Open(cfg, logx.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if err := st.AppendReport(ctx, Report{ID: "whole", Ticks: 7}); err != nil {
		t.Fatalf("AppendReport error: %v", err)
	}
	_ = st.Close()

	// crash mid-write
	f, err := os.OpenFile(filepath.Join(filepath.Dir(path), "lwosd.reports.jsonl"), os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString(`{"id":"torn","ticks":`)
	_ = f.Close()

	st, err = Open(cfg, logx.Nop())
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	r, ok, err := st.LastReport(ctx)
	if err != nil || !ok || r.ID != "whole" || r.Ticks != 7 {
		t.Fatalf("LastReport = %s/%d ok %v err %v; want whole/7", r.ID, r.Ticks, ok, err)
	}

	// the next report lands on its own line
	if err := st.AppendReport(ctx, Report{ID: "next", Ticks: 9}); err != nil {
		t.Fatalf("AppendReport error: %v", err)
	}
	_ = st.Close()
	st, err = Open(cfg, logx.Nop())
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer st.Close()
	if r, ok, _ := st.LastReport(ctx); !ok || r.ID != "next" {
		t.Fatalf("LastReport after torn line = %s ok %v, want next", r.ID, ok)
	}
}

func TestSQLiteAppliesPragmas(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st, err := Open(Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "p.db"), BusyTimeout: 1500 * time.Millisecond}, logx.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer st.Close()
	db := st.(*sqliteStore).db

	var busy int
	if err := db.QueryRowContext(ctx, `PRAGMA busy_timeout`).Scan(&busy); err != nil {
		t.Fatalf("read busy_timeout: %v", err)
	}
	if busy != 1500 {
		t.Fatalf("busy_timeout = %d, want 1500", busy)
	}
	var mode string
	if err := db.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("journal_mode = %q, want wal", mode)
	}
}
