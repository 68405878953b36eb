package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"lwos/pkg/logx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS reports (
		seq  INTEGER PRIMARY KEY AUTOINCREMENT,
		id   TEXT NOT NULL,
		at   TEXT NOT NULL,
		body TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		seq  INTEGER PRIMARY KEY AUTOINCREMENT,
		at   TEXT NOT NULL,
		type TEXT NOT NULL,
		data TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS events_type ON events(type)`,
}

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger

	maxEvents  int
	eventCount atomic.Uint64
	pruneEvery uint64
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for sqlite driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{"PRAGMA journal_mode = WAL", "PRAGMA synchronous = NORMAL"}
	if cfg.BusyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	for _, p := range pragmas {
		// non-fatal
		if _, err := db.Exec(p); err != nil {
			log.Debug("sqlite pragma not applied", logx.String("pragma", p), logx.Err(err))
		}
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite schema: %w", err)
		}
	}

	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	return &sqliteStore{db: db, log: log, maxEvents: maxEvents, pruneEvery: 500}, nil
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) AppendReport(ctx context.Context, r Report) error {
	if r.At.IsZero() {
		r.At = time.Now()
	}
	body, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports(id, at, body) VALUES(?,?,?)`,
		r.ID, r.At.UTC().Format(time.RFC3339Nano), string(body),
	)
	return err
}

func (s *sqliteStore) AppendEvent(ctx context.Context, e EventRecord) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events(at, type, data) VALUES(?,?,?)`,
		e.At.UTC().Format(time.RFC3339Nano), e.Type, nullStr(string(e.Data)),
	)
	if err == nil && s.eventCount.Add(1)%s.pruneEvery == 0 {
		pctx, cancel := context.WithTimeout(context.Background(), time.Second)
		if perr := s.pruneEvents(pctx); perr != nil {
			s.log.Debug("event prune failed", logx.Err(perr))
		}
		cancel()
	}
	return err
}

func (s *sqliteStore) LastReport(ctx context.Context) (Report, bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM reports ORDER BY seq DESC LIMIT 1`).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return Report{}, false, nil
	}
	if err != nil {
		return Report{}, false, err
	}
	var r Report
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return Report{}, false, err
	}
	return r, true, nil
}

// pruneEvents keeps the newest maxEvents rows.
func (s *sqliteStore) pruneEvents(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM events WHERE seq <= (SELECT MAX(seq) FROM events) - ?`,
		s.maxEvents,
	)
	return err
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
