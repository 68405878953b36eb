package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"lwos/pkg/logx"
)

// fileStore appends JSON Lines to two files:
//   - <prefix>.reports.jsonl
//   - <prefix>.events.jsonl
//
// The last report is cached in memory and recovered from the file on open.
type fileStore struct {
	log logx.Logger

	mu      sync.Mutex
	reports *os.File
	events  *os.File
	last    *Report
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	prefix := filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base)))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	reportsPath := prefix + ".reports.jsonl"
	last, torn, err := lastReportLine(reportsPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("could not recover last report", logx.String("path", reportsPath), logx.Err(err))
	}

	rf, err := os.OpenFile(reportsPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	if torn {
		// terminate the partial line so the next report starts clean
		if _, err := rf.WriteString("\n"); err != nil {
			_ = rf.Close()
			return nil, err
		}
		log.Warn("skipped torn report line", logx.String("path", reportsPath))
	}
	ef, err := os.OpenFile(prefix+".events.jsonl", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		_ = rf.Close()
		return nil, err
	}
	return &fileStore{log: log, reports: rf, events: ef, last: last}, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	if s.reports != nil {
		errs = append(errs, s.reports.Close())
		s.reports = nil
	}
	if s.events != nil {
		errs = append(errs, s.events.Close())
		s.events = nil
	}
	return errors.Join(errs...)
}

func (s *fileStore) AppendReport(_ context.Context, r Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reports == nil {
		return ErrClosed
	}
	if err := json.NewEncoder(s.reports).Encode(r); err != nil {
		return err
	}
	s.last = &r
	return nil
}

func (s *fileStore) AppendEvent(_ context.Context, e EventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events == nil {
		return ErrClosed
	}
	return json.NewEncoder(s.events).Encode(e)
}

func (s *fileStore) LastReport(context.Context) (Report, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reports == nil {
		return Report{}, false, ErrClosed
	}
	if s.last == nil {
		return Report{}, false, nil
	}
	return *s.last, true, nil
}

// lastReportLine returns the last decodable line of path. Undecodable lines
// are skipped; torn reports whether the file ends without a newline, as it
// does after a crash mid-write.
func lastReportLine(path string) (last *Report, torn bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var r Report
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			continue
		}
		last = &r
	}
	if err := sc.Err(); err != nil {
		return last, false, err
	}

	fi, err := f.Stat()
	if err != nil || fi.Size() == 0 {
		return last, false, err
	}
	tail := make([]byte, 1)
	if _, err := f.ReadAt(tail, fi.Size()-1); err != nil {
		return last, false, err
	}
	return last, tail[0] != '\n', nil
}
