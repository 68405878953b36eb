package storage

import (
	"context"
	"fmt"
	"strings"

	"lwos/pkg/logx"
)

// Store is the persistence API used by the host.
type Store interface {
	AppendReport(ctx context.Context, r Report) error
	AppendEvent(ctx context.Context, e EventRecord) error
	// LastReport returns the most recently appended report; ok is false
	// when none has been stored yet.
	LastReport(ctx context.Context) (r Report, ok bool, err error)
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	log = log.With(logx.String("component", "storage"), logx.String("driver", driver))

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", driver)
	}
}
