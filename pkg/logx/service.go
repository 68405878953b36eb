package logx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

const defaultLogFile = "./lwosd.log"

type Config struct {
	Level   string
	Console bool
	// Format is the console encoding: "pretty" (default) or "json".
	Format string
	File   FileConfig
}

type FileConfig struct {
	Enabled bool
	Path    string
}

// Service owns the process log sinks. Apply swaps them at runtime; loggers
// handed out earlier pick up the change on their next event.
type Service struct {
	mu   sync.Mutex
	file *os.File

	root atomic.Pointer[zerolog.Logger]

	stdout io.Writer
	stderr io.Writer
}

// NewService applies cfg and returns the service with its root logger.
func NewService(cfg Config) (*Service, Logger) {
	s := &Service{stdout: os.Stdout, stderr: os.Stderr}
	s.Apply(cfg)
	return s, Logger{svc: s}
}

func (s *Service) Logger() Logger { return Logger{svc: s} }

// Apply is safe to call concurrently with logging.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
	}

	var sinks []io.Writer
	if cfg.Console {
		if strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
			sinks = append(sinks, s.stdout)
		} else {
			sinks = append(sinks, consoleWriter(s.stdout))
		}
	}
	if cfg.File.Enabled {
		if f, err := openLogFile(cfg.File.Path); err != nil {
			fmt.Fprintf(s.stderr, "logx: %v\n", err)
		} else {
			s.file = f
			sinks = append(sinks, zerolog.SyncWriter(f))
		}
	}
	if len(sinks) == 0 {
		// never go silent because of a bad file path
		sinks = append(sinks, consoleWriter(s.stdout))
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(sinks...)).
		Level(parseLevel(cfg.Level)).
		With().Timestamp().Logger()
	s.root.Store(&zl)
}

func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func openLogFile(path string) (*os.File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultLogFile
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %q: %w", path, err)
	}
	return f, nil
}
