package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func decodeLine(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, b)
	}
	return m
}

func TestZeroLoggerIsNoop(t *testing.T) {
	var l Logger
	if !l.IsZero() {
		t.Fatal("expected zero logger")
	}
	l.Info("dropped", String("k", "v"))
	if l.With(Int("n", 1)).IsZero() {
		t.Fatal("With should attach fields")
	}
	if Nop().IsZero() {
		t.Fatal("Nop() should not report zero")
	}
}

func TestLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "debug").With(String("comp", "host"))
	l.Debug("cycle done",
		Int("tasks", 3),
		Duration("took", time.Millisecond),
		Bool("ok", true),
		Err(nil),
		Err(errors.New("boom")),
		Stack(""),
	)

	m := decodeLine(t, buf.Bytes())
	if m["message"] != "cycle done" {
		t.Fatalf("message = %v, want cycle done", m["message"])
	}
	if m["comp"] != "host" {
		t.Fatalf("comp = %v, want host", m["comp"])
	}
	if m["tasks"] != float64(3) {
		t.Fatalf("tasks = %v, want 3", m["tasks"])
	}
	if m["err"] != "boom" {
		t.Fatalf("err = %v, want boom", m["err"])
	}
	if _, ok := m["stack"]; ok {
		t.Fatal("empty stack should be omitted")
	}
	caller, _ := m["caller"].(string)
	if !strings.HasPrefix(caller, "logging_test.go:") {
		t.Fatalf("caller = %q, want logging_test.go:<line>", caller)
	}
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "warn")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %q", buf.String())
	}
	l.Error("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("error not logged: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" info ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewConsoleIsReadable(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, "info").Info("loading config", String("path", "lwosd.yaml"))
	out := buf.String()
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("console output is JSON: %q", out)
	}
	if !strings.Contains(out, "loading config") || !strings.Contains(out, "lwosd.yaml") {
		t.Fatalf("console output = %q", out)
	}
}

func TestServiceApplySwapsSinks(t *testing.T) {
	var stdout bytes.Buffer
	s := &Service{stdout: &stdout, stderr: io.Discard}
	s.Apply(Config{Level: "info", Console: true, Format: "json"})
	log := s.Logger().With(String("comp", "test"))

	log.Info("first")
	m := decodeLine(t, stdout.Bytes())
	if m["message"] != "first" || m["comp"] != "test" {
		t.Fatalf("first line = %v", m)
	}

	stdout.Reset()
	s.Apply(Config{Level: "error", Console: true, Format: "json"})
	log.Info("second")
	if stdout.Len() != 0 {
		t.Fatalf("level change not applied: %q", stdout.String())
	}
}

func TestServiceFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lwosd.log")
	svc, log := NewService(Config{Level: "info", File: FileConfig{Enabled: true, Path: path}})
	t.Cleanup(func() { _ = svc.Close() })

	log.Info("first")
	svc.Apply(Config{Level: "error", File: FileConfig{Enabled: true, Path: path}})
	log.Info("second")
	log.Error("third")
	if err := svc.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(b)
	if !strings.Contains(out, "first") || !strings.Contains(out, "third") {
		t.Fatalf("missing lines: %q", out)
	}
	if strings.Contains(out, "second") {
		t.Fatalf("level change not applied: %q", out)
	}
}

func TestServiceBadFileFallsBackToConsole(t *testing.T) {
	var stdout, stderr bytes.Buffer
	s := &Service{stdout: &stdout, stderr: &stderr}
	s.Apply(Config{Level: "info", File: FileConfig{Enabled: true, Path: filepath.Join(t.TempDir(), "missing", "x.log")}})
	s.Logger().Info("still here")
	if !strings.Contains(stderr.String(), "open log file") {
		t.Fatalf("stderr = %q, want open error", stderr.String())
	}
	if !strings.Contains(stdout.String(), "still here") {
		t.Fatalf("stdout = %q, want console fallback", stdout.String())
	}
}
