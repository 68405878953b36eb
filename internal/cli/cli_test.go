package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lwos/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestDemo(t *testing.T) {
	out, err := execute(t, "demo")
	if err != nil {
		t.Fatalf("demo error: %v", err)
	}
	want := "Hello\nscheduler\nworld!\nHello\nworld!\n"
	if out != want {
		t.Fatalf("demo output = %q, want %q", out, want)
	}
}

func TestDemoTimer(t *testing.T) {
	out, err := execute(t, "demo", "--timer")
	if err != nil {
		t.Fatalf("demo --timer error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 11 {
		t.Fatalf("got %d lines, want 11:\n%s", len(lines), out)
	}
	for i, want := range []string{
		"tick 1: not_signaled",
		"tick 2: not_signaled",
		"tick 3: signaled",
		"tick 4: not_signaled",
		"tick 5: not_signaled",
		"tick 6: signaled",
	} {
		if got := lines[5+i]; got != want {
			t.Fatalf("line %d = %q, want %q", 5+i, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte(`
kernel:
  task_capacity: 4
tasks:
  - name: hello
    message: Hello
timers:
  - name: blink
    threshold: 5
    auto_restart: true
    start: true
rules:
  - timer: blink
    action: toggle
    task: hello
`), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "validate", "--config", good)
	if err != nil {
		t.Fatalf("validate error: %v", err)
	}
	for _, want := range []string{"ok", "tasks:  1/4", "timers: 1/16", "rules:  1", "@every 30s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("validate output missing %q:\n%s", want, out)
		}
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"rules":[{"timer":"x","action":"jump","task":"y"}]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err = execute(t, "validate", "-c", bad)
	if err == nil || !strings.Contains(err.Error(), "unknown action") {
		t.Fatalf("validate(bad) error = %v, want unknown action", err)
	}
}

func TestMapStorageConfig(t *testing.T) {
	cfg, _, err := loadForTest(t, `{"storage":{"driver":"SQLite","path":"x.db","busy_timeout":"2s"}}`)
	if err != nil {
		t.Fatal(err)
	}
	sc, enabled, err := mapStorageConfig(cfg)
	if err != nil || !enabled {
		t.Fatalf("mapStorageConfig = %v, %v", enabled, err)
	}
	if sc.Driver != "sqlite" || sc.BusyTimeout.String() != "2s" {
		t.Fatalf("storage config = %+v", sc)
	}

	cfg, _, _ = loadForTest(t, `{"storage":{"driver":"none"}}`)
	if _, enabled, _ := mapStorageConfig(cfg); enabled {
		t.Fatal("driver none mapped as enabled")
	}
}

func loadForTest(t *testing.T, body string) (*config.Config, string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lwosd.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.NewManager(path).Load()
	return cfg, path, err
}

func TestRunRejectsBadConfigBeforeStarting(t *testing.T) {
	_, path, _ := loadForTest(t, `{"kernel":{"task_capacity":1},"tasks":[{"name":"a"},{"name":"b"}]}`)
	out, err := execute(t, "run", "-c", path)
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("run error = %v, want load config failure", err)
	}
	for _, want := range []string{"loading config", "config rejected", "task_capacity is 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("boot log missing %q:\n%s", want, out)
		}
	}
}
