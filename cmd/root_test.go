// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nibzard/tasktracker/internal/config"
	"github.com/nibzard/tasktracker/internal/shell"
	"github.com/nibzard/tasktracker/internal/store"
	"github.com/nibzard/tasktracker/internal/task"
	"github.com/nibzard/tasktracker/internal/ui"
)

// isolate points HOME and the working directory at temp dirs and clears
// every TASKTRACKER_ variable so no real config leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	work := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, field := range config.Fields() {
		t.Setenv(config.EnvPrefix+strings.ToUpper(field), "")
	}
	chdirTest(t, work)
	return work
}

// runCLI runs the CLI with the given stdin and returns what it wrote.
func runCLI(t *testing.T, input string, args ...string) (string, string, error) {
	t.Helper()
	oldIn, oldOut, oldErr := stdin, stdout, stderr
	t.Cleanup(func() {
		stdin, stdout, stderr = oldIn, oldOut, oldErr
	})

	var out, errOut bytes.Buffer
	stdin = strings.NewReader(input)
	stdout = &out
	stderr = &errOut

	err := Run(context.Background(), args)
	return out.String(), errOut.String(), err
}

func loadTasks(t *testing.T, path string) []task.Task {
	t.Helper()
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("store.Open(%s) error = %v", path, err)
	}
	return s.List()
}

// TestRun tests the main Run function.
func TestRun(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"help flag", []string{"--help"}, "Commands:"},
		{"short help flag", []string{"-h"}, "Commands:"},
		{"help command", []string{"help"}, "Global Options:"},
		{"version flag", []string{"--version"}, "tasktracker version dev"},
		{"short version flag", []string{"-v"}, "tasktracker version dev"},
		{"version command", []string{"version"}, "tasktracker version dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			out, _, err := runCLI(t, "", tt.args...)
			if err != nil {
				t.Fatalf("Run(%v) error = %v", tt.args, err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("Run(%v) output missing %q:\n%s", tt.args, tt.want, out)
			}
		})
	}

	t.Run("unknown command returns error", func(t *testing.T) {
		isolate(t)
		_, errOut, err := runCLI(t, "", "unknown-command")
		if err == nil || !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("expected 'unknown command' error, got %v", err)
		}
		if !strings.Contains(errOut, "Usage:") {
			t.Errorf("usage not printed to stderr: %q", errOut)
		}
	})

	t.Run("invalid log level is rejected", func(t *testing.T) {
		isolate(t)
		if _, _, err := runCLI(t, "", "-log-level", "chatty", "list"); err == nil {
			t.Error("expected error for invalid log level")
		}
	})
}

func TestOneShotCommands(t *testing.T) {
	work := isolate(t)
	dataPath := filepath.Join(work, "data", "tasks.json")

	out, _, err := runCLI(t, "", "add", "Buy", "milk")
	if err != nil {
		t.Fatalf("add error = %v", err)
	}
	tasks := loadTasks(t, dataPath)
	if len(tasks) != 1 || tasks[0].Description() != "Buy milk" {
		t.Fatalf("tasks after add = %v", tasks)
	}
	id := tasks[0].ID()
	if !strings.Contains(out, id) {
		t.Errorf("add output %q missing id %s", out, id)
	}

	if _, _, err := runCLI(t, "", "mark", "in-progress", id); err != nil {
		t.Fatalf("mark error = %v", err)
	}
	out, _, err = runCLI(t, "", "list", "in_progress")
	if err != nil {
		t.Fatalf("list in_progress error = %v", err)
	}
	if !strings.Contains(out, "Buy milk") {
		t.Errorf("filtered list missing task:\n%s", out)
	}

	if _, _, err := runCLI(t, "", "update", id, "Buy", "oat", "milk"); err != nil {
		t.Fatalf("update error = %v", err)
	}
	if got := loadTasks(t, dataPath)[0].Description(); got != "Buy oat milk" {
		t.Errorf("Description() = %q, want %q", got, "Buy oat milk")
	}

	if _, _, err := runCLI(t, "", "mark", "finished", id); !errors.Is(err, task.ErrInvalidStatus) {
		t.Errorf("mark finished error = %v, want ErrInvalidStatus", err)
	}
	if _, _, err := runCLI(t, "", "delete", "missing-id"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("delete missing error = %v, want ErrNotFound", err)
	}
	if _, _, err := runCLI(t, "", "add"); !errors.Is(err, shell.ErrUsage) {
		t.Errorf("add without description error = %v, want ErrUsage", err)
	}

	if _, _, err := runCLI(t, "", "delete", id); err != nil {
		t.Fatalf("delete error = %v", err)
	}
	if got := loadTasks(t, dataPath); len(got) != 0 {
		t.Errorf("tasks after delete = %v", got)
	}
}

func TestDataFlag(t *testing.T) {
	work := isolate(t)
	dataPath := filepath.Join(work, "elsewhere", "mine.json")

	if _, _, err := runCLI(t, "", "-data", dataPath, "add", "flagged"); err != nil {
		t.Fatalf("add error = %v", err)
	}
	if got := loadTasks(t, dataPath); len(got) != 1 {
		t.Errorf("tasks in -data file = %d, want 1", len(got))
	}
	if _, err := os.Stat(filepath.Join(work, "data", "tasks.json")); !os.IsNotExist(err) {
		t.Errorf("default task file should not exist, stat error = %v", err)
	}
}

func TestShellCommand(t *testing.T) {
	work := isolate(t)

	input := "add first\nmark done nope\nlist\nquit\n"
	out, _, err := runCLI(t, input)
	if err != nil {
		t.Fatalf("shell error = %v", err)
	}
	for _, want := range []string{shell.Intro, shell.Prompt, "first", "task not found", "Goodbye!"} {
		if !strings.Contains(out, want) {
			t.Errorf("shell output missing %q:\n%s", want, out)
		}
	}
	if got := loadTasks(t, filepath.Join(work, "data", "tasks.json")); len(got) != 1 {
		t.Errorf("tasks after shell session = %d, want 1", len(got))
	}
}

func TestExportCommand(t *testing.T) {
	work := isolate(t)
	if _, _, err := runCLI(t, "", "add", "export me"); err != nil {
		t.Fatalf("add error = %v", err)
	}

	out, _, err := runCLI(t, "", "export")
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if !strings.Contains(out, `"description": "export me"`) {
		t.Errorf("json export:\n%s", out)
	}

	outPath := filepath.Join(work, "tasks.yaml")
	if _, _, err := runCLI(t, "", "export", "-format", "yaml", "-o", outPath); err != nil {
		t.Fatalf("export yaml error = %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile error = %v", err)
	}
	if !strings.Contains(string(data), "description: export me") {
		t.Errorf("yaml export:\n%s", data)
	}

	out, _, err = runCLI(t, "", "export", "-status", "done")
	if err != nil {
		t.Fatalf("export -status error = %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("export -status done = %q, want []", out)
	}

	if _, _, err := runCLI(t, "", "export", "-format", "csv"); !errors.Is(err, store.ErrUnknownFormat) {
		t.Errorf("export csv error = %v, want ErrUnknownFormat", err)
	}
}

func TestDoctorCommand(t *testing.T) {
	t.Run("missing task file is a warning", func(t *testing.T) {
		isolate(t)
		out, _, err := runCLI(t, "", "doctor")
		if err != nil {
			t.Fatalf("doctor error = %v", err)
		}
		if !strings.Contains(out, "Not found") {
			t.Errorf("doctor output:\n%s", out)
		}
	})

	t.Run("valid task file", func(t *testing.T) {
		isolate(t)
		if _, _, err := runCLI(t, "", "add", "checked"); err != nil {
			t.Fatalf("add error = %v", err)
		}
		out, _, err := runCLI(t, "", "doctor")
		if err != nil {
			t.Fatalf("doctor error = %v\n%s", err, out)
		}
		if !strings.Contains(out, "Valid (1 tasks)") {
			t.Errorf("doctor output:\n%s", out)
		}
	})

	t.Run("invalid task file fails", func(t *testing.T) {
		work := isolate(t)
		path := filepath.Join(work, "bad.json")
		if err := os.WriteFile(path, []byte(`{"a": {"id": "a", "status": "finished"}}`), 0644); err != nil {
			t.Fatal(err)
		}
		out, _, err := runCLI(t, "", "doctor", path)
		if err == nil {
			t.Fatalf("expected doctor to fail:\n%s", out)
		}
		if !strings.Contains(out, "Validation failed") {
			t.Errorf("doctor output:\n%s", out)
		}
	})
}

func TestDoctorPrintSchema(t *testing.T) {
	work := isolate(t)

	out, _, err := runCLI(t, "", "doctor", "-print-schema")
	if err != nil {
		t.Fatalf("doctor -print-schema error = %v", err)
	}
	if out != store.EmbeddedSchema() {
		t.Errorf("doctor -print-schema did not print the embedded schema:\n%s", out)
	}

	custom := filepath.Join(work, "custom.schema.json")
	if err := os.WriteFile(custom, []byte(`{"type": "object"}`), 0644); err != nil {
		t.Fatal(err)
	}
	out, _, err = runCLI(t, "", "-schema", custom, "doctor", "-print-schema")
	if err != nil {
		t.Fatalf("doctor -print-schema with -schema error = %v", err)
	}
	if out != `{"type": "object"}` {
		t.Errorf("doctor -print-schema = %q, want the custom schema", out)
	}
}

func TestConfigCommand(t *testing.T) {
	isolate(t)

	out, _, err := runCLI(t, "", "-date-format", "2006-01-02", "config")
	if err != nil {
		t.Fatalf("config error = %v", err)
	}
	if !strings.Contains(out, "2006-01-02") || !strings.Contains(out, "[flag]") {
		t.Errorf("config output:\n%s", out)
	}
	if !strings.Contains(out, "[default]") {
		t.Errorf("config output missing default sources:\n%s", out)
	}

	out, _, err = runCLI(t, "", "config", "-example")
	if err != nil {
		t.Fatalf("config -example error = %v", err)
	}
	if out != config.ExampleConfig() {
		t.Errorf("config -example output does not match ExampleConfig()")
	}
}

func TestTUICommand(t *testing.T) {
	isolate(t)

	if _, _, err := runCLI(t, "", "tui", "-status", "someday"); !errors.Is(err, task.ErrInvalidStatus) {
		t.Errorf("tui -status someday error = %v, want ErrInvalidStatus", err)
	}

	if ui.IsTTY(os.Stdout) {
		t.Skip("stdout is a terminal")
	}
	_, _, err := runCLI(t, "", "tui")
	if err == nil || !strings.Contains(err.Error(), "TTY") {
		t.Errorf("tui without a terminal error = %v, want TTY error", err)
	}
}

// chdirTest mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it
// changes the working directory and restores it when the test ends.
func chdirTest(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	if filepath.IsAbs(dir) {
		t.Setenv("PWD", dir)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			panic("chdirTest: restoring working directory: " + err.Error())
		}
	})
}
