package ui

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/tasktracker/internal/store"
	"github.com/nibzard/tasktracker/internal/task"
)

func newTestModel(t *testing.T, descriptions ...string) (*tuiModel, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "tasks.json"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	for _, d := range descriptions {
		if _, err := s.Add(d); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	return newTUIModel(s, &tuiConfig{dateFormat: DefaultDateFormat}), s
}

func press(m *tuiModel, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

func TestTUIMarkSelected(t *testing.T) {
	m, s := newTestModel(t, "first", "second")

	press(m, "down", "p")
	second := m.tasks[1]
	if second.Status() != task.StatusInProgress {
		t.Errorf("second task status: got %q, want in-progress", second.Status())
	}
	stored, _ := s.Get(second.ID())
	if stored.Status() != task.StatusInProgress {
		t.Errorf("store status: got %q, want in-progress", stored.Status())
	}
	if !strings.Contains(m.message, "marked in-progress") {
		t.Errorf("message: got %q", m.message)
	}

	press(m, "up", "d")
	if m.tasks[0].Status() != task.StatusDone {
		t.Errorf("first task status: got %q, want done", m.tasks[0].Status())
	}
}

func TestTUIFilter(t *testing.T) {
	m, _ := newTestModel(t, "a", "b", "c")
	press(m, "d")

	press(m, "3")
	if m.filter != task.StatusDone || len(m.tasks) != 1 {
		t.Fatalf("done filter: filter %q, %d tasks", m.filter, len(m.tasks))
	}

	press(m, "1")
	if m.filter != task.StatusNotDone || len(m.tasks) != 2 {
		t.Fatalf("not-done filter: filter %q, %d tasks", m.filter, len(m.tasks))
	}

	press(m, "2")
	if len(m.tasks) != 0 {
		t.Errorf("in-progress filter: %d tasks, want 0", len(m.tasks))
	}
	if !strings.Contains(m.View(), "No tasks.") {
		t.Error("empty filter view should say No tasks.")
	}

	press(m, "0")
	if m.filter != "" || len(m.tasks) != 3 {
		t.Errorf("cleared filter: filter %q, %d tasks", m.filter, len(m.tasks))
	}
}

func TestTUIMarkOutOfFilterClampsCursor(t *testing.T) {
	m, _ := newTestModel(t, "a", "b")
	press(m, "1", "down", "d")
	if len(m.tasks) != 1 {
		t.Fatalf("tasks: got %d, want 1", len(m.tasks))
	}
	if m.cursor != 0 {
		t.Errorf("cursor: got %d, want 0", m.cursor)
	}
}

func TestTUIDelete(t *testing.T) {
	m, s := newTestModel(t, "a", "b")
	press(m, "x")
	if s.Len() != 1 || len(m.tasks) != 1 {
		t.Errorf("after delete: store %d, view %d", s.Len(), len(m.tasks))
	}
	press(m, "x", "x")
	if s.Len() != 0 {
		t.Errorf("store not empty: %d", s.Len())
	}
}

func TestTUIQuitAndHelp(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, "?")
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("help screen not shown")
	}
	press(m, "?")
	if strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("help screen not toggled off")
	}

	for _, k := range []string{"q", "ctrl+c"} {
		cmd := press(m, k)
		if cmd == nil {
			t.Fatalf("%s returned no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s did not quit", k)
		}
	}
}

func TestTUIView(t *testing.T) {
	m, _ := newTestModel(t, "buy milk")
	view := m.View()
	for _, want := range []string{"TaskTracker", "Not done: 1", "buy milk", "Press h for help"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestIsTTY(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Error("buffer reported as TTY")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short: %q", got)
	}
	if got := truncate(strings.Repeat("é", 20), 10); got != strings.Repeat("é", 7)+"..." {
		t.Errorf("truncate long: %q", got)
	}
}
