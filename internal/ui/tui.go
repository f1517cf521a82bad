package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/nibzard/tasktracker/internal/task"
)

// TaskStore is the part of the store the viewer needs.
type TaskStore interface {
	List() []task.Task
	QueryStatus(status task.Status) []task.Task
	SetStatus(id string, status task.Status) error
	Delete(id string) error
	Path() string
}

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

// tuiConfig holds TUI configuration.
type tuiConfig struct {
	dateFormat string
	filter     task.Status
}

// WithDateFormat sets the layout used for timestamps in the detail pane.
func WithDateFormat(layout string) TUIOption {
	return func(c *tuiConfig) {
		c.dateFormat = layout
	}
}

// WithFilter starts the viewer filtered to one status.
func WithFilter(status task.Status) TUIOption {
	return func(c *tuiConfig) {
		c.filter = status
	}
}

// RunTUI starts the viewer over s. It requires stdout to be a terminal.
func RunTUI(ctx context.Context, s TaskStore, opts ...TUIOption) error {
	c := &tuiConfig{dateFormat: DefaultDateFormat}
	for _, opt := range opts {
		opt(c)
	}

	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newTUIModel(s, c)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type tuiModel struct {
	store      TaskStore
	dateFormat string
	tasks      []task.Task
	cursor     int
	filter     task.Status // Filter by status
	showHelp   bool        // Show help screen
	message    string      // Result of the last action
}

func newTUIModel(s TaskStore, c *tuiConfig) *tuiModel {
	m := &tuiModel{
		store:      s,
		dateFormat: c.dateFormat,
		filter:     c.filter,
	}
	m.refresh()
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case "r", "f5":
		m.message = ""
		m.refresh()
	case "h", "?":
		m.showHelp = !m.showHelp
	case "1", "2", "3":
		m.filter = task.Statuses()[key.String()[0]-'1']
		m.cursor = 0
		m.refresh()
	case "0":
		m.filter = ""
		m.cursor = 0
		m.refresh()
	case "n":
		m.mark(task.StatusNotDone)
	case "p":
		m.mark(task.StatusInProgress)
	case "d":
		m.mark(task.StatusDone)
	case "x":
		m.deleteSelected()
	}
	return m, nil
}

func (m *tuiModel) selected() (task.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return task.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m *tuiModel) mark(status task.Status) {
	t, ok := m.selected()
	if !ok {
		return
	}
	if err := m.store.SetStatus(t.ID(), status); err != nil {
		m.message = "Error: " + err.Error()
	} else {
		m.message = fmt.Sprintf("Task %s marked %s", t.ID(), status)
	}
	m.refresh()
}

func (m *tuiModel) deleteSelected() {
	t, ok := m.selected()
	if !ok {
		return
	}
	if err := m.store.Delete(t.ID()); err != nil {
		m.message = "Error: " + err.Error()
	} else {
		m.message = fmt.Sprintf("Task %s deleted", t.ID())
	}
	m.refresh()
}

// refresh reloads the visible tasks and keeps the cursor in range.
func (m *tuiModel) refresh() {
	if m.filter == "" {
		m.tasks = m.store.List()
	} else {
		m.tasks = m.store.QueryStatus(m.filter)
	}
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b)
		return b.String()
	}

	if m.filter != "" {
		b.WriteString(fmt.Sprintf("Filter: %s (0 to clear)\n\n", m.filter))
	}

	writeOverview(&b, m.store.List())
	writeTasks(&b, m.tasks, m.cursor)
	if t, ok := m.selected(); ok {
		writeDetail(&b, t, m.dateFormat)
	}
	if m.message != "" {
		b.WriteString(m.message + "\n\n")
	}
	b.WriteString(fmt.Sprintf("File: %s\n\n", m.store.Path()))
	writeFooter(&b)
	return b.String()
}

func writeTitle(b *strings.Builder) {
	title := "TaskTracker"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeOverview(b *strings.Builder, all []task.Task) {
	counts := make(map[task.Status]int)
	for _, t := range all {
		counts[t.Status()]++
	}
	b.WriteString(fmt.Sprintf("  Not done: %d  In progress: %d  Done: %d\n\n",
		counts[task.StatusNotDone],
		counts[task.StatusInProgress],
		counts[task.StatusDone],
	))
}

func writeTasks(b *strings.Builder, tasks []task.Task, cursor int) {
	if len(tasks) == 0 {
		b.WriteString("  No tasks.\n\n")
		return
	}
	for i, t := range tasks {
		pointer := " "
		if i == cursor {
			pointer = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", pointer, statusIcon(t.Status()), truncate(t.Description(), 60)))
	}
	b.WriteString("\n")
}

func writeDetail(b *strings.Builder, t task.Task, dateFormat string) {
	b.WriteString(fmt.Sprintf("  Id:      %s\n", t.ID()))
	b.WriteString(fmt.Sprintf("  Status:  %s\n", t.Status()))
	b.WriteString(fmt.Sprintf("  Created: %s\n", t.CreatedAt().Local().Format(dateFormat)))
	b.WriteString(fmt.Sprintf("  Updated: %s\n\n", t.UpdatedAt().Local().Format(dateFormat)))
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  up/k down/j  Move selection\n")
	b.WriteString("  n            Mark selected not-done\n")
	b.WriteString("  p            Mark selected in-progress\n")
	b.WriteString("  d            Mark selected done\n")
	b.WriteString("  x            Delete selected\n")
	b.WriteString("  r, F5        Refresh\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  1            Filter by not-done\n")
	b.WriteString("  2            Filter by in-progress\n")
	b.WriteString("  3            Filter by done\n")
	b.WriteString("  0            Clear filter\n\n")
}

func writeFooter(b *strings.Builder) {
	b.WriteString("Press h for help | q to quit\n")
}

func statusIcon(s task.Status) string {
	switch s {
	case task.StatusInProgress:
		return "[>]"
	case task.StatusDone:
		return "[x]"
	default:
		return "[ ]"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
