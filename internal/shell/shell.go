// Package shell implements the interactive TaskTracker command loop.
//
// Every command is also reachable one-shot through Dispatch, which the CLI
// uses for "tasktracker add ...", "tasktracker list done" and so on.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasktracker/internal/logging"
	"github.com/nibzard/tasktracker/internal/store"
	"github.com/nibzard/tasktracker/internal/task"
	"github.com/nibzard/tasktracker/internal/ui"
)

const (
	// Intro is printed when an interactive session starts.
	Intro = "Welcome to TaskTracker. Type 'help' for commands."
	// Prompt is printed before every line is read.
	Prompt = "(TaskTracker) "

	maxLineSize = 1024 * 1024
)

var (
	// ErrExit is returned by Dispatch for the exit command.
	ErrExit = errors.New("exit")
	// ErrUsage is returned when a command is called with the wrong arguments.
	ErrUsage = errors.New("usage")
	// ErrUnknownCommand is returned for a command name the shell does not know.
	ErrUnknownCommand = errors.New("unknown command")
)

// TaskStore is the part of the store the shell drives.
type TaskStore interface {
	Add(description string) (task.Task, error)
	Update(id, description string) error
	Delete(id string) error
	ChangeStatus(id, status string) error
	Query(status string) ([]task.Task, error)
	List() []task.Task
}

type command struct {
	usage string
	help  string
	run   func(sh *Shell, arg string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"add": {
			usage: "add <task description>",
			help:  "Add a task.",
			run:   (*Shell).add,
		},
		"update": {
			usage: "update <id> <task description>",
			help:  "Update a task description by id.",
			run:   (*Shell).update,
		},
		"delete": {
			usage: "delete <id>",
			help:  "Delete a task.",
			run:   (*Shell).delete,
		},
		"list": {
			usage: "list [status]",
			help:  "List all tasks, or only those with the given status.",
			run:   (*Shell).list,
		},
		"mark": {
			usage: "mark <status> <id>",
			help:  "Mark a task as not-done, in-progress, or done.",
			run:   (*Shell).mark,
		},
		"help": {
			usage: "help [command]",
			help:  "Show commands, or the usage of one command.",
			run:   (*Shell).help,
		},
		"exit": {
			usage: "exit",
			help:  "Exit TaskTracker.",
			run:   (*Shell).exit,
		},
	}
}

var aliases = map[string]string{
	"quit": "exit",
	"ls":   "list",
	"rm":   "delete",
	"?":    "help",
}

// Option configures a Shell.
type Option func(*Shell)

// WithDateFormat sets the layout used for table timestamps.
func WithDateFormat(layout string) Option {
	return func(sh *Shell) {
		if layout != "" {
			sh.dateFormat = layout
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(sh *Shell) {
		if logger != nil {
			sh.logger = logger
		}
	}
}

// Shell reads commands and applies them to a store.
type Shell struct {
	store      TaskStore
	out        io.Writer
	dateFormat string
	logger     *log.Logger
}

// New creates a shell writing its output to out.
func New(s TaskStore, out io.Writer, opts ...Option) *Shell {
	sh := &Shell{
		store:      s,
		out:        out,
		dateFormat: ui.DefaultDateFormat,
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(sh)
	}
	return sh
}

// Run reads commands from in until exit, end of input, or ctx is done.
// Command errors are reported to the output and never end the session.
func (sh *Shell) Run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(sh.out, Intro)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(sh.out, Prompt)
		select {
		case <-ctx.Done():
			fmt.Fprintln(sh.out)
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(sh.out)
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("reading input: %w", err)
					}
				default:
				}
				return nil
			}
			if err := sh.Dispatch(line); err != nil {
				if errors.Is(err, ErrExit) {
					return nil
				}
				sh.Report(err)
			}
		}
	}
}

// Dispatch runs a single command line.
func (sh *Shell) Dispatch(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	name, arg := splitFirst(line)
	return sh.DispatchCommand(name, arg)
}

// DispatchCommand runs the named command with the rest of its line.
func (sh *Shell) DispatchCommand(name, arg string) error {
	name = strings.ToLower(name)
	if target, ok := aliases[name]; ok {
		name = target
	}
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	sh.logger.Debug("Running command", "command", name)
	return cmd.run(sh, strings.TrimSpace(arg))
}

// Report writes a user-facing message for err.
func (sh *Shell) Report(err error) {
	fmt.Fprintln(sh.out, Describe(err))
}

// Describe turns an error from a command into the message shown to the user.
func Describe(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, task.ErrInvalidStatus):
		return "Error - " + err.Error()
	case errors.Is(err, ErrUsage):
		return "Error - Usage: " + strings.TrimPrefix(err.Error(), ErrUsage.Error()+": ")
	case errors.Is(err, ErrUnknownCommand):
		return fmt.Sprintf("Error - %v. Type 'help' for commands.", err)
	case errors.Is(err, store.ErrStorageIO):
		return "Error saving tasks: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}

func usageError(name string) error {
	return fmt.Errorf("%w: %s", ErrUsage, commands[name].usage)
}

func (sh *Shell) add(arg string) error {
	if arg == "" {
		return usageError("add")
	}
	t, err := sh.store.Add(arg)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Added task %s: %s\n", t.ID(), t.Description())
	return nil
}

func (sh *Shell) update(arg string) error {
	id, description := splitFirst(arg)
	if id == "" || description == "" {
		return usageError("update")
	}
	if err := sh.store.Update(id, description); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Task %s description updated successfully\n", id)
	return nil
}

func (sh *Shell) delete(arg string) error {
	if arg == "" || strings.ContainsAny(arg, " \t") {
		return usageError("delete")
	}
	if err := sh.store.Delete(arg); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Task %s deleted\n", arg)
	return nil
}

func (sh *Shell) list(arg string) error {
	if arg == "" {
		fmt.Fprintln(sh.out, ui.RenderTable(sh.store.List(), sh.dateFormat))
		return nil
	}
	tasks, err := sh.store.Query(arg)
	if err != nil {
		return err
	}
	fmt.Fprintln(sh.out, ui.RenderTable(tasks, sh.dateFormat))
	return nil
}

func (sh *Shell) mark(arg string) error {
	status, id := splitFirst(arg)
	if status == "" || id == "" {
		return usageError("mark")
	}
	if err := sh.store.ChangeStatus(id, status); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Task %s marked %s\n", id, status)
	return nil
}

func (sh *Shell) help(arg string) error {
	if arg != "" {
		name := strings.ToLower(arg)
		if target, ok := aliases[name]; ok {
			name = target
		}
		cmd, ok := commands[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCommand, arg)
		}
		fmt.Fprintf(sh.out, "%s\n  Usage: %s\n", cmd.help, cmd.usage)
		return nil
	}

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(sh.out, "Commands:")
	for _, name := range names {
		fmt.Fprintf(sh.out, "  %-32s %s\n", commands[name].usage, commands[name].help)
	}
	return nil
}

func (sh *Shell) exit(string) error {
	fmt.Fprintln(sh.out, "Goodbye!")
	return ErrExit
}

// splitFirst splits s at the first run of whitespace.
func splitFirst(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}
