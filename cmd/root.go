// Package cmd implements the CLI command structure for tasktracker.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasktracker/internal/config"
	"github.com/nibzard/tasktracker/internal/logging"
	"github.com/nibzard/tasktracker/internal/shell"
	"github.com/nibzard/tasktracker/internal/store"
	"github.com/nibzard/tasktracker/internal/task"
	"github.com/nibzard/tasktracker/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Standard streams, replaced in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Run executes the tasktracker CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("tasktracker", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// No subcommand starts the interactive shell
	subcommand := "shell"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "shell":
		return shellCommand(ctx, cfg, remainingArgs)
	case "add", "update", "delete", "rm", "list", "ls", "mark":
		return taskCommand(cfg, subcommand, remainingArgs)
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "export":
		return exportCommand(cfg, remainingArgs)
	case "doctor":
		return doctorCommand(cfg, remainingArgs)
	case "config":
		return configCommand(cws, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

func newLogger(cfg *config.Config) *log.Logger {
	return logging.NewFromConfig(stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)
}

// openStore loads the configured task file.
func openStore(cfg *config.Config, logger *log.Logger) (*store.Store, error) {
	s, err := store.Open(cfg.DataFile, store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("opening task file: %w", err)
	}
	return s, nil
}

// shellCommand runs the interactive command loop.
func shellCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}

	logger := newLogger(cfg)
	s, err := openStore(cfg, logger)
	if err != nil {
		return err
	}

	sh := shell.New(s, stdout, shell.WithDateFormat(cfg.DateFormat), shell.WithLogger(logger))
	if err := sh.Run(ctx, stdin); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// taskCommand runs a single shell command non-interactively.
func taskCommand(cfg *config.Config, name string, args []string) error {
	logger := newLogger(cfg)
	s, err := openStore(cfg, logger)
	if err != nil {
		return err
	}

	sh := shell.New(s, stdout, shell.WithDateFormat(cfg.DateFormat), shell.WithLogger(logger))
	return sh.DispatchCommand(name, strings.Join(args, " "))
}

// tuiCommand launches the viewer.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasktracker tui", flag.ContinueOnError)
	fs.SetOutput(stderr)
	statusFilter := fs.String("status", "", "Start filtered to a status (not-done|in-progress|done)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	opts := []ui.TUIOption{ui.WithDateFormat(cfg.DateFormat)}
	if *statusFilter != "" {
		status, err := task.NormalizeStatus(*statusFilter)
		if err != nil {
			return err
		}
		opts = append(opts, ui.WithFilter(status))
	}

	s, err := openStore(cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	return ui.RunTUI(ctx, s, opts...)
}

// exportCommand writes every task, or those with one status, as JSON or YAML.
func exportCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasktracker export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", store.FormatJSON, "Output format (json|yaml)")
	output := fs.String("o", "", "Write to file instead of stdout")
	statusFilter := fs.String("status", "", "Only export tasks with this status")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	logger := newLogger(cfg)
	s, err := openStore(cfg, logger)
	if err != nil {
		return err
	}

	tasks := s.List()
	if *statusFilter != "" {
		if tasks, err = s.Query(*statusFilter); err != nil {
			return err
		}
	}

	if *output == "" {
		return store.Export(stdout, tasks, *format)
	}

	f, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := store.Export(f, tasks, *format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing export file: %w", err)
	}
	logger.Info("Exported tasks", "count", len(tasks), "path", *output)
	return nil
}

// doctorCommand checks the config and the task file.
func doctorCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasktracker doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Verbose output")
	printSchema := fs.Bool("print-schema", false, "Print the JSON Schema the task file is checked against")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *printSchema {
		return printSchemaFile(cfg.SchemaFile)
	}

	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	dataPath := cfg.DataFile
	if len(remaining) == 1 {
		dataPath = remaining[0]
	}
	if !filepath.IsAbs(dataPath) {
		dataPath = filepath.Join(cfg.WorkDir, dataPath)
	}

	fmt.Fprintln(stdout, "TaskTracker Doctor")
	fmt.Fprintln(stdout, "==================")
	fmt.Fprintln(stdout)

	allOK := true

	// Check config
	fmt.Fprintln(stdout, "Config:")
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stdout, "  ❌ %v\n", err)
		allOK = false
	} else {
		fmt.Fprintf(stdout, "  ✅ Log level: %s (%s)\n", cfg.LogLevel, cfg.LogFormat)
		fmt.Fprintf(stdout, "  ✅ Date format: %s\n", cfg.DateFormat)
	}
	fmt.Fprintln(stdout)

	// Check schema file
	if cfg.SchemaFile == "" {
		fmt.Fprintln(stdout, "Schema file: (embedded)")
	} else {
		fmt.Fprintf(stdout, "Schema file: %s\n", cfg.SchemaFile)
		if info, err := os.Stat(cfg.SchemaFile); err != nil {
			fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
			allOK = false
		} else if info.IsDir() {
			fmt.Fprintln(stdout, "  ❌ Error: path is a directory")
			allOK = false
		} else {
			fmt.Fprintln(stdout, "  ✅ OK")
		}
	}
	fmt.Fprintln(stdout)

	// Check task file
	fmt.Fprintf(stdout, "Task file: %s\n", dataPath)
	info, err := os.Stat(dataPath)
	switch {
	case err != nil && os.IsNotExist(err):
		fmt.Fprintln(stdout, "  ⚠️  Not found (will be created on first use)")
	case err != nil:
		fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
		allOK = false
	case info.IsDir():
		fmt.Fprintln(stdout, "  ❌ Error: path is a directory")
		allOK = false
	default:
		result := store.Validate(dataPath, store.ValidationOptions{SchemaPath: cfg.SchemaFile})
		for _, w := range result.Warnings {
			fmt.Fprintf(stdout, "  ⚠️  %s\n", w)
		}
		if result.Valid {
			fmt.Fprintf(stdout, "  ✅ Valid (%d tasks)\n", result.Tasks)
		} else {
			fmt.Fprintln(stdout, "  ❌ Validation failed:")
			for _, e := range result.Errors {
				fmt.Fprintf(stdout, "     - %v\n", e)
			}
			allOK = false
		}
		if *verbose && result.UsedSchema {
			fmt.Fprintln(stdout, "  Checked against JSON Schema")
		}
	}
	fmt.Fprintln(stdout)

	if allOK {
		fmt.Fprintln(stdout, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(stdout, "⚠️  Some checks failed. TaskTracker may not load your tasks.")
	return fmt.Errorf("doctor checks failed")
}

// printSchemaFile writes the configured schema, or the embedded one.
func printSchemaFile(path string) error {
	if path == "" {
		fmt.Fprint(stdout, store.EmbeddedSchema())
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading schema file: %w", err)
	}
	_, err = stdout.Write(data)
	return err
}

// configCommand prints the effective configuration.
func configCommand(cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("tasktracker config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	example := fs.Bool("example", false, "Print an example config file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *example {
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	}

	fmt.Fprintln(stdout, "Config files:")
	if len(cws.Files) == 0 {
		fmt.Fprintln(stdout, "  (none)")
	}
	for _, path := range cws.Files {
		fmt.Fprintf(stdout, "  %s\n", path)
	}
	fmt.Fprintln(stdout)

	fmt.Fprintln(stdout, "Effective values:")
	for _, field := range config.Fields() {
		value := cws.Config.Value(field)
		if value == "" {
			value = "(empty)"
		}
		fmt.Fprintf(stdout, "  %-15s %-40s [%s]\n", field, value, cws.Sources[field])
	}
	return nil
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Fprintf(stdout, "tasktracker version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "TaskTracker - track tasks from the command line")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasktracker [options] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  shell                      Interactive shell (default command)")
	fmt.Fprintln(w, "  add <description>          Add a task")
	fmt.Fprintln(w, "  update <id> <description>  Update a task description")
	fmt.Fprintln(w, "  delete <id>                Delete a task")
	fmt.Fprintln(w, "  list [status]              List tasks, optionally by status")
	fmt.Fprintln(w, "  mark <status> <id>         Set a task status (not-done|in-progress|done)")
	fmt.Fprintln(w, "  tui                        Launch terminal UI")
	fmt.Fprintln(w, "  export                     Write tasks as JSON or YAML")
	fmt.Fprintln(w, "  doctor [file]              Check config and task file validity")
	fmt.Fprintln(w, "  config                     Show effective configuration")
	fmt.Fprintln(w, "  version                    Show version information")
	fmt.Fprintln(w, "  help                       Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tui Options (use with 'tui' command):")
	fmt.Fprintln(w, "  -status string")
	fmt.Fprintln(w, "        Start filtered to a status")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export Options (use with 'export' command):")
	fmt.Fprintln(w, "  -format string")
	fmt.Fprintln(w, "        Output format (json|yaml) (default \"json\")")
	fmt.Fprintln(w, "  -o string")
	fmt.Fprintln(w, "        Write to file instead of stdout")
	fmt.Fprintln(w, "  -status string")
	fmt.Fprintln(w, "        Only export tasks with this status")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Doctor Options (use with 'doctor' command):")
	fmt.Fprintln(w, "  -v    Verbose output")
	fmt.Fprintln(w, "  -print-schema")
	fmt.Fprintln(w, "        Print the JSON Schema the task file is checked against")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config Options (use with 'config' command):")
	fmt.Fprintln(w, "  -example")
	fmt.Fprintln(w, "        Print an example config file")
}
