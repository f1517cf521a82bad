// Package trackerdir provides constants and utilities for where tasktracker
// keeps its files.
package trackerdir

import "path/filepath"

const (
	// DataDir is the directory holding the task file, relative to the work directory.
	DataDir = "data"

	// DefaultTaskFile is the default task file name (inside DataDir).
	DefaultTaskFile = "tasks.json"

	// ConfigFile is the config file name.
	ConfigFile = "tasktracker.toml"

	// HiddenConfigFile is the alternate project config file name.
	HiddenConfigFile = ".tasktracker.toml"

	// UserDir is the per-user directory under the home directory.
	UserDir = ".tasktracker"
)

// TaskPath returns the task file path relative to workDir.
func TaskPath(workDir string) string {
	return joinPath(workDir, DataDir, DefaultTaskFile)
}

// DefaultTaskPath is TaskPath for the current directory.
func DefaultTaskPath() string {
	return TaskPath("")
}

// ProjectConfigPaths returns the project config candidates in lookup order.
func ProjectConfigPaths(workDir string) []string {
	return []string{
		joinPath(workDir, ConfigFile),
		joinPath(workDir, HiddenConfigFile),
	}
}

// UserConfigPath returns the config path inside a user home directory.
func UserConfigPath(home string) string {
	return filepath.Join(home, UserDir, ConfigFile)
}

func joinPath(workDir string, parts ...string) string {
	if workDir == "." || workDir == "" {
		return filepath.Join(parts...)
	}
	return filepath.Join(append([]string{workDir}, parts...)...)
}
