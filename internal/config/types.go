package config

import (
	"fmt"

	"github.com/nibzard/tasktracker/internal/logging"
	"github.com/nibzard/tasktracker/internal/trackerdir"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// Default values.
const (
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultDateFormat = "02/01/2006 15:04:05"
)

// DefaultDataFile is the task file used when nothing else is configured.
var DefaultDataFile = trackerdir.DefaultTaskPath()

// Config holds the full configuration for tasktracker.
type Config struct {
	// Paths
	DataFile   string `toml:"data_file"`
	SchemaFile string `toml:"schema_file"` // Empty means the embedded schema

	// Presentation
	DateFormat string `toml:"date_format"` // Go time layout for table timestamps

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Working directory (computed)
	WorkDir string `toml:"-"`
}

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, in load order.
	Files []string
}

// Fields returns the configurable field names in display order.
func Fields() []string {
	return []string{
		"data_file",
		"schema_file",
		"date_format",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// Value returns the string form of a field by its TOML name.
func (c *Config) Value(field string) string {
	switch field {
	case "data_file":
		return c.DataFile
	case "schema_file":
		return c.SchemaFile
	case "date_format":
		return c.DateFormat
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return fmt.Sprintf("%t", c.LogTimestamps)
	case "log_caller":
		return fmt.Sprintf("%t", c.LogCaller)
	}
	return ""
}

// Validate checks values that cannot be caught while parsing.
func (c *Config) Validate() error {
	if c.DataFile == "" {
		return fmt.Errorf("data_file must not be empty")
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error, fatal", c.LogLevel)
	}
	if !logging.ValidFormat(c.LogFormat) {
		return fmt.Errorf("invalid log_format %q, must be one of: text, json, logfmt", c.LogFormat)
	}
	if c.DateFormat == "" {
		return fmt.Errorf("date_format must not be empty")
	}
	return nil
}
