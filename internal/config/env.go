package config

import (
	"os"
	"strings"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "TASKTRACKER_"

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	setString := func(field string, dst *string) {
		if v := os.Getenv(envName(field)); v != "" {
			*dst = v
			sources[field] = SourceEnv
		}
	}
	setBool := func(field string, dst *bool) {
		if v := os.Getenv(envName(field)); v != "" {
			*dst = boolFromString(v)
			sources[field] = SourceEnv
		}
	}

	setString("data_file", &cfg.DataFile)
	setString("schema_file", &cfg.SchemaFile)
	setString("date_format", &cfg.DateFormat)
	setString("log_level", &cfg.LogLevel)
	setString("log_format", &cfg.LogFormat)
	setBool("log_timestamps", &cfg.LogTimestamps)
	setBool("log_caller", &cfg.LogCaller)
}

// envName maps a field name to its variable, e.g. data_file -> TASKTRACKER_DATA_FILE.
func envName(field string) string {
	return EnvPrefix + strings.ToUpper(field)
}

func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
