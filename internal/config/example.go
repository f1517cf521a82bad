package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tasktracker configuration file
# Values can be overridden by TASKTRACKER_* environment variables or CLI flags

# Task file (relative to the working directory, supports ~ expansion)
data_file = "data/tasks.json"

# JSON Schema used by "tasktracker doctor" (empty uses the built-in schema)
# schema_file = "tasks.schema.json"

# Go time layout for the Created At / Updated At columns
date_format = "02/01/2006 15:04:05"

# Logging: debug, info, warn, error
log_level = "info"
# text, json, or logfmt
log_format = "text"
log_timestamps = false
log_caller = false
`
}
