package store

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/tasktracker/internal/task"
)

//go:embed tasks.schema.json
var embeddedSchema string

// embeddedSchemaURL names the embedded schema inside the compiler. It is
// never fetched.
const embeddedSchemaURL = "https://tasktracker.invalid/tasks.schema.json"

// EmbeddedSchema returns the JSON Schema the durable file is checked against.
func EmbeddedSchema() string {
	return embeddedSchema
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationOptions controls validation behavior.
type ValidationOptions struct {
	// SchemaPath overrides the embedded schema with a file on disk.
	SchemaPath string
	// SkipSchema disables JSON Schema validation entirely.
	SkipSchema bool
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid      bool
	Tasks      int
	Errors     []error
	Warnings   []string
	UsedSchema bool // true if JSON Schema validation was performed
}

// Validate checks the durable file at path without loading it into a
// Store. Schema checks run first; the task decoder always runs after them
// so timestamp and consistency problems are reported too.
func Validate(path string, opts ValidationOptions) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Errorf("read task file: %w", err))
		return result
	}

	if !opts.SkipSchema {
		validateWithSchema(data, opts.SchemaPath, result)
	}
	validateTasks(data, result)
	return result
}

// validateTasks decodes every entry and checks that keys match ids.
func validateTasks(data []byte, result *ValidationResult) {
	raw, err := parseObject(data)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err)
		return
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		t, err := task.Decode(raw[key])
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, &ValidationError{Path: key, Err: err})
			continue
		}
		if t.ID() != key {
			result.Valid = false
			result.Errors = append(result.Errors, &ValidationError{
				Path: key + ".id",
				Err:  fmt.Errorf("%w: id %q does not match its key", task.ErrMalformedTask, t.ID()),
			})
			continue
		}
		result.Tasks++
	}
}

func compileSchema(schemaPath string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if schemaPath == "" {
		if err := compiler.AddResource(embeddedSchemaURL, strings.NewReader(embeddedSchema)); err != nil {
			return nil, fmt.Errorf("load embedded schema: %w", err)
		}
		return compiler.Compile(embeddedSchemaURL)
	}

	absPath, err := filepath.Abs(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("invalid schema path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	return compiler.Compile(absPath)
}

// validateWithSchema runs JSON Schema validation. A schema that cannot be
// compiled is a warning, not a validation failure.
func validateWithSchema(data []byte, schemaPath string, result *ValidationResult) {
	schema, err := compileSchema(schemaPath)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("JSON Schema validation not available: %v", err))
		return
	}
	result.UsedSchema = true

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		// Reported by the decoder pass.
		return
	}

	if err := schema.Validate(doc); err != nil {
		result.Valid = false
		appendSchemaErrors(result, err)
	}
}

func appendSchemaErrors(result *ValidationResult, err error) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.Errors = append(result.Errors, err)
		return
	}
	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

// jsonPointerToPath turns "/abc/status" into "abc.status".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var parts []string
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			if len(parts) > 0 {
				parts[len(parts)-1] += fmt.Sprintf("[%d]", idx)
				continue
			}
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ".")
}
