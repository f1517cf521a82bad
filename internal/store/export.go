package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nibzard/tasktracker/internal/task"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownFormat is returned by Export for a format it cannot write.
var ErrUnknownFormat = errors.New("unknown export format")

// Export writes tasks to w as a list of records in the given format.
func Export(w io.Writer, tasks []task.Task, format string) error {
	records := make([]task.Record, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, t.Record())
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	default:
		return fmt.Errorf("%w %q, must be one of: %s, %s", ErrUnknownFormat, format, FormatJSON, FormatYAML)
	}
	return nil
}
