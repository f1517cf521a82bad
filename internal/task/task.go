package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrMalformedTask is returned when a serialized task is missing a
	// required field or a field has the wrong shape.
	ErrMalformedTask = errors.New("malformed task")
	// ErrInvalidTimestamp is returned when a timestamp is not in a
	// recognized ISO-8601 format.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// TimeLayout is the layout timestamps are written with.
const TimeLayout = time.RFC3339Nano

// Zone-less layouts are interpreted in local time. Fractional seconds are
// accepted after the seconds field for all of them.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Task is a single trackable unit of work. The id and creation time are
// fixed once the task exists; use the setters to change the rest.
type Task struct {
	id          string
	description string
	status      Status
	createdAt   time.Time
	updatedAt   time.Time
}

// Record is the serialized form of a task.
type Record struct {
	Description string `json:"description" yaml:"description"`
	ID          string `json:"id" yaml:"id"`
	Status      string `json:"status" yaml:"status"`
	CreatedAt   string `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   string `json:"updatedAt" yaml:"updatedAt"`
}

// New creates a task with a fresh id, status not-done, and both timestamps
// set to the current time.
func New(description string) Task {
	return NewAt(description, time.Now())
}

// NewAt is like New but uses now for the timestamps.
func NewAt(description string, now time.Time) Task {
	now = now.UTC()
	return Task{
		id:          uuid.NewString(),
		description: description,
		status:      StatusNotDone,
		createdAt:   now,
		updatedAt:   now,
	}
}

// Restore builds a task from already-validated parts.
// It fails only if updatedAt precedes createdAt or id is empty.
func Restore(id, description string, status Status, createdAt, updatedAt time.Time) (Task, error) {
	if id == "" {
		return Task{}, fmt.Errorf("%w: empty id", ErrMalformedTask)
	}
	if !status.Valid() {
		return Task{}, fmt.Errorf("%w %q", ErrInvalidStatus, string(status))
	}
	if updatedAt.Before(createdAt) {
		return Task{}, fmt.Errorf("%w: updatedAt %s precedes createdAt %s",
			ErrMalformedTask, updatedAt.Format(TimeLayout), createdAt.Format(TimeLayout))
	}
	return Task{
		id:          id,
		description: description,
		status:      status,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

func (t Task) ID() string           { return t.id }
func (t Task) Description() string  { return t.description }
func (t Task) Status() Status       { return t.status }
func (t Task) CreatedAt() time.Time { return t.createdAt }
func (t Task) UpdatedAt() time.Time { return t.updatedAt }

// IsZero returns true if the task is empty (has no ID).
func (t Task) IsZero() bool {
	return t.id == ""
}

// SetDescription replaces the description and refreshes updatedAt.
func (t *Task) SetDescription(description string) {
	t.SetDescriptionAt(description, time.Now())
}

// SetDescriptionAt is like SetDescription but uses now for updatedAt.
func (t *Task) SetDescriptionAt(description string, now time.Time) {
	t.description = description
	t.touch(now)
}

// SetStatus replaces the status and refreshes updatedAt.
func (t *Task) SetStatus(status Status) error {
	return t.SetStatusAt(status, time.Now())
}

// SetStatusAt is like SetStatus but uses now for updatedAt.
// The task is unchanged if status is not a member of the enumeration.
func (t *Task) SetStatusAt(status Status, now time.Time) error {
	if !status.Valid() {
		return fmt.Errorf("%w %q", ErrInvalidStatus, string(status))
	}
	t.status = status
	t.touch(now)
	return nil
}

// SetStatusString parses raw and sets the result as the status.
func (t *Task) SetStatusString(raw string) error {
	status, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	return t.SetStatus(status)
}

// touch moves updatedAt to now, never earlier than createdAt.
func (t *Task) touch(now time.Time) {
	now = now.UTC()
	if now.Before(t.createdAt) {
		now = t.createdAt
	}
	t.updatedAt = now
}

// Record returns the serialized form of the task.
func (t Task) Record() Record {
	return Record{
		Description: t.description,
		ID:          t.id,
		Status:      string(t.status),
		CreatedAt:   FormatTime(t.createdAt),
		UpdatedAt:   FormatTime(t.updatedAt),
	}
}

// FromRecord builds a task from its serialized form.
func FromRecord(r Record) (Task, error) {
	status, err := ParseStatus(r.Status)
	if err != nil {
		return Task{}, err
	}
	createdAt, err := ParseTime(r.CreatedAt)
	if err != nil {
		return Task{}, fmt.Errorf("createdAt: %w", err)
	}
	updatedAt, err := ParseTime(r.UpdatedAt)
	if err != nil {
		return Task{}, fmt.Errorf("updatedAt: %w", err)
	}
	return Restore(r.ID, r.Description, status, createdAt, updatedAt)
}

// MarshalJSON encodes the task as its Record.
func (t Task) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Record())
}

// UnmarshalJSON decodes a task with the same checks as Decode.
func (t *Task) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*t = decoded
	return nil
}

// Decode parses a JSON object into a task. Every field is required and
// must be a string.
func Decode(data []byte) (Task, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Task{}, fmt.Errorf("%w: %v", ErrMalformedTask, err)
	}
	if fields == nil {
		return Task{}, fmt.Errorf("%w: expected object, got null", ErrMalformedTask)
	}

	var r Record
	targets := []struct {
		name string
		dst  *string
	}{
		{"description", &r.Description},
		{"id", &r.ID},
		{"status", &r.Status},
		{"createdAt", &r.CreatedAt},
		{"updatedAt", &r.UpdatedAt},
	}
	for _, target := range targets {
		raw, ok := fields[target.name]
		if !ok {
			return Task{}, fmt.Errorf("%w: missing required field %q", ErrMalformedTask, target.name)
		}
		if err := json.Unmarshal(raw, target.dst); err != nil || string(raw) == "null" {
			return Task{}, fmt.Errorf("%w: field %q must be a string", ErrMalformedTask, target.name)
		}
	}

	return FromRecord(r)
}

// FormatTime formats t the way the durable file stores timestamps.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses an ISO-8601 timestamp. Zone-less values are read in
// local time.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w %q", ErrInvalidTimestamp, s)
}
