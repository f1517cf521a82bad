package task

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidStatus is returned when a string is not a recognized status.
var ErrInvalidStatus = errors.New("invalid status")

// Status represents a task status.
type Status string

const (
	StatusNotDone    Status = "not-done"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Statuses returns every status in declaration order.
func Statuses() []Status {
	return []Status{StatusNotDone, StatusInProgress, StatusDone}
}

// StatusNames returns the string form of every status, joined for messages.
func StatusNames() string {
	names := make([]string, 0, 3)
	for _, s := range Statuses() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// ParseStatus parses one of the exact status strings.
// Case mismatches and synonyms such as "in_progress" are rejected.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNotDone, StatusInProgress, StatusDone:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w %q, must be one of: %s", ErrInvalidStatus, s, StatusNames())
	}
}

// NormalizeStatus lowercases s and maps spaces and underscores to hyphens
// before parsing it, so "In Progress" and "in_progress" both yield
// StatusInProgress.
func NormalizeStatus(s string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "-", "_", "-").Replace(normalized)
	status, err := ParseStatus(normalized)
	if err != nil {
		return "", fmt.Errorf("%w %q, must be one of: %s", ErrInvalidStatus, s, StatusNames())
	}
	return status, nil
}

// Valid reports whether s is a member of the enumeration.
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

func (s Status) String() string {
	return string(s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w %q", ErrInvalidStatus, string(s))
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
