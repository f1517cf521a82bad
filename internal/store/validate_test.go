package store

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantValid bool
		wantTasks int
	}{
		{
			name:      "empty object",
			content:   `{}`,
			wantValid: true,
		},
		{
			name:      "valid task",
			content:   `{"a": {"id":"a","description":"x","status":"done","createdAt":"2024-01-01T00:00:00","updatedAt":"2024-01-01T00:00:00"}}`,
			wantValid: true,
			wantTasks: 1,
		},
		{
			name:    "key mismatch",
			content: `{"b": {"id":"a","description":"x","status":"done","createdAt":"2024-01-01T00:00:00","updatedAt":"2024-01-01T00:00:00"}}`,
		},
		{
			name:    "bad status",
			content: `{"a": {"id":"a","description":"x","status":"in_progress","createdAt":"2024-01-01T00:00:00","updatedAt":"2024-01-01T00:00:00"}}`,
		},
		{
			name:    "extra field",
			content: `{"a": {"id":"a","description":"x","status":"done","priority":1,"createdAt":"2024-01-01T00:00:00","updatedAt":"2024-01-01T00:00:00"}}`,
		},
		{
			name:    "not json",
			content: `{{`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(writeFile(t, tt.content), ValidationOptions{})
			if result.Valid != tt.wantValid {
				t.Errorf("Valid: got %v, want %v (errors: %v)", result.Valid, tt.wantValid, result.Errors)
			}
			if !result.UsedSchema {
				t.Errorf("UsedSchema: got false, warnings: %v", result.Warnings)
			}
			if tt.wantValid && result.Tasks != tt.wantTasks {
				t.Errorf("Tasks: got %d, want %d", result.Tasks, tt.wantTasks)
			}
			if !tt.wantValid && len(result.Errors) == 0 {
				t.Error("invalid result carries no errors")
			}
		})
	}
}

func TestValidateWithoutSchema(t *testing.T) {
	path := writeFile(t, `{"a": {"id":"a","description":"x","status":"done","priority":1,"createdAt":"2024-01-01T00:00:00","updatedAt":"2024-01-01T00:00:00"}}`)
	result := Validate(path, ValidationOptions{SkipSchema: true})
	if result.UsedSchema {
		t.Error("UsedSchema should be false")
	}
	if !result.Valid {
		t.Errorf("decoder-only validation should ignore extra fields, got %v", result.Errors)
	}
}

func TestValidateMissingSchemaFile(t *testing.T) {
	path := writeFile(t, `{}`)
	result := Validate(path, ValidationOptions{SchemaPath: filepath.Join(t.TempDir(), "nope.json")})
	if result.UsedSchema {
		t.Error("UsedSchema should be false for a missing schema file")
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning for the missing schema")
	}
	if !result.Valid {
		t.Errorf("Valid: got false, errors %v", result.Errors)
	}
}

func TestValidateMissingFile(t *testing.T) {
	result := Validate(filepath.Join(t.TempDir(), "absent.json"), ValidationOptions{})
	if result.Valid {
		t.Error("missing file should not validate")
	}
}

func TestJSONPointerToPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"/a/status", "a.status"},
		{"#/a~1b/id", "a/b.id"},
		{"/list/0/id", "list[0].id"},
	}
	for _, tt := range tests {
		if got := jsonPointerToPath(tt.in); got != tt.want {
			t.Errorf("jsonPointerToPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
