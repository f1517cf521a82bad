package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasktracker/internal/task"
)

// DefaultFileMode is the permission used for the durable file.
const DefaultFileMode os.FileMode = 0644

// Store owns the task collection and its durable file.
type Store struct {
	mu     sync.Mutex
	path   string
	tasks  map[string]task.Task
	logger *log.Logger
	clock  Clock
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load and persistence notices.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the clock used to stamp tasks.
func WithClock(clock Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// Open loads the durable file at path into a new Store.
//
// A missing or unreadable file is replaced by an empty one and a file that
// is not a JSON object is ignored; neither is an error. Open fails if the
// parent directory cannot be created or if a task in an otherwise valid
// file cannot be decoded or sits under a key other than its id.
func Open(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("task file path is empty")
	}
	s := &Store{
		path:   path,
		tasks:  make(map[string]task.Task),
		logger: log.New(io.Discard),
		clock:  RealClock{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the durable file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() error {
	dir := filepath.Dir(s.path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: create directory %s: %v", ErrStorageIO, dir, err)
		}
		s.logger.Info("Created directory", "path", dir)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.Info("Task file missing or unreadable, creating it", "path", s.path)
		if err := s.writeFile(map[string]task.Record{}); err != nil {
			s.logger.Warn("Could not create task file", "path", s.path, "err", err)
		}
		return nil
	}

	tasks, err := decodeFile(data)
	if err != nil {
		if errors.Is(err, ErrMalformedFile) {
			s.logger.Warn("Task file is not valid JSON, starting empty", "path", s.path, "err", err)
			return nil
		}
		return fmt.Errorf("load %s: %w", s.path, err)
	}
	s.tasks = tasks
	s.logger.Debug("Loaded tasks", "path", s.path, "count", len(tasks))
	return nil
}

// decodeFile parses the durable file contents. It returns ErrMalformedFile
// when data is not a JSON object and the task error for the first entry
// (in key order) that fails to decode. Every key must equal its task's id.
func decodeFile(data []byte) (map[string]task.Task, error) {
	raw, err := parseObject(data)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tasks := make(map[string]task.Task, len(raw))
	for _, key := range keys {
		t, err := task.Decode(raw[key])
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", key, err)
		}
		if t.ID() != key {
			return nil, fmt.Errorf("task %q: %w: id %q does not match its key", key, task.ErrMalformedTask, t.ID())
		}
		tasks[key] = t
	}
	return tasks, nil
}

func parseObject(data []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected object, got null", ErrMalformedFile)
	}
	return raw, nil
}

// Save writes the whole collection to the durable file.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

func (s *Store) save() error {
	records := make(map[string]task.Record, len(s.tasks))
	for id, t := range s.tasks {
		records[id] = t.Record()
	}
	if err := s.writeFile(records); err != nil {
		return err
	}
	s.logger.Debug("Saved tasks", "path", s.path, "count", len(records))
	return nil
}

// writeFile replaces the durable file through a temporary file and rename.
func (s *Store) writeFile(records map[string]task.Record) error {
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal task file: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrStorageIO, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("%w: write task file: %v", ErrStorageIO, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("%w: sync task file: %v", ErrStorageIO, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("%w: close task file: %v", ErrStorageIO, err)
	}
	if err := os.Chmod(tmpPath, DefaultFileMode); err != nil {
		cleanup()
		return fmt.Errorf("%w: chmod task file: %v", ErrStorageIO, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		cleanup()
		return fmt.Errorf("%w: replace task file: %v", ErrStorageIO, err)
	}
	return nil
}

// Add creates a task with the given description, persists, and returns it.
// The task is kept in memory even if persisting fails.
func (s *Store) Add(description string) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := task.NewAt(description, s.clock.Now())
	s.tasks[t.ID()] = t
	if err := s.save(); err != nil {
		return t, err
	}
	s.logger.Debug("Added task", "id", t.ID())
	return t, nil
}

// Update replaces the description of task id.
func (s *Store) Update(id, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	t.SetDescriptionAt(description, s.clock.Now())
	s.tasks[id] = t
	return s.save()
}

// Delete removes task id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.tasks, id)
	return s.save()
}

// ChangeStatus parses raw as an exact status string and sets it on task id.
// The id is checked first, so an unknown id reports ErrNotFound even when
// raw is also invalid.
func (s *Store) ChangeStatus(id, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	status, err := task.ParseStatus(raw)
	if err != nil {
		return err
	}
	return s.setStatus(t, status)
}

// SetStatus sets an already-validated status on task id.
func (s *Store) SetStatus(id string, status task.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.setStatus(t, status)
}

func (s *Store) setStatus(t task.Task, status task.Status) error {
	if err := t.SetStatusAt(status, s.clock.Now()); err != nil {
		return err
	}
	s.tasks[t.ID()] = t
	return s.save()
}

// Query returns the tasks whose status matches raw after normalization
// ("In Progress" and "in_progress" both match in-progress).
func (s *Store) Query(raw string) ([]task.Task, error) {
	status, err := task.NormalizeStatus(raw)
	if err != nil {
		return nil, err
	}
	return s.QueryStatus(status), nil
}

// QueryStatus returns the tasks with the given status.
func (s *Store) QueryStatus(status task.Status) []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []task.Task
	for _, t := range s.tasks {
		if t.Status() == status {
			out = append(out, t)
		}
	}
	sortTasks(out)
	return out
}

// List returns every task.
func (s *Store) List() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sortTasks(out)
	return out
}

// Get returns task id.
func (s *Store) Get(id string) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	return t, ok
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// sortTasks orders by creation time, then id.
func sortTasks(tasks []task.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		ci, cj := tasks[i].CreatedAt(), tasks[j].CreatedAt()
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		return tasks[i].ID() < tasks[j].ID()
	})
}
