// Package jsonfile provides a file-based persistence backend for
// installations without a database server. Employees and events live in two
// JSON files under a data directory; every write rewrites the file
// atomically via a temp file and rename.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matiasrios/facegate/internal/storage"
)

const (
	employeesFile = "employees.json"
	eventsFile    = "events.json"
)

// Store is the JSON-file-backed storage.Store implementation.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates the data directory if needed and returns the store.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func readJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return items, nil
}

// writeJSON writes the items to path atomically. The temp file lands in the
// same directory so the rename never crosses filesystems.
func writeJSON[T any](path string, items []T) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// LoadAllEmployees retrieves the full employee registry.
func (s *Store) LoadAllEmployees(ctx context.Context) ([]storage.EmployeeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readJSON[storage.EmployeeRecord](filepath.Join(s.dir, employeesFile))
}

// SaveEmployee appends a new employee and rewrites the registry file.
// Returns storage.ErrDuplicateEmployee when the ID already exists.
func (s *Store) SaveEmployee(ctx context.Context, rec storage.EmployeeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, employeesFile)
	records, err := readJSON[storage.EmployeeRecord](path)
	if err != nil {
		return err
	}
	for _, existing := range records {
		if existing.ID == rec.ID {
			return fmt.Errorf("%w: %s", storage.ErrDuplicateEmployee, rec.ID)
		}
	}
	return writeJSON(path, append(records, rec))
}

// AppendEvent persists one attendance event.
func (s *Store) AppendEvent(ctx context.Context, ev storage.AttendanceEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, eventsFile)
	events, err := readJSON[storage.AttendanceEvent](path)
	if err != nil {
		return err
	}
	return writeJSON(path, append(events, ev))
}

// QueryEvents returns events matching the filter.
func (s *Store) QueryEvents(ctx context.Context, filter storage.EventFilter) ([]storage.AttendanceEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := readJSON[storage.AttendanceEvent](filepath.Join(s.dir, eventsFile))
	if err != nil {
		return nil, err
	}
	var matched []storage.AttendanceEvent
	for _, ev := range events {
		if filter.Matches(&ev) {
			matched = append(matched, ev)
		}
	}
	return matched, nil
}

// Close is a no-op; files are closed after every operation.
func (s *Store) Close() error {
	return nil
}
