// Package mock provides an in-memory storage implementation for testing.
package mock

import (
	"context"
	"sync"

	"github.com/matiasrios/facegate/internal/storage"
)

// MockStore is an in-memory implementation of storage.Store.
type MockStore struct {
	mu        sync.RWMutex
	employees map[string]storage.EmployeeRecord
	events    []storage.AttendanceEvent

	// Error injection
	LoadAllEmployeesError error
	SaveEmployeeError     error
	AppendEventError      error
	QueryEventsError      error
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		employees: make(map[string]storage.EmployeeRecord),
	}
}

// AddEmployee seeds an employee without going through SaveEmployee.
func (m *MockStore) AddEmployee(rec storage.EmployeeRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[rec.ID] = rec
}

// AddEvent seeds an event without going through AppendEvent.
func (m *MockStore) AddEvent(ev storage.AttendanceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

// EventCount returns the number of stored events.
func (m *MockStore) EventCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// LoadAllEmployees returns every seeded employee.
func (m *MockStore) LoadAllEmployees(ctx context.Context) ([]storage.EmployeeRecord, error) {
	if m.LoadAllEmployeesError != nil {
		return nil, m.LoadAllEmployeesError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]storage.EmployeeRecord, 0, len(m.employees))
	for _, rec := range m.employees {
		out = append(out, rec)
	}
	return out, nil
}

// SaveEmployee stores a new employee, rejecting duplicates.
func (m *MockStore) SaveEmployee(ctx context.Context, rec storage.EmployeeRecord) error {
	if m.SaveEmployeeError != nil {
		return m.SaveEmployeeError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.employees[rec.ID]; exists {
		return storage.ErrDuplicateEmployee
	}
	m.employees[rec.ID] = rec
	return nil
}

// AppendEvent appends an event to the in-memory log.
func (m *MockStore) AppendEvent(ctx context.Context, ev storage.AttendanceEvent) error {
	if m.AppendEventError != nil {
		return m.AppendEventError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

// QueryEvents returns events matching the filter.
func (m *MockStore) QueryEvents(ctx context.Context, filter storage.EventFilter) ([]storage.AttendanceEvent, error) {
	if m.QueryEventsError != nil {
		return nil, m.QueryEventsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []storage.AttendanceEvent
	for i := range m.events {
		if filter.Matches(&m.events[i]) {
			out = append(out, m.events[i])
		}
	}
	return out, nil
}

// Close is a no-op for the mock.
func (m *MockStore) Close() error {
	return nil
}
