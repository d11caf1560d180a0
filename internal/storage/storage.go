// Package storage defines the persistence boundary of the attendance core.
// The core never touches files, sockets, or SQL directly; it talks to a Store
// and the concrete backend (PostgreSQL, MariaDB, or a flat JSON file) is
// chosen at startup.
package storage

import (
	"context"
	"errors"
)

// ErrDuplicateEmployee is returned by SaveEmployee when the employee ID
// already exists. Registration must never replace an existing embedding.
var ErrDuplicateEmployee = errors.New("employee already registered")

// Store is the persistence interface consumed by the attendance core.
type Store interface {
	// LoadAllEmployees returns every registered employee.
	LoadAllEmployees(ctx context.Context) ([]EmployeeRecord, error)

	// SaveEmployee persists a new employee record.
	// Returns ErrDuplicateEmployee if the ID is already taken.
	SaveEmployee(ctx context.Context, rec EmployeeRecord) error

	// AppendEvent durably persists an attendance event. The event must be
	// durable before AppendEvent returns.
	AppendEvent(ctx context.Context, ev AttendanceEvent) error

	// QueryEvents returns the events matching the filter, in no particular
	// order. Callers sort as needed.
	QueryEvents(ctx context.Context, filter EventFilter) ([]AttendanceEvent, error)

	// Close releases backend resources.
	Close() error
}
