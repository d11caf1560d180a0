package storage

import (
	"time"
)

// EventKind is the kind of attendance event: check-in or check-out.
type EventKind string

const (
	KindCheckIn  EventKind = "check-in"
	KindCheckOut EventKind = "check-out"
)

// Opposite returns the kind that must follow this one in an employee's history.
func (k EventKind) Opposite() EventKind {
	if k == KindCheckIn {
		return KindCheckOut
	}
	return KindCheckIn
}

// Valid reports whether k is one of the two known kinds.
func (k EventKind) Valid() bool {
	return k == KindCheckIn || k == KindCheckOut
}

// EmployeeRecord represents a registered employee with a reference face embedding.
// Records are immutable once created; duplicate registration is rejected.
type EmployeeRecord struct {
	ID        string    `json:"id"`
	Area      string    `json:"area"`
	Role      string    `json:"role"`
	Shift     string    `json:"shift"`
	Embedding []float32 `json:"embedding"`
	CreatedAt time.Time `json:"created_at"`
}

// AttendanceEvent is one entry in the append-only attendance ledger.
// Events are never mutated or deleted.
type AttendanceEvent struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Shift      string    `json:"shift"`
	Kind       EventKind `json:"kind"`
	Date       string    `json:"date"` // calendar date, YYYY-MM-DD
	Time       string    `json:"time"` // wall-clock time, HH:MM:SS
	Timing     string    `json:"timing"`
	CreatedAt  time.Time `json:"created_at"`
}

// EventFilter restricts a QueryEvents call. Zero values mean "no restriction".
// Date bounds are inclusive and compare lexically (YYYY-MM-DD sorts correctly).
type EventFilter struct {
	EmployeeID string
	Kind       EventKind
	Date       string // exact calendar date
	FromDate   string
	ToDate     string
}

// Matches reports whether an event passes the filter. Backends that cannot
// push the filter into a query use it for in-memory filtering.
func (f EventFilter) Matches(ev *AttendanceEvent) bool {
	if f.EmployeeID != "" && ev.EmployeeID != f.EmployeeID {
		return false
	}
	if f.Kind != "" && ev.Kind != f.Kind {
		return false
	}
	if f.Date != "" && ev.Date != f.Date {
		return false
	}
	if f.FromDate != "" && ev.Date < f.FromDate {
		return false
	}
	if f.ToDate != "" && ev.Date > f.ToDate {
		return false
	}
	return true
}
