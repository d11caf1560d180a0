// Package ledger maintains the append-only attendance event history and
// derives the next legal event kind per employee.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matiasrios/facegate/internal/shift"
	"github.com/matiasrios/facegate/internal/storage"
)

// Ledger appends attendance events and answers history queries. Events are
// durable before Append returns; they are never mutated or deleted.
type Ledger struct {
	backend storage.Store
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a ledger over the given backend.
func New(backend storage.Store) *Ledger {
	return &Ledger{
		backend: backend,
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
}

// SetClock overrides the wall clock, for tests.
func (l *Ledger) SetClock(now func() time.Time) {
	l.now = now
}

// LockEmployee acquires the per-employee mutex serializing the
// read-check-append critical section. Two concurrent attempts for the same
// employee must not both observe the same expected kind and both append.
// The returned func releases the lock.
func (l *Ledger) LockEmployee(employeeID string) func() {
	l.mu.Lock()
	m, ok := l.locks[employeeID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[employeeID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Append records a new event. It always succeeds for well-formed inputs;
// the backend must persist durably before this returns.
func (l *Ledger) Append(ctx context.Context, employeeID string, sh shift.Shift, kind storage.EventKind, timing shift.Timing) (storage.AttendanceEvent, error) {
	now := l.now()
	ev := storage.AttendanceEvent{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		Shift:      string(sh),
		Kind:       kind,
		Date:       now.Format("2006-01-02"),
		Time:       now.Format("15:04:05"),
		Timing:     string(timing),
		CreatedAt:  now,
	}
	if err := l.backend.AppendEvent(ctx, ev); err != nil {
		return storage.AttendanceEvent{}, fmt.Errorf("failed to append event: %w", err)
	}
	return ev, nil
}

// NextExpectedKind derives the next legal event kind from the employee's
// most recent event. An employee with no history always starts with check-in.
func (l *Ledger) NextExpectedKind(ctx context.Context, employeeID string) (storage.EventKind, error) {
	events, err := l.backend.QueryEvents(ctx, storage.EventFilter{EmployeeID: employeeID})
	if err != nil {
		return "", fmt.Errorf("failed to query events: %w", err)
	}
	if len(events) == 0 {
		return storage.KindCheckIn, nil
	}

	latest := events[0]
	for _, ev := range events[1:] {
		if ev.CreatedAt.After(latest.CreatedAt) {
			latest = ev
		}
	}
	return latest.Kind.Opposite(), nil
}

// HasEventToday reports whether the employee already has an event of the
// given kind on the given calendar date. At most one check-in and one
// check-out are allowed per employee per day, regardless of shift.
func (l *Ledger) HasEventToday(ctx context.Context, employeeID string, kind storage.EventKind, date string) (bool, error) {
	events, err := l.backend.QueryEvents(ctx, storage.EventFilter{
		EmployeeID: employeeID,
		Kind:       kind,
		Date:       date,
	})
	if err != nil {
		return false, fmt.Errorf("failed to query events: %w", err)
	}
	return len(events) > 0, nil
}

// History returns the employee's events, newest first. Date bounds are
// inclusive; empty bounds mean unrestricted. The result is a snapshot list.
func (l *Ledger) History(ctx context.Context, employeeID, fromDate, toDate string) ([]storage.AttendanceEvent, error) {
	events, err := l.backend.QueryEvents(ctx, storage.EventFilter{
		EmployeeID: employeeID,
		FromDate:   fromDate,
		ToDate:     toDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events, nil
}

// Today returns the current calendar date in the ledger's clock.
func (l *Ledger) Today() string {
	return l.now().Format("2006-01-02")
}

// Now returns the ledger's current wall-clock time.
func (l *Ledger) Now() time.Time {
	return l.now()
}
