package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matiasrios/facegate/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func record(id string) storage.EmployeeRecord {
	return storage.EmployeeRecord{
		ID:        id,
		Area:      "production",
		Role:      "operator",
		Shift:     "morning",
		Embedding: []float32{0.1, 0.2, 0.3},
		CreatedAt: time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC),
	}
}

func TestSaveAndLoadEmployees(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveEmployee(ctx, record("E1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SaveEmployee(ctx, record("E2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := s.LoadAllEmployees(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 employees, got %d", len(records))
	}
	if records[0].ID != "E1" || len(records[0].Embedding) != 3 {
		t.Errorf("unexpected record %+v", records[0])
	}
}

func TestSaveEmployee_Duplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveEmployee(ctx, record("E1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := s.SaveEmployee(ctx, record("E1"))
	if !errors.Is(err, storage.ErrDuplicateEmployee) {
		t.Errorf("expected ErrDuplicateEmployee, got %v", err)
	}
}

func TestLoadAllEmployees_EmptyDir(t *testing.T) {
	s := newTestStore(t)

	records, err := s.LoadAllEmployees(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no employees, got %d", len(records))
	}
}

func TestAppendAndQueryEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	events := []storage.AttendanceEvent{
		{ID: "1", EmployeeID: "E1", Kind: storage.KindCheckIn, Date: "2025-03-10", Time: "06:00:00", CreatedAt: base},
		{ID: "2", EmployeeID: "E1", Kind: storage.KindCheckOut, Date: "2025-03-10", Time: "14:00:00", CreatedAt: base.Add(8 * time.Hour)},
		{ID: "3", EmployeeID: "E2", Kind: storage.KindCheckIn, Date: "2025-03-11", Time: "22:00:00", CreatedAt: base.Add(40 * time.Hour)},
	}
	for _, ev := range events {
		if err := s.AppendEvent(ctx, ev); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	t.Run("by employee", func(t *testing.T) {
		got, err := s.QueryEvents(ctx, storage.EventFilter{EmployeeID: "E1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("expected 2 events, got %d", len(got))
		}
	})

	t.Run("by kind and date", func(t *testing.T) {
		got, err := s.QueryEvents(ctx, storage.EventFilter{
			EmployeeID: "E1",
			Kind:       storage.KindCheckIn,
			Date:       "2025-03-10",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].ID != "1" {
			t.Errorf("expected event 1, got %v", got)
		}
	})

	t.Run("date range", func(t *testing.T) {
		got, err := s.QueryEvents(ctx, storage.EventFilter{FromDate: "2025-03-11", ToDate: "2025-03-11"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].EmployeeID != "E2" {
			t.Errorf("expected E2's event, got %v", got)
		}
	})
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := New(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := s.SaveEmployee(ctx, record("E1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AppendEvent(ctx, storage.AttendanceEvent{ID: "1", EmployeeID: "E1", Kind: storage.KindCheckIn, Date: "2025-03-10"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reopened, err := New(dir)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	records, err := reopened.LoadAllEmployees(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 employee after reopen, got %d", len(records))
	}
	events, err := reopened.QueryEvents(ctx, storage.EventFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 event after reopen, got %d", len(events))
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := s.SaveEmployee(context.Background(), record("E1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, e := range entries {
		if e.Name() != employeesFile {
			t.Errorf("unexpected leftover file %s", e.Name())
		}
	}
	if _, err := os.Stat(filepath.Join(dir, employeesFile)); err != nil {
		t.Errorf("expected %s to exist: %v", employeesFile, err)
	}
}
