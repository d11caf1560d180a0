// Package mariadb provides the MariaDB persistence backend. MariaDB has no
// vector column type, so embeddings are stored as JSON-encoded arrays; the
// matcher only ever works on the in-memory registry anyway.
package mariadb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/matiasrios/facegate/internal/storage"
)

// Store is the MariaDB-backed storage.Store implementation.
type Store struct {
	db *sql.DB
}

// New connects to MariaDB, creates the schema if needed, and returns the store.
func New(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("MariaDB DSN is required")
	}

	// DATETIME columns must scan into time.Time.
	if !strings.Contains(dsn, "parseTime") {
		if strings.Contains(dsn, "?") {
			dsn += "&parseTime=true"
		} else {
			dsn += "?parseTime=true"
		}
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MariaDB: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MariaDB: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) createSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS employees (
			id VARCHAR(64) PRIMARY KEY,
			area VARCHAR(255) NOT NULL,
			role VARCHAR(255) NOT NULL,
			shift VARCHAR(32) NOT NULL,
			embedding JSON NOT NULL,
			created_at DATETIME(6) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS attendance_events (
			id VARCHAR(36) PRIMARY KEY,
			employee_id VARCHAR(64) NOT NULL,
			shift VARCHAR(32) NOT NULL,
			kind VARCHAR(16) NOT NULL,
			event_date VARCHAR(10) NOT NULL,
			event_time VARCHAR(8) NOT NULL,
			timing VARCHAR(16) NOT NULL,
			created_at DATETIME(6) NOT NULL,
			INDEX idx_events_employee_date (employee_id, event_date),
			INDEX idx_events_date (event_date)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// LoadAllEmployees retrieves the full employee registry.
func (s *Store) LoadAllEmployees(ctx context.Context) ([]storage.EmployeeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, area, role, shift, embedding, created_at
		FROM employees
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	var records []storage.EmployeeRecord
	for rows.Next() {
		var rec storage.EmployeeRecord
		var raw []byte
		if err := rows.Scan(&rec.ID, &rec.Area, &rec.Role, &rec.Shift, &raw, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		if err := json.Unmarshal(raw, &rec.Embedding); err != nil {
			return nil, fmt.Errorf("decode embedding for %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return records, nil
}

// SaveEmployee inserts a new employee. Returns storage.ErrDuplicateEmployee
// when the ID already exists.
func (s *Store) SaveEmployee(ctx context.Context, rec storage.EmployeeRecord) error {
	raw, err := json.Marshal(rec.Embedding)
	if err != nil {
		return fmt.Errorf("encode embedding: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO employees (id, area, role, shift, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Area, rec.Role, rec.Shift, raw, rec.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return fmt.Errorf("%w: %s", storage.ErrDuplicateEmployee, rec.ID)
		}
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

// AppendEvent persists one attendance event.
func (s *Store) AppendEvent(ctx context.Context, ev storage.AttendanceEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance_events (id, employee_id, shift, kind, event_date, event_time, timing, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.ID, ev.EmployeeID, ev.Shift, string(ev.Kind), ev.Date, ev.Time, ev.Timing, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// QueryEvents returns events matching the filter.
func (s *Store) QueryEvents(ctx context.Context, filter storage.EventFilter) ([]storage.AttendanceEvent, error) {
	query := `
		SELECT id, employee_id, shift, kind, event_date, event_time, timing, created_at
		FROM attendance_events
		WHERE 1=1
	`
	var args []any

	if filter.EmployeeID != "" {
		query += " AND employee_id = ?"
		args = append(args, filter.EmployeeID)
	}
	if filter.Kind != "" {
		query += " AND kind = ?"
		args = append(args, string(filter.Kind))
	}
	if filter.Date != "" {
		query += " AND event_date = ?"
		args = append(args, filter.Date)
	}
	if filter.FromDate != "" {
		query += " AND event_date >= ?"
		args = append(args, filter.FromDate)
	}
	if filter.ToDate != "" {
		query += " AND event_date <= ?"
		args = append(args, filter.ToDate)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []storage.AttendanceEvent
	for rows.Next() {
		var ev storage.AttendanceEvent
		var kind string
		if err := rows.Scan(&ev.ID, &ev.EmployeeID, &ev.Shift, &kind, &ev.Date, &ev.Time, &ev.Timing, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Kind = storage.EventKind(kind)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}
