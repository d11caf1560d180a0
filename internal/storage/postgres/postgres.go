// Package postgres provides the PostgreSQL persistence backend. Embeddings
// are stored in a pgvector column so the registry can also be queried with
// SQL distance operators for offline analysis.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/matiasrios/facegate/internal/config"
	"github.com/matiasrios/facegate/internal/storage"
)

// Pool manages a PostgreSQL connection pool.
type Pool struct {
	db *sql.DB
}

// NewPool creates a new PostgreSQL connection pool.
func NewPool(cfg *config.DatabaseConfig) (*Pool, error) {
	if cfg.URL == "" {
		return nil, errors.New("database URL is required")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Pool{db: db}, nil
}

// DB returns the underlying sql.DB for direct access.
func (p *Pool) DB() *sql.DB {
	return p.db
}

// Close closes the connection pool.
func (p *Pool) Close() error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}

// Store is the PostgreSQL-backed storage.Store implementation.
type Store struct {
	pool *Pool
}

// New connects to PostgreSQL, runs pending migrations, and returns the store.
func New(cfg *config.DatabaseConfig) (*Store, error) {
	pool, err := NewPool(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL pool: %w", err)
	}
	if err := pool.Migrate(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Store{pool: pool}, nil
}

// LoadAllEmployees retrieves the full employee registry.
func (s *Store) LoadAllEmployees(ctx context.Context) ([]storage.EmployeeRecord, error) {
	rows, err := s.pool.db.QueryContext(ctx, `
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
		var vec pgvector.Vector
		if err := rows.Scan(&rec.ID, &rec.Area, &rec.Role, &rec.Shift, &vec, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		rec.Embedding = vec.Slice()
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
	result, err := s.pool.db.ExecContext(ctx, `
		INSERT INTO employees (id, area, role, shift, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, rec.ID, rec.Area, rec.Role, rec.Shift, pgvector.NewVector(rec.Embedding), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert employee: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert employee: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", storage.ErrDuplicateEmployee, rec.ID)
	}
	return nil
}

// AppendEvent persists one attendance event.
func (s *Store) AppendEvent(ctx context.Context, ev storage.AttendanceEvent) error {
	_, err := s.pool.db.ExecContext(ctx, `
		INSERT INTO attendance_events (id, employee_id, shift, kind, event_date, event_time, timing, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
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
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.EmployeeID != "" {
		query += " AND employee_id = " + arg(filter.EmployeeID)
	}
	if filter.Kind != "" {
		query += " AND kind = " + arg(string(filter.Kind))
	}
	if filter.Date != "" {
		query += " AND event_date = " + arg(filter.Date)
	}
	if filter.FromDate != "" {
		query += " AND event_date >= " + arg(filter.FromDate)
	}
	if filter.ToDate != "" {
		query += " AND event_date <= " + arg(filter.ToDate)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.pool.db.QueryContext(ctx, query, args...)
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
	return s.pool.Close()
}
