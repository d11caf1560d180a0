package cmd

import (
	"context"
	"fmt"

	"github.com/matiasrios/facegate/internal/attendance"
	"github.com/matiasrios/facegate/internal/config"
	"github.com/matiasrios/facegate/internal/embedding"
	"github.com/matiasrios/facegate/internal/ledger"
	"github.com/matiasrios/facegate/internal/matcher"
	"github.com/matiasrios/facegate/internal/shift"
	"github.com/matiasrios/facegate/internal/storage"
	"github.com/matiasrios/facegate/internal/storage/jsonfile"
	"github.com/matiasrios/facegate/internal/storage/mariadb"
	"github.com/matiasrios/facegate/internal/storage/postgres"
	"github.com/matiasrios/facegate/internal/store"
)

// openBackend selects the persistence backend: PostgreSQL when DATABASE_URL
// is set, MariaDB when MARIADB_DSN is set, otherwise JSON files under the
// data directory.
func openBackend(cfg *config.Config) (storage.Store, error) {
	switch {
	case cfg.Database.URL != "":
		fmt.Println("Using PostgreSQL backend")
		return postgres.New(&cfg.Database)
	case cfg.Database.MariaDBDSN != "":
		fmt.Println("Using MariaDB backend")
		return mariadb.New(cfg.Database.MariaDBDSN)
	default:
		fmt.Printf("Using JSON file backend in %s\n", cfg.Database.DataDir)
		return jsonfile.New(cfg.Database.DataDir)
	}
}

// buildService wires the attendance service over the configured backend.
// The caller owns the returned backend and must Close it.
func buildService(ctx context.Context, cfg *config.Config) (*attendance.Service, storage.Store, error) {
	backend, err := openBackend(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage backend: %w", err)
	}

	metric, err := embedding.ParseMetric(cfg.Match.Metric)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	employees, err := store.New(ctx, backend, metric)
	if err != nil {
		backend.Close()
		return nil, nil, fmt.Errorf("failed to load employee registry: %w", err)
	}

	schedule, err := shift.LoadSchedule(cfg.Shifts.Path)
	if err != nil {
		backend.Close()
		return nil, nil, fmt.Errorf("failed to load shift schedule: %w", err)
	}

	svc := attendance.New(
		employees,
		matcher.New(metric, cfg.Match.Threshold),
		schedule,
		ledger.New(backend),
		cfg.Attendance.RejectOutOfWindow,
	)
	return svc, backend, nil
}
