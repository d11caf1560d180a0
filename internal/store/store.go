// Package store keeps the in-memory employee registry backed by a
// persistence backend. Requests read from an immutable snapshot captured
// once; Refresh swaps snapshots atomically instead of re-instantiating the
// registry on every write.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/matiasrios/facegate/internal/embedding"
	"github.com/matiasrios/facegate/internal/matcher"
	"github.com/matiasrios/facegate/internal/storage"
)

// indexThreshold is the employee count above which a snapshot builds an HNSW
// shortlist index. Below it a full scan wins.
const indexThreshold = 64

// Snapshot is an immutable view of the employee registry. A request must use
// a single snapshot for its entire duration.
type Snapshot struct {
	records map[string]*storage.EmployeeRecord
	ids     []string // sorted for deterministic candidate iteration
	index   *matcher.Index
}

// Get returns the employee record for an ID, or nil.
func (s *Snapshot) Get(id string) *storage.EmployeeRecord {
	return s.records[id]
}

// Len returns the number of registered employees.
func (s *Snapshot) Len() int {
	return len(s.ids)
}

// IDs returns the sorted employee IDs.
func (s *Snapshot) IDs() []string {
	return s.ids
}

// Candidates returns all employees as match candidates in sorted-ID order.
func (s *Snapshot) Candidates() []matcher.Candidate {
	out := make([]matcher.Candidate, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, matcher.Candidate{ID: id, Embedding: s.records[id].Embedding})
	}
	return out
}

// Index returns the HNSW shortlist index, or nil for small registries.
func (s *Snapshot) Index() *matcher.Index {
	return s.index
}

// Store owns the live snapshot and writes through to the backend.
type Store struct {
	backend storage.Store
	metric  embedding.Metric

	mu   sync.RWMutex
	snap *Snapshot
}

// New loads the registry from the backend and returns a ready store.
func New(ctx context.Context, backend storage.Store, metric embedding.Metric) (*Store, error) {
	s := &Store{backend: backend, metric: metric}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh reloads every employee from the backend and swaps the snapshot.
// In-flight requests keep their old snapshot.
func (s *Store) Refresh(ctx context.Context) error {
	records, err := s.backend.LoadAllEmployees(ctx)
	if err != nil {
		return fmt.Errorf("failed to load employees: %w", err)
	}
	s.mu.Lock()
	s.snap = buildSnapshot(records, s.metric)
	s.mu.Unlock()
	return nil
}

// Snapshot returns the current immutable snapshot.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Register validates and persists a new employee, then updates the snapshot.
// Returns storage.ErrDuplicateEmployee for an already-taken ID and the
// embedding package's validation errors for a bad vector.
func (s *Store) Register(ctx context.Context, rec storage.EmployeeRecord) error {
	if err := embedding.Validate(rec.Embedding); err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.snap.records[rec.ID]; exists {
		return storage.ErrDuplicateEmployee
	}
	if err := s.backend.SaveEmployee(ctx, rec); err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}

	// Copy-on-write: in-flight snapshots stay untouched.
	records := make([]storage.EmployeeRecord, 0, len(s.snap.records)+1)
	for _, r := range s.snap.records {
		records = append(records, *r)
	}
	records = append(records, rec)
	s.snap = buildSnapshot(records, s.metric)
	return nil
}

func buildSnapshot(records []storage.EmployeeRecord, metric embedding.Metric) *Snapshot {
	snap := &Snapshot{
		records: make(map[string]*storage.EmployeeRecord, len(records)),
		ids:     make([]string, 0, len(records)),
	}
	for i := range records {
		rec := records[i]
		snap.records[rec.ID] = &rec
		snap.ids = append(snap.ids, rec.ID)
	}
	sort.Strings(snap.ids)

	if len(snap.ids) >= indexThreshold {
		snap.index = matcher.NewIndex(metric, snap.Candidates())
	}
	return snap
}
