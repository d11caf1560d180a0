// Package matcher decides facial identity matches over embedding vectors.
// Matching is pure: no side effects, no I/O, safe to run fully in parallel
// against an immutable employee snapshot.
package matcher

import (
	"errors"
	"fmt"

	"github.com/matiasrios/facegate/internal/embedding"
)

var (
	// ErrDimensionMismatch indicates probe and reference vector lengths differ.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrInvalidVector indicates a vector with NaN or Inf components.
	ErrInvalidVector = errors.New("invalid embedding vector")

	// ErrNoCandidates indicates a search over an empty candidate set.
	ErrNoCandidates = errors.New("no candidates to search")
)

// Result is the transient outcome of one comparison or search.
// It is produced per request and never persisted.
type Result struct {
	EmployeeID string
	Distance   float64
	Accepted   bool
	Threshold  float64
}

// Candidate pairs an employee ID with its reference embedding.
// Search candidates must be supplied in a deterministic order so that
// distance ties break the same way on every run.
type Candidate struct {
	ID        string
	Embedding []float32
}

// Matcher compares probe embeddings against reference embeddings.
type Matcher struct {
	metric    embedding.Metric
	threshold float64
}

// New creates a matcher with the configured metric and acceptance threshold.
func New(metric embedding.Metric, threshold float64) *Matcher {
	return &Matcher{metric: metric, threshold: threshold}
}

// Metric returns the configured distance metric.
func (m *Matcher) Metric() embedding.Metric { return m.metric }

// Threshold returns the configured acceptance threshold.
func (m *Matcher) Threshold() float64 { return m.threshold }

// CompareOne compares a probe against a single reference embedding.
// A probe at exactly the threshold distance is accepted.
func (m *Matcher) CompareOne(probe, reference []float32) (Result, error) {
	if len(probe) != len(reference) {
		return Result{}, fmt.Errorf("%w: probe %d, reference %d", ErrDimensionMismatch, len(probe), len(reference))
	}
	if err := embedding.CheckFinite(probe); err != nil {
		return Result{}, fmt.Errorf("%w: probe: %v", ErrInvalidVector, err)
	}
	if err := embedding.CheckFinite(reference); err != nil {
		return Result{}, fmt.Errorf("%w: reference: %v", ErrInvalidVector, err)
	}

	dist := m.metric.Distance(probe, reference)
	return Result{
		Distance:  dist,
		Accepted:  dist <= m.threshold,
		Threshold: m.threshold,
	}, nil
}

// SearchBest compares a probe against every candidate and returns the best
// match. When no candidate is within the threshold the result has
// Accepted=false and carries the minimum distance observed for diagnostics.
// Ties break to the first candidate in slice order.
func (m *Matcher) SearchBest(probe []float32, candidates []Candidate) (Result, error) {
	if len(candidates) == 0 {
		return Result{}, ErrNoCandidates
	}
	if err := embedding.CheckFinite(probe); err != nil {
		return Result{}, fmt.Errorf("%w: probe: %v", ErrInvalidVector, err)
	}

	best := Result{Threshold: m.threshold}
	found := false
	for _, c := range candidates {
		if len(c.Embedding) != len(probe) {
			continue
		}
		dist := m.metric.Distance(probe, c.Embedding)
		if !found || dist < best.Distance {
			found = true
			best.EmployeeID = c.ID
			best.Distance = dist
		}
	}
	if !found {
		return Result{}, fmt.Errorf("%w: no candidate matches probe dimension %d", ErrNoCandidates, len(probe))
	}

	best.Accepted = best.Distance <= m.threshold
	if !best.Accepted {
		// Not-found results keep the minimum distance for diagnostics
		// but must not leak a candidate identity.
		best.EmployeeID = ""
	}
	return best, nil
}
