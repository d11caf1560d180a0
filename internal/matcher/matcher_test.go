package matcher

import (
	"errors"
	"math"
	"testing"

	"github.com/matiasrios/facegate/internal/embedding"
)

func vec(values ...float32) []float32 {
	v := make([]float32, embedding.Dim)
	copy(v, values)
	return v
}

func TestCompareOne_Accept(t *testing.T) {
	m := New(embedding.MetricEuclidean, 0.6)

	result, err := m.CompareOne(vec(), vec())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Accepted {
		t.Error("identical vectors should be accepted")
	}
	if result.Distance != 0 {
		t.Errorf("expected distance 0, got %f", result.Distance)
	}
	if result.Threshold != 0.6 {
		t.Errorf("expected threshold 0.6, got %f", result.Threshold)
	}
}

func TestCompareOne_Reject(t *testing.T) {
	m := New(embedding.MetricEuclidean, 0.6)

	result, err := m.CompareOne(vec(), vec(1, 1, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Accepted {
		t.Errorf("expected rejection at distance %f", result.Distance)
	}
}

func TestCompareOne_ThresholdBoundary(t *testing.T) {
	// A probe at exactly the threshold distance must be accepted.
	m := New(embedding.MetricEuclidean, 1.0)

	result, err := m.CompareOne(vec(), vec(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Distance != 1.0 {
		t.Fatalf("expected distance exactly 1.0, got %f", result.Distance)
	}
	if !result.Accepted {
		t.Error("distance equal to threshold must be accepted")
	}
}

func TestCompareOne_Symmetry(t *testing.T) {
	m := New(embedding.MetricEuclidean, 0.6)
	a := vec(0.3, -0.2, 0.9)
	b := vec(-0.1, 0.8, 0.4)

	ab, err := m.CompareOne(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ba, err := m.CompareOne(b, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ab.Distance != ba.Distance || ab.Accepted != ba.Accepted {
		t.Errorf("comparison not symmetric: %+v vs %+v", ab, ba)
	}
}

func TestCompareOne_DimensionMismatch(t *testing.T) {
	m := New(embedding.MetricEuclidean, 0.6)

	_, err := m.CompareOne(make([]float32, 64), vec())
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestCompareOne_InvalidVector(t *testing.T) {
	m := New(embedding.MetricEuclidean, 0.6)

	probe := vec()
	probe[0] = float32(math.NaN())

	_, err := m.CompareOne(probe, vec())
	if !errors.Is(err, ErrInvalidVector) {
		t.Errorf("expected ErrInvalidVector for NaN probe, got %v", err)
	}

	ref := vec()
	ref[5] = float32(math.Inf(1))

	_, err = m.CompareOne(vec(), ref)
	if !errors.Is(err, ErrInvalidVector) {
		t.Errorf("expected ErrInvalidVector for Inf reference, got %v", err)
	}
}

func TestSearchBest_FindsClosest(t *testing.T) {
	m := New(embedding.MetricEuclidean, 2.0)

	candidates := []Candidate{
		{ID: "E1", Embedding: vec(1, 1)},
		{ID: "E2", Embedding: vec(0.1)},
		{ID: "E3", Embedding: vec(3)},
	}

	result, err := m.SearchBest(vec(), candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Accepted {
		t.Error("expected a match within threshold")
	}
	if result.EmployeeID != "E2" {
		t.Errorf("expected best candidate E2, got %q", result.EmployeeID)
	}
}

func TestSearchBest_TieBreaksFirst(t *testing.T) {
	m := New(embedding.MetricEuclidean, 2.0)

	// Same embedding twice: first in slice order wins.
	candidates := []Candidate{
		{ID: "E1", Embedding: vec(1)},
		{ID: "E2", Embedding: vec(1)},
	}

	result, err := m.SearchBest(vec(), candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.EmployeeID != "E1" {
		t.Errorf("tie should break to first candidate, got %q", result.EmployeeID)
	}
}

func TestSearchBest_NotFoundCarriesMinDistance(t *testing.T) {
	m := New(embedding.MetricEuclidean, 0.5)

	candidates := []Candidate{
		{ID: "E1", Embedding: vec(2)},
		{ID: "E2", Embedding: vec(5)},
	}

	result, err := m.SearchBest(vec(), candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Accepted {
		t.Error("expected no acceptance above threshold")
	}
	if result.EmployeeID != "" {
		t.Errorf("rejected search must not leak a candidate ID, got %q", result.EmployeeID)
	}
	if math.Abs(result.Distance-2.0) > 1e-9 {
		t.Errorf("expected minimum observed distance 2.0, got %f", result.Distance)
	}
}

func TestSearchBest_NoCandidates(t *testing.T) {
	m := New(embedding.MetricEuclidean, 0.5)

	_, err := m.SearchBest(vec(), nil)
	if !errors.Is(err, ErrNoCandidates) {
		t.Errorf("expected ErrNoCandidates, got %v", err)
	}
}

func TestSearchBest_SkipsMismatchedDimensions(t *testing.T) {
	m := New(embedding.MetricEuclidean, 2.0)

	candidates := []Candidate{
		{ID: "short", Embedding: make([]float32, 64)},
		{ID: "E1", Embedding: vec(1)},
	}

	result, err := m.SearchBest(vec(), candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.EmployeeID != "E1" {
		t.Errorf("expected E1, got %q", result.EmployeeID)
	}
}

func TestIndex_Shortlist(t *testing.T) {
	candidates := make([]Candidate, 0, 20)
	for i := range 20 {
		e := vec()
		e[0] = float32(i)
		candidates = append(candidates, Candidate{ID: string(rune('a' + i)), Embedding: e})
	}

	ix := NewIndex(embedding.MetricEuclidean, candidates)
	if ix.Len() != 20 {
		t.Fatalf("expected 20 indexed embeddings, got %d", ix.Len())
	}

	probe := vec()
	probe[0] = 2.2

	shortlist, err := ix.Shortlist(probe, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shortlist) == 0 {
		t.Fatal("expected non-empty shortlist")
	}

	// Exact re-rank over the shortlist must land on the true nearest neighbor.
	m := New(embedding.MetricEuclidean, 10.0)
	result, err := m.SearchBest(probe, shortlist)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.EmployeeID != "c" {
		t.Errorf("expected nearest candidate 'c', got %q", result.EmployeeID)
	}
}
