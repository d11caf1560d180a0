package matcher

import (
	"errors"
	"sync"

	"github.com/coder/hnsw"

	"github.com/matiasrios/facegate/internal/embedding"
)

// HNSW index parameters for 128-dim face embeddings.
const (
	// hnswMaxNeighbors (M) is the maximum number of neighbors per node.
	hnswMaxNeighbors = 16

	// hnswShortlist is how many approximate neighbors to pull from the
	// graph before the exact re-rank.
	hnswShortlist = 16
)

// Index is an approximate-nearest-neighbor shortlist over employee
// embeddings. Search mode uses it to narrow large candidate sets before an
// exact, deterministic SearchBest re-rank; with few employees a full scan is
// just as fast and the index is skipped.
type Index struct {
	graph *hnsw.Graph[string]
	byID  map[string][]float32
	mu    sync.RWMutex
}

// NewIndex builds an index from the candidate set. The graph distance must
// match the matcher metric or the shortlist will miss true neighbors.
func NewIndex(metric embedding.Metric, candidates []Candidate) *Index {
	g := hnsw.NewGraph[string]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors) // Standard HNSW formula
	if metric == embedding.MetricCosine {
		g.Distance = hnsw.CosineDistance
	} else {
		g.Distance = hnsw.EuclideanDistance
	}

	byID := make(map[string][]float32, len(candidates))
	for _, c := range candidates {
		if len(c.Embedding) != embedding.Dim {
			continue
		}
		g.Add(hnsw.MakeNode(c.ID, c.Embedding))
		byID[c.ID] = c.Embedding
	}

	return &Index{graph: g, byID: byID}
}

// Len returns the number of indexed embeddings.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.byID)
}

// Shortlist returns up to k candidate IDs near the probe, for exact re-ranking.
func (ix *Index) Shortlist(probe []float32, k int) ([]Candidate, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.graph == nil || len(ix.byID) == 0 {
		return nil, errors.New("index not initialized")
	}
	if k <= 0 {
		k = hnswShortlist
	}

	neighbors := ix.graph.Search(probe, k)
	out := make([]Candidate, 0, len(neighbors))
	for _, n := range neighbors {
		out = append(out, Candidate{ID: n.Key, Embedding: ix.byID[n.Key]})
	}
	return out, nil
}
