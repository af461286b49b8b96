package memindex

import (
	"fmt"
	"sort"

	"github.com/kirillkom/market-brief-agent/internal/core/domain"
)

// Hit is one nearest-neighbor result: the id assigned at build time
// (the vector's offset in the build batch) and its squared L2 distance
// from the query.
type Hit struct {
	ID       int
	Distance float64
}

// Index is an exact brute-force k-NN index over one batch of vectors.
// n is bounded by a single run's documents, so O(n*d) per query is
// fine and keeps results bit-for-bit reproducible. Build replaces the
// whole index; entries are never mutated individually.
type Index struct {
	dim     int
	vectors [][]float32
	built   bool
}

func New() *Index {
	return &Index{}
}

// Build replaces any previous contents with the given vectors. All
// vectors must share one dimension.
func (ix *Index) Build(vectors [][]float32) error {
	if len(vectors) == 0 {
		return domain.WrapError(domain.ErrEmptyIndex, "build index", fmt.Errorf("zero vectors"))
	}
	dim := len(vectors[0])
	if dim == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "build index", fmt.Errorf("zero-dimension vector"))
	}
	for i, vector := range vectors {
		if len(vector) != dim {
			return domain.WrapError(domain.ErrInvalidInput, "build index",
				fmt.Errorf("vector %d has dimension %d, want %d", i, len(vector), dim))
		}
	}

	ix.dim = dim
	ix.vectors = vectors
	ix.built = true
	return nil
}

// Search returns up to k hits sorted ascending by distance. Ties keep
// insertion order (stable sort), so identical inputs always produce
// identical rankings.
func (ix *Index) Search(query []float32, k int) ([]Hit, error) {
	if !ix.built {
		return nil, domain.WrapError(domain.ErrIndexNotBuilt, "search index", fmt.Errorf("build was never called"))
	}
	if k <= 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search index", fmt.Errorf("k must be positive, got %d", k))
	}
	if len(query) != ix.dim {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search index",
			fmt.Errorf("query dimension %d, want %d", len(query), ix.dim))
	}

	hits := make([]Hit, len(ix.vectors))
	for i, vector := range ix.vectors {
		hits[i] = Hit{ID: i, Distance: squaredL2(query, vector)}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func (ix *Index) Len() int {
	return len(ix.vectors)
}

func (ix *Index) Dimension() int {
	return ix.dim
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
