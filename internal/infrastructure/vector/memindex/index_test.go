package memindex

import (
	"testing"

	"github.com/kirillkom/market-brief-agent/internal/core/domain"
)

func TestSearchBeforeBuildFails(t *testing.T) {
	ix := New()
	_, err := ix.Search([]float32{1, 0}, 3)
	if !domain.IsKind(err, domain.ErrIndexNotBuilt) {
		t.Fatalf("expected ErrIndexNotBuilt, got %v", err)
	}
}

func TestBuildRejectsEmptyBatch(t *testing.T) {
	ix := New()
	err := ix.Build(nil)
	if !domain.IsKind(err, domain.ErrEmptyIndex) {
		t.Fatalf("expected ErrEmptyIndex, got %v", err)
	}
}

func TestBuildRejectsMixedDimensions(t *testing.T) {
	ix := New()
	err := ix.Build([][]float32{{1, 0}, {1, 0, 0}})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSearchRanksByDistance(t *testing.T) {
	ix := New()
	if err := ix.Build([][]float32{
		{10, 0},
		{1, 0},
		{3, 0},
	}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	hits, err := ix.Search([]float32{0, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].ID != 1 || hits[1].ID != 2 {
		t.Fatalf("expected ids [1 2], got [%d %d]", hits[0].ID, hits[1].ID)
	}
	if hits[0].Distance != 1 || hits[1].Distance != 9 {
		t.Fatalf("unexpected distances: %+v", hits)
	}
}

func TestSearchKLargerThanStoreReturnsAll(t *testing.T) {
	ix := New()
	if err := ix.Build([][]float32{{1}, {2}, {3}}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	hits, err := ix.Search([]float32{0}, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("expected full store, got %d hits", len(hits))
	}
	seen := map[int]bool{}
	for _, hit := range hits {
		if hit.ID < 0 || hit.ID >= 3 {
			t.Fatalf("out-of-range id %d", hit.ID)
		}
		if seen[hit.ID] {
			t.Fatalf("duplicate id %d", hit.ID)
		}
		seen[hit.ID] = true
	}
}

func TestSearchBreaksTiesByInsertionOrder(t *testing.T) {
	ix := New()
	if err := ix.Build([][]float32{
		{0, 1},
		{1, 0},
		{0, -1},
	}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	hits, err := ix.Search([]float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	for i, hit := range hits {
		if hit.ID != i {
			t.Fatalf("tie order broken at %d: got id %d", i, hit.ID)
		}
	}
}

func TestSearchIsDeterministic(t *testing.T) {
	vectors := [][]float32{{0.5, 0.1}, {0.2, 0.9}, {0.8, 0.3}, {0.1, 0.1}}
	query := []float32{0.4, 0.4}

	first := New()
	if err := first.Build(vectors); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	second := New()
	if err := second.Build(vectors); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	a, err := first.Search(query, 4)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	b, err := second.Search(query, 4)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("nondeterministic result at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestBuildReplacesPriorIndex(t *testing.T) {
	ix := New()
	if err := ix.Build([][]float32{{1}, {2}, {3}}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if err := ix.Build([][]float32{{5}}); err != nil {
		t.Fatalf("rebuild error = %v", err)
	}
	if ix.Len() != 1 {
		t.Fatalf("expected rebuilt index of size 1, got %d", ix.Len())
	}
	hits, err := ix.Search([]float32{5}, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || hits[0].ID != 0 {
		t.Fatalf("unexpected hits after rebuild: %+v", hits)
	}
}
