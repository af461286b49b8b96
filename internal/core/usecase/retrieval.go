package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/market-brief-agent/internal/core/domain"
	"github.com/kirillkom/market-brief-agent/internal/core/ports"
	"github.com/kirillkom/market-brief-agent/internal/infrastructure/vector/memindex"
)

const defaultSearchTopK = 3

// RetrievalService owns one vector index and one ordered document
// store. Every pipeline run gets a fresh instance: the index is never
// shared or merged across runs, which trades repeated embedding cost
// for not needing any cross-run locking.
type RetrievalService struct {
	embedder ports.Embedder
	index    *memindex.Index
	store    []domain.Document
}

func NewRetrievalService(embedder ports.Embedder) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		index:    memindex.New(),
	}
}

// IndexDocuments embeds every document with non-empty search text in
// one batched call and rebuilds the index over the survivors. Document
// ids are offsets into the surviving store, assigned in input order.
func (s *RetrievalService) IndexDocuments(ctx context.Context, docs []domain.Document) error {
	indexable := make([]domain.Document, 0, len(docs))
	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		text := doc.SearchText()
		if strings.TrimSpace(text) == "" {
			continue
		}
		indexable = append(indexable, doc)
		texts = append(texts, text)
	}
	if len(indexable) == 0 {
		return domain.WrapError(domain.ErrNoIndexableDocuments, "index documents",
			errors.New("every document rendered empty search text"))
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(texts) {
		return domain.WrapError(domain.ErrInvalidInput, "index documents",
			fmt.Errorf("vectors/documents mismatch: %d/%d", len(vectors), len(texts)))
	}

	s.store = indexable
	return s.index.Build(vectors)
}

// Search embeds the query and maps ranked index hits back to stored
// documents. Ids outside the current store are skipped rather than
// surfaced; they can only come from stale state.
func (s *RetrievalService) Search(ctx context.Context, query string, k int) ([]domain.Document, error) {
	if k <= 0 {
		k = defaultSearchTopK
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.index.Search(vector, k)
	if err != nil {
		return nil, err
	}

	results := make([]domain.Document, 0, len(hits))
	for _, hit := range hits {
		if hit.ID < 0 || hit.ID >= len(s.store) {
			continue
		}
		results = append(results, s.store[hit.ID])
	}
	return results, nil
}
