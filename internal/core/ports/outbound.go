package ports

import (
	"context"
	"io"

	"github.com/kirillkom/market-brief-agent/internal/core/domain"
)

// TickerResolver extracts ticker symbols from a free-text query.
type TickerResolver interface {
	ResolveTickers(ctx context.Context, query string) ([]string, error)
}

// QuoteProvider fetches one ticker's quote snapshot.
type QuoteProvider interface {
	FetchQuote(ctx context.Context, ticker string) (domain.QuoteRecord, error)
}

// NewsProvider fetches recent headlines for one ticker. An empty slice
// is a legitimate result.
type NewsProvider interface {
	FetchNews(ctx context.Context, ticker string) ([]domain.NewsItem, error)
}

// Embedder builds vectors for document and query text. One batched call
// per index build; every vector in a batch has the same dimension.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// NarrativeGenerator writes the user-facing market brief.
type NarrativeGenerator interface {
	GenerateBrief(ctx context.Context, summary domain.BriefSummary) (string, error)
}

// SpeechSynthesizer turns narrative text into an audio artifact and
// returns a reference to it.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// ObjectStorage stores generated artifacts.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// EventPublisher announces completed briefs to downstream consumers.
type EventPublisher interface {
	PublishBriefCompleted(ctx context.Context, brief *domain.Brief) error
}
