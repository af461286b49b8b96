package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/market-brief-agent/internal/core/domain"
	"github.com/kirillkom/market-brief-agent/internal/core/ports"
)

const apologyNarrative = "Unable to generate market brief at this time."

const (
	defaultCallTimeout = 30 * time.Second
	newsLinesPerTicker = 2
)

var defaultFallbackTickers = []string{"AAPL", "GOOGL", "MSFT", "AMZN"}

// PipelineMetrics receives per-stage timings and per-source fetch
// failure counts. A nil value disables instrumentation.
type PipelineMetrics interface {
	RecordStage(stage string, duration time.Duration)
	RecordFetchFailure(source string)
}

// Coordinator drives one query through the pipeline:
// resolve -> fetch (fan-out) -> merge+index -> search -> risk ->
// narrate -> voice. Every external failure is absorbed stage by stage
// and recorded as data; a run only returns an error for malformed input
// or caller cancellation.
type Coordinator struct {
	resolver ports.TickerResolver
	quotes   ports.QuoteProvider
	news     ports.NewsProvider
	embedder ports.Embedder
	narrator ports.NarrativeGenerator
	speech   ports.SpeechSynthesizer
	events   ports.EventPublisher
	logger   *slog.Logger
	metrics  PipelineMetrics

	fallbackTickers []string
	searchTopK      int
	callTimeout     time.Duration
}

// CoordinatorOptions carries the optional collaborators and tuning
// knobs; zero values fall back to defaults.
type CoordinatorOptions struct {
	Speech          ports.SpeechSynthesizer
	Events          ports.EventPublisher
	Logger          *slog.Logger
	Metrics         PipelineMetrics
	FallbackTickers []string
	SearchTopK      int
	CallTimeout     time.Duration
}

func NewCoordinator(
	resolver ports.TickerResolver,
	quotes ports.QuoteProvider,
	news ports.NewsProvider,
	embedder ports.Embedder,
	narrator ports.NarrativeGenerator,
	opts CoordinatorOptions,
) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fallback := opts.FallbackTickers
	if len(fallback) == 0 {
		fallback = defaultFallbackTickers
	}
	topK := opts.SearchTopK
	if topK <= 0 {
		topK = defaultSearchTopK
	}
	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}

	return &Coordinator{
		resolver:        resolver,
		quotes:          quotes,
		news:            news,
		embedder:        embedder,
		narrator:        narrator,
		speech:          opts.Speech,
		events:          opts.Events,
		logger:          logger,
		metrics:         opts.Metrics,
		fallbackTickers: fallback,
		searchTopK:      topK,
		callTimeout:     timeout,
	}
}

// ProcessQuery runs the full pipeline for one query and returns the
// aggregate brief. The result shape is fixed regardless of how many
// sub-fetches failed.
func (c *Coordinator) ProcessQuery(ctx context.Context, query string) (*domain.Brief, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "process query", errors.New("empty query"))
	}

	started := time.Now()
	brief := &domain.Brief{
		RunID:     uuid.NewString(),
		Query:     query,
		StartedAt: started.UTC(),
	}

	stageStart := time.Now()
	tickers := c.resolveTickers(ctx, query)
	brief.Tickers = tickers
	c.recordStage("resolve", stageStart)

	stageStart = time.Now()
	quotes, newsLists := c.fetchAll(ctx, tickers)
	if err := ctx.Err(); err != nil {
		// Caller cancelled: partial fetch results are discarded.
		return nil, err
	}
	c.recordStage("fetch", stageStart)

	brief.Quotes = make(map[string]domain.QuoteRecord, len(tickers))
	brief.News = make(map[string][]domain.NewsItem, len(tickers))
	for i, ticker := range tickers {
		brief.Quotes[ticker] = quotes[i]
		brief.News[ticker] = newsLists[i]
	}

	stageStart = time.Now()
	brief.Context = c.buildContext(ctx, query, quotes, newsLists)
	c.recordStage("context", stageStart)

	brief.Risk = AnalyzeRisk(quotes)
	brief.Recommendations = Recommend(quotes)
	brief.NewsInsights = NewsInsights(brief.News)

	summary := buildBriefSummary(query, tickers, quotes, newsLists, brief.Context)
	stageStart = time.Now()
	brief.Narrative = c.narrate(ctx, summary)
	c.recordStage("narrate", stageStart)
	brief.VoiceArtifact = c.synthesize(ctx, brief.Narrative)
	brief.ElapsedMS = time.Since(started).Milliseconds()

	c.publish(ctx, brief)
	return brief, nil
}

// resolveTickers delegates to the resolver and degrades to the fixed
// fallback set on any failure or empty result.
func (c *Coordinator) resolveTickers(ctx context.Context, query string) []string {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	raw, err := c.resolver.ResolveTickers(callCtx, query)
	if err != nil {
		c.logger.Warn("ticker_resolution_fallback", "error", err)
		return append([]string(nil), c.fallbackTickers...)
	}

	tickers := normalizeTickers(raw)
	if len(tickers) == 0 {
		c.logger.Warn("ticker_resolution_fallback", "reason", "empty result")
		return append([]string(nil), c.fallbackTickers...)
	}
	return tickers
}

func normalizeTickers(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, symbol := range raw {
		ticker := domain.NormalizeTicker(symbol)
		if ticker == "" || seen[ticker] {
			continue
		}
		seen[ticker] = true
		out = append(out, ticker)
	}
	return out
}

// fetchAll fans out one task per (ticker, kind) pair and joins at a
// barrier. Results land in slices indexed by ticker position, so the
// merge order is deterministic no matter how the tasks interleave.
func (c *Coordinator) fetchAll(ctx context.Context, tickers []string) ([]domain.QuoteRecord, [][]domain.NewsItem) {
	quotes := make([]domain.QuoteRecord, len(tickers))
	newsLists := make([][]domain.NewsItem, len(tickers))

	var wg sync.WaitGroup
	for i, ticker := range tickers {
		wg.Add(2)
		go func(i int, ticker string) {
			defer wg.Done()
			quotes[i] = c.fetchQuote(ctx, ticker)
		}(i, ticker)
		go func(i int, ticker string) {
			defer wg.Done()
			newsLists[i] = c.fetchNews(ctx, ticker)
		}(i, ticker)
	}
	wg.Wait()

	return quotes, newsLists
}

func (c *Coordinator) fetchQuote(ctx context.Context, ticker string) domain.QuoteRecord {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	quote, err := c.quotes.FetchQuote(callCtx, ticker)
	if err != nil {
		c.logger.Warn("quote_fetch_failed", "ticker", ticker, "error", err)
		c.recordFetchFailure("quote")
		return domain.FailedQuote(ticker, err)
	}
	if quote.Ticker == "" {
		quote.Ticker = ticker
	}
	return quote
}

func (c *Coordinator) fetchNews(ctx context.Context, ticker string) []domain.NewsItem {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	items, err := c.news.FetchNews(callCtx, ticker)
	if err != nil {
		c.logger.Warn("news_fetch_failed", "ticker", ticker, "error", err)
		c.recordFetchFailure("news")
		return nil
	}
	return items
}

// buildContext merges valid quotes and all news into documents (quotes
// first, ticker order preserved), indexes them in a run-private
// retrieval service, and runs the single semantic search. Any failure
// degrades to an empty context list.
func (c *Coordinator) buildContext(
	ctx context.Context,
	query string,
	quotes []domain.QuoteRecord,
	newsLists [][]domain.NewsItem,
) []domain.Document {
	quoteDocs := make([]domain.Document, 0, len(quotes))
	for _, quote := range quotes {
		if !quote.Valid() {
			continue
		}
		quoteDocs = append(quoteDocs, domain.QuoteDocument(quote))
	}
	newsDocs := make([]domain.Document, 0)
	for _, items := range newsLists {
		for _, item := range items {
			newsDocs = append(newsDocs, domain.NewsDocument(item))
		}
	}
	docs := domain.MergeSources(quoteDocs, newsDocs)

	retrieval := NewRetrievalService(c.embedder)
	if err := retrieval.IndexDocuments(ctx, docs); err != nil {
		c.logger.Warn("index_build_degraded", "documents", len(docs), "error", err)
		return nil
	}

	results, err := retrieval.Search(ctx, query, c.searchTopK)
	if err != nil {
		c.logger.Warn("semantic_search_degraded", "error", err)
		return nil
	}
	return results
}

func buildBriefSummary(
	query string,
	tickers []string,
	quotes []domain.QuoteRecord,
	newsLists [][]domain.NewsItem,
	contextDocs []domain.Document,
) domain.BriefSummary {
	summary := domain.BriefSummary{Query: query}

	for _, quote := range quotes {
		if !quote.Valid() {
			continue
		}
		summary.TotalStocks++
		price := "N/A"
		if quote.CurrentPrice != nil {
			price = fmt.Sprintf("%.2f", *quote.CurrentPrice)
		}
		summary.StockLines = append(summary.StockLines,
			fmt.Sprintf("%s: Price=$%s, Market Cap=$%d", quote.Ticker, price, quote.MarketCap))
	}

	for i, items := range newsLists {
		if len(items) == 0 {
			continue
		}
		titles := make([]string, 0, newsLinesPerTicker)
		for _, item := range items {
			titles = append(titles, item.Title)
			if len(titles) == newsLinesPerTicker {
				break
			}
		}
		summary.NewsLines = append(summary.NewsLines,
			fmt.Sprintf("%s News: %s", tickers[i], strings.Join(titles, ", ")))
	}

	for _, doc := range contextDocs {
		if title := doc.Title(); title != "" {
			summary.ContextTitles = append(summary.ContextTitles, title)
		}
	}
	return summary
}

func (c *Coordinator) narrate(ctx context.Context, summary domain.BriefSummary) string {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	text, err := c.narrator.GenerateBrief(callCtx, summary)
	if err != nil || strings.TrimSpace(text) == "" {
		c.logger.Warn("narrative_fallback", "error", err)
		return apologyNarrative
	}
	return text
}

func (c *Coordinator) synthesize(ctx context.Context, narrative string) string {
	if c.speech == nil {
		return ""
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	artifact, err := c.speech.Synthesize(callCtx, narrative)
	if err != nil {
		c.logger.Warn("voice_synthesis_skipped", "error", err)
		return ""
	}
	return artifact
}

func (c *Coordinator) recordStage(stage string, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordStage(stage, time.Since(start))
	}
}

func (c *Coordinator) recordFetchFailure(source string) {
	if c.metrics != nil {
		c.metrics.RecordFetchFailure(source)
	}
}

func (c *Coordinator) publish(ctx context.Context, brief *domain.Brief) {
	if c.events == nil {
		return
	}
	if err := c.events.PublishBriefCompleted(ctx, brief); err != nil {
		c.logger.Warn("brief_event_publish_failed", "run_id", brief.RunID, "error", err)
	}
}
