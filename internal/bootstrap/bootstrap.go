package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/market-brief-agent/internal/config"
	"github.com/kirillkom/market-brief-agent/internal/core/ports"
	"github.com/kirillkom/market-brief-agent/internal/core/usecase"
	"github.com/kirillkom/market-brief-agent/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/market-brief-agent/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/market-brief-agent/internal/infrastructure/marketdata/yahoo"
	"github.com/kirillkom/market-brief-agent/internal/infrastructure/news/yahoonews"
	"github.com/kirillkom/market-brief-agent/internal/infrastructure/queue/nats"
	"github.com/kirillkom/market-brief-agent/internal/infrastructure/resilience"
	"github.com/kirillkom/market-brief-agent/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/market-brief-agent/internal/infrastructure/voice/speech"
)

// App wires configuration into the brief pipeline and its optional
// collaborators.
type App struct {
	Config config.Config
	Briefs ports.BriefService

	closeFn func()
}

// New builds the pipeline from configuration. pipelineMetrics may be
// nil when the caller does not expose a metrics endpoint.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, pipelineMetrics usecase.PipelineMetrics) (*App, error) {
	exec := resilience.NewExecutor(resilience.DefaultConfig()).WithLogger(logger)

	llm, err := gemini.New(ctx, gemini.Config{
		APIKey:      cfg.GeminiAPIKey,
		Model:       cfg.GeminiModel,
		Temperature: float32(cfg.GeminiTemperature),
	})
	if err != nil {
		return nil, fmt.Errorf("init gemini: %w", err)
	}

	embedder := ollama.NewEmbedder(ollama.New(cfg.OllamaURL, cfg.OllamaEmbedModel, exec))
	quotes := yahoo.New(exec,
		yahoo.WithBaseURL(cfg.YahooBaseURL),
		yahoo.WithRateLimit(cfg.YahooRateLimit),
	)
	news := yahoonews.New(
		yahoonews.WithBaseURL(cfg.NewsBaseURL),
		yahoonews.WithMaxItems(cfg.NewsItemsPerPage),
	)

	var closers []func()

	var synthesizer ports.SpeechSynthesizer
	if cfg.SpeechEnabled {
		storage, err := localfs.New(cfg.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("init artifact storage: %w", err)
		}
		synthesizer, err = speech.New(speech.Config{
			BaseURL: cfg.SpeechBaseURL,
			APIKey:  cfg.SpeechAPIKey,
			Model:   cfg.SpeechModel,
			Voice:   cfg.SpeechVoice,
		}, storage)
		if err != nil {
			return nil, fmt.Errorf("init speech client: %w", err)
		}
	}

	var events ports.EventPublisher
	if cfg.NATSEnabled {
		publisher, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: exec,
		})
		if err != nil {
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
		events = publisher
		closers = append(closers, publisher.Close)
	}

	coordinator := usecase.NewCoordinator(llm, quotes, news, embedder, llm, usecase.CoordinatorOptions{
		Speech:          synthesizer,
		Events:          events,
		Logger:          logger,
		Metrics:         pipelineMetrics,
		FallbackTickers: cfg.FallbackTickers,
		SearchTopK:      cfg.SearchTopK,
		CallTimeout:     cfg.CallTimeout(),
	})

	return &App{
		Config: cfg,
		Briefs: coordinator,
		closeFn: func() {
			for _, close := range closers {
				close()
			}
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
