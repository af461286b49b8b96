package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrorClassification is the caller's verdict on a failed attempt:
// whether it is worth retrying, and whether the circuit breaker should
// count it. A 404 for an unknown ticker is neither; a 503 is both.
type ErrorClassification struct {
	Retryable     bool
	RecordFailure bool
}

type ErrorClassifier func(err error) ErrorClassification

// Executor wraps outbound calls with exponential backoff and a
// per-operation circuit breaker. One instance is shared by all
// upstream clients; breakers are keyed by operation name so a broken
// news site cannot trip the quote path.
type Executor struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

func NewExecutor(cfg Config) *Executor {
	return &Executor{
		cfg:      cfg.withDefaults(),
		logger:   slog.Default(),
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

// WithLogger returns a copy of the executor that reports retries and
// breaker transitions through the given logger. Breakers stay shared.
func (e *Executor) WithLogger(logger *slog.Logger) *Executor {
	if logger == nil {
		return e
	}
	return &Executor{
		cfg:      e.cfg,
		logger:   logger,
		breakers: e.breakers,
	}
}

func (e *Executor) Execute(
	ctx context.Context,
	operation string,
	fn func(context.Context) error,
	classifier ErrorClassifier,
) error {
	if fn == nil {
		return fmt.Errorf("resilience: operation callback is nil")
	}
	name := strings.TrimSpace(operation)
	if name == "" {
		name = "unknown"
	}
	if classifier == nil {
		classifier = failFast
	}

	if !e.cfg.BreakerEnabled {
		return e.attemptLoop(ctx, name, fn, classifier)
	}

	_, err := e.breakerFor(name, classifier).Execute(func() (any, error) {
		return nil, e.attemptLoop(ctx, name, fn, classifier)
	})
	return err
}

func (e *Executor) attemptLoop(
	ctx context.Context,
	name string,
	fn func(context.Context) error,
	classifier ErrorClassifier,
) error {
	delay := e.cfg.RetryInitialBackoff

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if verdict := classifier(err); !verdict.Retryable || attempt >= e.cfg.RetryMaxAttempts {
			return err
		}

		wait := jitter(delay)
		e.logger.Warn("retry_attempt",
			"operation", name,
			"attempt", attempt,
			"max_attempts", e.cfg.RetryMaxAttempts,
			"wait", wait,
			"error", err,
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}

		delay = min(time.Duration(float64(delay)*e.cfg.RetryMultiplier), e.cfg.RetryMaxBackoff)
	}
}

// jitter spreads the wait over [delay/2, delay) so parallel per-ticker
// fetches hitting the same rate limit do not retry in lockstep.
func jitter(delay time.Duration) time.Duration {
	if delay <= 1 {
		return delay
	}
	half := delay / 2
	return half + rand.N(half)
}

func (e *Executor) breakerFor(name string, classifier ErrorClassifier) *gobreaker.CircuitBreaker[any] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if breaker, ok := e.breakers[name]; ok {
		return breaker
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: e.cfg.BreakerHalfOpenMaxCalls,
		Timeout:     e.cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < e.cfg.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= e.cfg.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !classifier(err).RecordFailure
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			e.logger.Warn("circuit_breaker_state_change",
				"operation", name, "from", from.String(), "to", to.String())
		},
	})
	e.breakers[name] = breaker
	return breaker
}

// IsCircuitOpen reports whether err came from a breaker refusing the
// call rather than from the operation itself.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func failFast(error) ErrorClassification {
	return ErrorClassification{Retryable: false, RecordFailure: true}
}
