package store

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	internalErrors "github.com/gcbaptista/markets-feeds/internal/errors"
	"github.com/gcbaptista/markets-feeds/internal/logging"
	"github.com/gcbaptista/markets-feeds/model"
	"github.com/gcbaptista/markets-feeds/services"
)

// BreakerSettings configures the circuit breaker around an article source.
type BreakerSettings struct {
	MaxRequests         uint32        // Trial loads allowed while half-open
	Interval            time.Duration // Window after which closed-state counts reset
	Timeout             time.Duration // Time spent open before trying again
	ConsecutiveFailures uint32        // Failures in a row that open the breaker
}

// DefaultBreakerSettings returns the settings used by the command line.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 3,
	}
}

// BreakerSource fails fast once the wrapped source keeps failing, so that a dead
// storage backend is not hit on every corpus reload.
type BreakerSource struct {
	source services.ArticleSource
	cb     *gobreaker.CircuitBreaker
}

// NewBreakerSource wraps source. Cancelled loads do not count as failures.
func NewBreakerSource(name string, source services.ArticleSource, settings BreakerSettings, logger *zap.Logger) *BreakerSource {
	logger = logging.OrNop(logger)
	threshold := settings.ConsecutiveFailures
	if threshold == 0 {
		threshold = DefaultBreakerSettings().ConsecutiveFailures
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Article source breaker changed state",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	})

	return &BreakerSource{source: source, cb: cb}
}

// LoadRawArticles loads through the breaker. While the breaker is open the
// call returns a storage error without touching the source.
func (b *BreakerSource) LoadRawArticles(ctx context.Context) ([]model.Article, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.source.LoadRawArticles(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, internalErrors.NewStorageError("load articles", err)
		}
		return nil, err
	}
	articles, _ := result.([]model.Article)
	return articles, nil
}

// State reports "closed", "half-open" or "open".
func (b *BreakerSource) State() string {
	return b.cb.State().String()
}
