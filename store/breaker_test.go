package store

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/markets-feeds/internal/errors"
	"github.com/gcbaptista/markets-feeds/model"
)

type flakySource struct {
	calls atomic.Int32
	err   error
}

func (f *flakySource) LoadRawArticles(ctx context.Context) ([]model.Article, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return []model.Article{{ID: "1", URL: "https://news.example/1", Title: "Gold climbs"}}, nil
}

func TestBreakerSourcePassesThrough(t *testing.T) {
	src := &flakySource{}
	b := NewBreakerSource("test", src, DefaultBreakerSettings(), nil)

	articles, err := b.LoadRawArticles(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "closed", b.State())
}

func TestBreakerSourceOpensAfterConsecutiveFailures(t *testing.T) {
	src := &flakySource{err: fmt.Errorf("disk gone")}
	b := NewBreakerSource("test", src, BreakerSettings{Timeout: time.Hour, ConsecutiveFailures: 2}, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := b.LoadRawArticles(ctx)
		assert.ErrorContains(t, err, "disk gone")
	}
	assert.Equal(t, "open", b.State())

	_, err := b.LoadRawArticles(ctx)
	assert.ErrorIs(t, err, errors.ErrStorageUnavailable)
	assert.Equal(t, int32(2), src.calls.Load(), "an open breaker does not reach the source")
}

func TestBreakerSourceIgnoresCancellation(t *testing.T) {
	src := &flakySource{err: context.Canceled}
	b := NewBreakerSource("test", src, BreakerSettings{Timeout: time.Hour, ConsecutiveFailures: 1}, nil)

	for i := 0; i < 3; i++ {
		_, err := b.LoadRawArticles(context.Background())
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, "closed", b.State())
	assert.Equal(t, int32(3), src.calls.Load())
}
