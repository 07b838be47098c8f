package indexing

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/markets-feeds/index"
	"github.com/gcbaptista/markets-feeds/internal/errors"
	"github.com/gcbaptista/markets-feeds/internal/monitor"
	"github.com/gcbaptista/markets-feeds/model"
)

func corpus(n int) []model.Article {
	articles := make([]model.Article, 0, n)
	for i := 0; i < n; i++ {
		articles = append(articles, model.Article{
			ID:          fmt.Sprintf("id-%d", i),
			URL:         fmt.Sprintf("https://example.com/%d", i),
			SourceID:    fmt.Sprintf("source-%d", i%3),
			Title:       fmt.Sprintf("Fed rate decision %d", i),
			Summary:     "Markets await the central bank",
			Category:    []string{"macro", "markets"}[i%2],
			Tags:        []string{"economy"},
			PublishedAt: time.Date(2024, 1, 1, 0, 0, i, 0, time.UTC),
		})
	}
	return articles
}

func TestPrepare(t *testing.T) {
	article := model.Article{
		Title:       "Fed Hikes",
		Summary:     "Rates up",
		FullContent: "Body text",
		Tags:        []string{"macro", "policy"},
	}

	sa := Prepare(article)

	assert.Equal(t, "fed hikes fed hikes fed hikes rates up rates up body text macro policy macro policy", sa.SearchableContent)
	assert.Equal(t, 16, sa.WordCount)
	assert.Equal(t, []string{"fed", "hikes", "rates", "body", "text", "macro", "policy", "fed hikes rates"}, sa.KeyTerms)
	assert.Equal(t, article, sa.Article)
}

func TestNotReadyBeforeBuild(t *testing.T) {
	mon := monitor.New(nil, nil)
	s := NewService(nil, mon, nil)

	snap, err := s.Current()
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, errors.ErrIndexNotReady)
	assert.False(t, s.Ready())
	assert.False(t, s.Stats().Ready)
	assert.Equal(t, int64(1), mon.Metrics()[monitor.CacheSearchIndex].Misses)
}

func TestBuildPublishesSnapshot(t *testing.T) {
	s := NewService(nil, nil, nil)

	built, err := s.Build(context.Background(), corpus(4))
	require.NoError(t, err)

	current, err := s.Current()
	require.NoError(t, err)
	assert.Same(t, built, current)

	assert.Equal(t, 4, current.Len())
	assert.Equal(t, 2, current.Categories["macro"].Len())
	assert.Equal(t, 2, current.Sources["source-0"].Len())
	assert.Equal(t, 4, current.Lookup("fed").Len())
	assert.True(t, current.Lookup("economy").Contains("https://example.com/3"))
	assert.Equal(t, 0, current.Lookup("missing").Len())

	stats := s.Stats()
	assert.True(t, stats.Ready)
	assert.Equal(t, 4, stats.Articles)
	assert.Equal(t, 2, stats.Categories)
	assert.Equal(t, 3, stats.Sources)
}

func TestBuildIsIdempotent(t *testing.T) {
	s := NewService(nil, nil, nil)
	articles := corpus(25)

	first, err := s.Build(context.Background(), articles)
	require.NoError(t, err)
	second, err := s.Build(context.Background(), articles)
	require.NoError(t, err)

	assert.Equal(t, first.Terms, second.Terms)
	assert.Equal(t, first.TermOrder, second.TermOrder)
	assert.Equal(t, first.Categories, second.Categories)
	assert.Equal(t, first.Sources, second.Sources)
	assert.Equal(t, first.Articles, second.Articles)
	assert.Greater(t, second.Generation, first.Generation)
}

func TestBuildReplacesPreviousState(t *testing.T) {
	s := NewService(nil, nil, nil)

	_, err := s.Build(context.Background(), corpus(5))
	require.NoError(t, err)

	replacement := []model.Article{{URL: "https://example.com/only", Title: "Bitcoin surges", Category: "crypto", SourceID: "coindesk"}}
	_, err = s.Build(context.Background(), replacement)
	require.NoError(t, err)

	snap, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Len())
	assert.Equal(t, 0, snap.Lookup("fed").Len())
	assert.NotContains(t, snap.Categories, "macro")
}

func TestStaleBuildIsDiscarded(t *testing.T) {
	s := NewService(nil, nil, nil)

	// A build that started earlier but finishes later must not replace a newer snapshot
	stale := index.NewSnapshot(s.generation.Add(1), time.Now())
	fresh, err := s.Build(context.Background(), corpus(3))
	require.NoError(t, err)

	assert.False(t, s.publish(stale))
	current, err := s.Current()
	require.NoError(t, err)
	assert.Same(t, fresh, current)
}

func TestResetInvalidatesInFlightBuilds(t *testing.T) {
	mon := monitor.New(nil, nil)
	s := NewService(nil, mon, nil)
	_, err := s.Build(context.Background(), corpus(3))
	require.NoError(t, err)

	inFlight := index.NewSnapshot(s.generation.Add(1), time.Now())
	s.Reset()

	assert.False(t, s.publish(inFlight))
	_, err = s.Current()
	assert.ErrorIs(t, err, errors.ErrIndexNotReady)

	// Builds started after the reset publish normally
	_, err = s.Build(context.Background(), corpus(2))
	require.NoError(t, err)
	assert.True(t, s.Ready())
}

func TestBuildHonoursCancellation(t *testing.T) {
	s := NewService(nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Build(ctx, corpus(3))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, s.Ready())
}

func TestBuildReportsProgress(t *testing.T) {
	s := NewService(nil, nil, nil)

	var calls [][2]int
	_, err := s.BuildWithProgress(context.Background(), corpus(1200), func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{500, 1200}, {1000, 1200}, {1200, 1200}}, calls)
}

func TestReadersNeverSeePartialSnapshots(t *testing.T) {
	s := NewService(nil, nil, nil)
	small, large := corpus(10), corpus(200)
	_, err := s.Build(context.Background(), small)
	require.NoError(t, err)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap, err := s.Current()
				if !assert.NoError(t, err) {
					return
				}
				n := snap.Len()
				assert.True(t, n == 10 || n == 200, "observed partial snapshot of %d articles", n)
				assert.Len(t, snap.Order, n)
			}
		}()
	}

	for i := 0; i < 20; i++ {
		articles := small
		if i%2 == 0 {
			articles = large
		}
		_, err := s.Build(context.Background(), articles)
		require.NoError(t, err)
	}
	close(stop)
	wg.Wait()
}
