package loader_test

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalErrors "github.com/gcbaptista/markets-feeds/internal/errors"
	"github.com/gcbaptista/markets-feeds/internal/loader"
	"github.com/gcbaptista/markets-feeds/internal/monitor"
	testutil "github.com/gcbaptista/markets-feeds/internal/testing"
	"github.com/gcbaptista/markets-feeds/model"
	"github.com/gcbaptista/markets-feeds/services"
)

// countingSource counts how often the corpus is read.
type countingSource struct {
	articles []model.Article
	calls    atomic.Int32
	delay    time.Duration
}

func (s *countingSource) LoadRawArticles(context.Context) ([]model.Article, error) {
	s.calls.Add(1)
	time.Sleep(s.delay)
	out := make([]model.Article, len(s.articles))
	copy(out, s.articles)
	return out, nil
}

func TestPaginate(t *testing.T) {
	items := make([]int, 50)
	for i := range items {
		items[i] = i + 1
	}

	tests := []struct {
		name       string
		page       int
		limit      int
		wantFirst  int
		wantLen    int
		totalPages int
		hasNext    bool
		hasPrev    bool
	}{
		{"first page", 1, 20, 1, 20, 3, true, false},
		{"middle page", 2, 20, 21, 20, 3, true, true},
		{"last partial page", 3, 20, 41, 10, 3, false, true},
		{"past the end", 4, 20, 0, 0, 3, false, true},
		{"largest page number", math.MaxInt, 20, 0, 0, 3, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := loader.Paginate(items, tt.page, tt.limit)
			require.Len(t, p.Items, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, p.Items[0])
			}
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.totalPages, p.TotalPages)
			assert.Equal(t, 50, p.TotalItems)
			assert.Equal(t, tt.hasNext, p.HasNext)
			assert.Equal(t, tt.hasPrev, p.HasPrev)
		})
	}

	huge := loader.Paginate(make([]int, 10), math.MaxInt/2+1, 3)
	assert.Empty(t, huge.Items)
	assert.Equal(t, 4, huge.TotalPages)

	empty := loader.Paginate([]int{}, 1, 20)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
}

func TestScenario(t *testing.T) {
	f := testutil.NewFixture(t, testutil.ScenarioArticles()...)
	f.Warm(t)
	ctx := context.Background()

	corpus, err := f.Engine.Loader.LoadData(ctx)
	require.NoError(t, err)
	require.Len(t, corpus, 3)
	assert.Equal(t, []string{"Fed signals rate cut", "Apple earnings beat forecast", "Bitcoin surges past 65000"}, testutil.Titles(corpus))
	assert.Equal(t, "earnings", corpus[1].Category)
	assert.Equal(t, "crypto", corpus[2].Category)

	result, err := f.Engine.Loader.Search(ctx, "fed", model.SearchFilters{}, 1, 20)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "1", result.Items[0].Article.ID)
	assert.Equal(t, 1, result.Total)
	assert.NotEmpty(t, result.QueryID)
	assert.Nil(t, result.Suggestions, "queries of three or more characters carry no suggestions")

	counts, err := f.Engine.Loader.CategoryCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["earnings"])
	assert.Equal(t, 1, counts["crypto"])

	sources, err := f.Engine.Loader.SourceCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"wire": 3}, sources)

	crypto, err := f.Engine.Loader.GetByCategory(ctx, "crypto")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bitcoin surges past 65000"}, testutil.Titles(crypto))

	stats := f.Engine.Loader.RecategorizationStats()
	assert.Equal(t, 3, stats.TotalArticles)
	assert.Equal(t, 3, stats.CategoriesChanged)
}

func TestLoadDataDropsInvalidArticles(t *testing.T) {
	valid := testutil.NewArticle("ok").Title("Oil prices climb").Build()
	untitled := testutil.NewArticle("untitled").Title("   ").Build()
	noURL := testutil.NewArticle("nourl").URL("").Build()

	f := testutil.NewFixture(t, valid, untitled, noURL)
	corpus, err := f.Engine.Loader.LoadData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Oil prices climb"}, testutil.Titles(corpus))
	assert.Equal(t, 2, f.Engine.Loader.Dropped())
}

func TestLoadDataSortsNewestFirst(t *testing.T) {
	source := &countingSource{articles: []model.Article{
		testutil.NewArticle("old").Title("Old").Age(48 * time.Hour).Build(),
		testutil.NewArticle("new").Title("New").Age(time.Hour).Build(),
		testutil.NewArticle("mid").Title("Mid").Age(5 * time.Hour).Build(),
	}}
	f := testutil.NewFixtureWithSource(t, source)

	corpus, err := f.Engine.Loader.LoadData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"New", "Mid", "Old"}, testutil.Titles(corpus))
}

func TestLoadDataTTL(t *testing.T) {
	source := &countingSource{articles: testutil.ScenarioArticles()}
	f := testutil.NewFixtureWithSource(t, source)
	ctx := context.Background()

	_, err := f.Engine.Loader.LoadData(ctx)
	require.NoError(t, err)
	_, err = f.Engine.Loader.LoadData(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), source.calls.Load(), "second call within TTL is served from cache")

	f.Clock.Advance(5 * time.Minute)
	_, err = f.Engine.Loader.LoadData(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), source.calls.Load(), "expired corpus is reloaded")

	metrics := f.Engine.Monitor.Metrics()[monitor.CacheDataLoader]
	assert.Equal(t, int64(1), metrics.Hits)
	assert.Equal(t, int64(2), metrics.Misses)
}

func TestLoadDataCollapsesConcurrentReloads(t *testing.T) {
	source := &countingSource{articles: testutil.ScenarioArticles(), delay: 50 * time.Millisecond}
	f := testutil.NewFixtureWithSource(t, source)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			corpus, err := f.Engine.Loader.LoadData(context.Background())
			assert.NoError(t, err)
			assert.Len(t, corpus, 3)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), source.calls.Load())
}

func TestStorageFailure(t *testing.T) {
	f := testutil.NewFixtureWithSource(t, testutil.FailingSource{Err: fmt.Errorf("connection refused")})

	_, err := f.Engine.Loader.LoadData(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, internalErrors.ErrStorageUnavailable)
	assert.Contains(t, err.Error(), "connection refused")

	_, err = f.Engine.Loader.Search(context.Background(), "fed", model.SearchFilters{}, 1, 20)
	assert.ErrorIs(t, err, internalErrors.ErrStorageUnavailable)
}

func TestEventualConsistencyAfterLoad(t *testing.T) {
	f := testutil.NewFixture(t, testutil.ScenarioArticles()...)
	ctx := context.Background()

	_, err := f.Engine.Loader.LoadData(ctx)
	require.NoError(t, err)
	jobID := f.Engine.Loader.LastBuildJob()
	require.NotEmpty(t, jobID)

	// The build runs in the background; a search right now may or may not see it.
	if _, err := f.Engine.Loader.Search(ctx, "bitcoin", model.SearchFilters{}, 1, 20); err != nil {
		assert.ErrorIs(t, err, internalErrors.ErrIndexNotReady)
	}

	job := testutil.WaitForJobCompletion(t, f.Engine.Jobs, jobID, testutil.DefaultJobPollingOptions())
	testutil.AssertJobCompleted(t, job, model.JobTypeIndexBuild, loader.IndexTarget)
	require.NotNil(t, job.Progress)
	assert.Equal(t, 3, job.Progress.Total)

	result, err := f.Engine.Loader.Search(ctx, "bitcoin", model.SearchFilters{}, 1, 20)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "3", result.Items[0].Article.ID)
}

func TestSearchPagination(t *testing.T) {
	f := testutil.NewFixture(t, testutil.NumberedArticles(50)...)
	f.Warm(t)
	ctx := context.Background()

	first, err := f.Engine.Loader.Search(ctx, "market update", model.SearchFilters{}, 1, 20)
	require.NoError(t, err)
	assert.Len(t, first.Items, 20)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrev)

	third, err := f.Engine.Loader.Search(ctx, "market update", model.SearchFilters{}, 3, 20)
	require.NoError(t, err)
	assert.Len(t, third.Items, 10)
	assert.Equal(t, 50, third.Total)
	assert.False(t, third.HasNext)
	assert.True(t, third.HasPrev)

	seen := make(map[string]bool)
	for page := 1; page <= 3; page++ {
		r, err := f.Engine.Loader.Search(ctx, "market update", model.SearchFilters{}, page, 20)
		require.NoError(t, err)
		for _, h := range r.Items {
			assert.False(t, seen[h.Article.ID], "article %s appears on two pages", h.Article.ID)
			seen[h.Article.ID] = true
		}
	}
	assert.Len(t, seen, 50)
}

func TestSearchValidation(t *testing.T) {
	f := testutil.NewFixture(t, testutil.ScenarioArticles()...)
	ctx := context.Background()

	_, err := f.Engine.Loader.Search(ctx, "fed", model.SearchFilters{}, 0, 20)
	assert.ErrorIs(t, err, internalErrors.ErrInvalidQuery)

	_, err = f.Engine.Loader.Search(ctx, "fed", model.SearchFilters{}, 1, 10000)
	assert.ErrorIs(t, err, internalErrors.ErrInvalidQuery)
}

func TestSearchPageFarPastTheEnd(t *testing.T) {
	f := testutil.NewFixture(t, testutil.NumberedArticles(10)...)
	f.Warm(t)
	ctx := context.Background()

	for _, query := range []string{"market update", ""} {
		r, err := f.Engine.Loader.Search(ctx, query, model.SearchFilters{}, math.MaxInt/2+1, 3)
		require.NoError(t, err, "query %q", query)
		assert.Empty(t, r.Items)
		assert.Equal(t, 10, r.Total)
		assert.False(t, r.HasNext)
	}

	p, err := f.Engine.Loader.LoadPage(ctx, math.MaxInt, 3)
	require.NoError(t, err)
	assert.Empty(t, p.Items)
	assert.Equal(t, 10, p.TotalItems)
}

func TestShortQueryCarriesSuggestions(t *testing.T) {
	f := testutil.NewFixture(t, testutil.ScenarioArticles()...)
	f.Warm(t)

	result, err := f.Engine.Loader.Search(context.Background(), "bi", model.SearchFilters{}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"bitcoin"}, result.Suggestions)
}

func TestZeroHitQueryCarriesCorrection(t *testing.T) {
	f := testutil.NewFixture(t, testutil.ScenarioArticles()...)
	f.Warm(t)

	result, err := f.Engine.Loader.Search(context.Background(), "bitcon", model.SearchFilters{}, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, result.Total)
	assert.Equal(t, "bitcoin", result.DidYouMean)

	result, err = f.Engine.Loader.Search(context.Background(), "bitcoin", model.SearchFilters{}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Empty(t, result.DidYouMean)
}

func TestSearchesAreTracked(t *testing.T) {
	f := testutil.NewFixture(t, testutil.ScenarioArticles()...)
	f.Warm(t)
	ctx := context.Background()

	_, err := f.Engine.Loader.Search(ctx, "fed", model.SearchFilters{}, 1, 20)
	require.NoError(t, err)
	_, err = f.Engine.Loader.Search(ctx, "fed", model.SearchFilters{Categories: []string{"crypto"}}, 1, 20)
	require.NoError(t, err)
	_, err = f.Engine.Loader.Search(ctx, "", model.SearchFilters{}, 1, 20)
	require.NoError(t, err)
	_, err = f.Engine.Loader.Search(ctx, "fed", model.SearchFilters{}, 0, 20)
	require.Error(t, err, "rejected searches are not tracked")

	require.Equal(t, 3, f.Engine.Analytics.Len())
	d := f.Engine.Analytics.Dashboard()
	assert.Equal(t, 3, d.TotalSearches)
	assert.Equal(t, []model.PopularSearch{{Query: "fed", SearchCount: 2}}, d.PopularSearches)
	assert.Equal(t, []model.PopularSearch{{Query: "fed", SearchCount: 1}}, d.ZeroResultSearches)
	assert.Equal(t, map[model.SearchType]int{
		model.SearchTypeQuery:    1,
		model.SearchTypeFiltered: 1,
		model.SearchTypeBrowse:   1,
	}, d.SearchTypes)
}

func TestLoadPage(t *testing.T) {
	f := testutil.NewFixture(t, testutil.NumberedArticles(50)...)

	p, err := f.Engine.Loader.LoadPage(context.Background(), 2, 20)
	require.NoError(t, err)
	require.Len(t, p.Items, 20)
	assert.Equal(t, "n020", p.Items[0].ID)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)
}

func TestTrendingTerms(t *testing.T) {
	f := testutil.NewFixture(t,
		testutil.NewArticle("a").Title("Bitcoin rally continues").Age(time.Hour).Build(),
		testutil.NewArticle("b").Title("Bitcoin miners expand").Age(2*time.Hour).Build(),
	)
	f.Warm(t)

	terms, err := f.Engine.Loader.TrendingTerms(context.Background(), 7)
	require.NoError(t, err)
	require.NotEmpty(t, terms)
	assert.Equal(t, model.TermCount{Term: "bitcoin", Count: 2}, terms[0])
}

func TestClearCache(t *testing.T) {
	source := &countingSource{articles: testutil.ScenarioArticles()}
	f := testutil.NewFixtureWithSource(t, source)
	f.Warm(t)
	ctx := context.Background()

	_, err := f.Engine.Loader.Search(ctx, "apple", model.SearchFilters{}, 1, 20)
	require.NoError(t, err)
	assert.Positive(t, f.Engine.Content.Len())

	f.Engine.Loader.ClearCache()
	assert.False(t, f.Engine.Index.Ready())
	assert.Zero(t, f.Engine.Content.Len())
	assert.Zero(t, f.Engine.Loader.RecategorizationStats().TotalArticles)

	_, err = f.Engine.Search.Search(ctx, searchRequest("apple"))
	assert.ErrorIs(t, err, internalErrors.ErrIndexNotReady)

	f.Warm(t)
	assert.Equal(t, int32(2), source.calls.Load())
	result, err := f.Engine.Loader.Search(ctx, "apple", model.SearchFilters{}, 1, 20)
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
}

func TestWaitForIndexWithoutBuild(t *testing.T) {
	f := testutil.NewFixture(t)
	err := f.Engine.Loader.WaitForIndex(context.Background())
	assert.ErrorIs(t, err, internalErrors.ErrIndexNotReady)
}

func searchRequest(query string) services.SearchRequest {
	return services.SearchRequest{Query: query}
}
