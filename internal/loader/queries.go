package loader

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	internalErrors "github.com/gcbaptista/markets-feeds/internal/errors"
	"github.com/gcbaptista/markets-feeds/model"
	"github.com/gcbaptista/markets-feeds/services"
)

// suggestionQueryLength is the query length below which search results carry suggestions.
const suggestionQueryLength = 3

// defaultPageLimit applies when Paginate gets a non-positive limit.
const defaultPageLimit = 50

// Paginate returns one 1-indexed page of items. Pages past the end are empty rather than an error.
func Paginate[T any](items []T, page, limit int) model.Page[T] {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if page < 1 {
		page = 1
	}

	totalPages := (len(items) + limit - 1) / limit
	pageItems := make([]T, 0)
	// Checked before multiplying: (page-1)*limit overflows for huge pages.
	if page-1 < totalPages {
		offset := (page - 1) * limit
		pageItems = append(pageItems, items[offset:min(offset+limit, len(items))]...)
	}

	return model.Page[T]{
		Items:      pageItems,
		Page:       page,
		TotalPages: totalPages,
		TotalItems: len(items),
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// validatePage checks caller supplied paging parameters and fills the default limit.
func (l *Loader) validatePage(page, limit int) (int, error) {
	if page < 1 {
		return 0, internalErrors.NewValidationError("page", "must be at least 1")
	}
	if limit <= 0 {
		return l.settings.DefaultPageSize, nil
	}
	if limit > l.settings.MaxPageSize {
		return 0, internalErrors.NewValidationError("limit", fmt.Sprintf("must be at most %d", l.settings.MaxPageSize))
	}
	return limit, nil
}

// overfetchLimit is page*limit*factor, saturating at math.MaxInt.
func overfetchLimit(page, limit, factor int) int {
	if factor < 1 {
		factor = 1
	}
	perPage := limit * factor
	if page > math.MaxInt/perPage {
		return math.MaxInt
	}
	return page * perPage
}

// Search loads the corpus if needed, ranks the query over-fetching enough hits to fill the requested
// page, and paginates them. Short queries also carry suggestions.
func (l *Loader) Search(ctx context.Context, query string, filters model.SearchFilters, page, limit int) (*services.SearchResult, error) {
	start := time.Now()

	limit, err := l.validatePage(page, limit)
	if err != nil {
		return nil, err
	}
	if _, err := l.LoadData(ctx); err != nil {
		return nil, err
	}

	hits, err := l.deps.Searcher.Search(ctx, services.SearchRequest{
		Query:   query,
		Filters: filters,
		Limit:   overfetchLimit(page, limit, l.settings.SearchOverfetch),
	})
	if err != nil {
		return nil, err
	}

	p := Paginate(hits, page, limit)
	result := &services.SearchResult{
		Items:      p.Items,
		Total:      p.TotalItems,
		Page:       p.Page,
		TotalPages: p.TotalPages,
		HasNext:    p.HasNext,
		HasPrev:    p.HasPrev,
		Query:      query,
		QueryID:    uuid.New().String(),
	}

	if utf8.RuneCountInString(query) < suggestionQueryLength {
		suggestions, err := l.deps.Searcher.Suggestions(query, 0)
		if err != nil {
			l.logger.Debug("Suggestions unavailable", zap.Error(err))
		}
		result.Suggestions = suggestions
	}
	if result.Total == 0 && strings.TrimSpace(query) != "" {
		corrected, err := l.deps.Searcher.DidYouMean(query)
		if err != nil {
			l.logger.Debug("Query correction unavailable", zap.Error(err))
		}
		result.DidYouMean = corrected
	}

	elapsed := time.Since(start)
	result.Took = elapsed.Milliseconds()
	if l.deps.Analytics != nil {
		l.deps.Analytics.Track(model.SearchEvent{
			QueryID:      result.QueryID,
			Query:        query,
			SearchType:   searchType(query, filters),
			ResponseTime: elapsed,
			ResultCount:  result.Total,
		})
	}
	return result, nil
}

// LoadPage paginates the whole corpus, newest first.
func (l *Loader) LoadPage(ctx context.Context, page, limit int) (model.Page[model.Article], error) {
	limit, err := l.validatePage(page, limit)
	if err != nil {
		return model.Page[model.Article]{}, err
	}
	corpus, err := l.LoadData(ctx)
	if err != nil {
		return model.Page[model.Article]{}, err
	}
	return Paginate(corpus, page, limit), nil
}

// CategoryPage paginates the articles of one category, newest first.
func (l *Loader) CategoryPage(ctx context.Context, category string, page, limit int) (model.Page[model.Article], error) {
	limit, err := l.validatePage(page, limit)
	if err != nil {
		return model.Page[model.Article]{}, err
	}
	articles, err := l.GetByCategory(ctx, category)
	if err != nil {
		return model.Page[model.Article]{}, err
	}
	return Paginate(articles, page, limit), nil
}

// GetByCategory returns the corpus articles currently assigned to category, newest first.
func (l *Loader) GetByCategory(ctx context.Context, category string) ([]model.Article, error) {
	corpus, err := l.LoadData(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Article, 0)
	for _, a := range corpus {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out, nil
}

// CategoryCounts counts corpus articles per category.
func (l *Loader) CategoryCounts(ctx context.Context) (map[string]int, error) {
	return l.count(ctx, func(a *model.Article) string { return a.Category })
}

// SourceCounts counts corpus articles per source id.
func (l *Loader) SourceCounts(ctx context.Context) (map[string]int, error) {
	return l.count(ctx, func(a *model.Article) string { return a.SourceID })
}

func (l *Loader) count(ctx context.Context, key func(*model.Article) string) (map[string]int, error) {
	corpus, err := l.LoadData(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for i := range corpus {
		counts[key(&corpus[i])]++
	}
	return counts, nil
}

// TrendingTerms loads the corpus if needed and returns the most frequent key terms of the last days.
func (l *Loader) TrendingTerms(ctx context.Context, days int) ([]model.TermCount, error) {
	if _, err := l.LoadData(ctx); err != nil {
		return nil, err
	}
	return l.deps.Searcher.TrendingTerms(days, 0)
}

// Suggestions returns indexed terms completing the partial query.
func (l *Loader) Suggestions(ctx context.Context, partial string) ([]string, error) {
	if _, err := l.LoadData(ctx); err != nil {
		return nil, err
	}
	return l.deps.Searcher.Suggestions(partial, 0)
}

// searchType classifies a search for analytics.
func searchType(query string, filters model.SearchFilters) model.SearchType {
	switch {
	case strings.TrimSpace(query) == "":
		return model.SearchTypeBrowse
	case len(filters.Categories) > 0 || len(filters.Sources) > 0 || len(filters.Priorities) > 0 || filters.DateRange != nil:
		return model.SearchTypeFiltered
	default:
		return model.SearchTypeQuery
	}
}
