package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/gcbaptista/markets-feeds/config"
	"github.com/gcbaptista/markets-feeds/index"
	"github.com/gcbaptista/markets-feeds/internal/clock"
	"github.com/gcbaptista/markets-feeds/internal/errors"
	"github.com/gcbaptista/markets-feeds/internal/logging"
	"github.com/gcbaptista/markets-feeds/internal/monitor"
	"github.com/gcbaptista/markets-feeds/internal/tokenizer"
	"github.com/gcbaptista/markets-feeds/internal/typoutil"
	"github.com/gcbaptista/markets-feeds/model"
	"github.com/gcbaptista/markets-feeds/services"
)

// Entity counts attached to each hit.
const (
	enrichCompanies = 3
	enrichSymbols   = 5
	enrichAmounts   = 3
)

// Service answers ranked queries against the published index snapshot.
// It fulfills the services.Searcher interface.
type Service struct {
	index    services.IndexReader
	enricher services.ContentEnricher
	settings config.Settings
	clock    clock.Clock
	monitor  *monitor.CacheMonitor
	logger   *zap.Logger

	typosMu   sync.Mutex
	typos     *typoutil.Finder
	typosSnap *index.Snapshot
}

// NewService creates a new search Service. The enricher and monitor may be nil.
func NewService(reader services.IndexReader, enricher services.ContentEnricher, settings config.Settings,
	c clock.Clock, mon *monitor.CacheMonitor, logger *zap.Logger) (*Service, error) {
	if reader == nil {
		return nil, fmt.Errorf("index reader cannot be nil")
	}
	settings.ApplyDefaults()
	return &Service{
		index:    reader,
		enricher: enricher,
		settings: settings,
		clock:    clock.OrReal(c),
		monitor:  mon,
		logger:   logging.OrNop(logger),
	}, nil
}

// QueryTerms tokenizes a query exactly like indexed text and drops repeated terms.
func QueryTerms(query string) []string {
	tokens := tokenizer.Tokenize(query)
	seen := make(map[string]struct{}, len(tokens))
	terms := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}
	return terms
}

// Search ranks the articles matching every query term, or browses the filtered corpus
// by publication date when the query is blank. At most req.Limit hits are returned.
func (s *Service) Search(ctx context.Context, req services.SearchRequest) ([]services.SearchHit, error) {
	if len(req.Query) > s.settings.MaxQueryLength {
		return nil, errors.NewValidationError("query", fmt.Sprintf("must be at most %d characters", s.settings.MaxQueryLength))
	}
	if req.Filters.DateRange != nil && req.Filters.DateRange.End.Before(req.Filters.DateRange.Start) {
		return nil, errors.NewValidationError("dateRange", "end must not be before start")
	}

	snap, err := s.index.Current()
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.settings.DefaultPageSize
	}

	if strings.TrimSpace(req.Query) == "" {
		return s.browse(snap, req.Filters, limit), nil
	}

	terms := QueryTerms(req.Query)
	matches := applyFilters(snap, candidates(snap, terms), req.Filters)
	now := s.clock.Now()

	type scored struct {
		sa    *index.SearchableArticle
		score float64
	}
	ranked := make([]scored, 0, matches.Len())
	for url := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sa, ok := snap.Article(url)
		if !ok {
			continue
		}
		if score := Score(sa, terms, now); score > 0 {
			ranked = append(ranked, scored{sa: sa, score: score})
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return newerFirst(&ranked[i].sa.Article, &ranked[j].sa.Article)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	hits := make([]services.SearchHit, 0, len(ranked))
	for _, r := range ranked {
		hits = append(hits, services.SearchHit{
			Article:      r.sa.Article,
			Score:        r.score,
			MatchedTerms: MatchedTerms(r.sa, terms),
			Snippet:      Snippet(r.sa.Article.Summary, r.sa.Article.Title, terms, s.settings.SnippetLength, s.settings.SnippetContext),
			Enrichment:   s.enrich(&r.sa.Article),
		})
	}
	return hits, nil
}

// browse returns filtered articles newest first with a constant score.
func (s *Service) browse(snap *index.Snapshot, filters model.SearchFilters, limit int) []services.SearchHit {
	urls := allURLs(snap)
	if !filters.IsEmpty() {
		urls = applyFilters(snap, urls, filters)
	}

	articles := make([]*model.Article, 0, urls.Len())
	for url := range urls {
		if sa, ok := snap.Article(url); ok {
			articles = append(articles, &sa.Article)
		}
	}
	sort.Slice(articles, func(i, j int) bool { return newerFirst(articles[i], articles[j]) })
	if len(articles) > limit {
		articles = articles[:limit]
	}

	hits := make([]services.SearchHit, 0, len(articles))
	for _, a := range articles {
		hits = append(hits, services.SearchHit{
			Article:      *a,
			Score:        1,
			MatchedTerms: []string{},
			Snippet:      BrowseSnippet(a.Summary, a.Title, s.settings.SnippetLength),
		})
	}
	return hits
}

// enrich attaches content-cache features. Failures, panics included, are recorded and logged, never returned.
func (s *Service) enrich(article *model.Article) (enrichment *services.Enrichment) {
	if s.enricher == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			s.enrichmentFailed(article, fmt.Errorf("panic: %v", r))
			enrichment = nil
		}
	}()

	content, err := s.enricher.GetEnhancedContent(article)
	if err != nil {
		s.enrichmentFailed(article, err)
		return nil
	}

	e := content.ExtractedEntities
	return &services.Enrichment{
		Entities: services.EntitySummary{
			Companies:    head(e.Companies, enrichCompanies),
			StockSymbols: head(e.StockSymbols, enrichSymbols),
			Amounts:      head(e.Amounts, enrichAmounts),
		},
		Sentiment:   content.Sentiment,
		Topics:      head(content.Topics, len(content.Topics)),
		ReadingTime: content.ReadingTime,
	}
}

func (s *Service) enrichmentFailed(article *model.Article, err error) {
	s.logger.Warn("Content enhancement failed", zap.String("url", article.URL), zap.Error(err))
	if s.monitor != nil {
		s.monitor.RecordError(monitor.CacheContentEnhancement)
	}
}

// newerFirst orders by publication time descending, then URL for a stable result.
func newerFirst(a, b *model.Article) bool {
	if !a.PublishedAt.Equal(b.PublishedAt) {
		return a.PublishedAt.After(b.PublishedAt)
	}
	return a.URL < b.URL
}

// head returns a copy of at most n leading items so callers cannot alias cached slices.
func head(items []string, n int) []string {
	if len(items) > n {
		items = items[:n]
	}
	out := make([]string, len(items))
	copy(out, items)
	return out
}
