package services

import (
	"context"

	"github.com/gcbaptista/markets-feeds/index"
	"github.com/gcbaptista/markets-feeds/model"
)

// EntitySummary is the subset of extracted entities attached to a search hit.
type EntitySummary struct {
	Companies    []string `json:"companies"`
	StockSymbols []string `json:"stockSymbols"`
	Amounts      []string `json:"amounts"`
}

// Enrichment carries the content-cache features attached to a search hit.
type Enrichment struct {
	Entities    EntitySummary   `json:"entities"`
	Sentiment   model.Sentiment `json:"sentiment"`
	Topics      []string        `json:"topics"`
	ReadingTime int             `json:"readingTime"`
}

// SearchHit represents a single ranked article in the search results.
// Enrichment is nil when feature extraction failed for the article.
type SearchHit struct {
	Article      model.Article `json:"article"`
	Score        float64       `json:"score"`
	MatchedTerms []string      `json:"matchedTerms"`
	Snippet      string        `json:"snippet"`
	Enrichment   *Enrichment   `json:"enrichment,omitempty"`
}

// SearchRequest is a ranked query against the current index.
// A blank Query browses the filtered corpus by publication date.
type SearchRequest struct {
	Query   string              `json:"query"`
	Filters model.SearchFilters `json:"filters"`
	Limit   int                 `json:"limit"`
}

// SearchResult is a paginated page of search hits as returned by the data loader.
type SearchResult struct {
	Items       []SearchHit `json:"items"`
	Total       int         `json:"total"`
	Page        int         `json:"page"`
	TotalPages  int         `json:"totalPages"`
	HasNext     bool        `json:"hasNext"`
	HasPrev     bool        `json:"hasPrev"`
	Query       string      `json:"query"`
	Suggestions []string    `json:"suggestions,omitempty"`
	DidYouMean  string      `json:"didYouMean,omitempty"` // corrected query, offered when nothing matched
	Took        int64       `json:"took"`     // milliseconds
	QueryID     string      `json:"queryId"` // unique UUID for this search query
}

// ArticleSource is the storage collaborator that supplies raw articles.
// No ordering is assumed.
type ArticleSource interface {
	LoadRawArticles(ctx context.Context) ([]model.Article, error)
}

// ArticleSink accepts fetched articles; implemented by stores that feed fetchers write into.
type ArticleSink interface {
	SaveArticles(ctx context.Context, articles []model.Article) (int, error)
}

// ContentEnricher returns derived per-article features.
type ContentEnricher interface {
	GetEnhancedContent(article *model.Article) (*model.EnhancedContent, error)
	Clear()
}

// Recategorizer assigns an article to the fine-grained taxonomy. It never fails.
type Recategorizer interface {
	Recategorize(article *model.Article) model.RecategorizationResult
	RecategorizeAll(articles []model.Article) ([]model.RecategorizationResult, model.RecategorizationStats)
}

// IndexBuilder builds and publishes index snapshots.
type IndexBuilder interface {
	Build(ctx context.Context, articles []model.Article) (*index.Snapshot, error)
	Reset()
}

// IndexReader exposes the currently published snapshot.
type IndexReader interface {
	// Current returns the published snapshot or an error matching ErrIndexNotReady.
	Current() (*index.Snapshot, error)
	Stats() model.IndexStats
}

// Searcher defines operations for ranked retrieval over the index
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) ([]SearchHit, error)
	Suggestions(partial string, limit int) ([]string, error)
	TrendingTerms(days, limit int) ([]model.TermCount, error)
	DidYouMean(query string) (string, error)
}

// SearchTracker records served searches for query analytics.
type SearchTracker interface {
	Track(event model.SearchEvent)
}

// JobManager defines operations for managing background jobs
type JobManager interface {
	GetJob(jobID string) (*model.Job, error)
	ListJobs(target string, status *model.JobStatus) []*model.Job
}
