package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gcbaptista/markets-feeds/config"
	"github.com/gcbaptista/markets-feeds/internal/analytics"
	"github.com/gcbaptista/markets-feeds/internal/clock"
	"github.com/gcbaptista/markets-feeds/internal/contentcache"
	"github.com/gcbaptista/markets-feeds/internal/indexing"
	"github.com/gcbaptista/markets-feeds/internal/jobs"
	"github.com/gcbaptista/markets-feeds/internal/loader"
	"github.com/gcbaptista/markets-feeds/internal/logging"
	"github.com/gcbaptista/markets-feeds/internal/monitor"
	"github.com/gcbaptista/markets-feeds/internal/recategorize"
	"github.com/gcbaptista/markets-feeds/internal/search"
	"github.com/gcbaptista/markets-feeds/model"
	"github.com/gcbaptista/markets-feeds/services"
)

// Options configure an Engine. Source is required; a nil Taxonomy means the built-in one.
type Options struct {
	Settings config.Settings
	Taxonomy *config.Taxonomy
	Source   services.ArticleSource
	Clock    clock.Clock
	Logger   *zap.Logger
}

// Engine owns one instance of every service and wires them together.
// Components are exported so that the HTTP layer and commands can reach them directly.
type Engine struct {
	Settings      config.Settings
	Taxonomy      *config.Taxonomy
	Monitor       *monitor.CacheMonitor
	Content       *contentcache.Cache
	Recategorizer *recategorize.Engine
	Index         *indexing.Service
	Search        *search.Service
	Jobs          *jobs.Manager
	Loader        *loader.Loader
	Analytics     *analytics.Service

	logger *zap.Logger
}

// New validates the options and constructs the full service graph. Call Start before use.
func New(opts Options) (*Engine, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("article source cannot be nil")
	}

	settings := opts.Settings
	settings.ApplyDefaults()
	if problems := settings.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid settings: %v", problems)
	}

	taxonomy := opts.Taxonomy
	if taxonomy == nil {
		taxonomy = config.DefaultTaxonomy()
	}

	c := clock.OrReal(opts.Clock)
	logger := logging.OrNop(opts.Logger)

	mon := monitor.New(c, logger.Named("monitor"))
	content := contentcache.New(settings,
		contentcache.WithClock(c),
		contentcache.WithMonitor(mon),
		contentcache.WithLogger(logger.Named("contentcache")))
	idx := indexing.NewService(c, mon, logger.Named("indexing"))

	searcher, err := search.NewService(idx, content, settings, c, mon, logger.Named("search"))
	if err != nil {
		return nil, fmt.Errorf("failed to create search service: %w", err)
	}

	recategorizer := recategorize.NewEngine(taxonomy)
	jobManager := jobs.NewManager(settings.JobWorkers, c, logger.Named("jobs"))
	tracker := analytics.NewService(settings.AnalyticsFile, c, logger.Named("analytics"))

	dataLoader, err := loader.New(loader.Dependencies{
		Source:        opts.Source,
		Recategorizer: recategorizer,
		Index:         idx,
		Searcher:      searcher,
		Enricher:      content,
		Jobs:          jobManager,
		Monitor:       mon,
		Analytics:     tracker,
		Clock:         c,
		Logger:        logger.Named("loader"),
	}, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create data loader: %w", err)
	}

	return &Engine{
		Settings:      settings,
		Taxonomy:      taxonomy,
		Monitor:       mon,
		Content:       content,
		Recategorizer: recategorizer,
		Index:         idx,
		Search:        searcher,
		Jobs:          jobManager,
		Loader:        dataLoader,
		Analytics:     tracker,
		logger:        logger,
	}, nil
}

// Start launches background workers.
func (e *Engine) Start() {
	e.Jobs.Start()
}

// Stop cancels running jobs, waits for them, and flushes search analytics.
func (e *Engine) Stop() {
	e.Jobs.Stop()
	if err := e.Analytics.Save(); err != nil {
		e.logger.Warn("Failed to persist search analytics", zap.Error(err))
	}
}

// Warm loads the corpus and blocks until its index is published.
func (e *Engine) Warm(ctx context.Context) error {
	if _, err := e.Loader.LoadData(ctx); err != nil {
		return err
	}
	return e.Loader.WaitForIndex(ctx)
}

// Refresh clears every cache, reloads the corpus, and returns its size. The rebuilt index follows asynchronously.
func (e *Engine) Refresh(ctx context.Context) (int, error) {
	e.Loader.ClearCache()
	corpus, err := e.Loader.LoadData(ctx)
	if err != nil {
		return 0, err
	}
	e.logger.Info("Corpus refreshed", zap.Int("articles", len(corpus)))
	return len(corpus), nil
}

// Status is a point-in-time health summary.
type Status struct {
	Index        model.IndexStats              `json:"index"`
	Cache        model.CacheHealth             `json:"cache"`
	CacheMetrics map[string]model.CacheMetrics `json:"cacheMetrics"`
	ContentCache model.ContentCacheStats       `json:"contentCache"`
	Jobs         jobs.JobMetricsData           `json:"jobs"`
}

// Status reports index readiness and cache and job health.
func (e *Engine) Status() Status {
	return Status{
		Index:        e.Index.Stats(),
		Cache:        e.Monitor.Health(),
		CacheMetrics: e.Monitor.Metrics(),
		ContentCache: e.Content.Stats(),
		Jobs:         e.Jobs.GetMetrics(),
	}
}
