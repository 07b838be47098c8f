package loader

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/gcbaptista/markets-feeds/config"
	"github.com/gcbaptista/markets-feeds/internal/clock"
	internalErrors "github.com/gcbaptista/markets-feeds/internal/errors"
	"github.com/gcbaptista/markets-feeds/internal/indexing"
	"github.com/gcbaptista/markets-feeds/internal/jobs"
	"github.com/gcbaptista/markets-feeds/internal/logging"
	"github.com/gcbaptista/markets-feeds/internal/monitor"
	"github.com/gcbaptista/markets-feeds/model"
	"github.com/gcbaptista/markets-feeds/services"
)

// IndexTarget is the job target of corpus index builds.
const IndexTarget = "articles"

// Dependencies are the collaborators a Loader orchestrates. Enricher, Monitor, and Analytics may be nil.
type Dependencies struct {
	Source        services.ArticleSource
	Recategorizer services.Recategorizer
	Index         *indexing.Service
	Searcher      services.Searcher
	Enricher      services.ContentEnricher
	Jobs          *jobs.Manager
	Monitor       *monitor.CacheMonitor
	Analytics     services.SearchTracker
	Clock         clock.Clock
	Logger        *zap.Logger
}

// Loader owns the corpus lifecycle: it loads and recategorizes articles, caches them with a TTL,
// triggers background index builds, and exposes the query surface.
type Loader struct {
	deps     Dependencies
	settings config.Settings
	clock    clock.Clock
	logger   *zap.Logger

	mu       sync.RWMutex
	corpus   []model.Article // newest first, never mutated after publication
	loadedAt time.Time
	stats    model.RecategorizationStats
	dropped  int
	buildJob string
	// epoch invalidates reloads that were in flight when ClearCache ran.
	epoch uint64

	group singleflight.Group
}

// New creates a Loader. Source, Recategorizer, Index, Searcher and Jobs are required.
func New(deps Dependencies, settings config.Settings) (*Loader, error) {
	switch {
	case deps.Source == nil:
		return nil, fmt.Errorf("article source cannot be nil")
	case deps.Recategorizer == nil:
		return nil, fmt.Errorf("recategorizer cannot be nil")
	case deps.Index == nil:
		return nil, fmt.Errorf("index service cannot be nil")
	case deps.Searcher == nil:
		return nil, fmt.Errorf("searcher cannot be nil")
	case deps.Jobs == nil:
		return nil, fmt.Errorf("job manager cannot be nil")
	}
	settings.ApplyDefaults()

	return &Loader{
		deps:     deps,
		settings: settings,
		clock:    clock.OrReal(deps.Clock),
		logger:   logging.OrNop(deps.Logger),
	}, nil
}

// LoadData returns the cached corpus while it is younger than the corpus TTL, otherwise it reloads
// from storage. Concurrent reloads are collapsed into one. The slice is shared and must not be modified.
func (l *Loader) LoadData(ctx context.Context) ([]model.Article, error) {
	if corpus, ok := l.fresh(); ok {
		l.record(true)
		return corpus, nil
	}
	l.record(false)

	v, err, _ := l.group.Do("corpus", func() (interface{}, error) {
		if corpus, ok := l.fresh(); ok {
			return corpus, nil
		}
		return l.reload(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Article), nil
}

func (l *Loader) fresh() ([]model.Article, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.corpus) == 0 {
		return nil, false
	}
	return l.corpus, l.clock.Now().Sub(l.loadedAt) < l.settings.CorpusTTL
}

func (l *Loader) reload(ctx context.Context) ([]model.Article, error) {
	start := time.Now()

	l.mu.RLock()
	epoch := l.epoch
	l.mu.RUnlock()

	raw, err := l.deps.Source.LoadRawArticles(ctx)
	if err != nil {
		if !errors.Is(err, internalErrors.ErrStorageUnavailable) {
			err = internalErrors.NewStorageError("load articles", err)
		}
		return nil, err
	}

	valid := make([]model.Article, 0, len(raw))
	for _, a := range raw {
		if strings.TrimSpace(a.Title) == "" || strings.TrimSpace(a.URL) == "" {
			continue
		}
		valid = append(valid, a)
	}
	dropped := len(raw) - len(valid)

	results, stats := l.deps.Recategorizer.RecategorizeAll(valid)
	for i := range valid {
		valid[i].Category = results[i].NewCategory
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].PublishedAt.After(valid[j].PublishedAt)
	})

	l.mu.Lock()
	if l.epoch != epoch {
		l.mu.Unlock()
		l.logger.Info("Discarded corpus reload invalidated by cache clear")
		return valid, nil
	}
	l.corpus = valid
	l.loadedAt = l.clock.Now()
	l.stats = stats
	l.dropped = dropped
	l.mu.Unlock()

	l.logger.Info("Corpus loaded",
		zap.Int("articles", len(valid)),
		zap.Int("dropped", dropped),
		zap.Int("recategorized", stats.CategoriesChanged),
		zap.Duration("duration", time.Since(start)))

	l.triggerBuild(valid)
	return valid, nil
}

// triggerBuild starts an index build job without waiting for it. Failures are logged by the job manager.
func (l *Loader) triggerBuild(corpus []model.Article) {
	jobID := l.deps.Jobs.CreateJob(model.JobTypeIndexBuild, IndexTarget, map[string]string{
		"articles": strconv.Itoa(len(corpus)),
	})

	l.mu.Lock()
	l.buildJob = jobID
	l.mu.Unlock()

	err := l.deps.Jobs.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		_, err := l.deps.Index.BuildWithProgress(ctx, corpus, func(done, total int) {
			l.deps.Jobs.UpdateJobProgress(job.ID, done, total, "Indexing articles")
		})
		return err
	})
	if err != nil {
		l.logger.Error("Failed to start index build", zap.String("job_id", jobID), zap.Error(err))
	}
}

// LastBuildJob returns the id of the most recently triggered index build, or "".
func (l *Loader) LastBuildJob() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.buildJob
}

// WaitForIndex blocks until the most recent index build finishes. It reports ErrIndexNotReady
// when no build was ever triggered and no index is published.
func (l *Loader) WaitForIndex(ctx context.Context) error {
	jobID := l.LastBuildJob()
	if jobID == "" {
		if l.deps.Index.Ready() {
			return nil
		}
		return internalErrors.NewIndexNotReadyError("wait for index")
	}

	job, err := l.deps.Jobs.Wait(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != model.JobStatusCompleted {
		return fmt.Errorf("index build %s %s: %s", job.ID, job.Status, job.Error)
	}
	return nil
}

// ClearCache drops the corpus, the content cache, and the published index so the next call reloads.
func (l *Loader) ClearCache() {
	l.mu.Lock()
	l.corpus = nil
	l.loadedAt = time.Time{}
	l.stats = model.RecategorizationStats{}
	l.dropped = 0
	l.epoch++
	l.mu.Unlock()

	if l.deps.Enricher != nil {
		l.deps.Enricher.Clear()
	}
	l.deps.Index.Reset()
	if l.deps.Monitor != nil {
		l.deps.Monitor.RecordCacheClear(monitor.CacheDataLoader)
	}
	l.logger.Info("Caches cleared")
}

// RecategorizationStats returns the statistics of the last corpus load.
func (l *Loader) RecategorizationStats() model.RecategorizationStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stats
}

// Dropped returns how many articles the last load discarded for a missing title or URL.
func (l *Loader) Dropped() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dropped
}

func (l *Loader) record(hit bool) {
	if l.deps.Monitor == nil {
		return
	}
	if hit {
		l.deps.Monitor.RecordHit(monitor.CacheDataLoader)
	} else {
		l.deps.Monitor.RecordMiss(monitor.CacheDataLoader)
	}
}
