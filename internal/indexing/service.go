package indexing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/gcbaptista/markets-feeds/index"
	"github.com/gcbaptista/markets-feeds/internal/clock"
	"github.com/gcbaptista/markets-feeds/internal/errors"
	"github.com/gcbaptista/markets-feeds/internal/logging"
	"github.com/gcbaptista/markets-feeds/internal/monitor"
	"github.com/gcbaptista/markets-feeds/internal/tokenizer"
	"github.com/gcbaptista/markets-feeds/model"
)

// ProgressFunc is called while a build runs with the number of articles indexed so far.
type ProgressFunc func(done, total int)

// progressEvery controls how often ProgressFunc fires during a build.
const progressEvery = 500

// Service builds search index snapshots and publishes them atomically.
// It fulfills the services.IndexBuilder and services.IndexReader interfaces.
type Service struct {
	current    atomic.Pointer[index.Snapshot]
	generation atomic.Uint64

	// publishMu serializes the compare-and-publish step and Reset.
	publishMu sync.Mutex
	// floor is the highest generation invalidated by Reset; older builds never publish.
	floor uint64

	clock   clock.Clock
	monitor *monitor.CacheMonitor
	logger  *zap.Logger
}

// NewService creates an indexing Service with no published snapshot.
func NewService(c clock.Clock, mon *monitor.CacheMonitor, logger *zap.Logger) *Service {
	return &Service{
		clock:   clock.OrReal(c),
		monitor: mon,
		logger:  logging.OrNop(logger),
	}
}

// Prepare derives the searchable form of an article: weighted lowercased content,
// deduplicated key terms, and the token count.
func Prepare(article model.Article) *index.SearchableArticle {
	tags := strings.Join(article.Tags, " ")
	weighted := strings.Join([]string{
		article.Title, article.Title, article.Title,
		article.Summary, article.Summary,
		article.FullContent,
		tags, tags,
	}, " ")

	searchable := strings.ToLower(weighted)
	tokens := tokenizer.Tokenize(searchable)
	raw := article.Title + " " + article.Summary + " " + article.FullContent

	return &index.SearchableArticle{
		Article:           article,
		SearchableContent: searchable,
		KeyTerms:          tokenizer.KeyTerms(tokens, raw),
		WordCount:         len(tokens),
	}
}

// Build indexes articles into a fresh snapshot and publishes it. Every call fully replaces
// the previous index; readers keep seeing the previous snapshot until the swap.
func (s *Service) Build(ctx context.Context, articles []model.Article) (*index.Snapshot, error) {
	return s.BuildWithProgress(ctx, articles, nil)
}

// BuildWithProgress is Build with periodic progress callbacks.
func (s *Service) BuildWithProgress(ctx context.Context, articles []model.Article, progress ProgressFunc) (*index.Snapshot, error) {
	start := time.Now()
	gen := s.generation.Add(1)
	snap := index.NewSnapshot(gen, s.clock.Now())

	for i := range articles {
		if i%progressEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("index build %d cancelled: %w", gen, err)
			}
			if progress != nil && i > 0 {
				progress(i, len(articles))
			}
		}
		snap.Insert(Prepare(articles[i]))
	}
	if progress != nil {
		progress(len(articles), len(articles))
	}

	if !s.publish(snap) {
		s.logger.Info("Discarded stale index build",
			zap.Uint64("generation", gen),
			zap.Int("articles", snap.Len()))
		return snap, nil
	}

	s.logger.Info("Search index built",
		zap.Uint64("generation", gen),
		zap.Int("articles", snap.Len()),
		zap.Int("terms", len(snap.Terms)),
		zap.Duration("duration", time.Since(start)))
	return snap, nil
}

// publish swaps snap in unless a newer snapshot is already published or a Reset happened after it started.
func (s *Service) publish(snap *index.Snapshot) bool {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	if snap.Generation <= s.floor {
		return false
	}
	if cur := s.current.Load(); cur != nil && cur.Generation >= snap.Generation {
		return false
	}
	s.current.Store(snap)
	return true
}

// Current returns the published snapshot, or an error matching ErrIndexNotReady before the first build.
func (s *Service) Current() (*index.Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		s.record(false)
		return nil, errors.NewIndexNotReadyError("search")
	}
	s.record(true)
	return snap, nil
}

// Ready reports whether a snapshot is published.
func (s *Service) Ready() bool {
	return s.current.Load() != nil
}

// Reset drops the published snapshot and invalidates builds still in flight.
func (s *Service) Reset() {
	s.publishMu.Lock()
	s.floor = s.generation.Load()
	s.current.Store(nil)
	s.publishMu.Unlock()

	if s.monitor != nil {
		s.monitor.RecordCacheClear(monitor.CacheSearchIndex)
	}
}

// Stats describes the published snapshot.
func (s *Service) Stats() model.IndexStats {
	snap := s.current.Load()
	if snap == nil {
		return model.IndexStats{Ready: false}
	}
	return snap.Stats()
}

func (s *Service) record(hit bool) {
	if s.monitor == nil {
		return
	}
	if hit {
		s.monitor.RecordHit(monitor.CacheSearchIndex)
	} else {
		s.monitor.RecordMiss(monitor.CacheSearchIndex)
	}
}
