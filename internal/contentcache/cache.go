// Package contentcache memoizes per-article feature extraction (entities, sentiment, topics,
// reading time) with a TTL and capacity-bounded eviction.
package contentcache

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/gcbaptista/markets-feeds/config"
	"github.com/gcbaptista/markets-feeds/internal/clock"
	"github.com/gcbaptista/markets-feeds/internal/errors"
	"github.com/gcbaptista/markets-feeds/internal/logging"
	"github.com/gcbaptista/markets-feeds/internal/monitor"
	"github.com/gcbaptista/markets-feeds/model"
)

// FeatureExtractor derives enhanced content from an article.
type FeatureExtractor interface {
	Extract(article *model.Article) *model.EnhancedContent
}

// Cache is safe for concurrent use. Returned values are shared and must be treated as read-only.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*model.EnhancedContent
	hits    int64
	misses  int64

	group     singleflight.Group
	extractor FeatureExtractor
	settings  config.Settings
	clock     clock.Clock
	monitor   *monitor.CacheMonitor
	logger    *zap.Logger
}

// Option customizes a Cache.
type Option func(*Cache)

// WithExtractor replaces the default deterministic extractor.
func WithExtractor(e FeatureExtractor) Option {
	return func(c *Cache) { c.extractor = e }
}

// WithClock injects the time source used for TTL checks.
func WithClock(cl clock.Clock) Option {
	return func(c *Cache) { c.clock = clock.OrReal(cl) }
}

// WithMonitor reports hits, misses, and clears to a cache monitor.
func WithMonitor(m *monitor.CacheMonitor) Option {
	return func(c *Cache) { c.monitor = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) { c.logger = logging.OrNop(l) }
}

// New creates a content cache.
func New(settings config.Settings, opts ...Option) *Cache {
	settings.ApplyDefaults()
	c := &Cache{
		entries:   make(map[string]*model.EnhancedContent),
		extractor: Extractor{},
		settings:  settings,
		clock:     clock.Real{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the cache key of an article.
func Key(article *model.Article) string {
	return article.URL + "-" + article.ContentHash
}

// GetEnhancedContent returns the cached features of an article while they are younger than the TTL,
// recomputing them otherwise. An extraction failure is returned as an error matching ErrEnrichmentFailed
// and leaves the cache untouched.
func (c *Cache) GetEnhancedContent(article *model.Article) (*model.EnhancedContent, error) {
	key := Key(article)

	c.mu.Lock()
	if cached, ok := c.entries[key]; ok && c.clock.Now().Sub(cached.LastProcessed) < c.settings.ContentCacheTTL {
		c.hits++
		c.mu.Unlock()
		c.record(monitor.CacheContentEnhancement, true)
		return cached, nil
	}
	c.misses++
	c.mu.Unlock()
	c.record(monitor.CacheContentEnhancement, false)

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		enhanced, err := c.extract(article)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = enhanced
		if len(c.entries) > c.settings.ContentCacheMaxSize {
			c.cleanupLocked()
		}
		c.mu.Unlock()
		return enhanced, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.EnhancedContent), nil
}

func (c *Cache) extract(article *model.Article) (enhanced *model.EnhancedContent, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewEnrichmentError(article.URL, fmt.Errorf("panic during extraction: %v", r))
		}
	}()

	enhanced = c.extractor.Extract(article)
	if enhanced == nil {
		return nil, errors.NewEnrichmentError(article.URL, fmt.Errorf("extractor returned no content"))
	}
	enhanced.LastProcessed = c.clock.Now()
	return enhanced, nil
}

// cleanupLocked purges expired entries, then evicts the oldest by processing time
// until the cache is within the hard limit. Caller holds c.mu.
func (c *Cache) cleanupLocked() {
	now := c.clock.Now()
	expired := 0
	for key, entry := range c.entries {
		if now.Sub(entry.LastProcessed) > c.settings.ContentCacheTTL {
			delete(c.entries, key)
			expired++
		}
	}

	evicted := 0
	if over := len(c.entries) - c.settings.ContentCacheHardLimit; over > 0 {
		keys := make([]string, 0, len(c.entries))
		for key := range c.entries {
			keys = append(keys, key)
		}
		sort.Slice(keys, func(i, j int) bool {
			ti, tj := c.entries[keys[i]].LastProcessed, c.entries[keys[j]].LastProcessed
			if ti.Equal(tj) {
				return keys[i] < keys[j]
			}
			return ti.Before(tj)
		})
		for _, key := range keys[:over] {
			delete(c.entries, key)
		}
		evicted = over
	}

	c.logger.Debug("Content cache cleanup",
		zap.Int("expired", expired),
		zap.Int("evicted", evicted),
		zap.Int("size", len(c.entries)))
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats reports size and hit rate since creation or the last Clear.
func (c *Cache) Stats() model.ContentCacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := model.ContentCacheStats{
		Size:   len(c.entries),
		Hits:   c.hits,
		Misses: c.misses,
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

// Clear drops every entry and resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*model.EnhancedContent)
	c.hits = 0
	c.misses = 0
	c.mu.Unlock()

	if c.monitor != nil {
		c.monitor.RecordCacheClear(monitor.CacheContentEnhancement)
	}
}

func (c *Cache) record(name string, hit bool) {
	if c.monitor == nil {
		return
	}
	if hit {
		c.monitor.RecordHit(name)
	} else {
		c.monitor.RecordMiss(name)
	}
}
