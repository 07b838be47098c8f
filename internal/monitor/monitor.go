// Package monitor tracks hit, miss, and error counters for the named caches of the feed core
// and derives a health summary from them.
package monitor

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gcbaptista/markets-feeds/internal/clock"
	"github.com/gcbaptista/markets-feeds/internal/logging"
	"github.com/gcbaptista/markets-feeds/model"
)

// Names of the caches owned by the core.
const (
	CacheDataLoader         = "DataLoader"
	CacheSearchIndex        = "SearchIndex"
	CacheContentEnhancement = "ContentEnhancement"
)

const (
	lowHitRateThreshold   = 0.3
	lowHitRateMinRequests = 100
	highErrorRate         = 0.05
)

type counters struct {
	hits       int64
	misses     int64
	errors     int64
	lastAccess time.Time
}

// CacheMonitor is safe for concurrent use.
type CacheMonitor struct {
	mu      sync.RWMutex
	metrics map[string]*counters
	clock   clock.Clock
	logger  *zap.Logger
}

// New creates an empty monitor.
func New(c clock.Clock, logger *zap.Logger) *CacheMonitor {
	return &CacheMonitor{
		metrics: make(map[string]*counters),
		clock:   clock.OrReal(c),
		logger:  logging.OrNop(logger),
	}
}

func (m *CacheMonitor) entry(name string) *counters {
	c, ok := m.metrics[name]
	if !ok {
		c = &counters{}
		m.metrics[name] = c
	}
	return c
}

// RecordHit increments the hit counter of a cache
func (m *CacheMonitor) RecordHit(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.entry(name)
	c.hits++
	c.lastAccess = m.clock.Now()
}

// RecordMiss increments the miss counter of a cache
func (m *CacheMonitor) RecordMiss(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.entry(name)
	c.misses++
	c.lastAccess = m.clock.Now()
}

// RecordError increments the error counter of a cache
func (m *CacheMonitor) RecordError(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.entry(name)
	c.errors++
	c.lastAccess = m.clock.Now()
}

// RecordCacheClear resets the counters of a cache after an explicit invalidation
func (m *CacheMonitor) RecordCacheClear(name string) {
	m.mu.Lock()
	now := m.clock.Now()
	m.metrics[name] = &counters{lastAccess: now}
	m.mu.Unlock()

	m.logger.Info("Cache cleared", zap.String("cache", name), zap.Time("at", now))
}

// Metrics returns a snapshot of every tracked cache
func (m *CacheMonitor) Metrics() map[string]model.CacheMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]model.CacheMetrics, len(m.metrics))
	for name, c := range m.metrics {
		result[name] = toMetrics(c)
	}
	return result
}

func toMetrics(c *counters) model.CacheMetrics {
	total := c.hits + c.misses
	cm := model.CacheMetrics{
		Hits:          c.hits,
		Misses:        c.misses,
		Errors:        c.errors,
		TotalRequests: total,
		LastAccess:    c.lastAccess,
	}
	if total > 0 {
		cm.HitRate = float64(c.hits) / float64(total)
		cm.ErrorRate = float64(c.errors) / float64(total)
	}
	return cm
}

// Health evaluates every cache. The status only escalates: one critical cache makes the
// whole summary critical regardless of evaluation order.
func (m *CacheMonitor) Health() model.CacheHealth {
	metrics := m.Metrics()

	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	health := model.CacheHealth{
		Status:          model.CacheHealthy,
		Issues:          make([]string, 0),
		Recommendations: make([]string, 0),
	}
	escalate := func(s model.CacheHealthStatus) {
		if s.Severity() > health.Status.Severity() {
			health.Status = s
		}
	}

	for _, name := range names {
		cm := metrics[name]

		if cm.HitRate < lowHitRateThreshold && cm.TotalRequests > lowHitRateMinRequests {
			health.Issues = append(health.Issues, fmt.Sprintf("%s has low hit rate: %.1f%%", name, cm.HitRate*100))
			health.Recommendations = append(health.Recommendations, fmt.Sprintf("Consider increasing TTL for %s or improving cache strategy", name))
			escalate(model.CacheWarning)
		}

		if cm.ErrorRate > highErrorRate {
			health.Issues = append(health.Issues, fmt.Sprintf("%s has high error rate: %.1f%%", name, cm.ErrorRate*100))
			health.Recommendations = append(health.Recommendations, fmt.Sprintf("Investigate %s cache errors", name))
			escalate(model.CacheCritical)
		}

		if cm.TotalRequests == 0 {
			health.Issues = append(health.Issues, fmt.Sprintf("%s is not being used", name))
			health.Recommendations = append(health.Recommendations, fmt.Sprintf("Verify %s cache implementation", name))
			escalate(model.CacheWarning)
		}
	}

	return health
}
