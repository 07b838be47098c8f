package model

import "time"

// CacheHealthStatus is the overall verdict of the cache monitor.
type CacheHealthStatus string

const (
	CacheHealthy  CacheHealthStatus = "healthy"
	CacheWarning  CacheHealthStatus = "warning"
	CacheCritical CacheHealthStatus = "critical"
)

// Severity orders statuses so that a summary can only escalate.
func (s CacheHealthStatus) Severity() int {
	switch s {
	case CacheWarning:
		return 1
	case CacheCritical:
		return 2
	default:
		return 0
	}
}

// CacheMetrics is the derived view of one named cache's counters.
type CacheMetrics struct {
	Hits          int64     `json:"hits"`
	Misses        int64     `json:"misses"`
	Errors        int64     `json:"errors"`
	HitRate       float64   `json:"hitRate"`
	ErrorRate     float64   `json:"errorRate"`
	TotalRequests int64     `json:"totalRequests"`
	LastAccess    time.Time `json:"lastAccess"`
}

// CacheHealth summarizes problems across all monitored caches.
type CacheHealth struct {
	Status          CacheHealthStatus `json:"status"`
	Issues          []string          `json:"issues"`
	Recommendations []string          `json:"recommendations"`
}

// ContentCacheStats reports the size and effectiveness of the content cache.
type ContentCacheStats struct {
	Size    int     `json:"size"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hitRate"`
}

// IndexStats describes the currently served search index.
type IndexStats struct {
	Ready      bool      `json:"ready"`
	Articles   int       `json:"articles"`
	Terms      int       `json:"terms"`
	Categories int       `json:"categories"`
	Sources    int       `json:"sources"`
	Generation uint64    `json:"generation"`
	BuiltAt    time.Time `json:"builtAt,omitempty"`
}
