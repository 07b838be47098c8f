package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/markets-feeds/internal/clock"
	"github.com/gcbaptista/markets-feeds/model"
)

func TestMetrics(t *testing.T) {
	fake := clock.NewFake(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	m := New(fake, nil)

	m.RecordHit(CacheDataLoader)
	m.RecordHit(CacheDataLoader)
	m.RecordHit(CacheDataLoader)
	fake.Advance(time.Minute)
	m.RecordMiss(CacheDataLoader)
	m.RecordError(CacheDataLoader)

	metrics := m.Metrics()
	require.Contains(t, metrics, CacheDataLoader)

	cm := metrics[CacheDataLoader]
	assert.Equal(t, int64(3), cm.Hits)
	assert.Equal(t, int64(1), cm.Misses)
	assert.Equal(t, int64(1), cm.Errors)
	assert.Equal(t, int64(4), cm.TotalRequests)
	assert.InDelta(t, 0.75, cm.HitRate, 1e-9)
	assert.InDelta(t, 0.25, cm.ErrorRate, 1e-9)
	assert.Equal(t, fake.Now(), cm.LastAccess)
}

func TestRecordCacheClearResets(t *testing.T) {
	m := New(nil, nil)
	m.RecordHit(CacheSearchIndex)
	m.RecordMiss(CacheSearchIndex)

	m.RecordCacheClear(CacheSearchIndex)

	cm := m.Metrics()[CacheSearchIndex]
	assert.Zero(t, cm.Hits)
	assert.Zero(t, cm.Misses)
	assert.Zero(t, cm.TotalRequests)
	assert.False(t, cm.LastAccess.IsZero())
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		record     func(m *CacheMonitor)
		wantStatus model.CacheHealthStatus
		wantIssues int
	}{
		{
			name:       "no caches",
			record:     func(m *CacheMonitor) {},
			wantStatus: model.CacheHealthy,
		},
		{
			name: "healthy cache",
			record: func(m *CacheMonitor) {
				for i := 0; i < 10; i++ {
					m.RecordHit(CacheDataLoader)
				}
			},
			wantStatus: model.CacheHealthy,
		},
		{
			name: "low hit rate over many requests",
			record: func(m *CacheMonitor) {
				for i := 0; i < 101; i++ {
					m.RecordMiss(CacheContentEnhancement)
				}
			},
			wantStatus: model.CacheWarning,
			wantIssues: 1,
		},
		{
			name: "low hit rate ignored for few requests",
			record: func(m *CacheMonitor) {
				for i := 0; i < 50; i++ {
					m.RecordMiss(CacheContentEnhancement)
				}
			},
			wantStatus: model.CacheHealthy,
		},
		{
			name: "high error rate",
			record: func(m *CacheMonitor) {
				for i := 0; i < 10; i++ {
					m.RecordHit(CacheContentEnhancement)
				}
				m.RecordError(CacheContentEnhancement)
			},
			wantStatus: model.CacheCritical,
			wantIssues: 1,
		},
		{
			name: "unused cache after clear",
			record: func(m *CacheMonitor) {
				m.RecordCacheClear(CacheSearchIndex)
			},
			wantStatus: model.CacheWarning,
			wantIssues: 1,
		},
		{
			name: "critical is not downgraded by a later warning",
			record: func(m *CacheMonitor) {
				// "A" sorts before "Z"; the warning cache is evaluated last
				for i := 0; i < 10; i++ {
					m.RecordHit("A")
				}
				m.RecordError("A")
				m.RecordCacheClear("Z")
			},
			wantStatus: model.CacheCritical,
			wantIssues: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(nil, nil)
			tt.record(m)

			health := m.Health()
			assert.Equal(t, tt.wantStatus, health.Status)
			assert.Len(t, health.Issues, tt.wantIssues)
			assert.Len(t, health.Recommendations, tt.wantIssues)
		})
	}
}
