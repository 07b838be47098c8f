// Package analytics tracks served searches and summarizes them into a dashboard.
package analytics

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gcbaptista/markets-feeds/internal/clock"
	"github.com/gcbaptista/markets-feeds/internal/logging"
	"github.com/gcbaptista/markets-feeds/internal/persistence"
	"github.com/gcbaptista/markets-feeds/model"
)

const (
	maxEventsToKeep = 10000 // Keep last 10k events for performance
	topSearches     = 5
)

// Service records search events in memory and optionally persists them to a JSON file.
// It fulfills the services.SearchTracker interface.
type Service struct {
	mu     sync.RWMutex
	events []model.SearchEvent
	dirty  bool

	path   string
	clock  clock.Clock
	logger *zap.Logger
}

// NewService creates an analytics service. When path is non-empty, previously saved events are loaded
// from it and Save writes back to it.
func NewService(path string, c clock.Clock, logger *zap.Logger) *Service {
	s := &Service{
		events: make([]model.SearchEvent, 0),
		path:   path,
		clock:  clock.OrReal(c),
		logger: logging.OrNop(logger),
	}

	if path != "" {
		if err := persistence.LoadJSON(path, &s.events); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Failed to load analytics data", zap.String("path", path), zap.Error(err))
			s.events = make([]model.SearchEvent, 0)
		}
	}
	return s
}

// Track records a search event. A zero timestamp is set to the current time.
func (s *Service) Track(event model.SearchEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)
	if len(s.events) > maxEventsToKeep {
		s.events = s.events[len(s.events)-maxEventsToKeep:]
	}
	s.dirty = true
}

// Len returns the number of retained events.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Save writes the retained events when there is a file to write to and anything changed.
func (s *Service) Save() error {
	if s.path == "" {
		return nil
	}

	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	snapshot := make([]model.SearchEvent, len(s.events))
	copy(snapshot, s.events)
	s.dirty = false
	s.mu.Unlock()

	if err := persistence.SaveJSON(s.path, snapshot); err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return fmt.Errorf("failed to save analytics data: %w", err)
	}
	return nil
}

// Dashboard summarizes the last 24 hours against the 24 hours before, plus the week's popular searches.
func (s *Service) Dashboard() model.SearchAnalytics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.clock.Now()
	dayAgo := now.Add(-24 * time.Hour)

	last24h := filterEventsByTimeRange(s.events, dayAgo, now)
	previous24h := filterEventsByTimeRange(s.events, dayAgo.Add(-24*time.Hour), dayAgo)
	lastWeek := filterEventsByTimeRange(s.events, now.Add(-7*24*time.Hour), now)

	return model.SearchAnalytics{
		TotalSearches:         len(last24h),
		SearchesChangePercent: calculateChangePercent(len(last24h), len(previous24h)),
		AvgResponseTime:       calculateAvgResponseTime(last24h),
		ResponseTimeTrend:     responseTimeTrend(last24h, previous24h),
		ZeroResultRate:        zeroResultRate(last24h),
		SearchPerformance24h:  hourlyPerformance(last24h),
		PopularSearches:       topQueries(lastWeek, func(model.SearchEvent) bool { return true }),
		ZeroResultSearches:    topQueries(lastWeek, func(e model.SearchEvent) bool { return e.ResultCount == 0 }),
		Distribution:          responseTimeDistribution(last24h),
		SearchTypes:           searchTypeCounts(last24h),
	}
}

// filterEventsByTimeRange returns events in (start, end].
func filterEventsByTimeRange(events []model.SearchEvent, start, end time.Time) []model.SearchEvent {
	var filtered []model.SearchEvent
	for _, event := range events {
		if event.Timestamp.After(start) && !event.Timestamp.After(end) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

func calculateChangePercent(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100.0
		}
		return 0.0
	}
	return float64(current-previous) / float64(previous) * 100.0
}

func calculateAvgResponseTime(events []model.SearchEvent) int64 {
	if len(events) == 0 {
		return 0
	}
	var total time.Duration
	for _, event := range events {
		total += event.ResponseTime
	}
	return (total / time.Duration(len(events))).Milliseconds()
}

// responseTimeTrend is "up" or "down" when the average moved by more than 10%, "stable" otherwise.
func responseTimeTrend(current, previous []model.SearchEvent) string {
	if len(current) == 0 || len(previous) == 0 {
		return "stable"
	}
	var cur, prev time.Duration
	for _, e := range current {
		cur += e.ResponseTime
	}
	for _, e := range previous {
		prev += e.ResponseTime
	}
	curAvg := float64(cur) / float64(len(current))
	prevAvg := float64(prev) / float64(len(previous))
	if prevAvg == 0 {
		return "stable"
	}

	change := (curAvg - prevAvg) / prevAvg
	switch {
	case change > 0.1:
		return "up"
	case change < -0.1:
		return "down"
	default:
		return "stable"
	}
}

// zeroResultRate is the share of text queries that matched nothing. Browsing is not counted.
func zeroResultRate(events []model.SearchEvent) float64 {
	queries, zero := 0, 0
	for _, e := range events {
		if e.SearchType == model.SearchTypeBrowse {
			continue
		}
		queries++
		if e.ResultCount == 0 {
			zero++
		}
	}
	if queries == 0 {
		return 0
	}
	return float64(zero) / float64(queries)
}

func hourlyPerformance(events []model.SearchEvent) []model.SearchPerformanceHourly {
	hourlyData := make(map[int][]model.SearchEvent)
	for _, event := range events {
		hour := event.Timestamp.UTC().Hour()
		hourlyData[hour] = append(hourlyData[hour], event)
	}

	performance := make([]model.SearchPerformanceHourly, 0, 24)
	for hour := 0; hour < 24; hour++ {
		performance = append(performance, model.SearchPerformanceHourly{
			Hour:            hour,
			SearchCount:     len(hourlyData[hour]),
			AvgResponseTime: calculateAvgResponseTime(hourlyData[hour]),
		})
	}
	return performance
}

// topQueries counts normalized non-blank queries accepted by keep, most frequent first, ties alphabetical.
func topQueries(events []model.SearchEvent, keep func(model.SearchEvent) bool) []model.PopularSearch {
	counts := make(map[string]int)
	for _, event := range events {
		query := strings.ToLower(strings.TrimSpace(event.Query))
		if query == "" || !keep(event) {
			continue
		}
		counts[query]++
	}

	popular := make([]model.PopularSearch, 0, len(counts))
	for query, count := range counts {
		popular = append(popular, model.PopularSearch{Query: query, SearchCount: count})
	}
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].SearchCount != popular[j].SearchCount {
			return popular[i].SearchCount > popular[j].SearchCount
		}
		return popular[i].Query < popular[j].Query
	})

	if len(popular) > topSearches {
		popular = popular[:topSearches]
	}
	return popular
}

func responseTimeDistribution(events []model.SearchEvent) model.ResponseTimeDistribution {
	dist := model.ResponseTimeDistribution{}
	total := len(events)
	if total == 0 {
		return dist
	}

	for _, event := range events {
		switch ms := event.ResponseTime.Milliseconds(); {
		case ms <= 25:
			dist.Bucket0To25ms++
		case ms <= 50:
			dist.Bucket25To50ms++
		case ms <= 100:
			dist.Bucket50To100ms++
		default:
			dist.Bucket100msPlus++
		}
	}

	dist.Percentage0To25 = float64(dist.Bucket0To25ms) / float64(total) * 100
	dist.Percentage25To50 = float64(dist.Bucket25To50ms) / float64(total) * 100
	dist.Percentage50To100 = float64(dist.Bucket50To100ms) / float64(total) * 100
	dist.Percentage100Plus = float64(dist.Bucket100msPlus) / float64(total) * 100
	return dist
}

func searchTypeCounts(events []model.SearchEvent) map[model.SearchType]int {
	counts := make(map[model.SearchType]int)
	for _, event := range events {
		counts[event.SearchType]++
	}
	return counts
}
