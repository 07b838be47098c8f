package model

import "time"

// SearchType classifies a served search.
type SearchType string

const (
	SearchTypeQuery    SearchType = "query"
	SearchTypeFiltered SearchType = "filtered"
	SearchTypeBrowse   SearchType = "browse"
)

// SearchEvent represents a single search event for analytics tracking
type SearchEvent struct {
	QueryID      string        `json:"queryId"`
	Query        string        `json:"query"`
	SearchType   SearchType    `json:"searchType"`
	ResponseTime time.Duration `json:"responseTime"`
	ResultCount  int           `json:"resultCount"`
	Timestamp    time.Time     `json:"timestamp"`
}

// PopularSearch represents aggregated data for popular search terms
type PopularSearch struct {
	Query       string `json:"query"`
	SearchCount int    `json:"searchCount"`
}

// SearchPerformanceHourly is the search volume and latency of one hour of the day.
type SearchPerformanceHourly struct {
	Hour            int   `json:"hour"`
	SearchCount     int   `json:"searchCount"`
	AvgResponseTime int64 `json:"avgResponseTime"` // milliseconds
}

// ResponseTimeDistribution buckets search latencies.
type ResponseTimeDistribution struct {
	Bucket0To25ms     int     `json:"bucket0To25ms"`
	Bucket25To50ms    int     `json:"bucket25To50ms"`
	Bucket50To100ms   int     `json:"bucket50To100ms"`
	Bucket100msPlus   int     `json:"bucket100msPlus"`
	Percentage0To25   float64 `json:"percentage0To25"`
	Percentage25To50  float64 `json:"percentage25To50"`
	Percentage50To100 float64 `json:"percentage50To100"`
	Percentage100Plus float64 `json:"percentage100Plus"`
}

// SearchAnalytics is the query analytics dashboard.
type SearchAnalytics struct {
	TotalSearches         int                       `json:"totalSearches"` // last 24 hours
	SearchesChangePercent float64                   `json:"searchesChangePercent"`
	AvgResponseTime       int64                     `json:"avgResponseTime"` // milliseconds, last 24 hours
	ResponseTimeTrend     string                    `json:"responseTimeTrend"`
	ZeroResultRate        float64                   `json:"zeroResultRate"`
	SearchPerformance24h  []SearchPerformanceHourly `json:"searchPerformance24h"`
	PopularSearches       []PopularSearch           `json:"popularSearches"`
	ZeroResultSearches    []PopularSearch           `json:"zeroResultSearches"`
	Distribution          ResponseTimeDistribution  `json:"responseTimeDistribution"`
	SearchTypes           map[SearchType]int        `json:"searchTypes"`
}
