package model

import "time"

// Priority is the editorial urgency attached to an article by the feed fetcher.
type Priority string

const (
	PriorityBreaking Priority = "breaking"
	PriorityHigh     Priority = "high"
	PriorityNormal   Priority = "normal"
	PriorityLow      Priority = "low"
)

// IsBoosted reports whether articles with this priority get the ranking boost.
func (p Priority) IsBoosted() bool {
	return p == PriorityHigh || p == PriorityBreaking
}

// Article is a normalized feed item as produced by the feed-fetch collaborator.
// Only Category is ever rewritten downstream (by recategorization).
type Article struct {
	ID          string    `json:"id"`
	SourceID    string    `json:"sourceId"`
	SourceName  string    `json:"sourceName"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Summary     string    `json:"summary,omitempty"`
	FullContent string    `json:"fullContent,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	FetchedAt   time.Time `json:"fetchedAt,omitempty"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Priority    Priority  `json:"priority,omitempty"`
	ContentHash string    `json:"contentHash,omitempty"`
}

// DateRange is an inclusive publication-time window.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// SearchFilters restricts search and browse results. Empty slices mean "no restriction".
type SearchFilters struct {
	Categories []string   `json:"categories,omitempty"`
	Sources    []string   `json:"sources,omitempty"`
	DateRange  *DateRange `json:"dateRange,omitempty"`
	Priorities []Priority `json:"priorities,omitempty"`
}

// IsEmpty reports whether no filter is set.
func (f SearchFilters) IsEmpty() bool {
	return len(f.Categories) == 0 && len(f.Sources) == 0 && f.DateRange == nil && len(f.Priorities) == 0
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Page       int  `json:"page"`
	TotalPages int  `json:"totalPages"`
	TotalItems int  `json:"totalItems"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// TermCount is a term with its occurrence count.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}
