// Package config provides configuration structures for the feed search core.
// It defines cache lifetimes, result limits, and the category taxonomy.
package config

import (
	"fmt"
	"time"
)

// Settings contains the tunables of the loader, search engine, and content cache.
// Zero values are replaced by ApplyDefaults.
type Settings struct {
	CorpusTTL             time.Duration `mapstructure:"corpus_ttl" json:"corpus_ttl"`                             // How long a loaded corpus is served before reloading (e.g., 5m)
	ContentCacheTTL       time.Duration `mapstructure:"content_cache_ttl" json:"content_cache_ttl"`               // Lifetime of an enhanced-content entry (e.g., 1h)
	ContentCacheMaxSize   int           `mapstructure:"content_cache_max_size" json:"content_cache_max_size"`     // Size that triggers cleanup of expired entries
	ContentCacheHardLimit int           `mapstructure:"content_cache_hard_limit" json:"content_cache_hard_limit"` // Size above which the oldest entries are evicted
	DefaultPageSize       int           `mapstructure:"default_page_size" json:"default_page_size"`
	MaxPageSize           int           `mapstructure:"max_page_size" json:"max_page_size"`
	MaxQueryLength        int           `mapstructure:"max_query_length" json:"max_query_length"`
	SearchOverfetch       int           `mapstructure:"search_overfetch" json:"search_overfetch"` // Multiplier applied to the page size when querying the engine
	SuggestionLimit       int           `mapstructure:"suggestion_limit" json:"suggestion_limit"`
	TrendingDays          int           `mapstructure:"trending_days" json:"trending_days"`
	TrendingLimit         int           `mapstructure:"trending_limit" json:"trending_limit"`
	SnippetLength         int           `mapstructure:"snippet_length" json:"snippet_length"`
	SnippetContext        int           `mapstructure:"snippet_context" json:"snippet_context"` // Characters of left context kept before the first match
	JobWorkers            int           `mapstructure:"job_workers" json:"job_workers"`
	MinWordSizeFor1Typo   int           `mapstructure:"min_word_size_for_1_typo" json:"min_word_size_for_1_typo"`   // Shortest query word corrected with one edit (e.g., 4)
	MinWordSizeFor2Typos  int           `mapstructure:"min_word_size_for_2_typos" json:"min_word_size_for_2_typos"` // Shortest query word corrected with two edits (e.g., 7)
	AnalyticsFile         string        `mapstructure:"analytics_file" json:"analytics_file,omitempty"`
	TaxonomyFile          string        `mapstructure:"taxonomy_file" json:"taxonomy_file,omitempty"`
}

// DefaultSettings returns Settings with every default applied.
func DefaultSettings() Settings {
	var s Settings
	s.ApplyDefaults()
	return s
}

// ApplyDefaults fills in zero-valued fields.
func (s *Settings) ApplyDefaults() {
	if s.CorpusTTL == 0 {
		s.CorpusTTL = 5 * time.Minute
	}
	if s.ContentCacheTTL == 0 {
		s.ContentCacheTTL = time.Hour
	}
	if s.ContentCacheMaxSize == 0 {
		s.ContentCacheMaxSize = 5000
	}
	if s.ContentCacheHardLimit == 0 {
		s.ContentCacheHardLimit = 8000
	}
	// The hard limit can never sit below the soft limit
	if s.ContentCacheHardLimit < s.ContentCacheMaxSize {
		s.ContentCacheHardLimit = s.ContentCacheMaxSize
	}
	if s.DefaultPageSize == 0 {
		s.DefaultPageSize = 50
	}
	if s.MaxPageSize == 0 {
		s.MaxPageSize = 200
	}
	if s.MaxQueryLength == 0 {
		s.MaxQueryLength = 256
	}
	if s.SearchOverfetch == 0 {
		s.SearchOverfetch = 2
	}
	if s.SuggestionLimit == 0 {
		s.SuggestionLimit = 5
	}
	if s.TrendingDays == 0 {
		s.TrendingDays = 7
	}
	if s.TrendingLimit == 0 {
		s.TrendingLimit = 10
	}
	if s.SnippetLength == 0 {
		s.SnippetLength = 150
	}
	if s.SnippetContext == 0 {
		s.SnippetContext = 50
	}
	if s.JobWorkers == 0 {
		s.JobWorkers = 2
	}
	if s.MinWordSizeFor1Typo == 0 {
		s.MinWordSizeFor1Typo = 4
	}
	if s.MinWordSizeFor2Typos == 0 {
		s.MinWordSizeFor2Typos = 7
	}
	// Ensure MinWordSizeFor2Typos is at least as large as MinWordSizeFor1Typo
	if s.MinWordSizeFor2Typos < s.MinWordSizeFor1Typo {
		s.MinWordSizeFor2Typos = s.MinWordSizeFor1Typo
	}
}

// Validate returns a list of problems; an empty list means the settings are usable.
func (s *Settings) Validate() []string {
	var problems []string

	if s.CorpusTTL < 0 {
		problems = append(problems, "corpus_ttl cannot be negative")
	}
	if s.ContentCacheTTL < 0 {
		problems = append(problems, "content_cache_ttl cannot be negative")
	}
	if s.ContentCacheMaxSize < 0 || s.ContentCacheHardLimit < 0 {
		problems = append(problems, "content cache sizes cannot be negative")
	}
	if s.DefaultPageSize > s.MaxPageSize {
		problems = append(problems, fmt.Sprintf("default_page_size (%d) exceeds max_page_size (%d)", s.DefaultPageSize, s.MaxPageSize))
	}
	if s.SnippetContext >= s.SnippetLength {
		problems = append(problems, "snippet_context must be smaller than snippet_length")
	}
	if s.SearchOverfetch < 1 {
		problems = append(problems, "search_overfetch must be at least 1")
	}
	if s.JobWorkers < 1 {
		problems = append(problems, "job_workers must be at least 1")
	}

	return problems
}
