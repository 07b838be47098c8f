package search

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gcbaptista/markets-feeds/model"
)

const minSuggestionPrefix = 2

// prefixTooShort counts characters, not bytes.
func prefixTooShort(prefix string) bool {
	return utf8.RuneCountInString(prefix) < minSuggestionPrefix
}

// Suggestions returns up to limit indexed terms starting with the lowercased partial query,
// in index insertion order. Prefixes shorter than two characters yield nothing.
func (s *Service) Suggestions(partial string, limit int) ([]string, error) {
	snap, err := s.index.Current()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.settings.SuggestionLimit
	}

	prefix := strings.ToLower(strings.TrimSpace(partial))
	suggestions := make([]string, 0, limit)
	if prefixTooShort(prefix) {
		return suggestions, nil
	}

	for _, term := range snap.TermOrder {
		if len(suggestions) == limit {
			break
		}
		if strings.HasPrefix(term, prefix) {
			suggestions = append(suggestions, term)
		}
	}
	return suggestions, nil
}

// TrendingTerms counts key terms over articles published within the last days,
// most frequent first. Equal counts keep the order in which terms were first seen.
func (s *Service) TrendingTerms(days, limit int) ([]model.TermCount, error) {
	snap, err := s.index.Current()
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = s.settings.TrendingDays
	}
	if limit <= 0 {
		limit = s.settings.TrendingLimit
	}

	cutoff := s.clock.Now().Add(-time.Duration(days) * 24 * time.Hour)

	counts := make(map[string]int)
	var order []string
	for _, sa := range snap.All() {
		if sa.Article.PublishedAt.Before(cutoff) {
			continue
		}
		for _, term := range sa.KeyTerms {
			if _, seen := counts[term]; !seen {
				order = append(order, term)
			}
			counts[term]++
		}
	}

	trending := make([]model.TermCount, 0, len(order))
	for _, term := range order {
		trending = append(trending, model.TermCount{Term: term, Count: counts[term]})
	}
	sort.SliceStable(trending, func(i, j int) bool { return trending[i].Count > trending[j].Count })

	if len(trending) > limit {
		trending = trending[:limit]
	}
	return trending, nil
}
