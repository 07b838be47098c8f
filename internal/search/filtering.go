package search

import (
	"github.com/gcbaptista/markets-feeds/index"
	"github.com/gcbaptista/markets-feeds/model"
)

// candidates returns the AND-intersection of the postings of every term.
// No terms yields no candidates.
func candidates(snap *index.Snapshot, terms []string) index.PostingSet {
	if len(terms) == 0 {
		return index.PostingSet{}
	}
	sets := make([]index.PostingSet, 0, len(terms))
	for _, term := range terms {
		sets = append(sets, snap.Lookup(term))
	}
	return index.Intersect(sets...)
}

// applyFilters narrows a URL set by category, source, date range, and priority.
// Within one filter the listed values are ORed; filters are ANDed together.
func applyFilters(snap *index.Snapshot, urls index.PostingSet, filters model.SearchFilters) index.PostingSet {
	filtered := urls

	if len(filters.Categories) > 0 {
		filtered = index.Intersect(filtered, unionOf(snap.Categories, filters.Categories))
	}
	if len(filters.Sources) > 0 {
		filtered = index.Intersect(filtered, unionOf(snap.Sources, filters.Sources))
	}
	if filters.DateRange == nil && len(filters.Priorities) == 0 {
		return filtered
	}

	var priorities map[model.Priority]struct{}
	if len(filters.Priorities) > 0 {
		priorities = make(map[model.Priority]struct{}, len(filters.Priorities))
		for _, p := range filters.Priorities {
			priorities[p] = struct{}{}
		}
	}

	result := make(index.PostingSet, filtered.Len())
	for url := range filtered {
		sa, ok := snap.Article(url)
		if !ok {
			continue
		}
		if filters.DateRange != nil && !filters.DateRange.Contains(sa.Article.PublishedAt) {
			continue
		}
		if priorities != nil {
			if _, ok := priorities[sa.Article.Priority]; !ok {
				continue
			}
		}
		result.Add(url)
	}
	return result
}

func unionOf(m map[string]index.PostingSet, keys []string) index.PostingSet {
	sets := make([]index.PostingSet, 0, len(keys))
	for _, k := range keys {
		if s, ok := m[k]; ok {
			sets = append(sets, s)
		}
	}
	return index.Union(sets...)
}

// allURLs returns the URLs of every indexed article.
func allURLs(snap *index.Snapshot) index.PostingSet {
	urls := make(index.PostingSet, snap.Len())
	for _, url := range snap.Order {
		urls.Add(url)
	}
	return urls
}
