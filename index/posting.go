package index

import "sort"

// PostingSet is the set of article URLs that contain a term, belong to a category, or come from a source.
type PostingSet map[string]struct{}

// Add inserts url into the set.
func (p PostingSet) Add(url string) {
	p[url] = struct{}{}
}

// Contains reports whether url is in the set.
func (p PostingSet) Contains(url string) bool {
	_, ok := p[url]
	return ok
}

// Len returns the number of URLs in the set.
func (p PostingSet) Len() int {
	return len(p)
}

// Sorted returns the URLs in lexical order.
func (p PostingSet) Sorted() []string {
	urls := make([]string, 0, len(p))
	for url := range p {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}

// Intersect returns a new set holding the URLs present in every given set.
// No sets, or any empty set, yields an empty result.
func Intersect(sets ...PostingSet) PostingSet {
	result := make(PostingSet)
	if len(sets) == 0 {
		return result
	}

	// Iterate the smallest set and probe the others
	smallest := 0
	for i, s := range sets {
		if s.Len() < sets[smallest].Len() {
			smallest = i
		}
	}
	if sets[smallest].Len() == 0 {
		return result
	}

outer:
	for url := range sets[smallest] {
		for i, s := range sets {
			if i == smallest {
				continue
			}
			if !s.Contains(url) {
				continue outer
			}
		}
		result.Add(url)
	}
	return result
}

// Union returns a new set holding the URLs present in any of the given sets.
func Union(sets ...PostingSet) PostingSet {
	result := make(PostingSet)
	for _, s := range sets {
		for url := range s {
			result.Add(url)
		}
	}
	return result
}
