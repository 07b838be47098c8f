package typoutil

import (
	"strconv"
	"sync"
)

const defaultMaxCacheSize = 1000

// Finder looks up close matches in a fixed vocabulary. Results are cached per term.
// A Finder is safe for concurrent use.
type Finder struct {
	terms []string

	cacheMu      sync.RWMutex
	cache        map[string][]string
	maxCacheSize int
}

// NewFinder creates a finder over terms. The order of terms breaks ties between equally close matches.
func NewFinder(terms []string) *Finder {
	vocabulary := make([]string, len(terms))
	copy(vocabulary, terms)
	return &Finder{
		terms:        vocabulary,
		cache:        make(map[string][]string),
		maxCacheSize: defaultMaxCacheSize,
	}
}

// Len returns the vocabulary size.
func (f *Finder) Len() int {
	return len(f.terms)
}

// Candidates returns up to maxResults vocabulary terms within maxDistance of term, closest first.
// The term itself is never returned. maxResults <= 0 means no limit.
func (f *Finder) Candidates(term string, maxDistance, maxResults int) []string {
	if maxDistance <= 0 || term == "" || len(f.terms) == 0 {
		return []string{}
	}

	cacheKey := term + "|" + strconv.Itoa(maxDistance)
	f.cacheMu.RLock()
	cached, ok := f.cache[cacheKey]
	f.cacheMu.RUnlock()
	if !ok {
		cached = f.find(term, maxDistance)
		f.cacheMu.Lock()
		if len(f.cache) < f.maxCacheSize {
			f.cache[cacheKey] = cached
		}
		f.cacheMu.Unlock()
	}

	if maxResults > 0 && len(cached) > maxResults {
		cached = cached[:maxResults]
	}
	out := make([]string, len(cached))
	copy(out, cached)
	return out
}

// Closest returns the best candidate for term, if any lies within maxDistance.
func (f *Finder) Closest(term string, maxDistance int) (string, bool) {
	candidates := f.Candidates(term, maxDistance, 1)
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[0], true
}

// find buckets matches by distance so that closer terms come first while
// vocabulary order is kept within a bucket.
func (f *Finder) find(term string, maxDistance int) []string {
	buckets := make([][]string, maxDistance+1)
	termLen := len([]rune(term))

	for _, candidate := range f.terms {
		if candidate == term {
			continue
		}
		if abs(len([]rune(candidate))-termLen) > maxDistance {
			continue
		}
		if dist := Distance(term, candidate, maxDistance); dist > 0 && dist <= maxDistance {
			buckets[dist] = append(buckets[dist], candidate)
		}
	}

	matches := make([]string, 0)
	for _, bucket := range buckets {
		matches = append(matches, bucket...)
	}
	return matches
}

// AllowedTypos returns how many edits a word of the given length may carry:
// none below minFor1, one below minFor2, two otherwise.
func AllowedTypos(word string, minFor1, minFor2 int) int {
	n := len([]rune(word))
	switch {
	case n < minFor1:
		return 0
	case n < minFor2:
		return 1
	default:
		return 2
	}
}
