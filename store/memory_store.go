package store

import (
	"context"
	"sort"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/gcbaptista/markets-feeds/model"
)

// DefaultMaxArticles is how many of the newest articles a MemoryStore retains.
const DefaultMaxArticles = 10000

// bloomFalsePositiveRate is the target rate of the id prefilter.
const bloomFalsePositiveRate = 0.01

// MemoryStore keeps the newest articles in memory, deduplicated by ID.
// It fulfills the services.ArticleSource and services.ArticleSink interfaces.
type MemoryStore struct {
	mu       sync.RWMutex
	articles []model.Article // newest first
	ids      map[string]struct{}
	// seen prefilters ids: a negative test proves the article is new without touching ids.
	seen        *bloom.BloomFilter
	mapLookups  int // filter positives that had to be confirmed against ids
	maxArticles int
}

// NewMemoryStore creates a store retaining at most maxArticles; values <= 0 mean DefaultMaxArticles.
func NewMemoryStore(maxArticles int) *MemoryStore {
	if maxArticles <= 0 {
		maxArticles = DefaultMaxArticles
	}
	return &MemoryStore{
		ids:         make(map[string]struct{}),
		seen:        bloom.NewWithEstimates(uint(maxArticles), bloomFalsePositiveRate),
		maxArticles: maxArticles,
	}
}

// SaveArticles adds the articles whose ID is not stored yet and returns how many were added.
// The store stays sorted newest first and drops the oldest articles beyond its capacity.
func (s *MemoryStore) SaveArticles(_ context.Context, articles []model.Article) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, a := range articles {
		if s.containsLocked(a.ID) {
			continue
		}
		s.ids[a.ID] = struct{}{}
		s.seen.AddString(a.ID)
		s.articles = append(s.articles, a)
		added++
	}
	if added == 0 {
		return 0, nil
	}

	sort.SliceStable(s.articles, func(i, j int) bool {
		return s.articles[i].PublishedAt.After(s.articles[j].PublishedAt)
	})

	if len(s.articles) > s.maxArticles {
		for _, dropped := range s.articles[s.maxArticles:] {
			delete(s.ids, dropped.ID)
		}
		s.articles = s.articles[:s.maxArticles]
		s.rebuildFilterLocked()
	}
	return added, nil
}

func (s *MemoryStore) containsLocked(id string) bool {
	if !s.seen.TestString(id) {
		return false
	}
	s.mapLookups++
	_, ok := s.ids[id]
	return ok
}

// rebuildFilterLocked drops evicted ids from the prefilter, which cannot delete.
func (s *MemoryStore) rebuildFilterLocked() {
	s.seen.ClearAll()
	for id := range s.ids {
		s.seen.AddString(id)
	}
}

// LoadRawArticles returns a copy of every stored article, newest first.
func (s *MemoryStore) LoadRawArticles(ctx context.Context) ([]model.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Article, len(s.articles))
	copy(out, s.articles)
	return out, nil
}

// Articles returns up to limit articles starting at offset.
func (s *MemoryStore) Articles(limit, offset int) []model.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if offset < 0 || offset >= len(s.articles) || limit <= 0 {
		return []model.Article{}
	}
	end := min(offset+limit, len(s.articles))
	out := make([]model.Article, end-offset)
	copy(out, s.articles[offset:end])
	return out
}

// ByCategory returns up to limit of the newest articles stored under category.
func (s *MemoryStore) ByCategory(category string, limit int) []model.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Article, 0)
	for _, a := range s.articles {
		if len(out) == limit {
			break
		}
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// Count returns the number of stored articles.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.articles)
}
