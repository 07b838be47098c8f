package index

import (
	"time"

	"github.com/gcbaptista/markets-feeds/model"
)

// SearchableArticle wraps an article with the text derived for ranking.
type SearchableArticle struct {
	Article           model.Article
	SearchableContent string   // Lowercased weighted concatenation: title x3, summary x2, content x1, tags x2
	KeyTerms          []string // Deduplicated, in first-seen order
	WordCount         int
}

// Snapshot is a fully built, immutable set of indexes over one corpus.
// Readers must never modify a snapshot; a rebuild produces a new one.
type Snapshot struct {
	Generation uint64
	BuiltAt    time.Time

	Articles map[string]*SearchableArticle // url -> searchable article
	Order    []string                      // urls in corpus order

	Terms      map[string]PostingSet
	TermOrder  []string // terms in first-insertion order
	Categories map[string]PostingSet
	Sources    map[string]PostingSet
}

// NewSnapshot creates an empty snapshot ready to be filled by a builder.
func NewSnapshot(generation uint64, builtAt time.Time) *Snapshot {
	return &Snapshot{
		Generation: generation,
		BuiltAt:    builtAt,
		Articles:   make(map[string]*SearchableArticle),
		Terms:      make(map[string]PostingSet),
		Categories: make(map[string]PostingSet),
		Sources:    make(map[string]PostingSet),
	}
}

// Insert adds a searchable article and its postings. Only builders call this, before publishing.
func (s *Snapshot) Insert(sa *SearchableArticle) {
	url := sa.Article.URL
	if _, exists := s.Articles[url]; !exists {
		s.Order = append(s.Order, url)
	}
	s.Articles[url] = sa

	for _, term := range sa.KeyTerms {
		postings, ok := s.Terms[term]
		if !ok {
			postings = make(PostingSet)
			s.Terms[term] = postings
			s.TermOrder = append(s.TermOrder, term)
		}
		postings.Add(url)
	}

	addTo(s.Categories, sa.Article.Category, url)
	addTo(s.Sources, sa.Article.SourceID, url)
}

func addTo(m map[string]PostingSet, key, url string) {
	postings, ok := m[key]
	if !ok {
		postings = make(PostingSet)
		m[key] = postings
	}
	postings.Add(url)
}

// Lookup returns the postings for a term, or an empty set.
func (s *Snapshot) Lookup(term string) PostingSet {
	if postings, ok := s.Terms[term]; ok {
		return postings
	}
	return PostingSet{}
}

// Article returns the searchable article stored under url.
func (s *Snapshot) Article(url string) (*SearchableArticle, bool) {
	sa, ok := s.Articles[url]
	return sa, ok
}

// All returns every searchable article in corpus order.
func (s *Snapshot) All() []*SearchableArticle {
	out := make([]*SearchableArticle, 0, len(s.Order))
	for _, url := range s.Order {
		out = append(out, s.Articles[url])
	}
	return out
}

// Len returns the number of indexed articles.
func (s *Snapshot) Len() int {
	return len(s.Articles)
}

// Stats summarizes the snapshot.
func (s *Snapshot) Stats() model.IndexStats {
	return model.IndexStats{
		Ready:      true,
		Articles:   len(s.Articles),
		Terms:      len(s.Terms),
		Categories: len(s.Categories),
		Sources:    len(s.Sources),
		Generation: s.Generation,
		BuiltAt:    s.BuiltAt,
	}
}
