package search

import (
	"strings"

	"github.com/gcbaptista/markets-feeds/index"
	"github.com/gcbaptista/markets-feeds/internal/tokenizer"
	"github.com/gcbaptista/markets-feeds/internal/typoutil"
)

// DidYouMean rewrites query with each unindexed key term replaced by the closest indexed term.
// It returns "" when nothing could be corrected. Short words and stop words are left alone.
func (s *Service) DidYouMean(query string) (string, error) {
	snap, err := s.index.Current()
	if err != nil {
		return "", err
	}

	terms := QueryTerms(query)
	if len(terms) == 0 {
		return "", nil
	}

	finder := s.finderFor(snap)
	corrected := make([]string, len(terms))
	changed := false
	for i, term := range terms {
		corrected[i] = term
		if _, known := snap.Terms[term]; known || !tokenizer.IsKeyTerm(term) {
			continue
		}
		maxDistance := typoutil.AllowedTypos(term, s.settings.MinWordSizeFor1Typo, s.settings.MinWordSizeFor2Typos)
		if best, ok := finder.Closest(term, maxDistance); ok {
			corrected[i] = best
			changed = true
		}
	}

	if !changed {
		return "", nil
	}
	return strings.Join(corrected, " "), nil
}

// finderFor returns the typo finder over snap's vocabulary, rebuilding it when a new snapshot is published.
func (s *Service) finderFor(snap *index.Snapshot) *typoutil.Finder {
	s.typosMu.Lock()
	defer s.typosMu.Unlock()
	if s.typosSnap != snap {
		s.typos = typoutil.NewFinder(snap.TermOrder)
		s.typosSnap = snap
	}
	return s.typos
}
