package search

import (
	"strings"
	"time"

	"github.com/gcbaptista/markets-feeds/index"
)

// Field weights of the relevance formula.
const (
	titleMatchWeight   = 5
	titleExactBonus    = 3
	summaryMatchWeight = 3
	summaryExactBonus  = 2
	contentMatchCap    = 10
	tagMatchWeight     = 4
	keyTermMatchWeight = 2

	multiTermBoostPerTerm = 0.2
	proximityWindow       = 10
	priorityBoost         = 1.3
)

// recencyBoosts are checked in order; the first bracket younger than maxAge applies.
var recencyBoosts = []struct {
	maxAge time.Duration
	factor float64
}{
	{24 * time.Hour, 1.4},
	{168 * time.Hour, 1.2},
	{720 * time.Hour, 1.1},
}

// Score computes the relevance of an article for distinct, lowercased query terms at time now.
func Score(sa *index.SearchableArticle, terms []string, now time.Time) float64 {
	article := &sa.Article
	title := strings.ToLower(article.Title)
	summary := strings.ToLower(article.Summary)
	content := strings.ToLower(article.FullContent)

	score := 0.0
	matchedTerms := 0

	for _, term := range terms {
		titleMatches := strings.Count(title, term)
		score += float64(titleMatches * titleMatchWeight)
		if strings.Contains(title, term) {
			score += titleExactBonus
		}

		summaryMatches := strings.Count(summary, term)
		score += float64(summaryMatches * summaryMatchWeight)
		if strings.Contains(summary, term) {
			score += summaryExactBonus
		}

		contentMatches := strings.Count(content, term)
		score += float64(min(contentMatches, contentMatchCap))

		score += float64(countOverlapping(article.Tags, term, true) * tagMatchWeight)
		score += float64(countOverlapping(sa.KeyTerms, term, false) * keyTermMatchWeight)

		if titleMatches+summaryMatches+contentMatches > 0 {
			matchedTerms++
		}
	}

	if matchedTerms > 1 {
		score *= 1 + float64(matchedTerms)*multiTermBoostPerTerm
	}

	if len(terms) > 1 {
		score += PhraseBonus(title+" "+summary+" "+content, terms)
	}

	age := now.Sub(article.PublishedAt)
	for _, b := range recencyBoosts {
		if age < b.maxAge {
			score *= b.factor
			break
		}
	}

	if article.Priority.IsBoosted() {
		score *= priorityBoost
	}

	return score
}

// countOverlapping counts non-empty values that contain term or are contained in it.
func countOverlapping(values []string, term string, lower bool) int {
	n := 0
	for _, v := range values {
		if v == "" {
			continue
		}
		if lower {
			v = strings.ToLower(v)
		}
		if strings.Contains(v, term) || strings.Contains(term, v) {
			n++
		}
	}
	return n
}

// PhraseBonus slides a ten-word window over text and adds k squared for every window
// holding k > 1 of the terms. The last word never starts a window.
func PhraseBonus(text string, terms []string) float64 {
	words := strings.Fields(text)

	bonus := 0.0
	for i := 0; i < len(words)-1; i++ {
		end := min(i+proximityWindow, len(words))
		window := strings.Join(words[i:end], " ")

		k := 0
		for _, term := range terms {
			if strings.Contains(window, term) {
				k++
			}
		}
		if k > 1 {
			bonus += float64(k * k)
		}
	}
	return bonus
}

// MatchedTerms returns the terms found in the searchable content or in any tag.
func MatchedTerms(sa *index.SearchableArticle, terms []string) []string {
	matched := make([]string, 0, len(terms))
	for _, term := range terms {
		if strings.Contains(sa.SearchableContent, term) {
			matched = append(matched, term)
			continue
		}
		for _, tag := range sa.Article.Tags {
			if strings.Contains(strings.ToLower(tag), term) {
				matched = append(matched, term)
				break
			}
		}
	}
	return matched
}
