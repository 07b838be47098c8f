package tokenizer

import (
	"regexp"
	"strings"
)

// nonWordRegex matches every character that is neither a word character nor whitespace.
var nonWordRegex = regexp.MustCompile(`[^\w\s]`)

// keyTermRegex accepts tokens that start with a letter and continue with letters or digits.
var keyTermRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*$`)

// numericRegex matches purely numeric tokens.
var numericRegex = regexp.MustCompile(`^\d+$`)

// stopWords are dropped from key terms.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by",
		"is", "are", "was", "were", "be", "been", "have", "has", "had", "will", "would", "could", "should",
		"this", "that", "these", "those", "they", "their", "them", "we", "our", "us", "you", "your",
		"said", "says", "can", "may", "might", "must", "shall", "do", "does", "did", "done",
		"also", "just", "only", "now", "then", "there", "here", "where", "when", "why", "how",
		"more", "most", "much", "many", "some", "any", "all", "each", "every", "both", "either",
		"about", "over", "under", "above", "below", "up", "down", "out", "off", "into", "onto",
	} {
		stopWords[w] = struct{}{}
	}
}

// Tokenize lowercases text, replaces punctuation with spaces, and splits on whitespace.
// Underscores count as word characters and are kept.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	cleaned := nonWordRegex.ReplaceAllString(lower, " ")

	tokens := make([]string, 0) // Initialize as empty slice, not nil
	tokens = append(tokens, strings.Fields(cleaned)...)
	return tokens
}

// IsStopWord reports whether word is in the stop-word list.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

// IsKeyTerm reports whether a token is meaningful enough to index.
func IsKeyTerm(token string) bool {
	return len(token) > 2 &&
		!IsStopWord(token) &&
		keyTermRegex.MatchString(token) &&
		!numericRegex.MatchString(token)
}

// KeyTerms returns the deduplicated key terms of the token stream unioned with the financial
// terms found in raw, in first-seen order.
func KeyTerms(tokens []string, raw string) []string {
	seen := make(map[string]struct{})
	terms := make([]string, 0)

	add := func(term string) {
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	for _, token := range tokens {
		if IsKeyTerm(token) {
			add(token)
		}
	}
	for _, term := range FinancialTerms(raw) {
		add(term)
	}
	return terms
}
