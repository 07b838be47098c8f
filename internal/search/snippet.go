package search

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

const (
	highlightOpen  = "<mark>"
	highlightClose = "</mark>"
	ellipsis       = "..."
)

// Snippet extracts up to length runes of the summary (falling back to the title) starting
// context runes before the first term occurrence, and highlights every term.
// Terms are tried in query order; the first one found anchors the window.
func Snippet(summary, title string, terms []string, length, context int) string {
	content := summary
	if content == "" {
		content = title
	}
	runes := []rune(content)
	lower := lowerRunes(runes)

	start := 0
	for _, term := range terms {
		if idx := indexRunes(lower, []rune(term)); idx >= 0 {
			start = max(0, idx-context)
			break
		}
	}

	end := min(start+length, len(runes))
	snippet := string(runes[start:end])
	if start > 0 {
		snippet = ellipsis + snippet
	}
	if start+length < len(runes) {
		snippet += ellipsis
	}

	return Highlight(snippet, terms)
}

// Highlight wraps every case-insensitive occurrence of the terms in mark tags in a single pass,
// preferring the longest term at each position so tags never nest.
func Highlight(text string, terms []string) string {
	re := highlightRegex(terms)
	if re == nil {
		return text
	}
	return re.ReplaceAllString(text, highlightOpen+"$1"+highlightClose)
}

func highlightRegex(terms []string) *regexp.Regexp {
	alternatives := make([]string, 0, len(terms))
	for _, term := range terms {
		if term != "" {
			alternatives = append(alternatives, term)
		}
	}
	if len(alternatives) == 0 {
		return nil
	}
	sort.SliceStable(alternatives, func(i, j int) bool { return len(alternatives[i]) > len(alternatives[j]) })
	for i, a := range alternatives {
		alternatives[i] = regexp.QuoteMeta(a)
	}
	return regexp.MustCompile(`(?i)(` + strings.Join(alternatives, "|") + `)`)
}

// BrowseSnippet is the snippet of an unranked listing: the summary, or the truncated title.
func BrowseSnippet(summary, title string, length int) string {
	if summary != "" {
		return summary
	}
	runes := []rune(title)
	if len(runes) <= length {
		return title
	}
	return string(runes[:length]) + ellipsis
}

func lowerRunes(runes []rune) []rune {
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 {
		return -1
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, r := range needle {
			if haystack[i+j] != r {
				continue outer
			}
		}
		return i
	}
	return -1
}
