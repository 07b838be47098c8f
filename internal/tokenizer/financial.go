package tokenizer

import (
	"regexp"
	"strings"
)

// CompanyRegex matches capitalized phrases with an optional corporate suffix. It also matches
// sentence-initial words; callers accept that noise.
var CompanyRegex = regexp.MustCompile(`\b[A-Z][a-z]+(?: [A-Z][a-z]+)*(?:\s+(?:inc|corp|ltd|llc|plc|ag|sa)\.?)?`)

// SymbolRegex matches ticker-like tokens of one to five capitals, optionally exchange-prefixed.
var SymbolRegex = regexp.MustCompile(`\b(?:\$|nasdaq:|nyse:|tsx:)?[A-Z]{1,5}\b`)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// financialKeywords are indexed whenever they occur anywhere in the lowercased text.
var financialKeywords = []string{
	"revenue", "profit", "earnings", "ebitda", "margin", "growth", "valuation",
	"market cap", "dividend", "yield", "pe ratio", "eps", "guidance", "forecast",
	"acquisition", "merger", "ipo", "funding", "investment", "venture capital",
	"federal reserve", "interest rate", "inflation", "gdp", "unemployment",
	"bitcoin", "ethereum", "cryptocurrency", "blockchain", "defi",
}

// FinancialTerms extracts company-like phrases, ticker symbols, and financial keywords from
// raw (case-preserved) text. Results are lowercased and deduplicated; multi-word keywords
// use underscores so they survive tokenization as one term.
func FinancialTerms(content string) []string {
	seen := make(map[string]struct{})
	terms := make([]string, 0)

	add := func(term string) {
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	for _, m := range CompanyRegex.FindAllString(content, -1) {
		add(strings.ToLower(m))
	}
	for _, m := range SymbolRegex.FindAllString(content, -1) {
		add(strings.ToLower(m))
	}

	text := strings.ToLower(content)
	for _, keyword := range financialKeywords {
		if strings.Contains(text, keyword) {
			add(whitespaceRegex.ReplaceAllString(keyword, "_"))
		}
	}
	return terms
}
