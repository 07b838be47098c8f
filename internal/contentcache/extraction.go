package contentcache

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/gcbaptista/markets-feeds/model"
)

const wordsPerMinute = 200

var (
	symbolRegex   = regexp.MustCompile(`\b(?:\$|nasdaq:|nyse:)?[A-Z]{1,5}\b`)
	companyRegex  = regexp.MustCompile(`\b[A-Z][a-z]+(?: [A-Z][a-z]+)*(?:\s+(?:Inc|Corp|Ltd|LLC|PLC)\.?)?`)
	amountRegex   = regexp.MustCompile(`(?i)\$[\d,]+(?:\.\d{2})?(?:\s*(?:million|billion|trillion))?`)
	currencyRegex = regexp.MustCompile(`(?i)\b(?:USD|EUR|GBP|JPY|CAD|AUD|CHF|CNY|bitcoin|ethereum)\b`)
	dateRegex     = regexp.MustCompile(`(?i)\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}|\d{1,2}/\d{1,2}/\d{4}|\d{4}-\d{2}-\d{2}`)
	locationRegex = regexp.MustCompile(`(?i)\b(?:New York|London|Tokyo|Hong Kong|Singapore|Frankfurt|Paris|Sydney|Toronto|Zurich|Wall Street|Silicon Valley)\b`)

	nonWordRegex   = regexp.MustCompile(`[^\w\s]`)
	sentenceSplit  = regexp.MustCompile(`[.!?]+`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

var phraseStopWords = map[string]struct{}{
	"that": {}, "this": {}, "with": {}, "from": {}, "they": {}, "were": {}, "been": {},
	"have": {}, "their": {}, "said": {}, "would": {}, "there": {}, "could": {}, "what": {},
	"when": {}, "more": {}, "time": {}, "very": {}, "after": {}, "first": {},
}

var (
	positiveWords = []string{"growth", "profit", "gain", "rise", "increase", "beat", "strong", "bullish", "optimistic", "success", "recovery", "boost", "surge", "rally"}
	negativeWords = []string{"loss", "decline", "fall", "drop", "weak", "bearish", "pessimistic", "crisis", "crash", "plunge", "recession", "risk", "concern", "volatile"}
)

// topicClusters are evaluated in order; an article may carry several topics.
var topicClusters = []struct {
	topic    string
	keywords []string
}{
	{"earnings", []string{"earnings", "revenue", "profit", "quarterly", "guidance"}},
	{"merger", []string{"merger", "acquisition", "deal", "takeover", "buyout"}},
	{"fed", []string{"federal reserve", "fed", "interest rate", "monetary policy"}},
	{"crypto", []string{"bitcoin", "cryptocurrency", "blockchain", "ethereum"}},
	{"market", []string{"market", "trading", "stock", "shares", "index"}},
	{"technology", []string{"tech", "artificial intelligence", "software", "digital"}},
	{"commodities", []string{"oil", "gold", "commodity", "futures", "energy"}},
}

var summaryMentions = []string{"revenue", "profit", "earnings", "acquisition", "merger", "bitcoin", "fed", "rate"}

// Extractor computes the derived features of an article. It is stateless and deterministic.
type Extractor struct{}

// Extract builds the enhanced content of an article, leaving LastProcessed unset.
func (Extractor) Extract(article *model.Article) *model.EnhancedContent {
	fullText := article.Title + " " + article.Summary + " " + article.FullContent

	return &model.EnhancedContent{
		OriginalContent:   fullText,
		ProcessedSummary:  ProcessedSummary(article),
		ExtractedEntities: ExtractEntities(fullText),
		KeyPhrases:        KeyPhrases(fullText),
		Sentiment:         Sentiment(fullText),
		Topics:            Topics(fullText),
		ReadingTime:       ReadingTime(fullText),
	}
}

// ProcessedSummary returns the summary, or when it is empty the first two substantive sentences
// of the full content that mention a key financial term.
func ProcessedSummary(article *model.Article) string {
	if article.Summary != "" || article.FullContent == "" {
		return article.Summary
	}

	var picked []string
	for _, sentence := range sentenceSplit.Split(article.FullContent, -1) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) <= 20 {
			continue
		}
		lower := strings.ToLower(sentence)
		for _, mention := range summaryMentions {
			if strings.Contains(lower, mention) {
				picked = append(picked, sentence)
				break
			}
		}
		if len(picked) == 2 {
			break
		}
	}
	if len(picked) == 0 {
		return ""
	}
	return strings.Join(picked, ". ") + "."
}

// ExtractEntities pulls pattern-matched entities out of text.
func ExtractEntities(text string) model.ExtractedEntities {
	return model.ExtractedEntities{
		StockSymbols: unique(symbolRegex.FindAllString(text, -1)),
		Companies:    unique(firstN(companyRegex.FindAllString(text, -1), 10)),
		Amounts:      unique(firstN(amountRegex.FindAllString(text, -1), 5)),
		Currencies:   unique(currencyRegex.FindAllString(text, -1)),
		Dates:        unique(firstN(dateRegex.FindAllString(text, -1), 3)),
		Locations:    unique(locationRegex.FindAllString(text, -1)),
	}
}

// KeyPhrases returns up to ten words longer than three letters that occur more than once,
// most frequent first. Equal counts keep first-occurrence order.
func KeyPhrases(text string) []string {
	cleaned := nonWordRegex.ReplaceAllString(strings.ToLower(text), " ")

	frequency := make(map[string]int)
	var order []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 3 {
			continue
		}
		if _, seen := frequency[word]; !seen {
			order = append(order, word)
		}
		frequency[word]++
	}

	candidates := make([]string, 0)
	for _, word := range order {
		if _, stop := phraseStopWords[word]; stop {
			continue
		}
		if frequency[word] > 1 {
			candidates = append(candidates, word)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return frequency[candidates[i]] > frequency[candidates[j]]
	})
	return firstN(candidates, 10)
}

// Sentiment counts positive and negative keyword occurrences; either side must lead by more than one.
func Sentiment(text string) model.Sentiment {
	lower := strings.ToLower(text)

	positive, negative := 0, 0
	for _, w := range positiveWords {
		positive += strings.Count(lower, w)
	}
	for _, w := range negativeWords {
		negative += strings.Count(lower, w)
	}

	switch {
	case positive > negative+1:
		return model.SentimentPositive
	case negative > positive+1:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

// Topics returns every topic cluster with at least one keyword contained in the text.
func Topics(text string) []string {
	lower := strings.ToLower(text)

	topics := make([]string, 0)
	for _, cluster := range topicClusters {
		for _, kw := range cluster.keywords {
			if strings.Contains(lower, kw) {
				topics = append(topics, cluster.topic)
				break
			}
		}
	}
	return topics
}

// ReadingTime estimates minutes at 200 words per minute.
// Splitting mirrors a whitespace split, so surrounding blanks count as empty words.
func ReadingTime(text string) int {
	words := len(whitespaceRuns.Split(text, -1))
	return int(math.Ceil(float64(words) / wordsPerMinute))
}

func unique(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
