package model

import "time"

// Sentiment is the coarse tone of an article.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// ExtractedEntities holds the pattern-matched entities of an article.
type ExtractedEntities struct {
	Companies    []string `json:"companies"`
	StockSymbols []string `json:"stockSymbols"`
	Currencies   []string `json:"currencies"`
	Amounts      []string `json:"amounts"`
	Dates        []string `json:"dates"`
	Locations    []string `json:"locations"`
}

// EnhancedContent is the derived feature set computed by the content cache.
type EnhancedContent struct {
	OriginalContent   string            `json:"originalContent"`
	ProcessedSummary  string            `json:"processedSummary"`
	ExtractedEntities ExtractedEntities `json:"extractedEntities"`
	KeyPhrases        []string          `json:"keyPhrases"`
	Sentiment         Sentiment         `json:"sentiment"`
	Topics            []string          `json:"topics"`
	ReadingTime       int               `json:"readingTime"` // minutes
	LastProcessed     time.Time         `json:"lastProcessed"`
}

// RecategorizationResult is the outcome of classifying one article.
type RecategorizationResult struct {
	ArticleID        string  `json:"articleId"`
	OriginalCategory string  `json:"originalCategory"`
	NewCategory      string  `json:"newCategory"`
	Confidence       float64 `json:"confidence"`
	Reason           string  `json:"reason"`
}

// Changed reports whether the article moved to a different category.
func (r RecategorizationResult) Changed() bool {
	return r.OriginalCategory != r.NewCategory
}

// CategoryShare is one new category within a migration row.
type CategoryShare struct {
	Category   string `json:"category"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// MigrationSummary describes where the articles of one original category went.
type MigrationSummary struct {
	OldCategory   string          `json:"oldCategory"`
	NewCategories []CategoryShare `json:"newCategories"`
}

// RecategorizationStats aggregates a batch recategorization run.
type RecategorizationStats struct {
	TotalArticles        int                `json:"totalArticles"`
	Processed            int                `json:"processed"`
	CategoriesChanged    int                `json:"categoriesChanged"`
	CategoryDistribution map[string]int     `json:"categoryDistribution"`
	MigrationSummary     []MigrationSummary `json:"migrationSummary"`
}
