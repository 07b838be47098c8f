package recategorize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/markets-feeds/model"
)

func scenarioArticles() []model.Article {
	return []model.Article{
		{ID: "1", Title: "Fed signals rate cut", Category: "macro", Tags: []string{"macro"}},
		{ID: "2", Title: "Apple earnings beat forecast", Category: "markets", Tags: []string{"markets"}},
		{ID: "3", Title: "Bitcoin surges past 65000", Category: "technology", Tags: []string{"technology"}},
		{ID: "4", Title: "Stocks drift sideways", Category: "markets", Tags: []string{"markets"}},
	}
}

func TestRecategorizeAllStats(t *testing.T) {
	engine := NewEngine(nil)

	results, stats := engine.RecategorizeAll(scenarioArticles())
	require.Len(t, results, 4)

	assert.Equal(t, "central-banking", results[0].NewCategory)
	assert.Equal(t, "earnings", results[1].NewCategory)
	assert.Equal(t, "crypto", results[2].NewCategory)
	assert.Equal(t, "markets", results[3].NewCategory)

	assert.Equal(t, 4, stats.TotalArticles)
	assert.Equal(t, 4, stats.Processed)
	assert.Equal(t, 3, stats.CategoriesChanged)
	assert.Equal(t, map[string]int{"central-banking": 1, "earnings": 1, "crypto": 1, "markets": 1}, stats.CategoryDistribution)

	require.Len(t, stats.MigrationSummary, 3)
	assert.Equal(t, "macro", stats.MigrationSummary[0].OldCategory)
	markets := stats.MigrationSummary[1]
	assert.Equal(t, "markets", markets.OldCategory)
	assert.Equal(t, []model.CategoryShare{
		{Category: "earnings", Count: 1, Percentage: 50},
		{Category: "markets", Count: 1, Percentage: 50},
	}, markets.NewCategories)
}

func TestSummarizeSortsSharesByCount(t *testing.T) {
	results := []model.RecategorizationResult{
		{OriginalCategory: "markets", NewCategory: "ma"},
		{OriginalCategory: "markets", NewCategory: "earnings"},
		{OriginalCategory: "markets", NewCategory: "earnings"},
	}

	stats := Summarize(results)
	require.Len(t, stats.MigrationSummary, 1)
	assert.Equal(t, []model.CategoryShare{
		{Category: "earnings", Count: 2, Percentage: 67},
		{Category: "ma", Count: 1, Percentage: 33},
	}, stats.MigrationSummary[0].NewCategories)
}

func TestSummarizeEmpty(t *testing.T) {
	stats := Summarize(nil)
	assert.Zero(t, stats.TotalArticles)
	assert.Empty(t, stats.CategoryDistribution)
	assert.Empty(t, stats.MigrationSummary)

	// Report must not divide by zero
	report := GenerateReport(stats, nil)
	assert.Contains(t, report, "- **Articles Recategorized**: 0 (0%)")
}

func TestGenerateReport(t *testing.T) {
	engine := NewEngine(nil)
	_, stats := engine.RecategorizeAll(scenarioArticles())

	report := GenerateReport(stats, engine.Taxonomy())

	assert.True(t, strings.HasPrefix(report, "# Recategorization Report\n\n## Summary\n"))
	assert.Contains(t, report, "- **Total Articles**: 4\n")
	assert.Contains(t, report, "- **Articles Recategorized**: 3 (75%)\n")
	assert.Contains(t, report, "- **New Categories Created**: 4\n")
	assert.Contains(t, report, "- **Central Banking**: 1 articles (25%)\n")

	// Only "markets" split into more than one new category
	assert.Contains(t, report, "\n### markets\n")
	assert.NotContains(t, report, "\n### macro\n")
}

func TestThousands(t *testing.T) {
	assert.Equal(t, "999", thousands(999))
	assert.Equal(t, "1,234", thousands(1234))
	assert.Equal(t, "12,345,678", thousands(12345678))
}
