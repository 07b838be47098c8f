package recategorize

import (
	"math"
	"sort"

	"github.com/gcbaptista/markets-feeds/model"
)

// RecategorizeAll classifies every article and reduces the results into batch statistics.
// The input slice is not modified.
func (e *Engine) RecategorizeAll(articles []model.Article) ([]model.RecategorizationResult, model.RecategorizationStats) {
	results := make([]model.RecategorizationResult, 0, len(articles))
	for i := range articles {
		results = append(results, e.Recategorize(&articles[i]))
	}
	return results, Summarize(results)
}

// Summarize reduces per-article results into counts per new category and a migration matrix.
// Migration rows follow the first appearance of each original category; shares are sorted by count.
func Summarize(results []model.RecategorizationResult) model.RecategorizationStats {
	stats := model.RecategorizationStats{
		TotalArticles:        len(results),
		Processed:            len(results),
		CategoryDistribution: make(map[string]int),
		MigrationSummary:     make([]model.MigrationSummary, 0),
	}

	matrix := make(map[string]map[string]int)
	var oldOrder []string
	newOrder := make(map[string][]string)

	for _, r := range results {
		if r.Changed() {
			stats.CategoriesChanged++
		}
		stats.CategoryDistribution[r.NewCategory]++

		row, ok := matrix[r.OriginalCategory]
		if !ok {
			row = make(map[string]int)
			matrix[r.OriginalCategory] = row
			oldOrder = append(oldOrder, r.OriginalCategory)
		}
		if _, seen := row[r.NewCategory]; !seen {
			newOrder[r.OriginalCategory] = append(newOrder[r.OriginalCategory], r.NewCategory)
		}
		row[r.NewCategory]++
	}

	for _, old := range oldOrder {
		row := matrix[old]
		total := 0
		for _, count := range row {
			total += count
		}

		shares := make([]model.CategoryShare, 0, len(row))
		for _, category := range newOrder[old] {
			shares = append(shares, model.CategoryShare{
				Category:   category,
				Count:      row[category],
				Percentage: percent(row[category], total),
			})
		}
		sort.SliceStable(shares, func(i, j int) bool { return shares[i].Count > shares[j].Count })

		stats.MigrationSummary = append(stats.MigrationSummary, model.MigrationSummary{
			OldCategory:   old,
			NewCategories: shares,
		})
	}

	return stats
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
