package recategorize

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gcbaptista/markets-feeds/config"
	"github.com/gcbaptista/markets-feeds/model"
)

const (
	reportTopCategories = 15
	reportTopMigrations = 5
)

// GenerateReport renders batch statistics as markdown. Only original categories that split
// into more than one new category appear under Migration Details.
func GenerateReport(stats model.RecategorizationStats, taxonomy *config.Taxonomy) string {
	if taxonomy == nil {
		taxonomy = config.DefaultTaxonomy()
	}

	var b strings.Builder
	b.WriteString("# Recategorization Report\n\n")

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- **Total Articles**: %s\n", thousands(stats.TotalArticles))
	fmt.Fprintf(&b, "- **Articles Recategorized**: %s (%d%%)\n",
		thousands(stats.CategoriesChanged), percent(stats.CategoriesChanged, stats.TotalArticles))
	fmt.Fprintf(&b, "- **New Categories Created**: %d\n\n", len(stats.CategoryDistribution))

	b.WriteString("## New Category Distribution\n")
	type entry struct {
		category string
		count    int
	}
	entries := make([]entry, 0, len(stats.CategoryDistribution))
	for category, count := range stats.CategoryDistribution {
		entries = append(entries, entry{category, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].category < entries[j].category
	})
	if len(entries) > reportTopCategories {
		entries = entries[:reportTopCategories]
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "- **%s**: %s articles (%d%%)\n",
			taxonomy.DisplayName(e.category), thousands(e.count), percent(e.count, stats.TotalArticles))
	}

	b.WriteString("\n## Migration Details\n")
	for _, m := range stats.MigrationSummary {
		if len(m.NewCategories) <= 1 {
			continue
		}
		fmt.Fprintf(&b, "\n### %s\n", m.OldCategory)
		shares := m.NewCategories
		if len(shares) > reportTopMigrations {
			shares = shares[:reportTopMigrations]
		}
		for _, s := range shares {
			fmt.Fprintf(&b, "- **%s**: %d articles (%d%%)\n", taxonomy.DisplayName(s.Category), s.Count, s.Percentage)
		}
	}

	return b.String()
}

var printer = message.NewPrinter(language.English)

// thousands formats n with comma separators.
func thousands(n int) string {
	return printer.Sprintf("%d", n)
}
