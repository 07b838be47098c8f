package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gcbaptista/markets-feeds/model"
)

var (
	searchCategories []string
	searchSources    []string
	searchPage       int
	searchLimit      int
	searchTimeout    time.Duration
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run one query against the corpus and print the hits",
	Long: `Load the corpus from the data directory, build the index, and print the
ranked hits for the query. An empty query lists the newest articles.

Example:
  markets-feeds search "fed rate cut" --category central-banking --limit 5`,
	Args: cobra.ArbitraryArgs,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringSliceVar(&searchCategories, "category", nil, "restrict to categories")
	searchCmd.Flags().StringSliceVar(&searchSources, "source", nil, "restrict to source ids")
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "result page")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "results per page")
	searchCmd.Flags().DurationVar(&searchTimeout, "timeout", 30*time.Second, "time allowed for loading and indexing")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	eng, logger, err := newEngine()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	eng.Start()
	defer eng.Stop()

	ctx, cancel := context.WithTimeout(cmd.Context(), searchTimeout)
	defer cancel()
	if err := eng.Warm(ctx); err != nil {
		return err
	}

	filters := model.SearchFilters{Categories: searchCategories, Sources: searchSources}
	result, err := eng.Loader.Search(ctx, strings.Join(args, " "), filters, searchPage, searchLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d hits for %q (page %d of %d, %dms)\n\n", result.Total, result.Query, result.Page, result.TotalPages, result.Took)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tPUBLISHED\tCATEGORY\tTITLE")
	for _, hit := range result.Items {
		fmt.Fprintf(w, "%.1f\t%s\t%s\t%s\n", hit.Score, hit.Article.PublishedAt.Format("2006-01-02 15:04"), hit.Article.Category, hit.Article.Title)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(result.Suggestions) > 0 {
		fmt.Fprintf(out, "\nDid you mean: %s\n", strings.Join(result.Suggestions, ", "))
	}
	return nil
}
