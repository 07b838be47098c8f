package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gcbaptista/markets-feeds/internal/recategorize"
)

var recategorizeCmd = &cobra.Command{
	Use:   "recategorize",
	Short: "Print the recategorization report for the corpus",
	Long: `Load the corpus from the data directory, run every article through the
recategorization engine, and print the markdown report with the category
distribution and the legacy categories that were split.`,
	RunE: runRecategorize,
}

func init() {
	rootCmd.AddCommand(recategorizeCmd)
}

func runRecategorize(cmd *cobra.Command, args []string) error {
	eng, logger, err := newEngine()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	eng.Start()
	defer eng.Stop()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	if _, err := eng.Loader.LoadData(ctx); err != nil {
		return err
	}

	report := recategorize.GenerateReport(eng.Loader.RecategorizationStats(), eng.Taxonomy)
	_, err = fmt.Fprint(cmd.OutOrStdout(), report)
	return err
}
