package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeatlas/codeatlas-go/internal/output"
	"github.com/codeatlas/codeatlas-go/internal/repo"
)

var extractWorkers int

var extractCmd = &cobra.Command{
	Use:   "extract [paths...]",
	Short: "Extract the code structure of one or more source trees",
	Long: `Extract walks the given directories, parses every recognized source file,
and prints the de-duplicated record sets: entities, relationships, function
calls, data flows, and API endpoints.

Examples:
  codeatlas extract ./app_repo
  codeatlas extract ./services ./shared --workers 8`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().IntVarP(&extractWorkers, "workers", "w", 0, "concurrent file extractions (default: config value)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	startTime := time.Now()
	ctx := cmd.Context()

	workers := cfg.Extract.Workers
	if extractWorkers > 0 {
		workers = extractWorkers
	}

	aggregator := repo.NewAggregator(&repo.Config{Workers: workers})
	result, err := aggregator.Extract(ctx, args)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	output.PrintBundle(os.Stdout, result.Bundle)
	fmt.Println()
	output.PrintSummary(os.Stdout, result.Bundle)

	if result.FilesFailed > 0 {
		fmt.Printf("\nSkipped %d of %d files:\n", result.FilesFailed, result.FilesTotal)
		for _, err := range result.Errors {
			fmt.Printf("  - %v\n", err)
		}
	}

	logger.WithField("duration", time.Since(startTime)).Debug("extract finished")
	return nil
}
