package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/recruit-pilot/internal/db"
	"github.com/jonathan/recruit-pilot/internal/observability"
)

var (
	runQuery      string
	runLocations  []string
	runSources    []string
	runUseBrowser bool
	runVerbose    bool
	runNoDemo     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one pipeline run and wait for it to finish",
	Long: `Run the full pipeline once: discover postings for the query, enrich them
with recruiting contacts, generate tailored documents, and print a summary.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runQuery, "query", "", "Job search query (required)")
	runCmd.Flags().StringSliceVar(&runLocations, "location", nil, "Locations to search (repeatable)")
	runCmd.Flags().StringSliceVar(&runSources, "source", nil, "Job board sources (default from config)")
	runCmd.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Use a headless browser for SPA job boards")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed progress")
	runCmd.Flags().BoolVar(&runNoDemo, "no-demo", false, "Disable placeholder postings when sources come up empty")
	_ = runCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(runCmd)
}

func runRun(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runVerbose {
		cfg.Verbose = true
	}
	if runNoDemo {
		cfg.DemoFallback = false
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	sources := runSources
	if len(sources) == 0 {
		sources = cfg.Sources
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	orch, cleanup, err := buildOrchestrator(ctx, cfg, database, runUseBrowser, cfg.Verbose)
	if err != nil {
		return err
	}
	defer cleanup()

	run, err := database.CreateRun(ctx, runQuery, runLocations, sources)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	execErr := orch.Execute(ctx, run.ID)

	// Always print the final state, even for failed runs
	final, err := database.GetRun(ctx, run.ID)
	if err == nil && final != nil {
		printer := observability.NewPrinter(os.Stdout)
		printer.PrintRunSummary(final)
		if cfg.Verbose {
			if postings, listErr := database.ListPostingsByRun(ctx, run.ID); listErr == nil {
				printer.PrintPostings(postings)
			}
		}
	}

	return execErr
}
