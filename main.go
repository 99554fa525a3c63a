package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"marketetl/internal/config"
	"marketetl/internal/etl"
	"marketetl/internal/etl/sources"
	"marketetl/internal/report"
	"marketetl/internal/storage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		store      string
		summary    bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "marketetl",
		Short: "Load business listings and GDP data into a local database",
		Long: `marketetl scrapes business listings for a city, fetches a World Bank
indicator, drops incomplete records and replaces the yelp_businesses and
world_bank_gdp tables in market_expansion.db.

Without flags it runs with built-in defaults. A marketetl.yaml in the working
directory, or config.yaml in the user config directory, overrides them.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if store != "" {
				cfg.Store = store
			}

			logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
			engine := &etl.Engine{
				Dest:    &etl.SQLWriter{Open: storage.OpenTableStore, Store: cfg.Store},
				Logger:  logger,
				Verbose: verbose,
			}
			var requestLog *log.Logger
			if verbose {
				requestLog = logger
			}
			results, runErr := engine.RunAll(cmd.Context(), buildJobs(cfg, requestLog))
			if summary {
				report.WriteSummary(cmd.OutOrStdout(), results)
			}
			if runErr != nil {
				return runErr
			}

			fmt.Fprintln(cmd.OutOrStdout(), "ETL Pipeline Completed Successfully!")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&store, "db", "", "store identifier: sqlite path, postgres:// or mysql:// URL")
	cmd.Flags().BoolVar(&summary, "summary", false, "print a table of per-source results")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log requests and row counts")

	return cmd
}

// buildJobs returns the two fixed pipeline runs: listings first, then the
// indicator. Requests are logged to requestLog when it is non-nil.
func buildJobs(cfg *config.Config, requestLog *log.Logger) []*etl.SyncJob {
	listing := sources.NewListing(cfg.Listing, cfg.HTTPTimeout)
	listing.SetLogger(requestLog)
	indicator := sources.NewIndicator(cfg.Indicator, cfg.HTTPTimeout)
	indicator.SetLogger(requestLog)

	return []*etl.SyncJob{
		{Source: listing, Target: cfg.Tables.Listings},
		{Source: indicator, Target: cfg.Tables.Indicator},
	}
}
