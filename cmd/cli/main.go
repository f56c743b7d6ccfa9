package main

import (
	"context"
	"fmt"
	"os"

	"gostatcheck/internal"
	"gostatcheck/internal/config"
	"gostatcheck/internal/container"
	"gostatcheck/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

// globalFlags override the environment for a single invocation
type globalFlags struct {
	alpha   float64
	workers int
	verbose bool
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags globalFlags
	rootCmd := &cobra.Command{
		Use:           "gostatcheck",
		Short:         "Check reported statistics for internal consistency",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `gostatcheck recomputes reported statistics and flags the ones that cannot be right.

  statcheck   recompute p-values of reported t, F, chi2, z and r tests
  grim        test whether reported means of integer data are possible
  records     check a batch of already extracted records (JSON, CSV or XLSX)

Document commands extract the reported results with an LLM (OPENAI_API_KEY).
Reports are stored when DATABASE_URL is set.`,
	}
	rootCmd.PersistentFlags().Float64Var(&flags.alpha, "alpha", 0, "Significance level (default SIGNIFICANCE_LEVEL or 0.05)")
	rootCmd.PersistentFlags().IntVar(&flags.workers, "workers", 0, "Concurrent record checks (default WORKERS or one per CPU)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log at DEBUG level")

	rootCmd.AddCommand(
		newStatcheckCmd(&flags),
		newGrimCmd(&flags),
		newCheckTestCmd(&flags),
		newCheckMeanCmd(&flags),
		newRecordsCmd(&flags),
		newRunsCmd(&flags),
	)

	return rootCmd
}

// setupOptions says which optional parts of the container a command needs
type setupOptions struct {
	extraction bool
	storage    bool // fail when DATABASE_URL is unset
}

func setup(flags *globalFlags, opts setupOptions) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flags.alpha != 0 {
		cfg.Analysis.SignificanceLevel = flags.alpha
	}
	if flags.workers > 0 {
		cfg.Analysis.Workers = flags.workers
	}

	level := internal.ParseLogLevel(cfg.LogLevel)
	if flags.verbose {
		level = internal.LogLevelDebug
	}
	internal.DefaultLogger.SetLevel(level)

	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}

	if opts.extraction {
		if err := c.InitExtraction(nil); err != nil {
			return nil, err
		}
	}

	switch {
	case cfg.StorageEnabled():
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := migration.NewRunner().Run(context.Background(), db); err != nil {
			db.Close()
			return nil, err
		}
		if err := c.InitWithDatabase(db); err != nil {
			db.Close()
			return nil, err
		}
	case opts.storage:
		return nil, fmt.Errorf("run storage is disabled; set DATABASE_URL")
	}
	return c, nil
}
