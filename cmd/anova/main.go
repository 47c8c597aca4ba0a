package main

import (
	"context"
	"fmt"
	"os"

	"anovalab/adapters/postgres"
	"anovalab/internal"
	"anovalab/internal/anova"
	"anovalab/internal/config"
	"anovalab/internal/errors"
	"anovalab/ports"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "anova",
		Short:        "Two-way ANOVA of the app usability study (filters x tutorial)",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newServeCmd(),
		newMigrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the result store schema to DATABASE_URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return errors.ConfigInvalid("DATABASE_URL is required")
			}
			db, _, err := openStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			return db.Close()
		},
	}
}

func loadConfig() (*config.Config, *internal.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	return cfg, logger, nil
}

func newAnalyzer(cfg *config.Config, logger *internal.Logger) *anova.Analyzer {
	engine := anova.NewEngine(anova.Options{
		RequireBalanced: cfg.Analysis.RequireBalanced,
		ExactP:          cfg.Analysis.ExactP,
	})
	return anova.NewAnalyzer(engine, cfg.Analysis.Concurrency, logger)
}

// openStore connects to the result database and brings its schema up to date
func openStore(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*sqlx.DB, ports.ResultRepository, error) {
	db, err := postgres.Open(ctx, cfg.Database.URL, cfg.Database.ConnectTimeout)
	if err != nil {
		return nil, nil, errors.StorageError("failed to connect to database", err)
	}
	if err := postgres.NewMigrator(db, logger).Up(ctx); err != nil {
		db.Close()
		return nil, nil, errors.StorageError("database migration failed", err)
	}
	return db, postgres.NewResultRepository(db), nil
}
