package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"puzzleETL/internal/storage/postgres"
)

// runAggregate recomputes the daily rollup tables from data already
// loaded into the cleaned layer, without touching the chain.
func runAggregate(cmd *cobra.Command, _ []string) error {
	dsn, _ := cmd.Flags().GetString("pg-dsn")
	if dsn == "" {
		dsn = os.Getenv("ETL_PG_DSN")
	}
	if dsn == "" {
		return fmt.Errorf("pg dsn is required")
	}

	level, _ := cmd.Flags().GetString("log-level")
	logger, err := newLogger(level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	logger.Info("aggregate start", zap.String("pg_dsn", redactDSN(dsn)))

	if err := store.Aggregate(ctx); err != nil {
		return err
	}

	logger.Info("aggregate complete")
	return nil
}
