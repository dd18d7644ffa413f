package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"puzzleETL/internal/chain"
	"puzzleETL/internal/config"
	"puzzleETL/internal/extract"
	"puzzleETL/internal/pipeline"
	"puzzleETL/internal/price"
	"puzzleETL/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "etl",
		Short:        "Puzzle Swap ETL",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full extract-transform-load pipeline",
		RunE:  runPipeline,
	}

	addCommonFlags(runCmd)
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	runCmd.Flags().String("aggregator-url", "https://swapapi.puzzleswap.org", "price aggregator base URL")

	root.AddCommand(runCmd)

	extractCmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract relevant invocations to a JSONL file",
		RunE:  runExtract,
	}

	addCommonFlags(extractCmd)
	extractCmd.Flags().String("out", "./data/transactions.jsonl", "output JSONL path")
	extractCmd.Flags().String("state-file", "", "optional local state file for incremental extraction")

	root.AddCommand(extractCmd)

	aggregateCmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Recompute daily rollups from loaded data",
		RunE:  runAggregate,
	}

	aggregateCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	aggregateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(aggregateCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove spill files left by interrupted runs",
		RunE:  runSweep,
	}

	sweepCmd.Flags().StringSlice("address", nil, "addresses to sweep (comma-separated)")
	sweepCmd.Flags().String("spill-dir", "./data/tmp", "spill file directory")
	sweepCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(sweepCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("node-url", nil, "Waves node base URLs (comma-separated, tried in order)")
	cmd.Flags().StringSlice("address", nil, "addresses to process (comma-separated)")
	cmd.Flags().Int("page-size", 1000, "transactions per node page")
	cmd.Flags().Int("spill-threshold", 300000, "in-memory buffer size before spilling to files")
	cmd.Flags().String("spill-dir", "./data/tmp", "spill file directory")
	cmd.Flags().Duration("timeout", 30*time.Second, "HTTP request timeout")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.PostgresDSN == "" {
		return fmt.Errorf("pg dsn is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := chain.NewClient(cfg.NodeURLs, cfg.Timeout, logger)
	if err != nil {
		return err
	}

	oracle, err := price.NewOracle(cfg.AggregatorURL, cfg.Timeout, logger)
	if err != nil {
		return err
	}

	store, err := postgres.NewStore(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	spill := extract.NewSpillStore(cfg.SpillDir, logger)
	extractor := extract.NewExtractor(extract.Config{
		PageSize:       cfg.PageSize,
		SpillThreshold: cfg.SpillThreshold,
	}, client, spill, logger)

	p := pipeline.New(pipeline.Config{Addresses: cfg.Addresses},
		extractor, store, oracle, store, store, logger)

	logger.Info("pipeline start",
		zap.Strings("node_urls", cfg.NodeURLs),
		zap.String("aggregator_url", cfg.AggregatorURL),
		zap.String("pg_dsn", redactDSN(cfg.PostgresDSN)),
		zap.Int("addresses", len(cfg.Addresses)),
		zap.Int("page_size", cfg.PageSize),
		zap.Int("spill_threshold", cfg.SpillThreshold),
	)

	summary, err := p.Run(ctx)
	if err != nil {
		return err
	}
	if len(summary.Errors) > 0 {
		return fmt.Errorf("run %s finished with %d address errors", summary.BatchID, len(summary.Errors))
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
