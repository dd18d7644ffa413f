package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"puzzleETL/internal/chain"
	"puzzleETL/internal/config"
	"puzzleETL/internal/extract"
	"puzzleETL/internal/registry"
	"puzzleETL/internal/storage"
)

// runExtract walks address histories and appends every relevant
// invocation to a JSONL file, bypassing the warehouse entirely.
func runExtract(cmd *cobra.Command, _ []string) error {
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := chain.NewClient(cfg.NodeURLs, cfg.Timeout, logger)
	if err != nil {
		return err
	}

	spill := extract.NewSpillStore(cfg.SpillDir, logger)
	extractor := extract.NewExtractor(extract.Config{
		PageSize:       cfg.PageSize,
		SpillThreshold: cfg.SpillThreshold,
	}, client, spill, logger)

	sink := storage.NewJsonlStorage(cfg.Out)

	stateFile, _ := cmd.Flags().GetString("state-file")
	var state *storage.FileStateStore
	if stateFile != "" {
		state = &storage.FileStateStore{Path: stateFile}
	}

	addresses := cfg.Addresses
	if len(addresses) == 0 {
		addresses = registry.DefaultAddresses()
	}

	logger.Info("extract start",
		zap.Strings("node_urls", cfg.NodeURLs),
		zap.Int("addresses", len(addresses)),
		zap.String("out", cfg.Out),
	)

	for _, address := range addresses {
		vip := registry.VIPFunctions(address)

		lastProcessedID := ""
		if state != nil {
			id, ok, err := state.LoadState(ctx, address)
			if err != nil {
				return err
			}
			if ok {
				lastProcessedID = id
			}
		}

		txs, fileCount, err := extractor.FetchAll(ctx, address, vip, lastProcessedID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("extract failed for address",
				zap.String("address", address),
				zap.Error(err),
			)
			continue
		}
		if fileCount > 0 {
			txs = extractor.Drain(address, fileCount)
		}

		if err := sink.PutBatch(txs); err != nil {
			return err
		}

		// Transactions are oldest-first, so the newest id is last.
		if state != nil && len(txs) > 0 {
			if err := state.SaveState(ctx, address, txs[len(txs)-1].ID); err != nil {
				return err
			}
		}

		logger.Info("address extracted",
			zap.String("address", address),
			zap.Int("transactions", len(txs)),
		)
	}

	return nil
}
