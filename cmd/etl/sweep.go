package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"puzzleETL/internal/extract"
	"puzzleETL/internal/registry"
)

// runSweep removes spill files abandoned by interrupted runs.
func runSweep(cmd *cobra.Command, _ []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	logger, err := newLogger(level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	dir, _ := cmd.Flags().GetString("spill-dir")
	addresses, _ := cmd.Flags().GetStringSlice("address")
	if len(addresses) == 0 {
		addresses = registry.DefaultAddresses()
	}

	spill := extract.NewSpillStore(dir, logger)

	total := 0
	for _, address := range addresses {
		removed, err := spill.Sweep(address)
		if err != nil {
			logger.Error("sweep failed for address",
				zap.String("address", address),
				zap.Error(err),
			)
			continue
		}
		total += removed
	}

	logger.Info("sweep complete",
		zap.String("dir", dir),
		zap.Int("files_removed", total),
	)
	return nil
}
