package extract

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"puzzleETL/internal/model"
)

// Source delivers pages of raw transactions for an address, newest
// first, starting after the given transaction id cursor.
type Source interface {
	Transactions(ctx context.Context, address string, limit int, after string) ([]model.RawTransaction, error)
}

// Config holds runtime settings for the streaming extractor.
type Config struct {
	// PageSize is the number of transactions requested per page.
	PageSize int
	// SpillThreshold is the in-memory relevant-invocation count above
	// which the buffer is written to a spill file.
	SpillThreshold int
}

// Extractor pages through an address history, filters each page
// through the invocation-tree walker, and bounds memory by spilling
// the accumulated buffer to files.
type Extractor struct {
	cfg    Config
	source Source
	spill  *SpillStore
	logger *zap.Logger
}

// NewExtractor builds an Extractor with its dependencies.
func NewExtractor(cfg Config, source Source, spill *SpillStore, logger *zap.Logger) *Extractor {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 1000
	}
	if cfg.SpillThreshold <= 0 {
		cfg.SpillThreshold = 300000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{cfg: cfg, source: source, spill: spill, logger: logger}
}

// FetchPage requests one page after the cursor and cuts it at the
// lastProcessedID sentinel when present: pages are newest-first, so
// everything from the sentinel backward has been processed already.
// hasMore is false on a short page.
func (e *Extractor) FetchPage(ctx context.Context, address string, after, lastProcessedID string) ([]model.RawTransaction, bool, error) {
	page, err := e.source.Transactions(ctx, address, e.cfg.PageSize, after)
	if err != nil {
		return nil, false, fmt.Errorf("fetch page for %s: %w", address, err)
	}

	if lastProcessedID != "" {
		for i, tx := range page {
			if tx.ID == lastProcessedID {
				page = page[:i]
				return page, false, nil
			}
		}
	}

	return page, len(page) == e.cfg.PageSize, nil
}

// FetchAll extracts every relevant invocation for an address. The
// returned fileCount is zero when everything fit in memory, in which
// case the slice is already in chronological (oldest-first) order.
// When fileCount is positive the slice is empty and Drain must be used
// to reconstruct the sequence from spill files.
func (e *Extractor) FetchAll(ctx context.Context, address string, vipFunctions []string, lastProcessedID string) ([]model.RawTransaction, int, error) {
	var buffer []model.RawTransaction
	fileCount := 0
	totalRelevant := 0
	after := ""

	for {
		select {
		case <-ctx.Done():
			return nil, fileCount, ctx.Err()
		default:
		}

		page, hasMore, err := e.FetchPage(ctx, address, after, lastProcessedID)
		if err != nil {
			return nil, fileCount, err
		}
		if len(page) == 0 {
			break
		}

		relevant := 0
		for _, tx := range page {
			found := FindRelevantTransactions(tx, address, vipFunctions, e.logger)
			buffer = append(buffer, found...)
			relevant += len(found)
		}
		totalRelevant += relevant
		after = page[len(page)-1].ID

		if len(buffer) > e.cfg.SpillThreshold {
			if err := e.spill.Save(address, fileCount, buffer); err != nil {
				return nil, fileCount, err
			}
			fileCount++
			buffer = buffer[:0]
		}

		e.logger.Info("page processed",
			zap.String("address", address),
			zap.Int("page_size", len(page)),
			zap.Int("relevant", relevant),
			zap.Int("total_relevant", totalRelevant),
		)

		if !hasMore {
			break
		}
	}

	// Once spilling started, the tail buffer belongs on disk too, so
	// Drain sees one contiguous file sequence.
	if fileCount > 0 && len(buffer) > 0 {
		if err := e.spill.Save(address, fileCount, buffer); err != nil {
			return nil, fileCount, err
		}
		fileCount++
		buffer = nil
	}

	if fileCount == 0 {
		reverse(buffer)
		return buffer, 0, nil
	}
	return nil, fileCount, nil
}

// Drain reconstructs the chronological sequence from spill files.
func (e *Extractor) Drain(address string, fileCount int) []model.RawTransaction {
	return e.spill.Drain(address, fileCount)
}
