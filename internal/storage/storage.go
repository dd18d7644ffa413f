package storage

import (
	"context"

	"puzzleETL/internal/model"
)

// Sink is the warehouse write contract. Raw transactions land in the
// staging layer, events in the cleaned layer; identity conflicts are
// ignored so that reprocessing after a crash is idempotent.
type Sink interface {
	SaveRawTransactions(ctx context.Context, batchID string, txs []model.RawTransaction) error
	SaveSwaps(ctx context.Context, batchID string, swaps []model.SwapEvent) error
	SaveStakingEvents(ctx context.Context, batchID string, events []model.StakingEvent) error
	SaveAssetPrices(ctx context.Context, prices []model.AssetPrice) error
	MarkProcessed(ctx context.Context, txIDs []string) error
	Aggregate(ctx context.Context) error
}
