package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"puzzleETL/internal/extract"
	"puzzleETL/internal/model"
	"puzzleETL/internal/registry"
	"puzzleETL/internal/storage"
	"puzzleETL/internal/transform"
)

// PriceSource provides USD quotes keyed by asset id.
type PriceSource interface {
	Prices(ctx context.Context) (map[string]decimal.Decimal, error)
}

// StateStore persists the incremental cursor per address.
type StateStore interface {
	LoadState(ctx context.Context, address string) (string, bool, error)
	SaveState(ctx context.Context, address, lastProcessedID string) error
}

// ReferenceSink receives static registry data at run start.
type ReferenceSink interface {
	SaveAssets(ctx context.Context, assets map[string]registry.AssetInfo) error
	SavePools(ctx context.Context, pools map[string]string) error
}

// Config holds runtime settings for a pipeline run.
type Config struct {
	// Addresses to process; defaults to the registry's monitored set.
	Addresses []string
}

// Pipeline drives extract → transform → load for a set of addresses.
// Each address is an independent unit of work: its failure is recorded
// in the run summary and does not abort the remaining addresses.
type Pipeline struct {
	cfg       Config
	extractor *extract.Extractor
	swaps     *transform.SwapTransformer
	staking   *transform.StakingTransformer
	oracle    PriceSource
	sink      storage.Sink
	state     StateStore
	refs      ReferenceSink
	logger    *zap.Logger
}

// New builds a Pipeline with its dependencies. oracle, state, and refs
// may be nil; the corresponding steps are skipped.
func New(cfg Config, extractor *extract.Extractor, sink storage.Sink, oracle PriceSource, state StateStore, refs ReferenceSink, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.Addresses) == 0 {
		cfg.Addresses = registry.DefaultAddresses()
	}
	return &Pipeline{
		cfg:       cfg,
		extractor: extractor,
		swaps:     transform.NewSwapTransformer(logger),
		staking:   transform.NewStakingTransformer(logger),
		oracle:    oracle,
		sink:      sink,
		state:     state,
		refs:      refs,
		logger:    logger,
	}
}

// Run executes the full pipeline and returns its summary.
func (p *Pipeline) Run(ctx context.Context) (model.RunSummary, error) {
	summary := model.RunSummary{
		BatchID:   uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	if err := p.saveReferenceData(ctx); err != nil {
		return summary, err
	}

	prices := p.fetchPrices(ctx)

	for _, address := range p.cfg.Addresses {
		addrSummary, err := p.processAddress(ctx, address, prices, summary.BatchID)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			summary.AddError(fmt.Sprintf("process %s: %v", address, err))
			p.logger.Error("address processing failed",
				zap.String("address", address),
				zap.Error(err),
			)
			continue
		}

		summary.AddressesProcessed++
		summary.TransactionsExtracted += addrSummary.TransactionsExtracted
		summary.SwapsProcessed += addrSummary.SwapsProcessed
		summary.StakingEvents += addrSummary.StakingEvents
		summary.Addresses = append(summary.Addresses, addrSummary)

		p.logger.Info("address processing completed",
			zap.String("address", address),
			zap.Int("batches", addrSummary.BatchesProcessed),
			zap.Int("transactions", addrSummary.TransactionsExtracted),
			zap.Int("swaps", addrSummary.SwapsProcessed),
			zap.Int("staking_events", addrSummary.StakingEvents),
		)
	}

	if err := p.sink.Aggregate(ctx); err != nil {
		summary.AddError(fmt.Sprintf("aggregate: %v", err))
		p.logger.Error("aggregate step failed", zap.Error(err))
	}

	summary.FinishedAt = time.Now().UTC()
	p.logger.Info("pipeline run complete",
		zap.String("batch_id", summary.BatchID),
		zap.Int("addresses", summary.AddressesProcessed),
		zap.Int("transactions", summary.TransactionsExtracted),
		zap.Int("swaps", summary.SwapsProcessed),
		zap.Int("staking_events", summary.StakingEvents),
		zap.Int("errors", len(summary.Errors)),
		zap.Duration("duration", summary.FinishedAt.Sub(summary.StartedAt)),
	)
	return summary, nil
}

// processAddress pages through one address history, transforming and
// loading each page immediately so memory stays bounded by page size.
func (p *Pipeline) processAddress(ctx context.Context, address string, prices map[string]decimal.Decimal, batchID string) (model.AddressSummary, error) {
	addrSummary := model.AddressSummary{Address: address}

	lastProcessedID := ""
	if p.state != nil {
		id, ok, err := p.state.LoadState(ctx, address)
		if err != nil {
			return addrSummary, fmt.Errorf("load state: %w", err)
		}
		if ok {
			lastProcessedID = id
		}
	}

	vip := registry.VIPFunctions(address)
	puzzlePrice := prices[registry.PuzzleTokenID]

	after := ""
	newestSeen := ""
	for {
		select {
		case <-ctx.Done():
			return addrSummary, ctx.Err()
		default:
		}

		page, hasMore, err := p.extractor.FetchPage(ctx, address, after, lastProcessedID)
		if err != nil {
			return addrSummary, err
		}
		if len(page) == 0 {
			break
		}
		if newestSeen == "" {
			newestSeen = page[0].ID
		}

		var relevant []model.RawTransaction
		for _, tx := range page {
			relevant = append(relevant, extract.FindRelevantTransactions(tx, address, vip, p.logger)...)
		}

		if len(relevant) > 0 {
			swaps := transform.CalculateSwapUSD(p.swaps.Transform(relevant), prices)
			events := transform.CalculateStakingUSD(p.staking.Transform(relevant), puzzlePrice)

			if err := p.load(ctx, batchID, relevant, swaps, events); err != nil {
				return addrSummary, err
			}

			addrSummary.TransactionsExtracted += len(relevant)
			addrSummary.SwapsProcessed += len(swaps)
			addrSummary.StakingEvents += len(events)
		}

		addrSummary.BatchesProcessed++
		after = page[len(page)-1].ID

		if !hasMore {
			break
		}
	}

	if p.state != nil && newestSeen != "" {
		if err := p.state.SaveState(ctx, address, newestSeen); err != nil {
			return addrSummary, fmt.Errorf("save state: %w", err)
		}
	}

	return addrSummary, nil
}

func (p *Pipeline) load(ctx context.Context, batchID string, txs []model.RawTransaction, swaps []model.SwapEvent, events []model.StakingEvent) error {
	if err := p.sink.SaveRawTransactions(ctx, batchID, txs); err != nil {
		return fmt.Errorf("save raw transactions: %w", err)
	}
	if err := p.sink.SaveSwaps(ctx, batchID, swaps); err != nil {
		return fmt.Errorf("save swaps: %w", err)
	}
	if err := p.sink.SaveStakingEvents(ctx, batchID, events); err != nil {
		return fmt.Errorf("save staking events: %w", err)
	}

	txIDs := make([]string, 0, len(txs))
	for _, tx := range txs {
		txIDs = append(txIDs, tx.ID)
	}
	if err := p.sink.MarkProcessed(ctx, txIDs); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

// fetchPrices loads oracle quotes once per run. Oracle failure leaves
// USD fields unpriced; it does not abort the run.
func (p *Pipeline) fetchPrices(ctx context.Context) map[string]decimal.Decimal {
	if p.oracle == nil {
		return nil
	}

	prices, err := p.oracle.Prices(ctx)
	if err != nil {
		p.logger.Warn("price fetch failed, usd values will be absent", zap.Error(err))
		return nil
	}

	now := time.Now().UTC()
	rows := make([]model.AssetPrice, 0, len(prices))
	for assetID, value := range prices {
		rows = append(rows, model.AssetPrice{
			AssetID:   assetID,
			PriceUSD:  value,
			Timestamp: now,
			Source:    "aggregator_api",
		})
	}
	if err := p.sink.SaveAssetPrices(ctx, rows); err != nil {
		p.logger.Warn("price persistence failed", zap.Error(err))
	}

	return prices
}

func (p *Pipeline) saveReferenceData(ctx context.Context) error {
	if p.refs == nil {
		return nil
	}
	if err := p.refs.SaveAssets(ctx, registry.AllAssets()); err != nil {
		return fmt.Errorf("save asset reference data: %w", err)
	}
	if err := p.refs.SavePools(ctx, registry.PoolAddresses()); err != nil {
		return fmt.Errorf("save pool reference data: %w", err)
	}
	return nil
}
