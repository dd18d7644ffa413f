package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"puzzleETL/internal/model"
	"puzzleETL/internal/registry"
)

// Store provides Postgres persistence for the layered warehouse:
// stg (raw), ods (cleaned), dm (aggregated).
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// SaveRawTransactions inserts raw transactions into the staging layer.
// Conflicts on id are ignored.
func (s *Store) SaveRawTransactions(ctx context.Context, batchID string, txs []model.RawTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, tx := range txs {
		raw, err := json.Marshal(tx)
		if err != nil {
			return fmt.Errorf("marshal transaction %s: %w", tx.ID, err)
		}
		batch.Queue(`
			INSERT INTO stg_transactions (
				id, height, timestamp, sender, type, application_status,
				raw_data, processed, etl_batch_id, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, false, $8, now())
			ON CONFLICT (id) DO NOTHING
		`,
			tx.ID,
			tx.Height,
			time.UnixMilli(tx.Timestamp).UTC(),
			tx.Sender,
			int(tx.Type),
			tx.ApplicationStatus,
			raw,
			batchID,
		)
	}
	return s.sendBatch(ctx, batch, len(txs))
}

// SaveSwaps inserts swap events into the cleaned layer. Conflicts on
// the event identity are ignored.
func (s *Store) SaveSwaps(ctx context.Context, batchID string, swaps []model.SwapEvent) error {
	if len(swaps) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, swap := range swaps {
		batch.Queue(`
			INSERT INTO ods_swaps (
				id, transaction_id, height, timestamp, pool_address, trader_address,
				asset_in_id, asset_out_id, amount_in, amount_out,
				amount_in_raw, amount_out_raw,
				amount_in_usd, amount_out_usd, volume_usd,
				pool_fee, protocol_fee, etl_batch_id, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,now())
			ON CONFLICT (id) DO NOTHING
		`,
			swap.ID,
			swap.TransactionID,
			swap.Height,
			swap.Timestamp,
			swap.PoolAddress,
			swap.TraderAddress,
			swap.AssetInID,
			swap.AssetOutID,
			swap.AmountIn,
			swap.AmountOut,
			swap.AmountInRaw,
			swap.AmountOutRaw,
			swap.AmountInUSD,
			swap.AmountOutUSD,
			swap.VolumeUSD,
			swap.PoolFee,
			swap.ProtocolFee,
			batchID,
		)
	}
	return s.sendBatch(ctx, batch, len(swaps))
}

// SaveStakingEvents inserts staking events into the cleaned layer.
// Conflicts on the event identity are ignored.
func (s *Store) SaveStakingEvents(ctx context.Context, batchID string, events []model.StakingEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, event := range events {
		batch.Queue(`
			INSERT INTO ods_staking_events (
				id, transaction_id, height, timestamp, staker_address, event_type,
				amount, amount_raw, amount_usd, total_staked_after, reward_amount,
				etl_batch_id, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now())
			ON CONFLICT (id) DO NOTHING
		`,
			event.ID,
			event.TransactionID,
			event.Height,
			event.Timestamp,
			event.StakerAddress,
			string(event.EventType),
			event.Amount,
			event.AmountRaw,
			event.AmountUSD,
			event.TotalStakedAfter,
			event.RewardAmount,
			batchID,
		)
	}
	return s.sendBatch(ctx, batch, len(events))
}

// SaveAssetPrices inserts oracle quotes into the cleaned layer.
func (s *Store) SaveAssetPrices(ctx context.Context, prices []model.AssetPrice) error {
	if len(prices) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, price := range prices {
		batch.Queue(`
			INSERT INTO ods_asset_prices (asset_id, timestamp, price_usd, source)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (asset_id, timestamp, source) DO NOTHING
		`,
			price.AssetID,
			price.Timestamp,
			price.PriceUSD,
			price.Source,
		)
	}
	return s.sendBatch(ctx, batch, len(prices))
}

// SaveAssets upserts the static asset registry as reference data.
func (s *Store) SaveAssets(ctx context.Context, assets map[string]registry.AssetInfo) error {
	if len(assets) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, info := range assets {
		batch.Queue(`
			INSERT INTO ods_assets (id, symbol, name, decimals, asset_type, verified, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now())
			ON CONFLICT (id) DO UPDATE SET
				symbol = EXCLUDED.symbol,
				name = EXCLUDED.name,
				decimals = EXCLUDED.decimals,
				asset_type = EXCLUDED.asset_type,
				verified = EXCLUDED.verified,
				updated_at = now()
		`,
			info.ID,
			info.Symbol,
			info.Name,
			info.Decimals,
			info.AssetType,
			info.Verified,
		)
	}
	return s.sendBatch(ctx, batch, len(assets))
}

// SavePools upserts the monitored pool registry as reference data.
func (s *Store) SavePools(ctx context.Context, pools map[string]string) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for address, name := range pools {
		batch.Queue(`
			INSERT INTO ods_pools (address, name, active, updated_at)
			VALUES ($1, $2, true, now())
			ON CONFLICT (address) DO UPDATE SET
				name = EXCLUDED.name,
				updated_at = now()
		`, address, name)
	}
	return s.sendBatch(ctx, batch, len(pools))
}

// MarkProcessed flags staging rows as consumed by the cleaned layer.
func (s *Store) MarkProcessed(ctx context.Context, txIDs []string) error {
	if len(txIDs) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE stg_transactions SET processed = true, updated_at = now()
		WHERE id = ANY($1)
	`, txIDs)
	return err
}

// Aggregate recomputes the derived daily rollups from already
// persisted cleaned data. Mutable aggregates update on conflict.
func (s *Store) Aggregate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO dm_trading_metrics_daily (
			day, swap_count, unique_traders, volume_usd, protocol_fee, updated_at
		)
		SELECT
			date_trunc('day', timestamp) AS day,
			count(*),
			count(DISTINCT trader_address),
			coalesce(sum(volume_usd), 0),
			coalesce(sum(protocol_fee), 0),
			now()
		FROM ods_swaps
		GROUP BY 1
		ON CONFLICT (day) DO UPDATE SET
			swap_count = EXCLUDED.swap_count,
			unique_traders = EXCLUDED.unique_traders,
			volume_usd = EXCLUDED.volume_usd,
			protocol_fee = EXCLUDED.protocol_fee,
			updated_at = now()
	`); err != nil {
		return fmt.Errorf("aggregate trading metrics: %w", err)
	}

	if _, err := s.pool.Exec(ctx, `
		INSERT INTO dm_staking_metrics_daily (
			day, event_count, unique_stakers, staked_amount, unstaked_amount, updated_at
		)
		SELECT
			date_trunc('day', timestamp) AS day,
			count(*),
			count(DISTINCT staker_address),
			coalesce(sum(amount) FILTER (WHERE event_type = 'stake'), 0),
			coalesce(sum(amount) FILTER (WHERE event_type = 'unstake'), 0),
			now()
		FROM ods_staking_events
		GROUP BY 1
		ON CONFLICT (day) DO UPDATE SET
			event_count = EXCLUDED.event_count,
			unique_stakers = EXCLUDED.unique_stakers,
			staked_amount = EXCLUDED.staked_amount,
			unstaked_amount = EXCLUDED.unstaked_amount,
			updated_at = now()
	`); err != nil {
		return fmt.Errorf("aggregate staking metrics: %w", err)
	}

	return nil
}

// LoadState returns the last processed transaction id for an address.
func (s *Store) LoadState(ctx context.Context, address string) (string, bool, error) {
	if address == "" {
		return "", false, fmt.Errorf("state address required")
	}
	var id string
	row := s.pool.QueryRow(ctx, `SELECT last_processed_id FROM etl_state WHERE address=$1`, address)
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return id, true, nil
}

// SaveState upserts the last processed transaction id for an address.
func (s *Store) SaveState(ctx context.Context, address, lastProcessedID string) error {
	if address == "" {
		return fmt.Errorf("state address required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO etl_state (address, last_processed_id, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (address) DO UPDATE
		SET last_processed_id = EXCLUDED.last_processed_id, updated_at = now()
	`, address, lastProcessedID)
	return err
}

func (s *Store) sendBatch(ctx context.Context, batch *pgx.Batch, size int) error {
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < size; i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
