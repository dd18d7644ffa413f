package transform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"puzzleETL/internal/model"
	"puzzleETL/internal/registry"
)

// StakingTransformer turns relevant invocations into staking events.
type StakingTransformer struct {
	logger *zap.Logger
	seen   map[string]int
}

// NewStakingTransformer builds a StakingTransformer.
func NewStakingTransformer(logger *zap.Logger) *StakingTransformer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StakingTransformer{logger: logger}
}

// Transform extracts staking events. Two independent paths run per
// transaction: the invocation path (function name → event type) and
// the data-entry path (absolute balance snapshots); their results are
// concatenated, so one transaction may yield both.
func (t *StakingTransformer) Transform(txs []model.RawTransaction) []model.StakingEvent {
	t.seen = make(map[string]int)

	var events []model.StakingEvent
	for _, tx := range txs {
		if event, ok := t.extractInvocation(tx); ok {
			events = append(events, event)
		}
		events = append(events, t.extractFromDataEntries(tx)...)
	}

	t.logger.Info("staking transform complete",
		zap.Int("transactions", len(txs)),
		zap.Int("events", len(events)),
	)
	return events
}

func (t *StakingTransformer) extractInvocation(tx model.RawTransaction) (model.StakingEvent, bool) {
	if tx.Type != model.TxInvocation {
		return model.StakingEvent{}, false
	}
	eventType, ok := registry.StakingEventType(tx.Function())
	if !ok {
		return model.StakingEvent{}, false
	}

	var amountRaw int64
	switch eventType {
	case model.StakingStake:
		// Stake amounts come from the deposit, and only count when
		// paid in the staking token; other assets are ignored.
		if len(tx.Payment) > 0 {
			payment := tx.Payment[0]
			if registry.NormalizeAssetID(payment.AssetID) == registry.PuzzleTokenID {
				amountRaw = payment.Amount
			}
		}
	case model.StakingUnstake, model.StakingClaim, model.StakingCompound:
		// Payout amounts come from the first staking-token transfer
		// back to the invoking sender; transfers in other assets are
		// skipped without ending the search.
		if tx.StateChanges != nil {
			for _, transfer := range tx.StateChanges.Transfers {
				if transfer.Address != tx.Sender {
					continue
				}
				if registry.NormalizeAssetID(transfer.Asset) != registry.PuzzleTokenID {
					continue
				}
				amountRaw = transfer.Amount
				break
			}
		}
	}

	amount := registry.NormalizeAmount(registry.PuzzleTokenID, amountRaw)

	id := fmt.Sprintf("%s_%s_%s", tx.ID, eventType, amount.String())
	if n := t.seen[id]; n > 0 {
		t.seen[id] = n + 1
		id = fmt.Sprintf("%s_%d", id, n)
	} else {
		t.seen[id] = 1
	}

	return model.StakingEvent{
		ID:            id,
		TransactionID: tx.ID,
		Height:        tx.Height,
		Timestamp:     time.UnixMilli(tx.Timestamp).UTC(),
		StakerAddress: tx.Sender,
		EventType:     eventType,
		Amount:        amount,
		AmountRaw:     amountRaw,
	}, true
}

// extractFromDataEntries scans contract storage writes for
// "{staker}_staked" keys with a positive value and emits stake_update
// snapshots. The value is an absolute current balance, not a delta.
func (t *StakingTransformer) extractFromDataEntries(tx model.RawTransaction) []model.StakingEvent {
	if tx.StateChanges == nil {
		return nil
	}

	var events []model.StakingEvent
	for _, entry := range tx.StateChanges.Data {
		if !strings.Contains(entry.Key, "_staked") {
			continue
		}
		value, err := strconv.ParseInt(strings.Trim(string(entry.Value), `"`), 10, 64)
		if err != nil {
			t.logger.Warn("unparsable staking data entry skipped",
				zap.String("transaction_id", tx.ID),
				zap.String("key", entry.Key),
				zap.Error(err),
			)
			continue
		}
		if value <= 0 {
			continue
		}

		staker := entry.Key
		if idx := strings.Index(entry.Key, "_"); idx >= 0 {
			staker = entry.Key[:idx]
		}

		events = append(events, model.StakingEvent{
			ID:            fmt.Sprintf("%s_%s_%s_%d", tx.ID, model.StakingUpdate, staker, value),
			TransactionID: tx.ID,
			Height:        tx.Height,
			Timestamp:     time.UnixMilli(tx.Timestamp).UTC(),
			StakerAddress: staker,
			EventType:     model.StakingUpdate,
			Amount:        registry.NormalizeAmount(registry.PuzzleTokenID, value),
			AmountRaw:     value,
		})
	}
	return events
}

// AggregateStats folds a staking event history into a balance
// snapshot. Stake adds, unstake subtracts, and stake_update overwrites
// the running balance with an absolute value. Stakers left at or below
// zero are dropped. The fold is a pure function of its input, so
// repeated runs over the same events agree.
func AggregateStats(events []model.StakingEvent, asOf time.Time) model.StakingStats {
	balances := make(map[string]decimal.Decimal)

	for _, event := range events {
		balance := balances[event.StakerAddress]
		switch event.EventType {
		case model.StakingStake:
			balances[event.StakerAddress] = balance.Add(event.Amount)
		case model.StakingUnstake:
			balances[event.StakerAddress] = balance.Sub(event.Amount)
		case model.StakingUpdate:
			balances[event.StakerAddress] = event.Amount
		}
	}

	active := make(map[string]decimal.Decimal, len(balances))
	total := decimal.Zero
	for staker, balance := range balances {
		if balance.Sign() <= 0 {
			continue
		}
		active[staker] = balance
		total = total.Add(balance)
	}

	return model.StakingStats{
		AsOf:           asOf,
		TotalStaked:    total,
		UniqueStakers:  len(active),
		StakerBalances: active,
	}
}
