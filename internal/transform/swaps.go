package transform

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"puzzleETL/internal/model"
	"puzzleETL/internal/registry"
)

// SwapTransformer turns relevant invocations into swap events.
type SwapTransformer struct {
	logger *zap.Logger
	// seen counts swap ids within one Transform call so that a routed
	// transaction revisiting the same asset pair gets a distinct id.
	seen map[string]int
}

// NewSwapTransformer builds a SwapTransformer.
func NewSwapTransformer(logger *zap.Logger) *SwapTransformer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SwapTransformer{logger: logger}
}

// Transform extracts swap events from a list of relevant invocations.
// A transaction that cannot be parsed is logged and skipped; it never
// aborts the batch.
func (t *SwapTransformer) Transform(txs []model.RawTransaction) []model.SwapEvent {
	t.seen = make(map[string]int)

	var swaps []model.SwapEvent
	for _, tx := range txs {
		if !t.isSwap(tx) {
			continue
		}
		swap, err := t.extract(tx)
		if err != nil {
			t.logger.Warn("unparsable swap transaction skipped",
				zap.String("transaction_id", tx.ID),
				zap.Error(err),
			)
			continue
		}
		swaps = append(swaps, swap)
	}

	t.logger.Info("swap transform complete",
		zap.Int("transactions", len(txs)),
		zap.Int("swaps", len(swaps)),
	)
	return swaps
}

// isSwap classifies a swap candidate: exact membership in the swap
// function set, or a registered pool on either side of the call.
func (t *SwapTransformer) isSwap(tx model.RawTransaction) bool {
	if tx.Type != model.TxInvocation {
		return false
	}
	if registry.IsSwapFunction(tx.Function()) {
		return true
	}
	return registry.IsPoolAddress(tx.DApp) || registry.IsPoolAddress(tx.Sender)
}

func (t *SwapTransformer) extract(tx model.RawTransaction) (model.SwapEvent, error) {
	if tx.DApp == "" {
		return model.SwapEvent{}, fmt.Errorf("missing dApp")
	}

	// Input side: single-payment assumption. Multi-payment invocations
	// are out of scope; no payment means nothing to extract.
	if len(tx.Payment) == 0 {
		return model.SwapEvent{}, fmt.Errorf("no payment entries")
	}
	payment := tx.Payment[0]
	assetIn := registry.NormalizeAssetID(payment.AssetID)

	// Output side: first state-change transfer back to the trader.
	transfer, ok := firstTransferTo(tx.StateChanges, tx.Sender)
	if !ok {
		return model.SwapEvent{}, fmt.Errorf("no transfer to sender %s", tx.Sender)
	}
	assetOut := registry.NormalizeAssetID(transfer.Asset)

	id := fmt.Sprintf("%s_%s_%s", tx.ID, assetIn, assetOut)
	if n := t.seen[id]; n > 0 {
		t.seen[id] = n + 1
		id = fmt.Sprintf("%s_%d", id, n)
	} else {
		t.seen[id] = 1
	}

	return model.SwapEvent{
		ID:            id,
		TransactionID: tx.ID,
		Height:        tx.Height,
		Timestamp:     time.UnixMilli(tx.Timestamp).UTC(),
		PoolAddress:   tx.DApp,
		TraderAddress: tx.Sender,
		AssetInID:     assetIn,
		AssetOutID:    assetOut,
		AmountInRaw:   payment.Amount,
		AmountOutRaw:  transfer.Amount,
		AmountIn:      registry.NormalizeAmount(assetIn, payment.Amount),
		AmountOut:     registry.NormalizeAmount(assetOut, transfer.Amount),
		PoolFee:       extractPoolFee(tx.StateChanges),
		ProtocolFee:   extractProtocolFee(tx.StateChanges),
	}, nil
}

// firstTransferTo scans state-change transfers for the first entry
// addressed to the given account.
func firstTransferTo(sc *model.StateChanges, address string) (model.Transfer, bool) {
	if sc == nil {
		return model.Transfer{}, false
	}
	for _, transfer := range sc.Transfers {
		if transfer.Address == address {
			return transfer, true
		}
	}
	return model.Transfer{}, false
}

// extractPoolFee reads the first data entry whose key mentions "fee".
// Best effort: absence or an unparsable value yields nil.
func extractPoolFee(sc *model.StateChanges) *decimal.Decimal {
	if sc == nil {
		return nil
	}
	for _, entry := range sc.Data {
		if !strings.Contains(strings.ToLower(entry.Key), "fee") {
			continue
		}
		value, err := decimal.NewFromString(strings.Trim(string(entry.Value), `"`))
		if err != nil {
			return nil
		}
		return &value
	}
	return nil
}

// extractProtocolFee reads the first transfer addressed to a known
// protocol fee collector. Best effort.
func extractProtocolFee(sc *model.StateChanges) *decimal.Decimal {
	if sc == nil {
		return nil
	}
	for _, transfer := range sc.Transfers {
		if registry.IsFeeCollector(transfer.Address) {
			value := decimal.NewFromInt(transfer.Amount)
			return &value
		}
	}
	return nil
}
