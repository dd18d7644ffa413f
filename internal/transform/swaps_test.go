package transform

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"puzzleETL/internal/model"
	"puzzleETL/internal/registry"
)

const (
	testPool   = "3PPRHHF9JKvDLkAc3aHD3Kd5tRZp1CoqAJa"
	testTrader = "3PTraderAddressXXXXXXXXXXXXXXXXXXXX"
)

func swapTx(id string, assetIn *string, amountIn int64, assetOut *string, amountOut int64) model.RawTransaction {
	return model.RawTransaction{
		Type:              model.TxInvocation,
		ID:                id,
		Height:            100,
		Timestamp:         1700000000000,
		Sender:            testTrader,
		ApplicationStatus: model.StatusSucceeded,
		DApp:              testPool,
		Call:              &model.Call{Function: "swap"},
		Payment:           []model.Payment{{AssetID: assetIn, Amount: amountIn}},
		StateChanges: &model.StateChanges{
			Transfers: []model.Transfer{
				{Address: testTrader, Asset: assetOut, Amount: amountOut},
			},
		},
	}
}

func TestSwapTransform(t *testing.T) {
	usdt := registry.USDTId
	tx := swapTx("tx1", nil, 100000000, &usdt, 2000000)

	swaps := NewSwapTransformer(nil).Transform([]model.RawTransaction{tx})
	if len(swaps) != 1 {
		t.Fatalf("expected 1 swap, got %d", len(swaps))
	}

	swap := swaps[0]
	if swap.ID != "tx1_WAVES_"+registry.USDTId {
		t.Fatalf("swap id: got %q", swap.ID)
	}
	if swap.AssetInID != registry.WavesID || swap.AssetOutID != registry.USDTId {
		t.Fatalf("asset pair: %s -> %s", swap.AssetInID, swap.AssetOutID)
	}
	if swap.AmountInRaw != 100000000 || swap.AmountOutRaw != 2000000 {
		t.Fatalf("raw amounts: %d -> %d", swap.AmountInRaw, swap.AmountOutRaw)
	}
	if !swap.AmountIn.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("amount in: got %s, want 1", swap.AmountIn)
	}
	if !swap.AmountOut.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("amount out: got %s, want 2", swap.AmountOut)
	}
	if swap.PoolAddress != testPool || swap.TraderAddress != testTrader {
		t.Fatalf("addresses: %s, %s", swap.PoolAddress, swap.TraderAddress)
	}
}

func TestSwapTransformSkipsUnparsable(t *testing.T) {
	// No payment entries: skipped without aborting the batch.
	broken := model.RawTransaction{
		Type:              model.TxInvocation,
		ID:                "tx1",
		Sender:            testTrader,
		ApplicationStatus: model.StatusSucceeded,
		DApp:              testPool,
		Call:              &model.Call{Function: "swap"},
	}
	usdt := registry.USDTId
	good := swapTx("tx2", nil, 100000000, &usdt, 2000000)

	swaps := NewSwapTransformer(nil).Transform([]model.RawTransaction{broken, good})
	if len(swaps) != 1 {
		t.Fatalf("expected the good swap only, got %d", len(swaps))
	}
	if swaps[0].TransactionID != "tx2" {
		t.Fatalf("wrong swap survived: %s", swaps[0].TransactionID)
	}
}

func TestSwapTransformIgnoresNonSwaps(t *testing.T) {
	tx := model.RawTransaction{
		Type:              model.TxInvocation,
		ID:                "tx1",
		Sender:            testTrader,
		ApplicationStatus: model.StatusSucceeded,
		DApp:              "3PUnknownDApp",
		Call:              &model.Call{Function: "lendMoney"},
	}

	if swaps := NewSwapTransformer(nil).Transform([]model.RawTransaction{tx}); len(swaps) != 0 {
		t.Fatalf("expected no swaps, got %d", len(swaps))
	}
}

func TestSwapTransformDuplicateIDSuffix(t *testing.T) {
	// A routed transaction can revisit the same pair under one tx id.
	usdt := registry.USDTId
	first := swapTx("tx1", nil, 100000000, &usdt, 2000000)
	second := swapTx("tx1", nil, 50000000, &usdt, 1000000)

	swaps := NewSwapTransformer(nil).Transform([]model.RawTransaction{first, second})
	if len(swaps) != 2 {
		t.Fatalf("expected 2 swaps, got %d", len(swaps))
	}
	if swaps[0].ID == swaps[1].ID {
		t.Fatalf("duplicate swap ids: %q", swaps[0].ID)
	}
	if swaps[1].ID != swaps[0].ID+"_1" {
		t.Fatalf("second id: got %q, want %q", swaps[1].ID, swaps[0].ID+"_1")
	}
}

func TestSwapTransformFees(t *testing.T) {
	usdt := registry.USDTId
	tx := swapTx("tx1", nil, 100000000, &usdt, 2000000)
	tx.StateChanges.Data = []model.DataEntry{
		{Key: "pool_fee", Type: "integer", Value: json.RawMessage(`2000`)},
	}
	tx.StateChanges.Transfers = append(tx.StateChanges.Transfers, model.Transfer{
		Address: registry.ProtocolFeeCollectors[0],
		Asset:   &usdt,
		Amount:  500,
	})

	swaps := NewSwapTransformer(nil).Transform([]model.RawTransaction{tx})
	if len(swaps) != 1 {
		t.Fatalf("expected 1 swap, got %d", len(swaps))
	}
	if swaps[0].PoolFee == nil || !swaps[0].PoolFee.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("pool fee: got %v", swaps[0].PoolFee)
	}
	if swaps[0].ProtocolFee == nil || !swaps[0].ProtocolFee.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("protocol fee: got %v", swaps[0].ProtocolFee)
	}
}
