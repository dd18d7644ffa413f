package transform

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"puzzleETL/internal/model"
	"puzzleETL/internal/registry"
)

func stakingTx(id, function string) model.RawTransaction {
	return model.RawTransaction{
		Type:              model.TxInvocation,
		ID:                id,
		Height:            100,
		Timestamp:         1700000000000,
		Sender:            testTrader,
		ApplicationStatus: model.StatusSucceeded,
		DApp:              registry.PuzzleStakingAddress,
		Call:              &model.Call{Function: function},
	}
}

func TestStakingTransformStake(t *testing.T) {
	puzzle := registry.PuzzleTokenID
	tx := stakingTx("tx1", "stake")
	tx.Payment = []model.Payment{{AssetID: &puzzle, Amount: 100000000}}

	events := NewStakingTransformer(nil).Transform([]model.RawTransaction{tx})
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	event := events[0]
	if event.EventType != model.StakingStake {
		t.Fatalf("event type: got %q", event.EventType)
	}
	if event.AmountRaw != 100000000 || !event.Amount.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("amount: raw %d, normalized %s", event.AmountRaw, event.Amount)
	}
	if event.StakerAddress != testTrader {
		t.Fatalf("staker: got %q", event.StakerAddress)
	}
}

func TestStakingTransformStakeWrongAsset(t *testing.T) {
	// A deposit in any other asset does not count toward the stake.
	tx := stakingTx("tx1", "stake")
	tx.Payment = []model.Payment{{AssetID: nil, Amount: 100000000}}

	events := NewStakingTransformer(nil).Transform([]model.RawTransaction{tx})
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].AmountRaw != 0 || !events[0].Amount.IsZero() {
		t.Fatalf("wrong-asset stake must have zero amount, got %s", events[0].Amount)
	}
}

func TestStakingTransformUnstakeSkipsOtherAssets(t *testing.T) {
	puzzle := registry.PuzzleTokenID
	usdt := registry.USDTId
	tx := stakingTx("tx1", "unstake")
	tx.StateChanges = &model.StateChanges{
		Transfers: []model.Transfer{
			{Address: testTrader, Asset: &usdt, Amount: 999},
			{Address: testTrader, Asset: &puzzle, Amount: 50000000},
		},
	}

	events := NewStakingTransformer(nil).Transform([]model.RawTransaction{tx})
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].EventType != model.StakingUnstake {
		t.Fatalf("event type: got %q", events[0].EventType)
	}
	if events[0].AmountRaw != 50000000 {
		t.Fatalf("amount raw: got %d, want the staking-token transfer", events[0].AmountRaw)
	}
}

func TestStakingTransformWithdrawAlias(t *testing.T) {
	events := NewStakingTransformer(nil).Transform([]model.RawTransaction{stakingTx("tx1", "withdraw")})
	if len(events) != 1 || events[0].EventType != model.StakingUnstake {
		t.Fatalf("withdraw must map to unstake, got %+v", events)
	}
}

func TestStakingTransformDataEntries(t *testing.T) {
	tx := stakingTx("tx1", "someFunction")
	tx.StateChanges = &model.StateChanges{
		Data: []model.DataEntry{
			{Key: "3PStakerOne_staked", Type: "integer", Value: json.RawMessage(`3000000000`)},
			{Key: "3PStakerTwo_staked", Type: "integer", Value: json.RawMessage(`0`)},
			{Key: "global_staked", Type: "string", Value: json.RawMessage(`"not-a-number"`)},
			{Key: "unrelated_key", Type: "integer", Value: json.RawMessage(`5`)},
		},
	}

	events := NewStakingTransformer(nil).Transform([]model.RawTransaction{tx})
	if len(events) != 1 {
		t.Fatalf("expected 1 snapshot event, got %d", len(events))
	}

	event := events[0]
	if event.EventType != model.StakingUpdate {
		t.Fatalf("event type: got %q", event.EventType)
	}
	if event.StakerAddress != "3PStakerOne" {
		t.Fatalf("staker: got %q", event.StakerAddress)
	}
	if !event.Amount.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("amount: got %s, want 30", event.Amount)
	}
}

func TestAggregateStatsUpdateOverwrites(t *testing.T) {
	events := []model.StakingEvent{
		{StakerAddress: "alice", EventType: model.StakingStake, Amount: decimal.NewFromInt(100)},
		{StakerAddress: "alice", EventType: model.StakingUpdate, Amount: decimal.NewFromInt(30)},
	}

	stats := AggregateStats(events, time.Now())
	if !stats.TotalStaked.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("total staked: got %s, want 30", stats.TotalStaked)
	}
	if stats.UniqueStakers != 1 {
		t.Fatalf("unique stakers: got %d", stats.UniqueStakers)
	}
}

func TestAggregateStatsDropsEmptiedStakers(t *testing.T) {
	events := []model.StakingEvent{
		{StakerAddress: "alice", EventType: model.StakingStake, Amount: decimal.NewFromInt(100)},
		{StakerAddress: "bob", EventType: model.StakingStake, Amount: decimal.NewFromInt(50)},
		{StakerAddress: "bob", EventType: model.StakingUnstake, Amount: decimal.NewFromInt(50)},
		// Claims never move the staked balance.
		{StakerAddress: "alice", EventType: model.StakingClaim, Amount: decimal.NewFromInt(10)},
	}

	stats := AggregateStats(events, time.Now())
	if stats.UniqueStakers != 1 {
		t.Fatalf("unique stakers: got %d, want 1", stats.UniqueStakers)
	}
	if !stats.TotalStaked.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("total staked: got %s, want 100", stats.TotalStaked)
	}
	if _, ok := stats.StakerBalances["bob"]; ok {
		t.Fatalf("emptied staker must be dropped")
	}
}

func TestAggregateStatsIdempotent(t *testing.T) {
	events := []model.StakingEvent{
		{StakerAddress: "alice", EventType: model.StakingStake, Amount: decimal.NewFromInt(100)},
		{StakerAddress: "alice", EventType: model.StakingUnstake, Amount: decimal.NewFromInt(40)},
	}

	first := AggregateStats(events, time.Now())
	second := AggregateStats(events, time.Now())
	if !first.TotalStaked.Equal(second.TotalStaked) || first.UniqueStakers != second.UniqueStakers {
		t.Fatalf("repeated folds disagree: %s/%d vs %s/%d",
			first.TotalStaked, first.UniqueStakers, second.TotalStaked, second.UniqueStakers)
	}
}
