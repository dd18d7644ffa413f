package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StakingEventType classifies a staking contract interaction.
type StakingEventType string

const (
	StakingStake             StakingEventType = "stake"
	StakingUnstake           StakingEventType = "unstake"
	StakingClaim             StakingEventType = "claim"
	StakingCompound          StakingEventType = "compound"
	StakingEmergencyWithdraw StakingEventType = "emergency_withdraw"
	// StakingUpdate is an absolute balance snapshot read from contract
	// storage, not a delta.
	StakingUpdate StakingEventType = "stake_update"
)

// StakingEvent is a staking interaction extracted from an invocation
// or from a contract storage snapshot.
type StakingEvent struct {
	ID               string           `json:"id"`
	TransactionID    string           `json:"transaction_id"`
	Height           int64            `json:"height"`
	Timestamp        time.Time        `json:"timestamp"`
	StakerAddress    string           `json:"staker_address"`
	EventType        StakingEventType `json:"event_type"`
	Amount           decimal.Decimal  `json:"amount"`
	AmountRaw        int64            `json:"amount_raw"`
	AmountUSD        *decimal.Decimal `json:"amount_usd,omitempty"`
	TotalStakedAfter *decimal.Decimal `json:"total_staked_after,omitempty"`
	RewardAmount     *decimal.Decimal `json:"reward_amount,omitempty"`
}

// StakingStats is an aggregate snapshot over a staking event history.
type StakingStats struct {
	AsOf           time.Time                  `json:"as_of"`
	TotalStaked    decimal.Decimal            `json:"total_staked"`
	UniqueStakers  int                        `json:"unique_stakers"`
	StakerBalances map[string]decimal.Decimal `json:"staker_balances"`
}
