package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetPrice is a USD quote for an asset at a point in time.
type AssetPrice struct {
	AssetID   string          `json:"asset_id"`
	PriceUSD  decimal.Decimal `json:"price_usd"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
}

// AddressSummary counts the work done for one address.
type AddressSummary struct {
	Address               string `json:"address"`
	BatchesProcessed      int    `json:"batches_processed"`
	TransactionsExtracted int    `json:"transactions_extracted"`
	SwapsProcessed        int    `json:"swaps_processed"`
	StakingEvents         int    `json:"staking_events"`
}

// RunSummary describes one ETL run. BatchID ties persisted rows back
// to the run that produced them.
type RunSummary struct {
	BatchID               string           `json:"batch_id"`
	StartedAt             time.Time        `json:"started_at"`
	FinishedAt            time.Time        `json:"finished_at"`
	AddressesProcessed    int              `json:"addresses_processed"`
	TransactionsExtracted int              `json:"transactions_extracted"`
	SwapsProcessed        int              `json:"swaps_processed"`
	StakingEvents         int              `json:"staking_events"`
	Addresses             []AddressSummary `json:"addresses,omitempty"`
	Errors                []string         `json:"errors,omitempty"`
}

// AddError records a per-address failure without aborting the run.
func (s *RunSummary) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}
