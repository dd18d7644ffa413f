package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SwapEvent is a normalized trade extracted from an invocation.
type SwapEvent struct {
	ID            string           `json:"id"`
	TransactionID string           `json:"transaction_id"`
	Height        int64            `json:"height"`
	Timestamp     time.Time        `json:"timestamp"`
	PoolAddress   string           `json:"pool_address"`
	TraderAddress string           `json:"trader_address"`
	AssetInID     string           `json:"asset_in_id"`
	AssetOutID    string           `json:"asset_out_id"`
	AmountInRaw   int64            `json:"amount_in_raw"`
	AmountOutRaw  int64            `json:"amount_out_raw"`
	AmountIn      decimal.Decimal  `json:"amount_in"`
	AmountOut     decimal.Decimal  `json:"amount_out"`
	AmountInUSD   *decimal.Decimal `json:"amount_in_usd,omitempty"`
	AmountOutUSD  *decimal.Decimal `json:"amount_out_usd,omitempty"`
	VolumeUSD     *decimal.Decimal `json:"volume_usd,omitempty"`
	PoolFee       *decimal.Decimal `json:"pool_fee,omitempty"`
	ProtocolFee   *decimal.Decimal `json:"protocol_fee,omitempty"`
}
