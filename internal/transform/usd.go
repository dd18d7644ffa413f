package transform

import (
	"github.com/shopspring/decimal"

	"puzzleETL/internal/model"
)

// CalculateSwapUSD applies USD quotes to swap events. Amounts are
// already precision-normalized at extraction time, so this pass only
// multiplies by price. A missing price leaves the USD fields nil,
// never zero. Volume is the average of both sides when both priced,
// otherwise whichever side is priced, otherwise nil. Pure function.
func CalculateSwapUSD(swaps []model.SwapEvent, prices map[string]decimal.Decimal) []model.SwapEvent {
	two := decimal.NewFromInt(2)

	out := make([]model.SwapEvent, len(swaps))
	for i, swap := range swaps {
		if price, ok := prices[swap.AssetInID]; ok {
			value := swap.AmountIn.Mul(price)
			swap.AmountInUSD = &value
		} else {
			swap.AmountInUSD = nil
		}
		if price, ok := prices[swap.AssetOutID]; ok {
			value := swap.AmountOut.Mul(price)
			swap.AmountOutUSD = &value
		} else {
			swap.AmountOutUSD = nil
		}

		switch {
		case swap.AmountInUSD != nil && swap.AmountOutUSD != nil:
			volume := swap.AmountInUSD.Add(*swap.AmountOutUSD).Div(two)
			swap.VolumeUSD = &volume
		case swap.AmountInUSD != nil:
			swap.VolumeUSD = swap.AmountInUSD
		case swap.AmountOutUSD != nil:
			swap.VolumeUSD = swap.AmountOutUSD
		default:
			swap.VolumeUSD = nil
		}

		out[i] = swap
	}
	return out
}

// CalculateStakingUSD applies a single staking-token price to staking
// events. A zero or missing price leaves amount_usd nil. Pure function.
func CalculateStakingUSD(events []model.StakingEvent, tokenPrice decimal.Decimal) []model.StakingEvent {
	out := make([]model.StakingEvent, len(events))
	for i, event := range events {
		if tokenPrice.Sign() > 0 {
			value := event.Amount.Mul(tokenPrice)
			event.AmountUSD = &value
		} else {
			event.AmountUSD = nil
		}
		out[i] = event
	}
	return out
}
