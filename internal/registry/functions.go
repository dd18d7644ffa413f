package registry

import "puzzleETL/internal/model"

var swapFunctions = map[string]struct{}{
	"swap":                {},
	"swapWithReferral":    {},
	"swapToExactAmount":   {},
	"swapFromExactAmount": {},
}

// stakingEventTypes maps staking function names to the event type they
// produce. Membership in this table is also the staking classifier.
var stakingEventTypes = map[string]model.StakingEventType{
	"stake":             model.StakingStake,
	"unstake":           model.StakingUnstake,
	"withdraw":          model.StakingUnstake,
	"claim":             model.StakingClaim,
	"claimRewards":      model.StakingClaim,
	"claimReward":       model.StakingClaim,
	"compound":          model.StakingCompound,
	"emergencyWithdraw": model.StakingEmergencyWithdraw,
}

var lendingFunctions = map[string]struct{}{
	"supply":         {},
	"withdraw":       {},
	"borrow":         {},
	"repay":          {},
	"liquidate":      {},
	"updateInterest": {},
}

var poolFunctions = map[string]struct{}{
	"init":               {},
	"preInit":            {},
	"addLiquidity":       {},
	"removeLiquidity":    {},
	"setRebalancingPlan": {},
	"rebalance":          {},
	"updateWeights":      {},
}

// IsSwapFunction reports whether fn is a swap entry point. Exact
// string membership, no fuzzy matching.
func IsSwapFunction(fn string) bool {
	_, ok := swapFunctions[fn]
	return ok
}

// IsStakingFunction reports whether fn is a staking entry point.
func IsStakingFunction(fn string) bool {
	_, ok := stakingEventTypes[fn]
	return ok
}

// IsLendingFunction reports whether fn is a lending entry point.
func IsLendingFunction(fn string) bool {
	_, ok := lendingFunctions[fn]
	return ok
}

// StakingEventType maps a staking function to its event type.
func StakingEventType(fn string) (model.StakingEventType, bool) {
	eventType, ok := stakingEventTypes[fn]
	return eventType, ok
}

// FunctionCategory classifies a function name by protocol area.
func FunctionCategory(fn string) string {
	switch {
	case IsSwapFunction(fn):
		return "swap"
	case IsStakingFunction(fn):
		return "staking"
	case IsLendingFunction(fn):
		return "lending"
	default:
		if _, ok := poolFunctions[fn]; ok {
			return "pool"
		}
		return "unknown"
	}
}

// VIPFunctions returns the function names that must always be
// extracted for an address, based on its role.
func VIPFunctions(addr string) []string {
	switch Role(addr) {
	case RoleStaking:
		return []string{"stake", "unstake", "claim"}
	default:
		return []string{"swap", "swapWithReferral"}
	}
}
