package registry

import "sort"

// Core Puzzle protocol addresses.
const (
	PuzzleStakingAddress   = "3PFTbywqxtFfukX3HyT881g4iW5K4QL3FAS"
	PuzzleOracleAddress    = "3P8d1E1BLKoD52y3bQJ1bDTd2TD1gpaLn9t"
	PuzzleBoosterAddress   = "3P8eeDzUnoDNbQjW617pAe76cEUDQsP1m1V"
	PuzzleArtefactsAddress = "3PFkgvC9y6zHy64zEAscKKgaNY3yipiLqbW"
	RexAggregatorAddress   = "3PGFHzVGT4NTigwCKP1NcwoXkodVZwvBuuU"
	PuzzleLimitsAddress    = "3PFB6LJyShsCKEA1AU1U1WLbDazqyj6ZL9b"
)

// Secondary staking contracts.
const (
	EaglesStakingAddress   = "3PKUxbZaSYfsR7wu2HaAgiirHYwAMupDrYW"
	ArkimalsEaglesAddress  = "3PGrthrFFZVfvZeCyrZmEXJ1P29ViPbcy5g"
	PowerDAOAddress        = "3PEwRcYNAUtoFvKpBhKoiwajnZfdoDR6h4h"
)

// Puzzle Lend markets.
const (
	lendMain        = "3P4uA5etnZi4AmBabKinq2bMiWU8KcnHZdH"
	lendRome        = "3P8Df2b7ywHtLBHBe8PBVQYd3A5MdEEJAou"
	lendDefi        = "3P4DK5VzDwL3vfc5ahUEhtoe5ByZNyacJ3X"
	lendLowcap      = "3PHpuQUPVUoR3AYzFeJzeWJfYLsLTmWssVH"
	lendColdStorage = "3P4QjKNNVnEJdmcvPezmoTvsqpmhtxX2SaA"
)

// AddressRole classifies a known protocol address.
type AddressRole string

const (
	RoleStaking      AddressRole = "staking"
	RoleLending      AddressRole = "lending"
	RolePool         AddressRole = "pool"
	RoleOracle       AddressRole = "oracle"
	RoleAggregator   AddressRole = "aggregator"
	RoleFeeCollector AddressRole = "fee_collector"
	RoleUnknown      AddressRole = "unknown"
)

// ProtocolFeeCollectors receive protocol-side swap fees.
var ProtocolFeeCollectors = []string{
	"3P4kBiU4wr2yV1S5gMfu3MdkVvy7kxXHsKe",
	"3PFWAVKmXjfHXyzJb12jCbhP4Uhi9t4uWiD",
	PuzzleStakingAddress,
}

var stakingAddresses = map[string]struct{}{
	PuzzleStakingAddress:  {},
	EaglesStakingAddress:  {},
	ArkimalsEaglesAddress: {},
	PowerDAOAddress:       {},
}

var lendingAddresses = map[string]struct{}{
	lendMain:        {},
	lendRome:        {},
	lendDefi:        {},
	lendLowcap:      {},
	lendColdStorage: {},
}

// Known Puzzle Swap mega pools. Pools can be created permissionlessly,
// so this table is the monitored subset, not an exhaustive list.
var poolAddresses = map[string]string{
	"3PPRHHF9JKvDLkAc3aHD3Kd5tRZp1CoqAJa": "PUZZLE/USDN Pool",
	"3PJaBXZu5rNjKJhZLYnHjhKdDhqUGdZgLzs": "PUZZLE/WAVES Pool",
	"3PDrYPF6izza2sXWffzTPF7e2Fcir2CMpki": "Defi Mega Pool",
	"3PKYPKJPHZENAAwH9e7TF5edDgukNxxBt3M": "Market Mega Pool",
}

var addressNames = map[string]string{
	PuzzleStakingAddress:   "Puzzle Staking",
	PuzzleOracleAddress:    "Puzzle Oracle",
	PuzzleBoosterAddress:   "Puzzle Booster",
	PuzzleArtefactsAddress: "Puzzle Artefacts",
	RexAggregatorAddress:   "Rex Aggregator",
	PuzzleLimitsAddress:    "Puzzle Limit Orders",
	EaglesStakingAddress:   "Eagles Staking",
	ArkimalsEaglesAddress:  "Arkimals Eagles",
	PowerDAOAddress:        "Power DAO",
	lendMain:               "Puzzle Lend Main Market",
	lendRome:               "Puzzle Lend Rome Market",
	lendDefi:               "Puzzle Lend DEFI Market",
	lendLowcap:             "Puzzle Lend Lowcap Market",
	lendColdStorage:        "Puzzle Lend Cold Storage",
}

// IsStakingAddress reports whether addr is a staking contract.
func IsStakingAddress(addr string) bool {
	_, ok := stakingAddresses[addr]
	return ok
}

// IsLendingAddress reports whether addr is a lending market.
func IsLendingAddress(addr string) bool {
	_, ok := lendingAddresses[addr]
	return ok
}

// IsPoolAddress reports whether addr is a monitored swap pool.
func IsPoolAddress(addr string) bool {
	_, ok := poolAddresses[addr]
	return ok
}

// IsFeeCollector reports whether addr collects protocol fees.
func IsFeeCollector(addr string) bool {
	for _, collector := range ProtocolFeeCollectors {
		if addr == collector {
			return true
		}
	}
	return false
}

// Role returns the classification of a known address.
func Role(addr string) AddressRole {
	switch {
	case IsStakingAddress(addr):
		return RoleStaking
	case IsLendingAddress(addr):
		return RoleLending
	case IsPoolAddress(addr):
		return RolePool
	case addr == PuzzleOracleAddress:
		return RoleOracle
	case addr == RexAggregatorAddress:
		return RoleAggregator
	case IsFeeCollector(addr):
		return RoleFeeCollector
	default:
		return RoleUnknown
	}
}

// AddressName returns a human-readable name for a known address.
func AddressName(addr string) string {
	if name, ok := addressNames[addr]; ok {
		return name
	}
	if name, ok := poolAddresses[addr]; ok {
		return name
	}
	return addr
}

// PoolAddresses returns the monitored pool table.
func PoolAddresses() map[string]string {
	out := make(map[string]string, len(poolAddresses))
	for addr, name := range poolAddresses {
		out[addr] = name
	}
	return out
}

// DefaultAddresses is the address set an unconfigured run processes.
func DefaultAddresses() []string {
	pools := make([]string, 0, len(poolAddresses))
	for addr := range poolAddresses {
		pools = append(pools, addr)
	}
	sort.Strings(pools)
	return append([]string{PuzzleStakingAddress}, pools...)
}
