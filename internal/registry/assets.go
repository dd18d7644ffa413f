package registry

import "github.com/shopspring/decimal"

// WavesID is the synthetic id of the native chain asset. The node API
// reports it as a null assetId; it is normalized to this constant.
const WavesID = "WAVES"

// PuzzleTokenID is the Puzzle governance and staking token.
const PuzzleTokenID = "HEB8Qaw9xrWpWs8tHsiATYGBWDBtP2S7kcPALrMu43AS"

// Stablecoin ids used across the Puzzle ecosystem.
const (
	USDNId = "DG2xFkPdDwKUoBkzGAhQtLpSGzfXLiCYPEzeKH2Ad24p"
	USDTId = "34N9YcEETLWn93qYQ64EsP1x89tSruJU44RrEMSXXEPJ"
	USDCId = "6nSpVyNH7yM69eg446wrQR94ipbbcmZMU1ENPwanC97g"
)

// DefaultDecimals is assumed for assets missing from the registry.
const DefaultDecimals = 8

// AssetInfo describes a known asset.
type AssetInfo struct {
	ID        string
	Symbol    string
	Name      string
	Decimals  int32
	AssetType string // "token", "stable", "wrapped"
	Verified  bool
}

var assets = map[string]AssetInfo{
	WavesID: {
		ID: WavesID, Symbol: "WAVES", Name: "Waves",
		Decimals: 8, AssetType: "token", Verified: true,
	},
	PuzzleTokenID: {
		ID: PuzzleTokenID, Symbol: "PUZZLE", Name: "Puzzle",
		Decimals: 8, AssetType: "token", Verified: true,
	},
	USDNId: {
		ID: USDNId, Symbol: "USDN", Name: "Neutrino USD",
		Decimals: 6, AssetType: "stable", Verified: true,
	},
	USDTId: {
		ID: USDTId, Symbol: "USDT", Name: "Tether USD",
		Decimals: 6, AssetType: "stable", Verified: true,
	},
	USDCId: {
		ID: USDCId, Symbol: "USDC", Name: "USD Coin",
		Decimals: 6, AssetType: "stable", Verified: true,
	},
	"8LQW8f7P5d5PZM7GtZEBgaqRPGSzS3DfPuiXrURJ4AJS": {
		ID: "8LQW8f7P5d5PZM7GtZEBgaqRPGSzS3DfPuiXrURJ4AJS", Symbol: "BTC", Name: "Bitcoin",
		Decimals: 8, AssetType: "wrapped", Verified: true,
	},
	"474jTeYx2r2Va35794tCScAXWJG9hU2HcgxzMowaZUnu": {
		ID: "474jTeYx2r2Va35794tCScAXWJG9hU2HcgxzMowaZUnu", Symbol: "ETH", Name: "Ethereum",
		Decimals: 8, AssetType: "wrapped", Verified: true,
	},
	"Ehie5xYpeN8op1Cctc6aGUrqx8jq3jtf1DSjXDbfm7aT": {
		ID: "Ehie5xYpeN8op1Cctc6aGUrqx8jq3jtf1DSjXDbfm7aT", Symbol: "SWOP", Name: "Swop",
		Decimals: 8, AssetType: "token", Verified: true,
	},
	"6XtHjpXbs9RRJP2Sr9GUyVqzACcby9TkThHXnjVC5CDJ": {
		ID: "6XtHjpXbs9RRJP2Sr9GUyVqzACcby9TkThHXnjVC5CDJ", Symbol: "EGG", Name: "Waves Ducks",
		Decimals: 8, AssetType: "token", Verified: true,
	},
	"AAHG5gzQeWfqhR9K4rptpyDDoo9SgAEiEsQEP1Rge2zG": {
		ID: "AAHG5gzQeWfqhR9K4rptpyDDoo9SgAEiEsQEP1Rge2zG", Symbol: "SIGN", Name: "SignatureChain",
		Decimals: 8, AssetType: "token", Verified: true,
	},
}

// AllAssets returns the static asset table.
func AllAssets() map[string]AssetInfo {
	out := make(map[string]AssetInfo, len(assets))
	for id, info := range assets {
		out[id] = info
	}
	return out
}

// LookupAsset returns info about a known asset.
func LookupAsset(assetID string) (AssetInfo, bool) {
	info, ok := assets[assetID]
	return info, ok
}

// AssetDecimals returns the decimal precision of an asset, falling
// back to DefaultDecimals for unknown assets.
func AssetDecimals(assetID string) int32 {
	if info, ok := assets[assetID]; ok {
		return info.Decimals
	}
	return DefaultDecimals
}

// AssetSymbol returns the symbol of a known asset, or a truncated id.
func AssetSymbol(assetID string) string {
	if info, ok := assets[assetID]; ok {
		return info.Symbol
	}
	if len(assetID) > 8 {
		return assetID[:8] + "..."
	}
	return assetID
}

// NormalizeAssetID maps the node's null asset id to WavesID.
func NormalizeAssetID(assetID *string) string {
	if assetID == nil || *assetID == "" {
		return WavesID
	}
	return *assetID
}

// NormalizeAmount converts a raw chain-native integer amount into a
// decimal adjusted for the asset's precision.
func NormalizeAmount(assetID string, raw int64) decimal.Decimal {
	return decimal.New(raw, -AssetDecimals(assetID))
}

// DenormalizeAmount converts a precision-adjusted decimal back into
// raw chain-native units.
func DenormalizeAmount(assetID string, amount decimal.Decimal) int64 {
	return amount.Shift(AssetDecimals(assetID)).IntPart()
}
