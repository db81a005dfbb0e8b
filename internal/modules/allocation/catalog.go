package allocation

import (
	"github.com/shopspring/decimal"

	"github.com/limpide/limpide/internal/modules/accounts"
)

func w(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// sandboxTargets maps each risk tier to its target allocation. Weights sum
// to 1.0 per tier; the table is fixed at build time and not user-editable.
var sandboxTargets = map[accounts.Tier][]Line{
	accounts.TierConservative: {
		{Ticker: "XBAL.TO", Weight: w("0.60")},
		{Ticker: "ZAG.TO", Weight: w("0.30")},
		{Ticker: "CASH.TO", Weight: w("0.10")},
	},
	accounts.TierModerate: {
		{Ticker: "XEQT.TO", Weight: w("0.50")},
		{Ticker: "XBAL.TO", Weight: w("0.25")},
		{Ticker: "ZAG.TO", Weight: w("0.15")},
		{Ticker: "RY.TO", Weight: w("0.10")},
	},
	accounts.TierGrowth: {
		{Ticker: "XEQT.TO", Weight: w("0.60")},
		{Ticker: "VFV.TO", Weight: w("0.20")},
		{Ticker: "SHOP.TO", Weight: w("0.10")},
		{Ticker: "RY.TO", Weight: w("0.10")},
	},
}

// Targets returns the ordered allocation lines for a tier. Unknown tiers
// fall back to conservative.
func Targets(tier accounts.Tier) []Line {
	if lines, ok := sandboxTargets[tier]; ok {
		return lines
	}
	return sandboxTargets[accounts.TierConservative]
}
