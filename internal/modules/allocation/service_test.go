package allocation

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limpide/limpide/internal/modules/accounts"
)

func TestTargets_WeightsSumToOne(t *testing.T) {
	for _, tier := range []accounts.Tier{accounts.TierConservative, accounts.TierModerate, accounts.TierGrowth} {
		total := decimal.Zero
		for _, line := range Targets(tier) {
			total = total.Add(line.Weight)
		}
		assert.True(t, total.Equal(decimal.NewFromInt(1)), "tier %s weights sum to %s", tier, total)
	}
}

func TestTargets_UnknownTierFallsBack(t *testing.T) {
	lines := Targets(accounts.Tier("aggressive"))
	require.Len(t, lines, 3)
	assert.Equal(t, "XBAL.TO", lines[0].Ticker)
}

func TestComputeBreakdown(t *testing.T) {
	positions := []Position{
		{TypeLabel: "ETF", MarketValue: decimal.RequireFromString("6000")},
		{TypeLabel: "ETF", MarketValue: decimal.RequireFromString("1500")},
		{TypeLabel: "Stock", MarketValue: decimal.RequireFromString("1500")},
		{TypeLabel: "Cash", MarketValue: decimal.RequireFromString("1000")},
	}

	breakdown := ComputeBreakdown(positions)
	require.Len(t, breakdown.Slices, 3)

	// Descending by value: ETF 7500, Stock 1500, Cash 1000.
	assert.Equal(t, "ETF", breakdown.Slices[0].Label)
	assert.Equal(t, "Stock", breakdown.Slices[1].Label)
	assert.Equal(t, "Cash", breakdown.Slices[2].Label)

	assert.True(t, breakdown.Slices[0].Pct.Equal(decimal.RequireFromString("75")))
	assert.Equal(t, "75.0% ($7500.00)", breakdown.Slices[0].Display)

	pctSum := decimal.Zero
	for _, slice := range breakdown.Slices {
		pctSum = pctSum.Add(slice.Pct)
	}
	diff := pctSum.Sub(decimal.NewFromInt(100)).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.RequireFromString("0.3")), "percentages sum to %s", pctSum)

	assert.Equal(t, breakdown.Chart.Labels, []string{"ETF", "Stock", "Cash"})
	assert.Len(t, breakdown.Chart.Values, 3)
	assert.Len(t, breakdown.Chart.Colors, 3)
}

func TestComputeBreakdown_Empty(t *testing.T) {
	breakdown := ComputeBreakdown(nil)

	assert.Empty(t, breakdown.Slices)
	assert.Empty(t, breakdown.Chart.Labels)
	assert.Empty(t, breakdown.Chart.Values)
	assert.Empty(t, breakdown.Chart.Colors)
}

func TestComputeBreakdown_TiesBreakAlphabetically(t *testing.T) {
	positions := []Position{
		{TypeLabel: "Stock", MarketValue: decimal.RequireFromString("500")},
		{TypeLabel: "Bond", MarketValue: decimal.RequireFromString("500")},
	}

	breakdown := ComputeBreakdown(positions)
	require.Len(t, breakdown.Slices, 2)
	assert.Equal(t, "Bond", breakdown.Slices[0].Label)
	assert.Equal(t, "Stock", breakdown.Slices[1].Label)
}

func TestComputeBreakdown_PaletteCycles(t *testing.T) {
	var positions []Position
	for i := 0; i < 10; i++ {
		positions = append(positions, Position{
			TypeLabel:   fmt.Sprintf("Group %02d", i),
			MarketValue: decimal.NewFromInt(int64(1000 - i)),
		})
	}

	breakdown := ComputeBreakdown(positions)
	require.Len(t, breakdown.Chart.Colors, 10)

	// The ninth group wraps back to the first palette color.
	assert.Equal(t, breakdown.Chart.Colors[0], breakdown.Chart.Colors[8])
	assert.Equal(t, breakdown.Chart.Colors[1], breakdown.Chart.Colors[9])
}

func TestComputeExposure(t *testing.T) {
	positions := []Position{
		{Geography: "Canada", Sector: "Financials", MarketValue: decimal.RequireFromString("4000")},
		{Geography: "Global", Sector: "Multi-sector", MarketValue: decimal.RequireFromString("5000")},
		{Geography: "Canada", Sector: "", MarketValue: decimal.RequireFromString("1000")},
	}

	exposure := ComputeExposure(positions)

	require.Len(t, exposure.Geography, 2)
	assert.Equal(t, "Canada", exposure.Geography[0].Label)
	assert.Equal(t, 50.0, exposure.Geography[0].Pct)
	assert.Equal(t, "Global", exposure.Geography[1].Label)

	// The empty sector is skipped entirely.
	require.Len(t, exposure.Sectors, 2)
	assert.Equal(t, "Multi-sector", exposure.Sectors[0].Label)
	assert.Equal(t, 50.0, exposure.Sectors[0].Pct)
	assert.Equal(t, "Financials", exposure.Sectors[1].Label)
	assert.Equal(t, 40.0, exposure.Sectors[1].Pct)
}

func TestComputeExposure_Empty(t *testing.T) {
	exposure := ComputeExposure(nil)
	assert.Empty(t, exposure.Geography)
	assert.Empty(t, exposure.Sectors)
}
