package portfolio

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limpide/limpide/internal/modules/marketdata"
)

func holding(quantity, avgCost, price, prevClose string) HoldingWithAsset {
	return HoldingWithAsset{
		Holding: Holding{
			Quantity:    decimal.RequireFromString(quantity),
			AverageCost: decimal.RequireFromString(avgCost),
		},
		Asset: marketdata.Asset{
			CurrentPrice:  decimal.RequireFromString(price),
			PreviousClose: decimal.RequireFromString(prevClose),
		},
	}
}

func TestComputeSnapshot_Gain(t *testing.T) {
	snapshot := computeSnapshot([]HoldingWithAsset{
		holding("10", "10.00", "12.00", "11.50"),
	})

	assert.True(t, snapshot.TotalValue.Equal(decimal.RequireFromString("120.00")))
	assert.True(t, snapshot.TotalCost.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, snapshot.GainLoss.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, snapshot.GainLossPct.Equal(decimal.RequireFromString("20.00")))
	assert.Equal(t, "+$20.00 (+20.00%)", snapshot.GainLossDisplay)

	// Daily move: 10 * (12.00 - 11.50) = 5.00 against implied 115.00.
	assert.True(t, snapshot.DailyChange.Equal(decimal.RequireFromString("5.00")))
	assert.True(t, snapshot.DailyChangePct.Equal(decimal.RequireFromString("4.35")))
	assert.Equal(t, "+$5.00 (+4.35%)", snapshot.DailyChangeDisplay)
}

func TestComputeSnapshot_Loss(t *testing.T) {
	snapshot := computeSnapshot([]HoldingWithAsset{
		holding("10", "10.00", "8.00", "8.00"),
	})

	assert.True(t, snapshot.GainLoss.Equal(decimal.RequireFromString("-20.00")))
	assert.Equal(t, "$-20.00 (-20.00%)", snapshot.GainLossDisplay)
	assert.True(t, snapshot.DailyChange.IsZero())
	assert.Equal(t, "+$0.00 (+0.00%)", snapshot.DailyChangeDisplay)
}

func TestComputeSnapshot_Empty(t *testing.T) {
	snapshot := computeSnapshot(nil)

	assert.True(t, snapshot.TotalValue.IsZero())
	assert.True(t, snapshot.TotalCost.IsZero())
	assert.True(t, snapshot.GainLossPct.IsZero())
	assert.True(t, snapshot.DailyChangePct.IsZero())
	assert.Equal(t, "+$0.00 (+0.00%)", snapshot.GainLossDisplay)
}

func TestFormatDelta(t *testing.T) {
	tests := []struct {
		amount   string
		pct      string
		expected string
	}{
		{"20.00", "20.00", "+$20.00 (+20.00%)"},
		{"0", "0", "+$0.00 (+0.00%)"},
		{"-3.50", "-1.25", "$-3.50 (-1.25%)"},
	}

	for _, tt := range tests {
		got := formatDelta(decimal.RequireFromString(tt.amount), decimal.RequireFromString(tt.pct))
		assert.Equal(t, tt.expected, got)
	}
}

func TestValuation_HoldingsTable(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "table@example.com", intPtr(10))

	p, err := env.builder.CreateSandbox(user.ID)
	require.NoError(t, err)

	rows, err := env.valuation.HoldingsTable(p.ID)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	// Sorted by market value descending; growth puts 60% into XEQT.TO.
	assert.Equal(t, "XEQT.TO", rows[0].Ticker)
	for i := 1; i < len(rows); i++ {
		assert.True(t, rows[i-1].MarketValue.GreaterThanOrEqual(rows[i].MarketValue))
	}

	// Weights cover the whole portfolio.
	weightSum := decimal.Zero
	for _, row := range rows {
		weightSum = weightSum.Add(row.Weight)
	}
	diff := weightSum.Sub(decimal.NewFromInt(100)).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.RequireFromString("0.5")),
		"weights sum to %s", weightSum)

	// Bought 3% below current price, so every row shows a gain.
	for _, row := range rows {
		assert.True(t, row.GainLoss.IsPositive(), "%s gain/loss = %s", row.Ticker, row.GainLoss)
	}
}

func TestValuation_Positions(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "positions@example.com", nil)

	p, err := env.builder.CreateSandbox(user.ID)
	require.NoError(t, err)

	positions, err := env.valuation.Positions(p.ID)
	require.NoError(t, err)
	require.Len(t, positions, 3)

	labels := make(map[string]bool)
	for _, pos := range positions {
		labels[pos.TypeLabel] = true
		assert.True(t, pos.MarketValue.IsPositive())
	}
	assert.True(t, labels["ETF"])
	assert.True(t, labels["Cash"])
}
