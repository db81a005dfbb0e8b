package portfolio

import (
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/limpide/limpide/internal/modules/allocation"
)

var hundred = decimal.NewFromInt(100)

// Valuation computes read-only portfolio metrics from holdings. It never
// writes; all figures are derived on each call from current asset prices.
type Valuation struct {
	repo *Repository
	log  zerolog.Logger
}

// NewValuation creates a new valuation service
func NewValuation(repo *Repository, log zerolog.Logger) *Valuation {
	return &Valuation{
		repo: repo,
		log:  log.With().Str("service", "valuation").Logger(),
	}
}

// Snapshot computes portfolio-level totals, gain/loss and daily change
func (v *Valuation) Snapshot(portfolioID int64) (*Snapshot, error) {
	holdings, err := v.repo.HoldingsWithAssets(portfolioID)
	if err != nil {
		return nil, err
	}

	return computeSnapshot(holdings), nil
}

// computeSnapshot aggregates holdings into a Snapshot. Split out so tests
// can feed holdings directly.
func computeSnapshot(holdings []HoldingWithAsset) *Snapshot {
	totalValue := decimal.Zero
	totalCost := decimal.Zero
	dailyChange := decimal.Zero

	for _, h := range holdings {
		totalValue = totalValue.Add(h.MarketValue())
		totalCost = totalCost.Add(h.TotalCost())
		dailyChange = dailyChange.Add(h.Quantity.Mul(h.Asset.DailyChange()))
	}

	gainLoss := totalValue.Sub(totalCost)
	gainLossPct := decimal.Zero
	if !totalCost.IsZero() {
		gainLossPct = gainLoss.Div(totalCost).Mul(hundred)
	}

	// Yesterday's implied value is today's value minus today's move.
	prevValue := totalValue.Sub(dailyChange)
	dailyChangePct := decimal.Zero
	if !prevValue.IsZero() {
		dailyChangePct = dailyChange.Div(prevValue).Mul(hundred)
	}

	gl := gainLoss.RoundBank(2)
	glPct := gainLossPct.RoundBank(2)
	dc := dailyChange.RoundBank(2)
	dcPct := dailyChangePct.RoundBank(2)

	return &Snapshot{
		TotalValue:         totalValue.RoundBank(2),
		TotalCost:          totalCost.RoundBank(2),
		GainLoss:           gl,
		GainLossPct:        glPct,
		GainLossDisplay:    formatDelta(gl, glPct),
		DailyChange:        dc,
		DailyChangePct:     dcPct,
		DailyChangeDisplay: formatDelta(dc, dcPct),
	}
}

// formatDelta renders "+$X.XX (+Y.YY%)". The "+" appears only for
// non-negative amounts; negative values carry their own minus sign, giving
// "$-X.XX (-Y.YY%)".
func formatDelta(amount, pct decimal.Decimal) string {
	sign := ""
	if !amount.IsNegative() {
		sign = "+"
	}
	return sign + "$" + amount.StringFixed(2) + " (" + sign + pct.StringFixed(2) + "%)"
}

// HoldingsTable builds the per-holding detail rows, sorted by market value
// descending
func (v *Valuation) HoldingsTable(portfolioID int64) ([]HoldingRow, error) {
	holdings, err := v.repo.HoldingsWithAssets(portfolioID)
	if err != nil {
		return nil, err
	}

	totalValue := decimal.Zero
	for _, h := range holdings {
		totalValue = totalValue.Add(h.MarketValue())
	}

	rows := make([]HoldingRow, 0, len(holdings))
	for _, h := range holdings {
		mv := h.MarketValue()
		tc := h.TotalCost()
		gl := mv.Sub(tc)

		glPct := decimal.Zero
		if !tc.IsZero() {
			glPct = gl.Div(tc).Mul(hundred)
		}
		weight := decimal.Zero
		if !totalValue.IsZero() {
			weight = mv.Div(totalValue).Mul(hundred)
		}

		rows = append(rows, HoldingRow{
			Ticker:       h.Asset.Ticker,
			Name:         h.Asset.Name,
			Quantity:     h.Quantity,
			AvgCost:      h.AverageCost.RoundBank(2),
			CurrentPrice: h.Asset.CurrentPrice.RoundBank(2),
			MarketValue:  mv.RoundBank(2),
			GainLoss:     gl.RoundBank(2),
			GainLossPct:  glPct.RoundBank(2),
			Weight:       weight.RoundBank(1),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].MarketValue.Cmp(rows[j].MarketValue) > 0
	})

	return rows, nil
}

// Positions maps holdings into the neutral form the allocation module
// groups by
func (v *Valuation) Positions(portfolioID int64) ([]allocation.Position, error) {
	holdings, err := v.repo.HoldingsWithAssets(portfolioID)
	if err != nil {
		return nil, err
	}

	positions := make([]allocation.Position, 0, len(holdings))
	for _, h := range holdings {
		positions = append(positions, allocation.Position{
			TypeLabel:   h.Asset.Type.Label(),
			Geography:   h.Asset.Geography,
			Sector:      h.Asset.Sector,
			MarketValue: h.MarketValue(),
		})
	}

	return positions, nil
}

// TotalValue returns the current market value of a portfolio, used by the
// nightly snapshot job
func (v *Valuation) TotalValue(portfolioID int64) (decimal.Decimal, error) {
	holdings, err := v.repo.HoldingsWithAssets(portfolioID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(h.MarketValue())
	}

	return total.RoundBank(2), nil
}
