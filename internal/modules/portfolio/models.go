package portfolio

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/limpide/limpide/internal/modules/marketdata"
)

// Portfolio belongs to exactly one user. IsSandbox marks the auto-generated
// simulation portfolio; at most one exists per user.
type Portfolio struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	IsSandbox bool      `json:"is_sandbox"`
	CreatedAt time.Time `json:"created_at"`
}

// Holding is a position of an asset within a portfolio, unique per
// (portfolio, asset). Quantity carries 4 decimal places, average cost 2.
// Holdings are created at sandbox-build time and never mutated afterward.
type Holding struct {
	ID          int64           `json:"id"`
	PortfolioID int64           `json:"portfolio_id"`
	AssetID     int64           `json:"asset_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
}

// HoldingWithAsset joins a holding with its asset for valuation.
type HoldingWithAsset struct {
	Holding
	Asset marketdata.Asset `json:"asset"`
}

// MarketValue returns quantity times current price
func (h HoldingWithAsset) MarketValue() decimal.Decimal {
	return h.Quantity.Mul(h.Asset.CurrentPrice)
}

// TotalCost returns quantity times average cost
func (h HoldingWithAsset) TotalCost() decimal.Decimal {
	return h.Quantity.Mul(h.AverageCost)
}

// Transaction is an immutable buy/sell record, one per holding at build
// time. The ledger is append-only.
type Transaction struct {
	ID          int64           `json:"id"`
	PortfolioID int64           `json:"portfolio_id"`
	AssetID     int64           `json:"asset_id"`
	Ticker      string          `json:"ticker"`
	Type        string          `json:"transaction_type"` // buy or sell
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Fees        decimal.Decimal `json:"fees"`
	ExecutedAt  time.Time       `json:"executed_at"`
}

// Snapshot is the computed portfolio-level valuation. All currency figures
// and percentages are quantized to 2 decimal places for display.
type Snapshot struct {
	TotalValue         decimal.Decimal `json:"total_value"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	GainLoss           decimal.Decimal `json:"gain_loss"`
	GainLossPct        decimal.Decimal `json:"gain_loss_pct"`
	GainLossDisplay    string          `json:"gain_loss_display"`
	DailyChange        decimal.Decimal `json:"daily_change"`
	DailyChangePct     decimal.Decimal `json:"daily_change_pct"`
	DailyChangeDisplay string          `json:"daily_change_display"`
}

// HoldingRow is one row of the holdings detail table.
type HoldingRow struct {
	Ticker       string          `json:"ticker"`
	Name         string          `json:"name"`
	Quantity     decimal.Decimal `json:"quantity"`
	AvgCost      decimal.Decimal `json:"avg_cost"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	MarketValue  decimal.Decimal `json:"market_value"`
	GainLoss     decimal.Decimal `json:"gain_loss"`
	GainLossPct  decimal.Decimal `json:"gain_loss_pct"`
	Weight       decimal.Decimal `json:"weight"`
}

// ClarityScore reports how many of the held asset types the user has
// completed the required lessons for.
type ClarityScore struct {
	Score   int `json:"score"` // percent
	Learned int `json:"learned"`
	Total   int `json:"total"`
}

// HistoryPoint is one day of recorded portfolio value.
type HistoryPoint struct {
	Date       string          `json:"date"` // YYYY-MM-DD
	TotalValue decimal.Decimal `json:"total_value"`
}

// ValueChange summarizes portfolio value change over a history window.
type ValueChange struct {
	Change     decimal.Decimal `json:"change"`
	ChangePct  decimal.Decimal `json:"change_pct"`
	Days       int             `json:"days"`
	StartValue decimal.Decimal `json:"start_value"`
	EndValue   decimal.Decimal `json:"end_value"`
}
