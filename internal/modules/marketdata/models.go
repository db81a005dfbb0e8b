package marketdata

import "github.com/shopspring/decimal"

// AssetType classifies an asset for allocation and education purposes
type AssetType string

const (
	TypeETF   AssetType = "etf"
	TypeStock AssetType = "stock"
	TypeBond  AssetType = "bond"
	TypeGIC   AssetType = "gic"
	TypeCash  AssetType = "cash"
)

// Label returns the display label for an asset type
func (t AssetType) Label() string {
	switch t {
	case TypeETF:
		return "ETF"
	case TypeStock:
		return "Stock"
	case TypeBond:
		return "Bond"
	case TypeGIC:
		return "GIC"
	case TypeCash:
		return "Cash"
	default:
		return string(t)
	}
}

// Valid reports whether t is a known asset type
func (t AssetType) Valid() bool {
	switch t {
	case TypeETF, TypeStock, TypeBond, TypeGIC, TypeCash:
		return true
	}
	return false
}

// Asset represents a tradable asset in the shared market-data directory.
// Prices are fixed-point decimals, stored as TEXT.
type Asset struct {
	ID            int64           `json:"id"`
	Ticker        string          `json:"ticker"`
	Name          string          `json:"name"`
	Type          AssetType       `json:"asset_type"`
	Currency      string          `json:"currency"`
	Sector        string          `json:"sector"`
	Geography     string          `json:"geography"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	PreviousClose decimal.Decimal `json:"previous_close"`
	Description   string          `json:"description"`
}

// DailyChange returns current price minus previous close, or zero when no
// previous close is known.
func (a Asset) DailyChange() decimal.Decimal {
	if a.PreviousClose.IsZero() {
		return decimal.Zero
	}
	return a.CurrentPrice.Sub(a.PreviousClose)
}

// DailyChangePct returns the daily change as a percentage of previous close
func (a Asset) DailyChangePct() decimal.Decimal {
	if a.PreviousClose.IsZero() {
		return decimal.Zero
	}
	return a.DailyChange().Div(a.PreviousClose).Mul(decimal.NewFromInt(100))
}
