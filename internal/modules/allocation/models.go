package allocation

import "github.com/shopspring/decimal"

// Line is one target allocation line: put Weight of the portfolio into Ticker.
type Line struct {
	Ticker string
	Weight decimal.Decimal
}

// Position is the neutral valuation input for breakdowns: one holding's
// market value plus the asset facets it can be grouped by.
type Position struct {
	TypeLabel   string
	Geography   string
	Sector      string
	MarketValue decimal.Decimal
}

// Slice is one group of the asset-type breakdown.
type Slice struct {
	Label   string          `json:"label"`
	Value   decimal.Decimal `json:"value"`
	Pct     decimal.Decimal `json:"pct"`
	Display string          `json:"display"`
}

// ChartSeries is the chart-ready form of a breakdown: parallel arrays of
// labels, percentages and palette colors.
type ChartSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Colors []string  `json:"colors"`
}

// Breakdown is the asset-type breakdown plus its chart series.
type Breakdown struct {
	Slices []Slice     `json:"breakdown"`
	Chart  ChartSeries `json:"chart"`
}

// ExposureSlice is one group of a percentage-only exposure breakdown.
type ExposureSlice struct {
	Label string  `json:"label"`
	Pct   float64 `json:"pct"`
}

// Exposure groups market value by geography and sector.
type Exposure struct {
	Geography []ExposureSlice `json:"geography"`
	Sectors   []ExposureSlice `json:"sectors"`
}
