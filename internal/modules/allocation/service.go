package allocation

import (
	"sort"

	"github.com/shopspring/decimal"
)

// chartColors is the fixed palette for allocation charts. When a breakdown
// has more groups than the palette, colors cycle.
var chartColors = []string{
	"#4f46e5", // indigo-600
	"#10b981", // emerald-500
	"#f59e0b", // amber-500
	"#ef4444", // red-500
	"#8b5cf6", // violet-500
	"#ec4899", // pink-500
	"#06b6d4", // cyan-500
	"#84cc16", // lime-500
}

var hundred = decimal.NewFromInt(100)

// ComputeBreakdown groups market value by asset-type label, descending by
// value, with percentages relative to total portfolio value. An empty
// position list yields an empty breakdown and a zero chart series.
func ComputeBreakdown(positions []Position) Breakdown {
	byType := make(map[string]decimal.Decimal)
	total := decimal.Zero

	for _, pos := range positions {
		total = total.Add(pos.MarketValue)
		byType[pos.TypeLabel] = byType[pos.TypeLabel].Add(pos.MarketValue)
	}

	labels := sortedByValueDesc(byType)

	breakdown := Breakdown{
		Chart: ChartSeries{
			Labels: []string{},
			Values: []float64{},
			Colors: []string{},
		},
	}

	for i, label := range labels {
		value := byType[label]
		pct := decimal.Zero
		if !total.IsZero() {
			pct = value.Div(total).Mul(hundred)
		}
		pctQ := pct.RoundBank(1)
		valQ := value.RoundBank(2)

		breakdown.Slices = append(breakdown.Slices, Slice{
			Label:   label,
			Value:   valQ,
			Pct:     pctQ,
			Display: pctQ.StringFixed(1) + "% ($" + valQ.StringFixed(2) + ")",
		})
		breakdown.Chart.Labels = append(breakdown.Chart.Labels, label)
		breakdown.Chart.Values = append(breakdown.Chart.Values, pctQ.InexactFloat64())
		breakdown.Chart.Colors = append(breakdown.Chart.Colors, chartColors[i%len(chartColors)])
	}

	return breakdown
}

// ComputeExposure groups market value by geography and by sector,
// percentage-only, skipping positions with an empty facet value.
func ComputeExposure(positions []Position) Exposure {
	geo := make(map[string]decimal.Decimal)
	sector := make(map[string]decimal.Decimal)
	total := decimal.Zero

	for _, pos := range positions {
		total = total.Add(pos.MarketValue)
		if pos.Geography != "" {
			geo[pos.Geography] = geo[pos.Geography].Add(pos.MarketValue)
		}
		if pos.Sector != "" {
			sector[pos.Sector] = sector[pos.Sector].Add(pos.MarketValue)
		}
	}

	toSlices := func(groups map[string]decimal.Decimal) []ExposureSlice {
		result := []ExposureSlice{}
		for _, label := range sortedByValueDesc(groups) {
			pct := decimal.Zero
			if !total.IsZero() {
				pct = groups[label].Div(total).Mul(hundred)
			}
			result = append(result, ExposureSlice{
				Label: label,
				Pct:   pct.RoundBank(1).InexactFloat64(),
			})
		}
		return result
	}

	return Exposure{
		Geography: toSlices(geo),
		Sectors:   toSlices(sector),
	}
}

// sortedByValueDesc returns group labels ordered by value descending,
// alphabetical on ties so output is deterministic.
func sortedByValueDesc(groups map[string]decimal.Decimal) []string {
	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}

	sort.SliceStable(labels, func(i, j int) bool {
		cmp := groups[labels[i]].Cmp(groups[labels[j]])
		if cmp != 0 {
			return cmp > 0
		}
		return labels[i] < labels[j]
	})

	return labels
}
