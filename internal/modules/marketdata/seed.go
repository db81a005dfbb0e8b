package marketdata

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// SeedAssets is the catalog of Canadian assets the sandbox portfolios draw
// from. Prices are fixed seed data, not a market feed.
var SeedAssets = []Asset{
	{
		Ticker:        "XEQT.TO",
		Name:          "iShares Core Equity ETF Portfolio",
		Type:          TypeETF,
		Currency:      "CAD",
		Sector:        "Multi-sector",
		Geography:     "Global",
		CurrentPrice:  d("28.50"),
		PreviousClose: d("28.35"),
		Description:   "All-in-one global equity ETF with broad diversification.",
	},
	{
		Ticker:        "XBAL.TO",
		Name:          "iShares Core Balanced ETF Portfolio",
		Type:          TypeETF,
		Currency:      "CAD",
		Sector:        "Multi-sector",
		Geography:     "Global",
		CurrentPrice:  d("27.10"),
		PreviousClose: d("27.00"),
		Description:   "Balanced mix of stocks and bonds for moderate investors.",
	},
	{
		Ticker:        "ZAG.TO",
		Name:          "BMO Aggregate Bond Index ETF",
		Type:          TypeETF,
		Currency:      "CAD",
		Sector:        "Fixed income",
		Geography:     "Canada",
		CurrentPrice:  d("14.20"),
		PreviousClose: d("14.18"),
		Description:   "Broad Canadian bond market exposure.",
	},
	{
		Ticker:        "VFV.TO",
		Name:          "Vanguard S&P 500 Index ETF",
		Type:          TypeETF,
		Currency:      "CAD",
		Sector:        "Multi-sector",
		Geography:     "United States",
		CurrentPrice:  d("118.75"),
		PreviousClose: d("118.10"),
		Description:   "Tracks the S&P 500 index in Canadian dollars.",
	},
	{
		Ticker:        "RY.TO",
		Name:          "Royal Bank of Canada",
		Type:          TypeStock,
		Currency:      "CAD",
		Sector:        "Financials",
		Geography:     "Canada",
		CurrentPrice:  d("145.30"),
		PreviousClose: d("144.80"),
		Description:   "Canada's largest bank by market capitalization.",
	},
	{
		Ticker:        "SHOP.TO",
		Name:          "Shopify Inc.",
		Type:          TypeStock,
		Currency:      "CAD",
		Sector:        "Technology",
		Geography:     "Canada",
		CurrentPrice:  d("105.60"),
		PreviousClose: d("106.20"),
		Description:   "E-commerce platform headquartered in Ottawa.",
	},
	{
		Ticker:        "CASH.TO",
		Name:          "Cash Reserve",
		Type:          TypeCash,
		Currency:      "CAD",
		Sector:        "",
		Geography:     "Canada",
		CurrentPrice:  d("1.00"),
		PreviousClose: d("1.00"),
		Description:   "Cash or cash-equivalent position.",
	},
}

// Seed writes the asset catalog with update-or-create semantics
func Seed(repo *Repository, log zerolog.Logger) error {
	for i := range SeedAssets {
		if err := repo.Upsert(&SeedAssets[i]); err != nil {
			return err
		}
	}

	log.Info().Int("count", len(SeedAssets)).Msg("Asset catalog seeded")
	return nil
}
