package portfolio

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/limpide/limpide/internal/domain"
	"github.com/limpide/limpide/internal/events"
	"github.com/limpide/limpide/internal/modules/accounts"
	"github.com/limpide/limpide/internal/modules/allocation"
	"github.com/limpide/limpide/internal/modules/marketdata"
)

// SeedCapital is the simulated amount invested into every sandbox portfolio.
var SeedCapital = decimal.NewFromInt(10000)

// boughtLowerFactor simulates having bought 3% below the current price, so
// fresh sandbox portfolios show a small unrealized gain.
var boughtLowerFactor = decimal.RequireFromString("0.97")

// SandboxName is the display name of the generated portfolio.
const SandboxName = "My Sandbox Portfolio"

// Builder materializes sandbox portfolios from a user's risk tier.
type Builder struct {
	portfolios *Repository
	history    *HistoryRepository
	assets     *marketdata.Repository
	profiles   *accounts.ProfileRepository
	events     *events.Manager
	log        zerolog.Logger
}

// NewBuilder creates a new sandbox portfolio builder
func NewBuilder(
	portfolios *Repository,
	history *HistoryRepository,
	assets *marketdata.Repository,
	profiles *accounts.ProfileRepository,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Builder {
	return &Builder{
		portfolios: portfolios,
		history:    history,
		assets:     assets,
		profiles:   profiles,
		events:     eventManager,
		log:        log.With().Str("service", "sandbox_builder").Logger(),
	}
}

// CreateSandbox builds the user's sandbox portfolio: one holding and one
// matching buy transaction per allocation line of the user's risk tier.
// Idempotent: if a sandbox portfolio already exists the call returns it
// unchanged and performs zero writes. All writes happen in one transaction;
// a concurrent first build loses on the unique index and also degrades to
// returning the existing portfolio.
func (b *Builder) CreateSandbox(userID int64) (*Portfolio, error) {
	existing, err := b.portfolios.GetSandbox(userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	profile, err := b.profiles.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	tier := accounts.RiskTier(profile.RiskScore)
	lines := allocation.Targets(tier)

	// Resolve assets before opening the transaction; missing tickers are
	// created as placeholders by the directory.
	assets := make(map[string]*marketdata.Asset, len(lines))
	for _, line := range lines {
		asset, err := b.assets.GetOrCreate(line.Ticker)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve asset %s: %w", line.Ticker, err)
		}
		assets[line.Ticker] = asset
	}

	tx, err := b.portfolios.DB().Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	p := &Portfolio{
		UserID:    userID,
		Name:      SandboxName,
		IsSandbox: true,
		CreatedAt: now,
	}

	if err := b.portfolios.InsertTx(tx, p); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Lost the race to a concurrent build.
			_ = tx.Rollback()
			return b.portfolios.GetSandbox(userID)
		}
		return nil, err
	}

	totalValue := decimal.Zero
	for _, line := range lines {
		asset := assets[line.Ticker]

		amount := SeedCapital.Mul(line.Weight)
		quantity := amount.Div(asset.CurrentPrice).RoundBank(4)
		avgCost := asset.CurrentPrice.Mul(boughtLowerFactor).RoundBank(2)

		holding := &Holding{
			PortfolioID: p.ID,
			AssetID:     asset.ID,
			Quantity:    quantity,
			AverageCost: avgCost,
		}
		if err := b.portfolios.InsertHoldingTx(tx, holding); err != nil {
			return nil, err
		}

		transaction := &Transaction{
			PortfolioID: p.ID,
			AssetID:     asset.ID,
			Type:        "buy",
			Quantity:    quantity,
			Price:       avgCost,
			Fees:        decimal.Zero,
			ExecutedAt:  now,
		}
		if err := b.portfolios.InsertTransactionTx(tx, transaction); err != nil {
			return nil, err
		}

		totalValue = totalValue.Add(quantity.Mul(asset.CurrentPrice))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sandbox build: %w", err)
	}

	// First history point so the performance chart is never empty.
	if err := b.history.Upsert(p.ID, now.Format("2006-01-02"), totalValue); err != nil {
		b.log.Warn().Err(err).Int64("portfolio_id", p.ID).Msg("Failed to record initial history point")
	}

	b.events.Emit(events.PortfolioCreated, "portfolio", map[string]interface{}{
		"portfolio_id": p.ID,
		"user_id":      userID,
		"tier":         string(tier),
		"holdings":     len(lines),
	})

	b.log.Info().
		Int64("portfolio_id", p.ID).
		Int64("user_id", userID).
		Str("tier", string(tier)).
		Msg("Sandbox portfolio created")

	return p, nil
}
