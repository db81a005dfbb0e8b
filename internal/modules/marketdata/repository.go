package marketdata

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/limpide/limpide/internal/domain"
	"github.com/limpide/limpide/internal/events"
)

// Repository handles asset database operations
type Repository struct {
	db     *sql.DB
	events *events.Manager
	log    zerolog.Logger
}

// NewRepository creates a new asset repository
func NewRepository(db *sql.DB, eventManager *events.Manager, log zerolog.Logger) *Repository {
	return &Repository{
		db:     db,
		events: eventManager,
		log:    log.With().Str("repo", "asset").Logger(),
	}
}

const assetColumns = `id, ticker, name, asset_type, currency, sector, geography,
	current_price, previous_close, description`

// GetByTicker returns an asset by ticker
func (r *Repository) GetByTicker(ticker string) (*Asset, error) {
	query := "SELECT " + assetColumns + " FROM assets WHERE ticker = ?"

	row := r.db.QueryRow(query, strings.ToUpper(strings.TrimSpace(ticker)))
	asset, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("asset %s: %w", ticker, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query asset by ticker: %w", err)
	}

	return asset, nil
}

// GetByID returns an asset by primary key
func (r *Repository) GetByID(id int64) (*Asset, error) {
	query := "SELECT " + assetColumns + " FROM assets WHERE id = ?"

	row := r.db.QueryRow(query, id)
	asset, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("asset %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query asset by id: %w", err)
	}

	return asset, nil
}

// List returns all assets ordered by ticker
func (r *Repository) List() ([]Asset, error) {
	query := "SELECT " + assetColumns + " FROM assets ORDER BY ticker"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, *asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assets: %w", err)
	}

	return assets, nil
}

// Upsert inserts or updates an asset keyed by ticker
func (r *Repository) Upsert(asset *Asset) error {
	query := `
		INSERT INTO assets (ticker, name, asset_type, currency, sector, geography,
			current_price, previous_close, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET
			name = excluded.name,
			asset_type = excluded.asset_type,
			currency = excluded.currency,
			sector = excluded.sector,
			geography = excluded.geography,
			current_price = excluded.current_price,
			previous_close = excluded.previous_close,
			description = excluded.description
	`

	_, err := r.db.Exec(query,
		asset.Ticker,
		asset.Name,
		string(asset.Type),
		asset.Currency,
		asset.Sector,
		asset.Geography,
		asset.CurrentPrice.String(),
		asset.PreviousClose.String(),
		asset.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert asset: %w", err)
	}

	return nil
}

// GetOrCreate returns the asset for a ticker, creating a cash placeholder
// priced at 1.00 when the ticker is unknown. The fallback is logged as a
// warning: a missing ticker means the seed catalog is misconfigured.
func (r *Repository) GetOrCreate(ticker string) (*Asset, error) {
	asset, err := r.GetByTicker(ticker)
	if err == nil {
		return asset, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	r.log.Warn().
		Str("ticker", ticker).
		Msg("Asset missing from directory, creating placeholder at 1.00")

	placeholder := &Asset{
		Ticker:        strings.ToUpper(strings.TrimSpace(ticker)),
		Name:          ticker,
		Type:          TypeCash,
		Currency:      "CAD",
		CurrentPrice:  decimal.RequireFromString("1.00"),
		PreviousClose: decimal.RequireFromString("1.00"),
	}
	if err := r.Upsert(placeholder); err != nil {
		return nil, err
	}

	r.events.Emit(events.AssetAutoCreated, "marketdata", map[string]interface{}{
		"ticker": placeholder.Ticker,
	})

	return r.GetByTicker(ticker)
}

// scanner abstracts sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAsset(row scanner) (*Asset, error) {
	var asset Asset
	var assetType, currentPrice, previousClose string

	err := row.Scan(
		&asset.ID,
		&asset.Ticker,
		&asset.Name,
		&assetType,
		&asset.Currency,
		&asset.Sector,
		&asset.Geography,
		&currentPrice,
		&previousClose,
		&asset.Description,
	)
	if err != nil {
		return nil, err
	}

	asset.Type = AssetType(assetType)

	asset.CurrentPrice, err = decimal.NewFromString(currentPrice)
	if err != nil {
		return nil, fmt.Errorf("bad current_price %q: %w", currentPrice, err)
	}
	asset.PreviousClose, err = decimal.NewFromString(previousClose)
	if err != nil {
		return nil, fmt.Errorf("bad previous_close %q: %w", previousClose, err)
	}

	return &asset, nil
}
