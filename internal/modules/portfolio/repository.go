package portfolio

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/limpide/limpide/internal/domain"
	"github.com/limpide/limpide/internal/modules/marketdata"
)

// Repository handles portfolio, holding and transaction database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new portfolio repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "portfolio").Logger(),
	}
}

// DB returns the underlying connection, used by the builder to open its
// build transaction.
func (r *Repository) DB() *sql.DB {
	return r.db
}

// GetByID returns a portfolio scoped to its owner
func (r *Repository) GetByID(id, userID int64) (*Portfolio, error) {
	query := `
		SELECT id, user_id, name, is_sandbox, created_at
		FROM portfolios WHERE id = ? AND user_id = ?
	`

	row := r.db.QueryRow(query, id, userID)
	p, err := scanPortfolio(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("portfolio %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio: %w", err)
	}

	return p, nil
}

// ListByUser returns a user's portfolios, newest first
func (r *Repository) ListByUser(userID int64) ([]Portfolio, error) {
	query := `
		SELECT id, user_id, name, is_sandbox, created_at
		FROM portfolios WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios: %w", err)
	}
	defer rows.Close()

	var portfolios []Portfolio
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		portfolios = append(portfolios, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolios: %w", err)
	}

	return portfolios, nil
}

// ListAll returns every portfolio, used by the nightly snapshot job
func (r *Repository) ListAll() ([]Portfolio, error) {
	query := "SELECT id, user_id, name, is_sandbox, created_at FROM portfolios"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios: %w", err)
	}
	defer rows.Close()

	var portfolios []Portfolio
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		portfolios = append(portfolios, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolios: %w", err)
	}

	return portfolios, nil
}

// GetSandbox returns the user's sandbox portfolio
func (r *Repository) GetSandbox(userID int64) (*Portfolio, error) {
	query := `
		SELECT id, user_id, name, is_sandbox, created_at
		FROM portfolios WHERE user_id = ? AND is_sandbox = 1
	`

	row := r.db.QueryRow(query, userID)
	p, err := scanPortfolio(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sandbox portfolio: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sandbox portfolio: %w", err)
	}

	return p, nil
}

// InsertTx inserts a portfolio inside the caller's transaction
func (r *Repository) InsertTx(tx *sql.Tx, p *Portfolio) error {
	res, err := tx.Exec(
		"INSERT INTO portfolios (user_id, name, is_sandbox, created_at) VALUES (?, ?, ?, ?)",
		p.UserID, p.Name, p.IsSandbox, p.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("sandbox portfolio already exists: %w", domain.ErrConflict)
		}
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}

	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get portfolio id: %w", err)
	}

	return nil
}

// InsertHoldingTx inserts a holding inside the caller's transaction
func (r *Repository) InsertHoldingTx(tx *sql.Tx, h *Holding) error {
	res, err := tx.Exec(
		"INSERT INTO holdings (portfolio_id, asset_id, quantity, average_cost) VALUES (?, ?, ?, ?)",
		h.PortfolioID, h.AssetID, h.Quantity.String(), h.AverageCost.String(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("holding already exists: %w", domain.ErrConflict)
		}
		return fmt.Errorf("failed to insert holding: %w", err)
	}

	h.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get holding id: %w", err)
	}

	return nil
}

// InsertTransactionTx inserts a transaction inside the caller's transaction
func (r *Repository) InsertTransactionTx(tx *sql.Tx, t *Transaction) error {
	res, err := tx.Exec(
		`INSERT INTO transactions (portfolio_id, asset_id, transaction_type, quantity, price, fees, executed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.PortfolioID, t.AssetID, t.Type,
		t.Quantity.String(), t.Price.String(), t.Fees.String(),
		t.ExecutedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	t.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get transaction id: %w", err)
	}

	return nil
}

// HoldingsWithAssets returns a portfolio's holdings joined with their assets
func (r *Repository) HoldingsWithAssets(portfolioID int64) ([]HoldingWithAsset, error) {
	query := `
		SELECT h.id, h.portfolio_id, h.asset_id, h.quantity, h.average_cost,
		       a.id, a.ticker, a.name, a.asset_type, a.currency, a.sector, a.geography,
		       a.current_price, a.previous_close, a.description
		FROM holdings h
		JOIN assets a ON a.id = h.asset_id
		WHERE h.portfolio_id = ?
		ORDER BY a.ticker
	`

	rows, err := r.db.Query(query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var holdings []HoldingWithAsset
	for rows.Next() {
		var h HoldingWithAsset
		var quantity, avgCost, assetType, currentPrice, previousClose string

		err := rows.Scan(
			&h.Holding.ID, &h.PortfolioID, &h.AssetID, &quantity, &avgCost,
			&h.Asset.ID, &h.Asset.Ticker, &h.Asset.Name, &assetType,
			&h.Asset.Currency, &h.Asset.Sector, &h.Asset.Geography,
			&currentPrice, &previousClose, &h.Asset.Description,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}

		h.Asset.Type = marketdata.AssetType(assetType)
		if h.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, fmt.Errorf("bad quantity %q: %w", quantity, err)
		}
		if h.AverageCost, err = decimal.NewFromString(avgCost); err != nil {
			return nil, fmt.Errorf("bad average_cost %q: %w", avgCost, err)
		}
		if h.Asset.CurrentPrice, err = decimal.NewFromString(currentPrice); err != nil {
			return nil, fmt.Errorf("bad current_price %q: %w", currentPrice, err)
		}
		if h.Asset.PreviousClose, err = decimal.NewFromString(previousClose); err != nil {
			return nil, fmt.Errorf("bad previous_close %q: %w", previousClose, err)
		}

		holdings = append(holdings, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}

	return holdings, nil
}

// Transactions returns a portfolio's transactions, newest first
func (r *Repository) Transactions(portfolioID int64, limit int) ([]Transaction, error) {
	query := `
		SELECT t.id, t.portfolio_id, t.asset_id, a.ticker, t.transaction_type,
		       t.quantity, t.price, t.fees, t.executed_at
		FROM transactions t
		JOIN assets a ON a.id = t.asset_id
		WHERE t.portfolio_id = ?
		ORDER BY t.executed_at DESC, t.id DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, portfolioID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []Transaction
	for rows.Next() {
		var t Transaction
		var quantity, price, fees, executedAt string

		err := rows.Scan(
			&t.ID, &t.PortfolioID, &t.AssetID, &t.Ticker, &t.Type,
			&quantity, &price, &fees, &executedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		if t.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, fmt.Errorf("bad quantity %q: %w", quantity, err)
		}
		if t.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("bad price %q: %w", price, err)
		}
		if t.Fees, err = decimal.NewFromString(fees); err != nil {
			return nil, fmt.Errorf("bad fees %q: %w", fees, err)
		}
		t.ExecutedAt, _ = time.Parse(time.RFC3339, executedAt)

		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// scanner abstracts sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPortfolio(row scanner) (*Portfolio, error) {
	var p Portfolio
	var createdAt string

	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.IsSandbox, &createdAt)
	if err != nil {
		return nil, err
	}

	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &p, nil
}

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint error
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
