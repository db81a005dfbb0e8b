package portfolio

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// HistoryRepository handles the daily portfolio value series backing the
// performance chart
type HistoryRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, log zerolog.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:  db,
		log: log.With().Str("repo", "history").Logger(),
	}
}

// Upsert records a portfolio's value for a date, replacing any prior value
// for the same day
func (r *HistoryRepository) Upsert(portfolioID int64, date string, totalValue decimal.Decimal) error {
	query := `
		INSERT INTO portfolio_history (portfolio_id, date, total_value, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(portfolio_id, date) DO UPDATE SET total_value = excluded.total_value
	`

	_, err := r.db.Exec(query,
		portfolioID, date, totalValue.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert history point: %w", err)
	}

	return nil
}

// GetHistory returns up to days points for a portfolio in ascending date
// order, chart-ready
func (r *HistoryRepository) GetHistory(portfolioID int64, days int) ([]HistoryPoint, error) {
	query := `
		SELECT date, total_value FROM (
			SELECT date, total_value
			FROM portfolio_history
			WHERE portfolio_id = ?
			ORDER BY date DESC
			LIMIT ?
		) ORDER BY date ASC
	`

	rows, err := r.db.Query(query, portfolioID, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio history: %w", err)
	}
	defer rows.Close()

	var points []HistoryPoint
	for rows.Next() {
		var point HistoryPoint
		var totalValue string
		if err := rows.Scan(&point.Date, &totalValue); err != nil {
			return nil, fmt.Errorf("failed to scan history point: %w", err)
		}
		if point.TotalValue, err = decimal.NewFromString(totalValue); err != nil {
			return nil, fmt.Errorf("bad total_value %q: %w", totalValue, err)
		}
		points = append(points, point)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history points: %w", err)
	}

	return points, nil
}

// GetValueChange summarizes value change across a history window. Fewer
// than two points yields all zeros.
func (r *HistoryRepository) GetValueChange(portfolioID int64, days int) (*ValueChange, error) {
	points, err := r.GetHistory(portfolioID, days)
	if err != nil {
		return nil, err
	}

	if len(points) < 2 {
		return &ValueChange{
			Change:     decimal.Zero,
			ChangePct:  decimal.Zero,
			StartValue: decimal.Zero,
			EndValue:   decimal.Zero,
		}, nil
	}

	oldest := points[0]
	latest := points[len(points)-1]

	change := latest.TotalValue.Sub(oldest.TotalValue)
	changePct := decimal.Zero
	if !oldest.TotalValue.IsZero() {
		changePct = change.Div(oldest.TotalValue).Mul(hundred)
	}

	return &ValueChange{
		Change:     change.RoundBank(2),
		ChangePct:  changePct.RoundBank(2),
		Days:       len(points),
		StartValue: oldest.TotalValue,
		EndValue:   latest.TotalValue,
	}, nil
}
