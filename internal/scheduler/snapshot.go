package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/limpide/limpide/internal/events"
	"github.com/limpide/limpide/internal/modules/portfolio"
)

// SnapshotJob records every portfolio's end-of-day value into the history
// table. Runs nightly; re-running the same day overwrites that day's point.
type SnapshotJob struct {
	log        zerolog.Logger
	portfolios *portfolio.Repository
	valuation  *portfolio.Valuation
	history    *portfolio.HistoryRepository
	events     *events.Manager
}

// NewSnapshotJob creates a new snapshot job
func NewSnapshotJob(
	portfolios *portfolio.Repository,
	valuation *portfolio.Valuation,
	history *portfolio.HistoryRepository,
	eventManager *events.Manager,
	log zerolog.Logger,
) *SnapshotJob {
	return &SnapshotJob{
		log:        log.With().Str("job", "daily_snapshot").Logger(),
		portfolios: portfolios,
		valuation:  valuation,
		history:    history,
		events:     eventManager,
	}
}

// Name returns the job name
func (j *SnapshotJob) Name() string {
	return "daily_snapshot"
}

// Run values every portfolio and records today's history point.
// Per-portfolio failures are logged and skipped so one bad portfolio
// cannot block the rest.
func (j *SnapshotJob) Run() error {
	startTime := time.Now()
	date := startTime.UTC().Format("2006-01-02")

	portfolios, err := j.portfolios.ListAll()
	if err != nil {
		return err
	}

	recorded := 0
	for _, p := range portfolios {
		totalValue, err := j.valuation.TotalValue(p.ID)
		if err != nil {
			j.log.Error().Err(err).Int64("portfolio_id", p.ID).Msg("Failed to value portfolio")
			continue
		}

		if err := j.history.Upsert(p.ID, date, totalValue); err != nil {
			j.log.Error().Err(err).Int64("portfolio_id", p.ID).Msg("Failed to record snapshot")
			continue
		}
		recorded++
	}

	j.events.Emit(events.SnapshotRecorded, "scheduler", map[string]interface{}{
		"date":       date,
		"recorded":   recorded,
		"portfolios": len(portfolios),
	})

	j.log.Info().
		Int("recorded", recorded).
		Int("total", len(portfolios)).
		Dur("duration", time.Since(startTime)).
		Msg("Daily snapshot completed")

	return nil
}
