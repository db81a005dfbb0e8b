package portfolio

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/limpide/limpide/internal/domain"
	"github.com/limpide/limpide/internal/modules/accounts"
	"github.com/limpide/limpide/internal/modules/allocation"
)

const transactionPageSize = 20

// Handler handles portfolio HTTP requests
type Handler struct {
	repo      *Repository
	builder   *Builder
	valuation *Valuation
	clarity   *Clarity
	history   *HistoryRepository
	log       zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(
	repo *Repository,
	builder *Builder,
	valuation *Valuation,
	clarity *Clarity,
	history *HistoryRepository,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		repo:      repo,
		builder:   builder,
		valuation: valuation,
		clarity:   clarity,
		history:   history,
		log:       log.With().Str("handler", "portfolio").Logger(),
	}
}

// Routes returns the authenticated portfolio routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleList)
	r.Post("/sandbox", h.HandleCreateSandbox)
	r.Get("/{id}", h.HandleDetail)
	r.Get("/{id}/history", h.HandleHistory)
	return r
}

// HandleList returns the caller's portfolios
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := accounts.UserFromContext(r.Context())

	portfolios, err := h.repo.ListByUser(user.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if portfolios == nil {
		portfolios = []Portfolio{}
	}

	h.writeJSON(w, http.StatusOK, portfolios)
}

// HandleCreateSandbox builds the caller's sandbox portfolio. Repeat calls
// return the existing portfolio with 200 instead of creating another.
func (h *Handler) HandleCreateSandbox(w http.ResponseWriter, r *http.Request) {
	user := accounts.UserFromContext(r.Context())

	p, err := h.builder.CreateSandbox(user.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, p)
}

// HandleDetail returns the full detail view: valuation snapshot, holdings
// table, allocation breakdown, exposures, clarity score and recent
// transactions
func (h *Handler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	user := accounts.UserFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid portfolio id")
		return
	}

	p, err := h.repo.GetByID(id, user.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	snapshot, err := h.valuation.Snapshot(p.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	holdings, err := h.valuation.HoldingsTable(p.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if holdings == nil {
		holdings = []HoldingRow{}
	}

	positions, err := h.valuation.Positions(p.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	clarityScore, err := h.clarity.Score(user.ID, p.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	transactions, err := h.repo.Transactions(p.ID, transactionPageSize)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if transactions == nil {
		transactions = []Transaction{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"portfolio":    p,
		"snapshot":     snapshot,
		"holdings":     holdings,
		"allocation":   allocation.ComputeBreakdown(positions),
		"exposure":     allocation.ComputeExposure(positions),
		"clarity":      clarityScore,
		"transactions": transactions,
	})
}

// HandleHistory returns the portfolio value series for the performance
// chart. Window defaults to 30 days, capped at 365.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	user := accounts.UserFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid portfolio id")
		return
	}

	// Ownership check before touching history.
	p, err := h.repo.GetByID(id, user.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "invalid days parameter")
			return
		}
		days = parsed
	}
	if days > 365 {
		days = 365
	}

	points, err := h.history.GetHistory(p.ID, days)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if points == nil {
		points = []HistoryPoint{}
	}

	change, err := h.history.GetValueChange(p.ID, days)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"points": points,
		"change": change,
	})
}

// Helper methods

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		h.writeError(w, http.StatusConflict, err.Error())
	default:
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}
