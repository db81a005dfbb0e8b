package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"

	"github.com/limpide/limpide/internal/domain"
	"github.com/limpide/limpide/internal/modules/accounts"
	"github.com/limpide/limpide/internal/modules/allocation"
	"github.com/limpide/limpide/internal/modules/education"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "limpide",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleSystemStatus handles system status requests
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := map[string]interface{}{
		"status": "running",
		"memory": map[string]interface{}{
			"alloc_mb":       m.Alloc / 1024 / 1024,
			"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
			"sys_mb":         m.Sys / 1024 / 1024,
			"num_gc":         m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleDashboard composes the home view: sandbox valuation, allocation
// breakdown, exposures, clarity score and the next uncompleted lesson.
// Users without a sandbox portfolio yet get has_portfolio=false.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := accounts.UserFromContext(r.Context())

	lang := education.NormalizeLanguage(r.URL.Query().Get("lang"))
	if r.URL.Query().Get("lang") == "" {
		if profile, err := s.cfg.Profiles.GetOrCreate(user.ID); err == nil {
			lang = education.NormalizeLanguage(profile.PreferredLanguage)
		}
	}

	next, err := s.cfg.Learning.NextLesson(user.ID, lang)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sandbox, err := s.cfg.Portfolios.GetSandbox(user.ID)
	if errors.Is(err, domain.ErrNotFound) {
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"has_portfolio": false,
			"next_lesson":   next,
		})
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	snapshot, err := s.cfg.Valuation.Snapshot(sandbox.ID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	positions, err := s.cfg.Valuation.Positions(sandbox.ID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	clarity, err := s.cfg.Clarity.Score(user.ID, sandbox.ID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"has_portfolio": true,
		"portfolio":     sandbox,
		"snapshot":      snapshot,
		"allocation":    allocation.ComputeBreakdown(positions),
		"exposure":      allocation.ComputeExposure(positions),
		"clarity":       clarity,
		"next_lesson":   next,
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
