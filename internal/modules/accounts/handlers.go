package accounts

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/limpide/limpide/internal/domain"
)

// Handler handles accounts HTTP requests
type Handler struct {
	service  *Service
	profiles *ProfileRepository
	log      zerolog.Logger
}

// NewHandler creates a new accounts handler
func NewHandler(service *Service, profiles *ProfileRepository, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		profiles: profiles,
		log:      log.With().Str("handler", "accounts").Logger(),
	}
}

// Routes returns the authenticated accounts routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/profile", h.HandleGetProfile)
	r.Put("/profile", h.HandleUpdateProfile)
	r.Post("/profile/onboarding", h.HandleCompleteOnboarding)
	r.Get("/quiz/questions", h.HandleGetQuestions)
	r.Post("/quiz/answers", h.HandleSubmitAnswer)
	r.Get("/quiz/results", h.HandleGetResults)
	return r
}

// HandleRegister creates or resolves a user and returns a session token.
// Mounted outside the authenticated group.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, token, err := h.service.Register(req.Email)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// HandleGetProfile returns the caller's profile
func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	profile, err := h.profiles.GetOrCreate(user.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, profile)
}

// HandleUpdateProfile updates province and preferred language
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req struct {
		Province          string `json:"province"`
		PreferredLanguage string `json:"preferred_language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	profile, err := h.profiles.GetOrCreate(user.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if req.Province != "" {
		profile.Province = req.Province
	}
	if req.PreferredLanguage != "" {
		profile.PreferredLanguage = req.PreferredLanguage
	}

	if err := h.profiles.Update(profile); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, profile)
}

// HandleCompleteOnboarding marks onboarding as finished
func (h *Handler) HandleCompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	profile, err := h.profiles.GetOrCreate(user.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	profile.OnboardingCompleted = true
	if err := h.profiles.Update(profile); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, profile)
}

// HandleGetQuestions returns the risk quiz questions in order
func (h *Handler) HandleGetQuestions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, QuizQuestions)
}

// HandleSubmitAnswer stores one quiz answer (latest answer wins)
func (h *Handler) HandleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req struct {
		QuestionKey string `json:"question_key"`
		Value       int    `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.service.SubmitAnswer(user.ID, req.QuestionKey, req.Value); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleGetResults computes the risk score and persists it on the profile
func (h *Handler) HandleGetResults(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	result, err := h.service.Results(user.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
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
