package education

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/limpide/limpide/internal/domain"
	"github.com/limpide/limpide/internal/modules/accounts"
)

// Handler handles education HTTP requests
type Handler struct {
	service    *Service
	curriculum *Curriculum
	repo       *Repository
	profiles   *accounts.ProfileRepository
	log        zerolog.Logger
}

// NewHandler creates a new education handler
func NewHandler(
	service *Service,
	curriculum *Curriculum,
	repo *Repository,
	profiles *accounts.ProfileRepository,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		service:    service,
		curriculum: curriculum,
		repo:       repo,
		profiles:   profiles,
		log:        log.With().Str("handler", "education").Logger(),
	}
}

// Routes returns the authenticated education routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/path", h.HandlePath)
	r.Get("/next", h.HandleNextLesson)
	r.Get("/glossary", h.HandleGlossary)
	r.Get("/lessons/{id}", h.HandleLesson)
	r.Post("/lessons/{id}/complete", h.HandleToggleComplete)
	r.Post("/lessons/{id}/quiz/start", h.HandleQuizStart)
	r.Post("/lessons/{id}/quiz/answers", h.HandleQuizAnswer)
	r.Post("/lessons/{id}/quiz/finish", h.HandleQuizFinish)
	return r
}

// language resolves the curriculum language: explicit ?lang= wins, then the
// caller's preferred language, then English.
func (h *Handler) language(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return NormalizeLanguage(lang)
	}

	user := accounts.UserFromContext(r.Context())
	profile, err := h.profiles.GetOrCreate(user.ID)
	if err != nil {
		h.log.Warn().Err(err).Int64("user_id", user.ID).Msg("Failed to load profile for language")
		return defaultLanguage
	}

	return NormalizeLanguage(profile.PreferredLanguage)
}

// HandlePath returns the learning path overview with per-level progress
func (h *Handler) HandlePath(w http.ResponseWriter, r *http.Request) {
	user := accounts.UserFromContext(r.Context())

	summary, err := h.service.ProgressSummary(user.ID, h.language(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

// HandleNextLesson returns the first uncompleted lesson
func (h *Handler) HandleNextLesson(w http.ResponseWriter, r *http.Request) {
	user := accounts.UserFromContext(r.Context())

	next, err := h.service.NextLesson(user.ID, h.language(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"next_lesson": next})
}

// HandleGlossary returns the curriculum glossary
func (h *Handler) HandleGlossary(w http.ResponseWriter, r *http.Request) {
	entries, err := h.curriculum.Glossary(h.language(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, entries)
}

// HandleLesson returns one rendered lesson with the caller's completion
// state and quiz availability
func (h *Handler) HandleLesson(w http.ResponseWriter, r *http.Request) {
	user := accounts.UserFromContext(r.Context())
	lessonID := chi.URLParam(r, "id")
	lang := h.language(r)

	lesson, err := h.curriculum.Lesson(lang, lessonID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	isCompleted, err := h.repo.IsCompleted(user.ID, lessonID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	hasQuiz := true
	if _, err := h.curriculum.Quiz(lang, lessonID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			h.writeServiceError(w, err)
			return
		}
		hasQuiz = false
	}

	var completion *QuizCompletion
	if qc, err := h.repo.GetCompletion(user.ID, lessonID); err == nil {
		completion = qc
	} else if !errors.Is(err, domain.ErrNotFound) {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"lesson":          lesson,
		"is_completed":    isCompleted,
		"has_quiz":        hasQuiz,
		"quiz_completion": completion,
	})
}

// HandleToggleComplete flips the lesson's completion state
func (h *Handler) HandleToggleComplete(w http.ResponseWriter, r *http.Request) {
	user := accounts.UserFromContext(r.Context())
	lessonID := chi.URLParam(r, "id")

	completed, err := h.service.ToggleComplete(user.ID, h.language(r), lessonID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"lesson_id":    lessonID,
		"is_completed": completed,
	})
}

// HandleQuizStart begins a fresh quiz attempt
func (h *Handler) HandleQuizStart(w http.ResponseWriter, r *http.Request) {
	user := accounts.UserFromContext(r.Context())
	lessonID := chi.URLParam(r, "id")

	quiz, err := h.service.StartQuiz(user.ID, h.language(r), lessonID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, quiz)
}

// HandleQuizAnswer grades and stores one answer
func (h *Handler) HandleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	user := accounts.UserFromContext(r.Context())
	lessonID := chi.URLParam(r, "id")

	var req struct {
		QuestionID string `json:"question_id"`
		ChoiceID   string `json:"choice_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.service.Answer(user.ID, h.language(r), lessonID, req.QuestionID, req.ChoiceID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleQuizFinish scores the attempt and marks the lesson complete
func (h *Handler) HandleQuizFinish(w http.ResponseWriter, r *http.Request) {
	user := accounts.UserFromContext(r.Context())
	lessonID := chi.URLParam(r, "id")

	result, err := h.service.FinishQuiz(user.ID, h.language(r), lessonID)
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
