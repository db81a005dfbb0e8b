package education

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/limpide/limpide/internal/domain"
	"github.com/limpide/limpide/internal/events"
)

// Service implements the learning path: progress rollups, lesson
// completion and the quiz flow.
type Service struct {
	curriculum *Curriculum
	repo       *Repository
	events     *events.Manager
	log        zerolog.Logger
}

// NewService creates a new education service
func NewService(curriculum *Curriculum, repo *Repository, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		curriculum: curriculum,
		repo:       repo,
		events:     eventManager,
		log:        log.With().Str("service", "education").Logger(),
	}
}

// ProgressSummary builds the learning path overview: totals, percentage and
// a per-level rollup
func (s *Service) ProgressSummary(userID int64, lang string) (*ProgressSummary, error) {
	idx, err := s.curriculum.Index(lang)
	if err != nil {
		return nil, err
	}

	titles, err := s.curriculum.LessonTitles(lang)
	if err != nil {
		return nil, err
	}

	completed, err := s.repo.CompletedLessonIDs(userID)
	if err != nil {
		return nil, err
	}

	scores, err := s.repo.QuizScores(userID)
	if err != nil {
		return nil, err
	}

	summary := &ProgressSummary{
		CompletedIDs: []string{},
		QuizScores:   scores,
	}

	for _, level := range idx.Levels {
		lp := LevelProgress{
			Level:   level.Level,
			Title:   level.Title,
			Lessons: make([]LessonRef, 0, len(level.Lessons)),
			Total:   len(level.Lessons),
		}

		for _, lessonID := range level.Lessons {
			lp.Lessons = append(lp.Lessons, LessonRef{ID: lessonID, Title: titles[lessonID]})
			if completed[lessonID] {
				lp.Completed++
				summary.CompletedIDs = append(summary.CompletedIDs, lessonID)
			}
		}

		lp.IsComplete = lp.Completed == lp.Total
		summary.Total += lp.Total
		summary.Completed += lp.Completed
		summary.ByLevel = append(summary.ByLevel, lp)
	}

	if summary.Total > 0 {
		summary.Percentage = int(math.RoundToEven(float64(summary.Completed) / float64(summary.Total) * 100))
	}

	return summary, nil
}

// NextLesson returns the first uncompleted lesson in index order, nil when
// the path is finished
func (s *Service) NextLesson(userID int64, lang string) (*NextLesson, error) {
	idx, err := s.curriculum.Index(lang)
	if err != nil {
		return nil, err
	}

	completed, err := s.repo.CompletedLessonIDs(userID)
	if err != nil {
		return nil, err
	}

	titles, err := s.curriculum.LessonTitles(lang)
	if err != nil {
		return nil, err
	}

	for _, level := range idx.Levels {
		for _, lessonID := range level.Lessons {
			if !completed[lessonID] {
				return &NextLesson{
					ID:    lessonID,
					Title: titles[lessonID],
					Level: level.Level,
				}, nil
			}
		}
	}

	return nil, nil
}

// ToggleComplete flips a lesson's completion state
func (s *Service) ToggleComplete(userID int64, lang, lessonID string) (bool, error) {
	// The lesson must exist before progress can be recorded against it.
	if _, err := s.curriculum.Lesson(lang, lessonID); err != nil {
		return false, err
	}

	nowCompleted, err := s.repo.ToggleComplete(userID, lessonID)
	if err != nil {
		return false, err
	}

	eventType := events.LessonCompleted
	if !nowCompleted {
		eventType = events.LessonUncompleted
	}
	s.events.Emit(eventType, "education", map[string]interface{}{
		"user_id":   userID,
		"lesson_id": lessonID,
	})

	return nowCompleted, nil
}

// StartQuiz clears any previous attempt and returns the quiz with answers
// stripped
func (s *Service) StartQuiz(userID int64, lang, lessonID string) (*Quiz, error) {
	quiz, err := s.curriculum.Quiz(lang, lessonID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ClearAttempt(userID, lessonID); err != nil {
		return nil, err
	}

	return stripAnswers(quiz), nil
}

// AnswerResult is the graded outcome of a single quiz answer.
type AnswerResult struct {
	QuestionID  string `json:"question_id"`
	ChoiceID    string `json:"choice_id"`
	IsCorrect   bool   `json:"is_correct"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation,omitempty"`
}

// Answer grades and stores one quiz answer
func (s *Service) Answer(userID int64, lang, lessonID, questionID, choiceID string) (*AnswerResult, error) {
	quiz, err := s.curriculum.Quiz(lang, lessonID)
	if err != nil {
		return nil, err
	}

	var question *QuizQuestion
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == questionID {
			question = &quiz.Questions[i]
			break
		}
	}
	if question == nil {
		return nil, fmt.Errorf("question %s: %w", questionID, domain.ErrNotFound)
	}

	isCorrect := choiceID == question.Answer
	if err := s.repo.UpsertResponse(userID, lessonID, questionID, choiceID, isCorrect); err != nil {
		return nil, err
	}

	return &AnswerResult{
		QuestionID:  questionID,
		ChoiceID:    choiceID,
		IsCorrect:   isCorrect,
		Answer:      question.Answer,
		Explanation: question.Explanation,
	}, nil
}

// QuizResult is the outcome of a finished quiz.
type QuizResult struct {
	LessonID   string `json:"lesson_id"`
	Score      int    `json:"score"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}

// FinishQuiz scores the attempt, records the completion and auto-marks the
// lesson as complete
func (s *Service) FinishQuiz(userID int64, lang, lessonID string) (*QuizResult, error) {
	quiz, err := s.curriculum.Quiz(lang, lessonID)
	if err != nil {
		return nil, err
	}

	total := len(quiz.Questions)
	score, err := s.repo.CorrectCount(userID, lessonID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpsertCompletion(userID, lessonID, score, total); err != nil {
		return nil, err
	}
	if err := s.repo.MarkComplete(userID, lessonID); err != nil {
		return nil, err
	}

	percentage := 0
	if total > 0 {
		percentage = int(math.RoundToEven(float64(score) / float64(total) * 100))
	}

	s.events.Emit(events.QuizCompleted, "education", map[string]interface{}{
		"user_id":   userID,
		"lesson_id": lessonID,
		"score":     score,
		"total":     total,
	})

	return &QuizResult{
		LessonID:   lessonID,
		Score:      score,
		Total:      total,
		Percentage: percentage,
	}, nil
}

// stripAnswers copies a quiz without correct answers or explanations, safe
// to send to clients mid-attempt
func stripAnswers(quiz *Quiz) *Quiz {
	out := &Quiz{
		LessonID:  quiz.LessonID,
		Questions: make([]QuizQuestion, len(quiz.Questions)),
	}
	for i, q := range quiz.Questions {
		q.Answer = ""
		q.Explanation = ""
		out.Questions[i] = q
	}
	return out
}
