package education

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/limpide/limpide/internal/domain"
)

// Repository handles per-user learning progress database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new education repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "education").Logger(),
	}
}

// CompletedLessonIDs returns the set of lesson ids a user has completed
func (r *Repository) CompletedLessonIDs(userID int64) (map[string]bool, error) {
	rows, err := r.db.Query(
		"SELECT lesson_id FROM lesson_progress WHERE user_id = ?", userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query lesson progress: %w", err)
	}
	defer rows.Close()

	completed := make(map[string]bool)
	for rows.Next() {
		var lessonID string
		if err := rows.Scan(&lessonID); err != nil {
			return nil, fmt.Errorf("failed to scan lesson progress: %w", err)
		}
		completed[lessonID] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lesson progress: %w", err)
	}

	return completed, nil
}

// IsCompleted reports whether a user has completed a lesson
func (r *Repository) IsCompleted(userID int64, lessonID string) (bool, error) {
	var one int
	err := r.db.QueryRow(
		"SELECT 1 FROM lesson_progress WHERE user_id = ? AND lesson_id = ?",
		userID, lessonID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query lesson progress: %w", err)
	}
	return true, nil
}

// MarkComplete records a lesson as completed, a no-op when already done
func (r *Repository) MarkComplete(userID int64, lessonID string) error {
	_, err := r.db.Exec(
		"INSERT OR IGNORE INTO lesson_progress (user_id, lesson_id, completed_at) VALUES (?, ?, ?)",
		userID, lessonID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to mark lesson complete: %w", err)
	}
	return nil
}

// ToggleComplete flips a lesson's completion state and returns the new state
func (r *Repository) ToggleComplete(userID int64, lessonID string) (bool, error) {
	completed, err := r.IsCompleted(userID, lessonID)
	if err != nil {
		return false, err
	}

	if completed {
		_, err := r.db.Exec(
			"DELETE FROM lesson_progress WHERE user_id = ? AND lesson_id = ?",
			userID, lessonID,
		)
		if err != nil {
			return false, fmt.Errorf("failed to unmark lesson: %w", err)
		}
		return false, nil
	}

	if err := r.MarkComplete(userID, lessonID); err != nil {
		return false, err
	}
	return true, nil
}

// ClearAttempt deletes a user's quiz responses and completion for a lesson,
// making room for a fresh attempt
func (r *Repository) ClearAttempt(userID int64, lessonID string) error {
	_, err := r.db.Exec(
		"DELETE FROM quiz_responses WHERE user_id = ? AND lesson_id = ?",
		userID, lessonID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear quiz responses: %w", err)
	}

	_, err = r.db.Exec(
		"DELETE FROM quiz_completions WHERE user_id = ? AND lesson_id = ?",
		userID, lessonID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear quiz completion: %w", err)
	}

	return nil
}

// UpsertResponse stores one quiz answer, latest answer per question wins
func (r *Repository) UpsertResponse(userID int64, lessonID, questionID, choiceID string, isCorrect bool) error {
	query := `
		INSERT INTO quiz_responses (user_id, lesson_id, question_id, choice_id, is_correct, answered_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, lesson_id, question_id)
		DO UPDATE SET choice_id = excluded.choice_id, is_correct = excluded.is_correct, answered_at = excluded.answered_at
	`

	_, err := r.db.Exec(query,
		userID, lessonID, questionID, choiceID, isCorrect,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert quiz response: %w", err)
	}

	return nil
}

// CorrectCount returns how many of a user's answers for a lesson are correct
func (r *Repository) CorrectCount(userID int64, lessonID string) (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM quiz_responses WHERE user_id = ? AND lesson_id = ? AND is_correct = 1",
		userID, lessonID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count correct responses: %w", err)
	}
	return count, nil
}

// UpsertCompletion records a finished quiz, overwriting any prior attempt
func (r *Repository) UpsertCompletion(userID int64, lessonID string, score, total int) error {
	query := `
		INSERT INTO quiz_completions (user_id, lesson_id, score, total, completed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, lesson_id)
		DO UPDATE SET score = excluded.score, total = excluded.total, completed_at = excluded.completed_at
	`

	_, err := r.db.Exec(query,
		userID, lessonID, score, total,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert quiz completion: %w", err)
	}

	return nil
}

// GetCompletion returns a user's quiz completion for a lesson
func (r *Repository) GetCompletion(userID int64, lessonID string) (*QuizCompletion, error) {
	var qc QuizCompletion
	var completedAt string

	err := r.db.QueryRow(
		"SELECT id, user_id, lesson_id, score, total, completed_at FROM quiz_completions WHERE user_id = ? AND lesson_id = ?",
		userID, lessonID,
	).Scan(&qc.ID, &qc.UserID, &qc.LessonID, &qc.Score, &qc.Total, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quiz completion %s: %w", lessonID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz completion: %w", err)
	}

	qc.CompletedAt, _ = time.Parse(time.RFC3339, completedAt)
	return &qc, nil
}

// QuizScores returns a user's quiz scores keyed by lesson id
func (r *Repository) QuizScores(userID int64) (map[string]int, error) {
	rows, err := r.db.Query(
		"SELECT lesson_id, score FROM quiz_completions WHERE user_id = ?", userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz completions: %w", err)
	}
	defer rows.Close()

	scores := make(map[string]int)
	for rows.Next() {
		var lessonID string
		var score int
		if err := rows.Scan(&lessonID, &score); err != nil {
			return nil, fmt.Errorf("failed to scan quiz completion: %w", err)
		}
		scores[lessonID] = score
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quiz completions: %w", err)
	}

	return scores, nil
}
