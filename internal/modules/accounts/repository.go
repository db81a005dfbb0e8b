package accounts

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/limpide/limpide/internal/domain"
)

// UserRepository handles user and session database operations
type UserRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, log zerolog.Logger) *UserRepository {
	return &UserRepository{
		db:  db,
		log: log.With().Str("repo", "user").Logger(),
	}
}

// GetOrCreateByEmail returns the user with the given email, creating it on
// first sight.
func (r *UserRepository) GetOrCreateByEmail(email string) (*User, error) {
	user, err := r.GetByEmail(email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := r.db.Exec(
		"INSERT INTO users (email, created_at) VALUES (?, ?)",
		email, now.Format(time.RFC3339),
	)
	if err != nil {
		// Concurrent insert of the same email loses the race; re-read.
		if existing, getErr := r.GetByEmail(email); getErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user id: %w", err)
	}

	return &User{ID: id, Email: email, CreatedAt: now}, nil
}

// GetByEmail returns a user by email
func (r *UserRepository) GetByEmail(email string) (*User, error) {
	query := "SELECT id, email, created_at FROM users WHERE email = ?"

	var user User
	var createdAt string
	err := r.db.QueryRow(query, email).Scan(&user.ID, &user.Email, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}

	user.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &user, nil
}

// CreateSession issues a new opaque session token for the user
func (r *UserRepository) CreateSession(userID int64) (string, error) {
	token := uuid.NewString()

	_, err := r.db.Exec(
		"INSERT INTO sessions (token, user_id, created_at) VALUES (?, ?, ?)",
		token, userID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert session: %w", err)
	}

	return token, nil
}

// GetUserByToken resolves a session token to its user
func (r *UserRepository) GetUserByToken(token string) (*User, error) {
	query := `
		SELECT u.id, u.email, u.created_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = ?
	`

	var user User
	var createdAt string
	err := r.db.QueryRow(query, token).Scan(&user.ID, &user.Email, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	user.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &user, nil
}

// ProfileRepository handles user profile database operations
type ProfileRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *sql.DB, log zerolog.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:  db,
		log: log.With().Str("repo", "profile").Logger(),
	}
}

// GetOrCreate returns the profile for a user, creating an empty one if absent
func (r *ProfileRepository) GetOrCreate(userID int64) (*Profile, error) {
	// INSERT OR IGNORE keeps get-or-create atomic; no check-then-act race.
	_, err := r.db.Exec(
		"INSERT OR IGNORE INTO user_profiles (user_id) VALUES (?)",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure profile: %w", err)
	}

	query := `
		SELECT user_id, province, preferred_language, risk_score, onboarding_completed
		FROM user_profiles WHERE user_id = ?
	`

	var profile Profile
	var riskScore sql.NullInt64
	err = r.db.QueryRow(query, userID).Scan(
		&profile.UserID,
		&profile.Province,
		&profile.PreferredLanguage,
		&riskScore,
		&profile.OnboardingCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	if riskScore.Valid {
		score := int(riskScore.Int64)
		profile.RiskScore = &score
	}

	return &profile, nil
}

// Update persists province, language and onboarding flag
func (r *ProfileRepository) Update(profile *Profile) error {
	_, err := r.db.Exec(
		`UPDATE user_profiles
		 SET province = ?, preferred_language = ?, onboarding_completed = ?
		 WHERE user_id = ?`,
		profile.Province,
		profile.PreferredLanguage,
		profile.OnboardingCompleted,
		profile.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// SetRiskScore stores the computed risk score on the profile
func (r *ProfileRepository) SetRiskScore(userID int64, score int) error {
	_, err := r.db.Exec(
		"UPDATE user_profiles SET risk_score = ? WHERE user_id = ?",
		score, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set risk score: %w", err)
	}
	return nil
}

// QuizResponseRepository handles risk quiz answer database operations
type QuizResponseRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewQuizResponseRepository creates a new quiz response repository
func NewQuizResponseRepository(db *sql.DB, log zerolog.Logger) *QuizResponseRepository {
	return &QuizResponseRepository{
		db:  db,
		log: log.With().Str("repo", "quiz_response").Logger(),
	}
}

// Upsert stores an answer, overwriting any previous answer to the same question
func (r *QuizResponseRepository) Upsert(userID int64, questionKey string, value int) error {
	_, err := r.db.Exec(
		`INSERT INTO risk_quiz_responses (user_id, question_key, answer_value)
		 VALUES (?, ?, ?)
		 ON CONFLICT(user_id, question_key) DO UPDATE SET answer_value = excluded.answer_value`,
		userID, questionKey, value,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert quiz response: %w", err)
	}
	return nil
}

// GetAll returns all answers for a user keyed by question
func (r *QuizResponseRepository) GetAll(userID int64) (map[string]int, error) {
	rows, err := r.db.Query(
		"SELECT question_key, answer_value FROM risk_quiz_responses WHERE user_id = ?",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz responses: %w", err)
	}
	defer rows.Close()

	responses := make(map[string]int)
	for rows.Next() {
		var key string
		var value int
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan quiz response: %w", err)
		}
		responses[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quiz responses: %w", err)
	}

	return responses, nil
}
