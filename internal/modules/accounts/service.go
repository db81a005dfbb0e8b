package accounts

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/limpide/limpide/internal/domain"
	"github.com/limpide/limpide/internal/events"
)

// CalculateRiskScore maps quiz answers (question key -> value in 1..4) to a
// risk score in 1..10. An empty answer set scores 1: new users default to
// the conservative floor.
//
// The score is the sum of answers normalized against the possible range,
// scaled to 0..9 and shifted to 1..10. Rounding is half-to-even.
func CalculateRiskScore(responses map[string]int) int {
	if len(responses) == 0 {
		return 1
	}

	total := 0
	for _, value := range responses {
		total += value
	}

	n := len(responses)
	minPossible := n * 1
	maxPossible := n * 4

	normalized := float64(total-minPossible) / float64(maxPossible-minPossible)
	score := int(math.RoundToEven(normalized*9)) + 1

	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

// RiskTier maps a risk score to its allocation tier. A nil (absent) score
// falls back to conservative.
func RiskTier(score *int) Tier {
	if score == nil || *score <= 3 {
		return TierConservative
	}
	if *score <= 6 {
		return TierModerate
	}
	return TierGrowth
}

// TierLabel returns the human-readable label for a tier
func TierLabel(tier Tier) string {
	switch tier {
	case TierConservative:
		return "Conservative"
	case TierModerate:
		return "Moderate"
	default:
		return "Growth"
	}
}

// TierDescription returns the educational description for a tier
func TierDescription(tier Tier) string {
	switch tier {
	case TierConservative:
		return "You prefer stability and capital preservation. A conservative " +
			"portfolio typically holds more bonds and GICs, with limited " +
			"exposure to stocks. Returns may be lower, but so is the risk " +
			"of losing money."
	case TierModerate:
		return "You seek a balance between growth and safety. A moderate " +
			"portfolio typically includes a mix of stocks and bonds, " +
			"offering reasonable growth potential while managing downside " +
			"risk."
	default:
		return "You are comfortable with higher volatility in exchange for " +
			"potentially higher returns. A growth portfolio is typically " +
			"stock-heavy, which means larger swings but historically better " +
			"long-term performance."
	}
}

// QuizResult is the outcome of a completed risk quiz.
type QuizResult struct {
	Score       int    `json:"score"`
	Tier        Tier   `json:"tier"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Service orchestrates identity, profile and risk quiz operations
type Service struct {
	users     *UserRepository
	profiles  *ProfileRepository
	responses *QuizResponseRepository
	events    *events.Manager
	log       zerolog.Logger
}

// NewService creates a new accounts service
func NewService(
	users *UserRepository,
	profiles *ProfileRepository,
	responses *QuizResponseRepository,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Service {
	return &Service{
		users:     users,
		profiles:  profiles,
		responses: responses,
		events:    eventManager,
		log:       log.With().Str("service", "accounts").Logger(),
	}
}

// Register resolves or creates a user for the email and issues a session token
func (s *Service) Register(email string) (*User, string, error) {
	if email == "" {
		return nil, "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}

	user, err := s.users.GetOrCreateByEmail(email)
	if err != nil {
		return nil, "", err
	}

	token, err := s.users.CreateSession(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.events.Emit(events.UserRegistered, "accounts", map[string]interface{}{
		"user_id": user.ID,
	})

	return user, token, nil
}

// SubmitAnswer validates and stores one quiz answer
func (s *Service) SubmitAnswer(userID int64, questionKey string, value int) error {
	if QuestionByKey(questionKey) == nil {
		return fmt.Errorf("%w: unknown question %q", domain.ErrInvalidInput, questionKey)
	}
	if value < 1 || value > 4 {
		return fmt.Errorf("%w: answer must be between 1 and 4", domain.ErrInvalidInput)
	}

	return s.responses.Upsert(userID, questionKey, value)
}

// Results recomputes the risk score from all stored answers and persists it
// on the profile. The stored score is derived data, re-persisted on every
// view.
func (s *Service) Results(userID int64) (*QuizResult, error) {
	responses, err := s.responses.GetAll(userID)
	if err != nil {
		return nil, err
	}

	score := CalculateRiskScore(responses)

	if _, err := s.profiles.GetOrCreate(userID); err != nil {
		return nil, err
	}
	if err := s.profiles.SetRiskScore(userID, score); err != nil {
		return nil, err
	}

	s.events.Emit(events.RiskScoreUpdated, "accounts", map[string]interface{}{
		"user_id": userID,
		"score":   score,
	})

	tier := RiskTier(&score)
	return &QuizResult{
		Score:       score,
		Tier:        tier,
		Label:       TierLabel(tier),
		Description: TierDescription(tier),
	}, nil
}
