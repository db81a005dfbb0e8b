package accounts

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limpide/limpide/internal/database"
	"github.com/limpide/limpide/internal/events"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(Schema))
	return db.Conn()
}

func TestCalculateRiskScore(t *testing.T) {
	tests := []struct {
		name      string
		responses map[string]int
		expected  int
	}{
		{
			name:      "no answers defaults to minimum",
			responses: map[string]int{},
			expected:  1,
		},
		{
			name: "all minimum answers",
			responses: map[string]int{
				"investment_knowledge": 1, "time_horizon": 1, "risk_comfort": 1,
				"loss_reaction": 1, "income_stability": 1, "return_expectation": 1,
			},
			expected: 1,
		},
		{
			name: "all maximum answers",
			responses: map[string]int{
				"investment_knowledge": 4, "time_horizon": 4, "risk_comfort": 4,
				"loss_reaction": 4, "income_stability": 4, "return_expectation": 4,
			},
			expected: 10,
		},
		{
			name: "all twos",
			responses: map[string]int{
				"investment_knowledge": 2, "time_horizon": 2, "risk_comfort": 2,
				"loss_reaction": 2, "income_stability": 2, "return_expectation": 2,
			},
			// normalized 1/3, 1/3*9 = 3.0, +1
			expected: 4,
		},
		{
			name: "all threes",
			responses: map[string]int{
				"investment_knowledge": 3, "time_horizon": 3, "risk_comfort": 3,
				"loss_reaction": 3, "income_stability": 3, "return_expectation": 3,
			},
			// normalized 2/3, 2/3*9 = 6.0, +1
			expected: 7,
		},
		{
			name:      "single answer mid",
			responses: map[string]int{"time_horizon": 2},
			// normalized 1/3 of a single question, same math
			expected: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateRiskScore(tt.responses))
		})
	}
}

func TestCalculateRiskScore_AlwaysInRange(t *testing.T) {
	keys := []string{"investment_knowledge", "time_horizon", "risk_comfort", "loss_reaction", "income_stability", "return_expectation"}

	for a := 1; a <= 4; a++ {
		for b := 1; b <= 4; b++ {
			responses := make(map[string]int, len(keys))
			for i, key := range keys {
				if i%2 == 0 {
					responses[key] = a
				} else {
					responses[key] = b
				}
			}

			score := CalculateRiskScore(responses)
			assert.GreaterOrEqual(t, score, 1)
			assert.LessOrEqual(t, score, 10)
		}
	}
}

func TestRiskTier(t *testing.T) {
	tier := func(score int) Tier { return RiskTier(&score) }

	assert.Equal(t, TierConservative, RiskTier(nil))
	assert.Equal(t, TierConservative, tier(1))
	assert.Equal(t, TierConservative, tier(3))
	assert.Equal(t, TierModerate, tier(4))
	assert.Equal(t, TierModerate, tier(6))
	assert.Equal(t, TierGrowth, tier(7))
	assert.Equal(t, TierGrowth, tier(10))
}

func TestTierLabel(t *testing.T) {
	assert.Equal(t, "Conservative", TierLabel(TierConservative))
	assert.Equal(t, "Moderate", TierLabel(TierModerate))
	assert.Equal(t, "Growth", TierLabel(TierGrowth))
}

func TestService_SubmitAnswer_Validation(t *testing.T) {
	conn := setupTestDB(t)
	log := zerolog.Nop()

	users := NewUserRepository(conn, log)
	profiles := NewProfileRepository(conn, log)
	responses := NewQuizResponseRepository(conn, log)
	service := NewService(users, profiles, responses, events.NewManager(log), log)

	user, _, err := service.Register("quiz@example.com")
	require.NoError(t, err)

	assert.Error(t, service.SubmitAnswer(user.ID, "not_a_question", 2))
	assert.Error(t, service.SubmitAnswer(user.ID, "time_horizon", 0))
	assert.Error(t, service.SubmitAnswer(user.ID, "time_horizon", 5))
	assert.NoError(t, service.SubmitAnswer(user.ID, "time_horizon", 3))
}

func TestService_Results_PersistsScore(t *testing.T) {
	conn := setupTestDB(t)
	log := zerolog.Nop()

	users := NewUserRepository(conn, log)
	profiles := NewProfileRepository(conn, log)
	responses := NewQuizResponseRepository(conn, log)
	service := NewService(users, profiles, responses, events.NewManager(log), log)

	user, _, err := service.Register("results@example.com")
	require.NoError(t, err)

	for _, q := range QuizQuestions {
		require.NoError(t, service.SubmitAnswer(user.ID, q.Key, 4))
	}

	result, err := service.Results(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, result.Score)
	assert.Equal(t, TierGrowth, result.Tier)

	profile, err := profiles.GetOrCreate(user.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.RiskScore)
	assert.Equal(t, 10, *profile.RiskScore)
}

func TestService_Results_ReanswerOverwrites(t *testing.T) {
	conn := setupTestDB(t)
	log := zerolog.Nop()

	users := NewUserRepository(conn, log)
	profiles := NewProfileRepository(conn, log)
	responses := NewQuizResponseRepository(conn, log)
	service := NewService(users, profiles, responses, events.NewManager(log), log)

	user, _, err := service.Register("overwrite@example.com")
	require.NoError(t, err)

	require.NoError(t, service.SubmitAnswer(user.ID, "time_horizon", 4))
	require.NoError(t, service.SubmitAnswer(user.ID, "time_horizon", 1))

	all, err := responses.GetAll(user.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"time_horizon": 1}, all)
}

func TestService_Register_SameEmailSameUser(t *testing.T) {
	conn := setupTestDB(t)
	log := zerolog.Nop()

	users := NewUserRepository(conn, log)
	profiles := NewProfileRepository(conn, log)
	responses := NewQuizResponseRepository(conn, log)
	service := NewService(users, profiles, responses, events.NewManager(log), log)

	first, token1, err := service.Register("same@example.com")
	require.NoError(t, err)
	second, token2, err := service.Register("same@example.com")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.NotEqual(t, token1, token2)

	resolved, err := users.GetUserByToken(token2)
	require.NoError(t, err)
	assert.Equal(t, first.ID, resolved.ID)
}
