package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProgress struct {
	completed map[string]bool
}

func (s *stubProgress) CompletedLessonIDs(userID int64) (map[string]bool, error) {
	return s.completed, nil
}

func TestClarity_EmptyPortfolio(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "empty@example.com", nil)

	tx, err := env.portfolios.DB().Begin()
	require.NoError(t, err)
	p := &Portfolio{UserID: user.ID, Name: "Empty", CreatedAt: time.Now().UTC()}
	require.NoError(t, env.portfolios.InsertTx(tx, p))
	require.NoError(t, tx.Commit())

	clarity := NewClarity(env.portfolios, &stubProgress{completed: map[string]bool{}})
	score, err := clarity.Score(user.ID, p.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, score.Score)
	assert.Equal(t, 0, score.Learned)
	assert.Equal(t, 0, score.Total)
}

func TestClarity_PartialProgress(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "partial@example.com", nil)

	// Conservative sandbox holds two asset types: ETF and cash.
	p, err := env.builder.CreateSandbox(user.ID)
	require.NoError(t, err)

	// Only the ETF lesson is done.
	clarity := NewClarity(env.portfolios, &stubProgress{completed: map[string]bool{"L1-02": true}})
	score, err := clarity.Score(user.ID, p.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, score.Total)
	assert.Equal(t, 1, score.Learned)
	assert.Equal(t, 50, score.Score)
}

func TestClarity_FullProgress(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "full@example.com", nil)

	p, err := env.builder.CreateSandbox(user.ID)
	require.NoError(t, err)

	clarity := NewClarity(env.portfolios, &stubProgress{completed: map[string]bool{
		"L1-02": true, // etf
		"L0-01": true, // cash
	}})
	score, err := clarity.Score(user.ID, p.ID)
	require.NoError(t, err)

	assert.Equal(t, 100, score.Score)
	assert.Equal(t, 2, score.Learned)
	assert.Equal(t, 2, score.Total)
}

func TestClarity_NoLessonsCompleted(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "fresh@example.com", intPtr(9))

	p, err := env.builder.CreateSandbox(user.ID)
	require.NoError(t, err)

	clarity := NewClarity(env.portfolios, &stubProgress{completed: map[string]bool{}})
	score, err := clarity.Score(user.ID, p.ID)
	require.NoError(t, err)

	// Growth holds ETFs and stocks.
	assert.Equal(t, 0, score.Score)
	assert.Equal(t, 0, score.Learned)
	assert.Equal(t, 2, score.Total)
}
