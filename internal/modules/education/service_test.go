package education

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limpide/limpide/internal/database"
	"github.com/limpide/limpide/internal/events"
	"github.com/limpide/limpide/internal/modules/accounts"
)

func setupService(t *testing.T) (*Service, *Repository, int64) {
	t.Helper()

	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(accounts.Schema, Schema))

	log := zerolog.Nop()
	repo := NewRepository(db.Conn(), log)
	curriculum := NewCurriculum(writeCurriculum(t), log)
	service := NewService(curriculum, repo, events.NewManager(log), log)

	userID := createTestUser(t, db.Conn(), "learner@example.com")
	return service, repo, userID
}

func createTestUser(t *testing.T, conn *sql.DB, email string) int64 {
	t.Helper()

	users := accounts.NewUserRepository(conn, zerolog.Nop())
	user, err := users.GetOrCreateByEmail(email)
	require.NoError(t, err)
	return user.ID
}

func TestService_ProgressSummary_Empty(t *testing.T) {
	service, _, userID := setupService(t)

	summary, err := service.ProgressSummary(userID, "en")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 0, summary.Completed)
	assert.Equal(t, 0, summary.Percentage)
	require.Len(t, summary.ByLevel, 2)
	assert.False(t, summary.ByLevel[0].IsComplete)
}

func TestService_ProgressSummary_PartiallyComplete(t *testing.T) {
	service, repo, userID := setupService(t)

	require.NoError(t, repo.MarkComplete(userID, "L0-01"))

	summary, err := service.ProgressSummary(userID, "en")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Completed)
	// 1/3 of the path, rounded half to even.
	assert.Equal(t, 33, summary.Percentage)
	assert.True(t, summary.ByLevel[0].IsComplete)
	assert.False(t, summary.ByLevel[1].IsComplete)
	assert.Equal(t, []string{"L0-01"}, summary.CompletedIDs)
}

func TestService_NextLesson(t *testing.T) {
	service, repo, userID := setupService(t)

	next, err := service.NextLesson(userID, "en")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "L0-01", next.ID)
	assert.Equal(t, "Why invest?", next.Title)
	assert.Equal(t, 0, next.Level)

	require.NoError(t, repo.MarkComplete(userID, "L0-01"))
	next, err = service.NextLesson(userID, "en")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "L1-01", next.ID)

	require.NoError(t, repo.MarkComplete(userID, "L1-01"))
	require.NoError(t, repo.MarkComplete(userID, "L1-02"))
	next, err = service.NextLesson(userID, "en")
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestService_ToggleComplete(t *testing.T) {
	service, repo, userID := setupService(t)

	completed, err := service.ToggleComplete(userID, "en", "L0-01")
	require.NoError(t, err)
	assert.True(t, completed)

	ids, err := repo.CompletedLessonIDs(userID)
	require.NoError(t, err)
	assert.True(t, ids["L0-01"])

	completed, err = service.ToggleComplete(userID, "en", "L0-01")
	require.NoError(t, err)
	assert.False(t, completed)

	ids, err = repo.CompletedLessonIDs(userID)
	require.NoError(t, err)
	assert.False(t, ids["L0-01"])
}

func TestService_ToggleComplete_UnknownLesson(t *testing.T) {
	service, _, userID := setupService(t)

	_, err := service.ToggleComplete(userID, "en", "L9-99")
	assert.Error(t, err)
}

func TestService_QuizFlow(t *testing.T) {
	service, repo, userID := setupService(t)

	quiz, err := service.StartQuiz(userID, "en", "L1-01")
	require.NoError(t, err)
	require.Len(t, quiz.Questions, 2)
	for _, q := range quiz.Questions {
		assert.Empty(t, q.Answer, "answers must not leak to clients")
		assert.Empty(t, q.Explanation)
	}

	// One right, one wrong.
	result, err := service.Answer(userID, "en", "L1-01", "q1", "b")
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.Equal(t, "b", result.Answer)

	result, err = service.Answer(userID, "en", "L1-01", "q2", "b")
	require.NoError(t, err)
	assert.False(t, result.IsCorrect)

	final, err := service.FinishQuiz(userID, "en", "L1-01")
	require.NoError(t, err)
	assert.Equal(t, 1, final.Score)
	assert.Equal(t, 2, final.Total)
	assert.Equal(t, 50, final.Percentage)

	// Finishing the quiz marks the lesson as complete.
	ids, err := repo.CompletedLessonIDs(userID)
	require.NoError(t, err)
	assert.True(t, ids["L1-01"])

	completion, err := repo.GetCompletion(userID, "L1-01")
	require.NoError(t, err)
	assert.Equal(t, 1, completion.Score)
}

func TestService_QuizFlow_ReanswerLatestWins(t *testing.T) {
	service, _, userID := setupService(t)

	_, err := service.StartQuiz(userID, "en", "L1-01")
	require.NoError(t, err)

	_, err = service.Answer(userID, "en", "L1-01", "q1", "a")
	require.NoError(t, err)
	_, err = service.Answer(userID, "en", "L1-01", "q1", "b")
	require.NoError(t, err)
	_, err = service.Answer(userID, "en", "L1-01", "q2", "a")
	require.NoError(t, err)

	final, err := service.FinishQuiz(userID, "en", "L1-01")
	require.NoError(t, err)
	assert.Equal(t, 2, final.Score)
	assert.Equal(t, 100, final.Percentage)
}

func TestService_StartQuiz_ClearsPreviousAttempt(t *testing.T) {
	service, repo, userID := setupService(t)

	_, err := service.Answer(userID, "en", "L1-01", "q1", "b")
	require.NoError(t, err)
	_, err = service.FinishQuiz(userID, "en", "L1-01")
	require.NoError(t, err)

	_, err = service.StartQuiz(userID, "en", "L1-01")
	require.NoError(t, err)

	// Fresh attempt: no stored completion, no correct answers.
	_, err = repo.GetCompletion(userID, "L1-01")
	assert.Error(t, err)

	count, err := repo.CorrectCount(userID, "L1-01")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
