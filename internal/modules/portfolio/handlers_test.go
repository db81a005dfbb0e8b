package portfolio

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limpide/limpide/internal/modules/accounts"
)

// newAuthedRouter mounts the portfolio routes behind a middleware that
// injects the given user, standing in for the session authenticator.
func newAuthedRouter(env *testEnv, user *accounts.User) http.Handler {
	clarity := NewClarity(env.portfolios, &stubProgress{completed: map[string]bool{}})
	handler := NewHandler(env.portfolios, env.builder, env.valuation, clarity, env.history, zerolog.Nop())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(accounts.ContextWithUser(req.Context(), user)))
		})
	})
	r.Mount("/", handler.Routes())
	return r
}

func TestHandleCreateSandbox(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "http@example.com", intPtr(8))
	router := newAuthedRouter(env, user)

	req := httptest.NewRequest("POST", "/sandbox", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var p Portfolio
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
	assert.True(t, p.IsSandbox)
	assert.Equal(t, user.ID, p.UserID)

	// Repeat call returns the same portfolio.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/sandbox", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var again Portfolio
	require.NoError(t, json.NewDecoder(w.Body).Decode(&again))
	assert.Equal(t, p.ID, again.ID)
}

func TestHandleList(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "list@example.com", nil)
	router := newAuthedRouter(env, user)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	_, err := env.builder.CreateSandbox(user.ID)
	require.NoError(t, err)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var portfolios []Portfolio
	require.NoError(t, json.NewDecoder(w.Body).Decode(&portfolios))
	assert.Len(t, portfolios, 1)
}

func TestHandleDetail(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "detail@example.com", nil)
	router := newAuthedRouter(env, user)

	p, err := env.builder.CreateSandbox(user.ID)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/"+itoa(p.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	for _, key := range []string{"portfolio", "snapshot", "holdings", "allocation", "exposure", "clarity", "transactions"} {
		assert.Contains(t, body, key)
	}

	var holdings []HoldingRow
	require.NoError(t, json.Unmarshal(body["holdings"], &holdings))
	assert.Len(t, holdings, 3)
}

func TestHandleDetail_OtherUsersPortfolio(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner2@example.com", nil)
	intruder := env.createUser(t, "intruder@example.com", nil)

	p, err := env.builder.CreateSandbox(owner.ID)
	require.NoError(t, err)

	router := newAuthedRouter(env, intruder)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/"+itoa(p.ID), nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleHistory(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "histhttp@example.com", nil)
	router := newAuthedRouter(env, user)

	p, err := env.builder.CreateSandbox(user.ID)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/"+itoa(p.ID)+"/history?days=7", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Points []HistoryPoint `json:"points"`
		Change *ValueChange   `json:"change"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Len(t, body.Points, 1) // the build's initial point
	require.NotNil(t, body.Change)

	// Bad days parameter.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/"+itoa(p.ID)+"/history?days=zero", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
