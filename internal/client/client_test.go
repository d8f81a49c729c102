package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahcohcat/goalquest-web/internal/session"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *session.TokenStore) {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	tokens := session.NewTokenStore(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, tokens.Set("secret-token"))
	return New(ts.URL, 5*time.Second, tokens), tokens
}

func TestBearerTokenAttached(t *testing.T) {
	var header string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
	})

	c, _ := newTestClient(t, mux)
	require.NoError(t, c.Me(context.Background()))
	assert.Equal(t, "Bearer secret-token", header)
}

func TestMeNonSuccessIsError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	c, _ := newTestClient(t, mux)
	err := c.Me(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.Status)
}

func TestAchievementsUnauthorized(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/achievements", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	c, _ := newTestClient(t, mux)
	_, err := c.Achievements(context.Background())
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestAchievementsEnvelopeFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/achievements", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false}`))
	})

	c, _ := newTestClient(t, mux)
	_, err := c.Achievements(context.Background())
	assert.Error(t, err)
}

func TestLeaderboard(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/achievements/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"success": true,
			"data": [
				{"_id":"u1","username":"ada","achievementCount":12,"totalXP":900},
				{"_id":"u2","username":"grace","achievementCount":8,"totalXP":640}
			]
		}`))
	})

	c, _ := newTestClient(t, mux)
	entries, err := c.Leaderboard(context.Background())
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "u1", entries[0].UserID)
	assert.Equal(t, "ada", entries[0].Username)
	assert.Equal(t, 12, entries[0].AchievementCount)
	assert.Equal(t, 900, entries[0].TotalXP)
}

func TestLeaderboardUnauthorizedIsEmptyNotError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/achievements/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	c, _ := newTestClient(t, mux)
	entries, err := c.Leaderboard(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NotNil(t, entries)
}
