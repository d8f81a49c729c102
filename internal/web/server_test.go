package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahcohcat/goalquest-web/internal/achievements"
	"github.com/tahcohcat/goalquest-web/internal/client"
	"github.com/tahcohcat/goalquest-web/internal/events"
	"github.com/tahcohcat/goalquest-web/internal/logger"
	"github.com/tahcohcat/goalquest-web/internal/models"
	"github.com/tahcohcat/goalquest-web/internal/notify"
	"github.com/tahcohcat/goalquest-web/internal/session"
)

type testEnv struct {
	local  *httptest.Server
	http   *http.Client
	store  *achievements.Store
	queue  *notify.Queue
	bus    *events.Bus
	tokens *session.TokenStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	upstream := http.NewServeMux()
	upstream.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	upstream.HandleFunc("/api/achievements", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"success": true,
			"data": {
				"unlocked": [
					{"id":"old","title":"Old","unlockedAt":"2024-01-01T00:00:00Z"},
					{"id":"new","title":"New","unlockedAt":"2024-06-01T00:00:00Z"}
				],
				"stats": {"total":2,"unlocked":2,"inProgress":0,"locked":0,"completionRate":100}
			}
		}`))
	})
	upstream.HandleFunc("/api/achievements/check", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "data": {"newAchievements": []}}`))
	})
	upstream.HandleFunc("/api/achievements/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "data": [{"_id":"u1","username":"ada","achievementCount":2,"totalXP":100}]}`))
	})
	upstreamServer := httptest.NewServer(upstream)
	t.Cleanup(upstreamServer.Close)

	log := logger.New()
	tokens := session.NewTokenStore(filepath.Join(t.TempDir(), "token"))
	api := client.New(upstreamServer.URL, 5*time.Second, tokens)
	gate := session.NewGate(tokens, api, log)
	store := achievements.NewStore(api, gate, tokens, nil, log)

	hub := NewHub(log)
	go hub.Run()

	queue := notify.New(time.Minute, nil, hub.BroadcastNotifications, log)
	detector := achievements.NewDetector(gate, api, store, queue, log)
	bus := events.NewBus()

	server := New(store, queue, detector, tokens, bus, hub, "test-secret", nil, log)
	local := httptest.NewServer(server.Handler())
	t.Cleanup(local.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testEnv{
		local:  local,
		http:   &http.Client{Jar: jar},
		store:  store,
		queue:  queue,
		bus:    bus,
		tokens: tokens,
	}
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()

	body := bytes.NewBufferString(`{"token":"test-token"}`)
	resp, err := e.http.Post(e.local.URL+"/login", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.http.Get(env.local.URL + "/api/v1/achievements")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginStoresToken(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	assert.Equal(t, "test-token", env.tokens.Token())
}

func TestAchievementsSortedWithSummary(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	require.True(t, env.store.Fetch(context.Background()))

	resp, err := env.http.Get(env.local.URL + "/api/v1/achievements?bucket=unlocked&sort=recent")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool `json:"success"`
		Data    struct {
			Achievements []models.Achievement `json:"achievements"`
			Summary      achievements.Summary `json:"summary"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))

	assert.True(t, payload.Success)
	require.Len(t, payload.Data.Achievements, 2)
	assert.Equal(t, "new", payload.Data.Achievements[0].ID)
	assert.Equal(t, "old", payload.Data.Achievements[1].ID)
	assert.Equal(t, 2, payload.Data.Summary.Count)
}

func TestDismissNotification(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	id := env.queue.Enqueue(models.Achievement{Title: "Winner"})
	require.Len(t, env.queue.Entries(), 1)

	resp, err := env.http.Post(env.local.URL+"/api/v1/notifications/"+id+"/dismiss", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Empty(t, env.queue.Entries())
}

func TestAchievementUpdateSignalPublishes(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	var signals atomic.Int32
	env.bus.Subscribe(func() { signals.Add(1) })

	resp, err := env.http.Post(env.local.URL+"/api/v1/events/achievement-update", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, int32(1), signals.Load())
}

func TestLeaderboardEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	resp, err := env.http.Get(env.local.URL + "/api/v1/leaderboard")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool                      `json:"success"`
		Data    []models.LeaderboardEntry `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Data, 1)
	assert.Equal(t, "ada", payload.Data[0].Username)
}
