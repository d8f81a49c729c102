// internal/web/server.go
package web

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/cors"

	"github.com/tahcohcat/goalquest-web/internal/achievements"
	"github.com/tahcohcat/goalquest-web/internal/events"
	"github.com/tahcohcat/goalquest-web/internal/logger"
	"github.com/tahcohcat/goalquest-web/internal/models"
	"github.com/tahcohcat/goalquest-web/internal/notify"
	"github.com/tahcohcat/goalquest-web/internal/session"
)

const sessionName = "goalquest-session"

// Server is the local companion host the browser views talk to. It exposes the
// engine's state as JSON and pushes live notifications over the hub.
type Server struct {
	store    *achievements.Store
	queue    *notify.Queue
	detector *achievements.Detector
	tokens   *session.TokenStore
	bus      *events.Bus
	hub      *Hub
	sessions *sessions.CookieStore
	origins  []string
	log      *logger.Log
}

func New(store *achievements.Store, queue *notify.Queue, detector *achievements.Detector,
	tokens *session.TokenStore, bus *events.Bus, hub *Hub,
	sessionSecret string, origins []string, log *logger.Log) *Server {
	return &Server{
		store:    store,
		queue:    queue,
		detector: detector,
		tokens:   tokens,
		bus:      bus,
		hub:      hub,
		sessions: sessions.NewCookieStore([]byte(sessionSecret)),
		origins:  origins,
		log:      log.WithComponent("web"),
	}
}

// Handler builds the full route tree with CORS applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/login", s.handleLogin).Methods("POST")
	r.HandleFunc("/logout", s.handleLogout).Methods("POST")

	authed := r.PathPrefix("/api/v1").Subrouter()
	authed.Use(s.sessionMiddleware)
	authed.HandleFunc("/achievements", s.handleAchievements).Methods("GET")
	authed.HandleFunc("/stats", s.handleStats).Methods("GET")
	authed.HandleFunc("/leaderboard", s.handleLeaderboard).Methods("GET")
	authed.HandleFunc("/notifications", s.handleNotifications).Methods("GET")
	authed.HandleFunc("/notifications/{id}/dismiss", s.handleDismiss).Methods("POST")
	authed.HandleFunc("/refresh", s.handleRefresh).Methods("POST")
	authed.HandleFunc("/check", s.handleCheck).Methods("POST")
	authed.HandleFunc("/events/achievement-update", s.handleAchievementUpdate).Methods("POST")

	r.HandleFunc("/ws", s.hub.handleWebSocket)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := s.sessions.Get(r, sessionName)
		if auth, ok := sess.Values["authenticated"].(bool); !ok || !auth {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleLogin stores the pasted API token and marks the browser signed in.
// The token's validity is the server's call; the next fetch will fail closed
// if it is bad.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "token required"})
		return
	}

	if err := s.tokens.Set(req.Token); err != nil {
		s.log.WithError(err).Error("failed to store token")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to store token"})
		return
	}

	sess, _ := s.sessions.Get(r, sessionName)
	sess.Values["authenticated"] = true
	sess.Save(r, w)

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.sessions.Get(r, sessionName)
	sess.Values["authenticated"] = false
	sess.Save(r, w)

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// GET /api/v1/achievements?bucket=unlocked&sort=recent
func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	collections := s.store.Collections()

	var list []models.Achievement
	switch q.Get("bucket") {
	case "unlocked":
		list = collections.Unlocked
	case "inProgress":
		list = collections.InProgress
	case "locked":
		list = collections.Locked
	default:
		list = append(append(collections.Unlocked, collections.InProgress...), collections.Locked...)
	}

	sorted := achievements.Sort(list, q.Get("sort"))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"achievements": sorted,
			"summary":      achievements.Summarize(sorted),
			"error":        s.store.LastError(),
		},
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    s.store.Stats(),
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.Leaderboard(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": "Failed to fetch leaderboard"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    entries,
	})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    s.queue.Entries(),
	})
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.queue.Remove(id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleRefresh is the "Try Again" control: the only path that retries a
// failed fetch.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ok := s.store.Fetch(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"success": ok,
		"error":   s.store.LastError(),
	})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	found := s.detector.Check(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    map[string]any{"newAchievements": found},
	})
}

// handleAchievementUpdate lets the goal-completion flow raise the update
// signal; the bridge picks it up from the bus.
func (s *Server) handleAchievementUpdate(w http.ResponseWriter, r *http.Request) {
	s.bus.Publish()
	writeJSON(w, http.StatusAccepted, map[string]any{"success": true})
}
