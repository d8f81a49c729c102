// internal/achievements/store.go
package achievements

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tahcohcat/goalquest-web/internal/cache"
	"github.com/tahcohcat/goalquest-web/internal/client"
	"github.com/tahcohcat/goalquest-web/internal/logger"
	"github.com/tahcohcat/goalquest-web/internal/models"
	"github.com/tahcohcat/goalquest-web/internal/session"
)

// User-facing messages surfaced through LastError.
const (
	MsgAuthRequired   = "Authentication required"
	MsgSessionExpired = "Session expired. Please log in again."
	MsgFetchFailed    = "Failed to load achievements. Please try again."
)

// Store holds the canonical achievement collections and aggregate stats.
// Records are normalized exactly once, at ingestion. Concurrent fetches are
// allowed; a generation counter ensures only the most recently issued fetch
// commits state.
type Store struct {
	api    *client.Client
	gate   *session.Gate
	tokens *session.TokenStore
	cache  *cache.Cache // optional
	log    *logger.Log

	mu            sync.Mutex
	gen           int
	authenticated bool
	collections   models.Collections
	stats         models.Stats
	lastErr       string
}

func NewStore(api *client.Client, gate *session.Gate, tokens *session.TokenStore, c *cache.Cache, log *logger.Log) *Store {
	return &Store{
		api:    api,
		gate:   gate,
		tokens: tokens,
		cache:  c,
		log:    log.WithComponent("store"),
		collections: models.Collections{
			Unlocked:   []models.Achievement{},
			InProgress: []models.Achievement{},
			Locked:     []models.Achievement{},
		},
	}
}

// LoadCached seeds the store from the offline cache so views have data before
// the first fetch. Safe to skip when no cache is configured.
func (s *Store) LoadCached() {
	if s.cache == nil {
		return
	}
	collections, stats, err := s.cache.Load()
	if err != nil {
		s.log.WithError(err).Warn("failed to load achievement cache")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = collections
	s.stats = stats
}

// Fetch refreshes the collections from the server. Returns true only when a
// fresh result was committed.
func (s *Store) Fetch(ctx context.Context) bool {
	if !s.gate.CheckAuthentication(ctx) {
		s.mu.Lock()
		s.authenticated = false
		s.lastErr = MsgAuthRequired
		s.mu.Unlock()
		return false
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.authenticated = true
	s.mu.Unlock()

	data, err := s.api.Achievements(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// A newer fetch was issued while this one was in flight; discard.
		return false
	}
	if err != nil {
		s.fail(err)
		return false
	}

	s.collections = models.Collections{
		Unlocked:   normalizeAll(data.Unlocked),
		InProgress: normalizeAll(data.InProgress),
		Locked:     normalizeAll(data.Locked),
	}
	if data.Stats != nil {
		s.stats = *data.Stats
	} else {
		s.stats = models.Stats{}
	}
	s.lastErr = ""

	if s.cache != nil {
		if cerr := s.cache.Save(s.collections, s.stats); cerr != nil {
			s.log.WithError(cerr).Warn("failed to write achievement cache")
		}
	}
	return true
}

// fail records the error state for a finished fetch. Caller holds the lock.
func (s *Store) fail(err error) {
	var statusErr *client.StatusError
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		if cerr := s.tokens.Clear(); cerr != nil {
			s.log.WithError(cerr).Warn("failed to clear token")
		}
		s.authenticated = false
		s.lastErr = MsgSessionExpired
	case errors.As(err, &statusErr):
		s.lastErr = fmt.Sprintf("Failed to load achievements (status %d)", statusErr.Status)
	default:
		s.lastErr = MsgFetchFailed
	}
	s.log.WithError(err).Error("achievement fetch failed")
}

// Leaderboard fetches the global board. Unauthenticated access yields an empty
// board, not an error; that is the server's contract.
func (s *Store) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	return s.api.Leaderboard(ctx)
}

// Collections returns a snapshot of the canonical buckets.
func (s *Store) Collections() models.Collections {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Collections{
		Unlocked:   copyList(s.collections.Unlocked),
		InProgress: copyList(s.collections.InProgress),
		Locked:     copyList(s.collections.Locked),
	}
}

func (s *Store) Stats() models.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// LastError returns the user-facing message of the most recent failure, or ""
// after a successful fetch.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

func normalizeAll(records []models.AchievementRecord) []models.Achievement {
	out := make([]models.Achievement, 0, len(records))
	for _, rec := range records {
		out = append(out, Normalize(rec))
	}
	return out
}

func copyList(list []models.Achievement) []models.Achievement {
	out := make([]models.Achievement, len(list))
	copy(out, list)
	return out
}
