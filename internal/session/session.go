// internal/session/session.go
package session

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/tahcohcat/goalquest-web/internal/logger"
)

// TokenStore keeps the opaque API token on disk. The server owns the token's
// meaning; the client only stores, attaches and, on 401, removes it.
type TokenStore struct {
	mu   sync.Mutex
	path string
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Token returns the stored token, or "" when none is stored.
func (s *TokenStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (s *TokenStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing an absent token is a no-op.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// Verifier checks the current token against the identity endpoint.
type Verifier interface {
	Me(ctx context.Context) error
}

// Gate decides whether network operations may run. Fail-closed: no token means
// no network call, and any verification failure counts as unauthenticated.
type Gate struct {
	tokens *TokenStore
	verify Verifier
	log    *logger.Log
}

func NewGate(tokens *TokenStore, verify Verifier, log *logger.Log) *Gate {
	return &Gate{tokens: tokens, verify: verify, log: log.WithComponent("session")}
}

// CheckAuthentication reports whether the stored token identifies a live
// session. Callers may re-invoke; the gate itself never retries.
func (g *Gate) CheckAuthentication(ctx context.Context) bool {
	if g.tokens.Token() == "" {
		return false
	}

	if err := g.verify.Me(ctx); err != nil {
		g.log.WithError(err).Debug("session verification failed")
		return false
	}
	return true
}
