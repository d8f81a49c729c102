// internal/client/client.go
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tahcohcat/goalquest-web/internal/models"
	"github.com/tahcohcat/goalquest-web/internal/session"
)

// ErrUnauthorized is returned when a data endpoint answers 401.
var ErrUnauthorized = errors.New("unauthorized")

// StatusError is any other non-success HTTP status.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d", e.Status)
}

// Client talks to the goal-tracking API. The server is the source of truth for
// all achievement state; the client only reads.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  *session.TokenStore
}

func New(baseURL string, timeout time.Duration, tokens *session.TokenStore) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

// envelope is the API's standard response wrapper. An absent success flag
// decodes to false and is treated as failure.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// AchievementsData is the payload of GET /api/achievements. Missing buckets
// and stats are left nil here; the store applies defaults.
type AchievementsData struct {
	Unlocked   []models.AchievementRecord `json:"unlocked"`
	InProgress []models.AchievementRecord `json:"inProgress"`
	Locked     []models.AchievementRecord `json:"locked"`
	Stats      *models.Stats              `json:"stats"`
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Status: resp.StatusCode}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success {
		return fmt.Errorf("server reported failure for %s", path)
	}
	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

// Me verifies the current session. Any error means unauthenticated.
func (c *Client) Me(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/me", nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Status: resp.StatusCode}
	}
	return nil
}

// Achievements fetches the three achievement buckets plus stats.
func (c *Client) Achievements(ctx context.Context) (*AchievementsData, error) {
	var data AchievementsData
	if err := c.get(ctx, "/api/achievements", &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// CheckNew asks the server which achievements unlocked since the last check,
// in server order.
func (c *Client) CheckNew(ctx context.Context) ([]models.AchievementRecord, error) {
	var data struct {
		NewAchievements []models.AchievementRecord `json:"newAchievements"`
	}
	if err := c.get(ctx, "/api/achievements/check", &data); err != nil {
		return nil, err
	}
	return data.NewAchievements, nil
}

// Leaderboard fetches the global achievement leaderboard. An unauthorized
// response yields an empty board rather than an error.
func (c *Client) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := c.get(ctx, "/api/achievements/leaderboard", &entries)
	if errors.Is(err, ErrUnauthorized) {
		return []models.LeaderboardEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}
