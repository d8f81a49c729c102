package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahcohcat/goalquest-web/internal/models"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()

	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func iptr(v int) *int             { return &v }
func tptr(t time.Time) *time.Time { return &t }

func TestLoadEmptyCache(t *testing.T) {
	c := openTestCache(t)

	collections, stats, err := c.Load()
	require.NoError(t, err)
	assert.Empty(t, collections.Unlocked)
	assert.Empty(t, collections.InProgress)
	assert.Empty(t, collections.Locked)
	assert.Zero(t, stats)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := openTestCache(t)

	unlockedAt := time.Date(2024, 2, 14, 10, 0, 0, 0, time.UTC)
	collections := models.Collections{
		Unlocked: []models.Achievement{
			{
				ID: "u1", Title: "First Goal", Category: "Fitness", Rarity: "rare",
				XPReward: 50, ProgressPercent: 100, Unlocked: true,
				UnlockedAt: tptr(unlockedAt), Points: iptr(30), GameName: "Running",
			},
		},
		InProgress: []models.Achievement{
			{ID: "p1", Title: "Halfway", ProgressPercent: 50, Rarity: "common"},
			{ID: "p2", Title: "Almost", ProgressPercent: 90, Rarity: "common"},
		},
		Locked: []models.Achievement{},
	}
	stats := models.Stats{Total: 3, Unlocked: 1, InProgress: 2, Locked: 0, CompletionRate: 33.3}

	require.NoError(t, c.Save(collections, stats))

	loaded, loadedStats, err := c.Load()
	require.NoError(t, err)

	require.Len(t, loaded.Unlocked, 1)
	got := loaded.Unlocked[0]
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "First Goal", got.Title)
	assert.Equal(t, "rare", got.Rarity)
	assert.Equal(t, 100, got.ProgressPercent)
	assert.True(t, got.Unlocked)
	require.NotNil(t, got.UnlockedAt)
	assert.True(t, got.UnlockedAt.Equal(unlockedAt))
	require.NotNil(t, got.Points)
	assert.Equal(t, 30, *got.Points)
	assert.Equal(t, "Running", got.GameName)

	// Position preserved within a bucket.
	require.Len(t, loaded.InProgress, 2)
	assert.Equal(t, "p1", loaded.InProgress[0].ID)
	assert.Equal(t, "p2", loaded.InProgress[1].ID)

	assert.Empty(t, loaded.Locked)
	assert.Equal(t, stats, loadedStats)
}

func TestSaveReplacesSnapshot(t *testing.T) {
	c := openTestCache(t)

	first := models.Collections{
		Unlocked: []models.Achievement{{ID: "old", Rarity: "common"}},
	}
	require.NoError(t, c.Save(first, models.Stats{Total: 1}))

	second := models.Collections{
		Locked: []models.Achievement{{ID: "new", Rarity: "common"}},
	}
	require.NoError(t, c.Save(second, models.Stats{Total: 1, Locked: 1}))

	loaded, stats, err := c.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded.Unlocked)
	require.Len(t, loaded.Locked, 1)
	assert.Equal(t, "new", loaded.Locked[0].ID)
	assert.Equal(t, 1, stats.Locked)
}
