// internal/cache/cache.go
package cache

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tahcohcat/goalquest-web/internal/models"
)

// Cache is a local sqlite snapshot of the last successfully fetched
// collections. It exists so views have something to show before the first
// fetch and while offline; the server stays the source of truth and the cache
// is never synced back.
type Cache struct {
	db *sqlx.DB
}

// Open connects to the cache database and initializes the schema.
func Open(path string) (*Cache, error) {
	db, err := sqlx.Connect("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	c := &Cache{db: db}
	if err := c.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create cache tables: %w", err)
	}
	return c, nil
}

func (c *Cache) createTables() error {
	achievementsTable := `
	CREATE TABLE IF NOT EXISTS achievements (
		id TEXT NOT NULL,
		bucket TEXT NOT NULL,
		position INTEGER NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		rarity TEXT NOT NULL DEFAULT 'common',
		xp_reward INTEGER NOT NULL DEFAULT 0,
		progress_percent INTEGER NOT NULL DEFAULT 0,
		unlocked BOOLEAN NOT NULL DEFAULT FALSE,
		unlocked_at DATETIME,
		game_name TEXT NOT NULL DEFAULT '',
		group_id TEXT NOT NULL DEFAULT '',
		points INTEGER,
		completed_at DATETIME,
		updated_at DATETIME,
		PRIMARY KEY (bucket, id)
	);`

	statsTable := `
	CREATE TABLE IF NOT EXISTS stats (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		total INTEGER NOT NULL DEFAULT 0,
		unlocked INTEGER NOT NULL DEFAULT 0,
		in_progress INTEGER NOT NULL DEFAULT 0,
		locked INTEGER NOT NULL DEFAULT 0,
		completion_rate REAL NOT NULL DEFAULT 0,
		saved_at DATETIME NOT NULL
	);`

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_achievements_bucket ON achievements(bucket, position);`,
	}

	for _, query := range []string{achievementsTable, statsTable} {
		if _, err := c.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	for _, index := range indexes {
		if _, err := c.db.Exec(index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

type achievementRow struct {
	ID              string     `db:"id"`
	Bucket          string     `db:"bucket"`
	Position        int        `db:"position"`
	Title           string     `db:"title"`
	Description     string     `db:"description"`
	Icon            string     `db:"icon"`
	Category        string     `db:"category"`
	Rarity          string     `db:"rarity"`
	XPReward        int        `db:"xp_reward"`
	ProgressPercent int        `db:"progress_percent"`
	Unlocked        bool       `db:"unlocked"`
	UnlockedAt      *time.Time `db:"unlocked_at"`
	GameName        string     `db:"game_name"`
	GroupID         string     `db:"group_id"`
	Points          *int       `db:"points"`
	CompletedAt     *time.Time `db:"completed_at"`
	UpdatedAt       *time.Time `db:"updated_at"`
}

func toRow(a models.Achievement, bucket string, position int) achievementRow {
	return achievementRow{
		ID:              a.ID,
		Bucket:          bucket,
		Position:        position,
		Title:           a.Title,
		Description:     a.Description,
		Icon:            a.Icon,
		Category:        a.Category,
		Rarity:          a.Rarity,
		XPReward:        a.XPReward,
		ProgressPercent: a.ProgressPercent,
		Unlocked:        a.Unlocked,
		UnlockedAt:      a.UnlockedAt,
		GameName:        a.GameName,
		GroupID:         a.GroupID,
		Points:          a.Points,
		CompletedAt:     a.CompletedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func (r achievementRow) toModel() models.Achievement {
	return models.Achievement{
		ID:              r.ID,
		Title:           r.Title,
		Description:     r.Description,
		Icon:            r.Icon,
		Category:        r.Category,
		Rarity:          r.Rarity,
		XPReward:        r.XPReward,
		ProgressPercent: r.ProgressPercent,
		Unlocked:        r.Unlocked,
		UnlockedAt:      r.UnlockedAt,
		GameName:        r.GameName,
		GroupID:         r.GroupID,
		Points:          r.Points,
		CompletedAt:     r.CompletedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// Save replaces the cached snapshot with the given collections and stats.
func (c *Cache) Save(collections models.Collections, stats models.Stats) error {
	tx, err := c.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin cache transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM achievements`); err != nil {
		return fmt.Errorf("failed to clear cached achievements: %w", err)
	}

	insert := `
		INSERT INTO achievements (id, bucket, position, title, description, icon, category,
			rarity, xp_reward, progress_percent, unlocked, unlocked_at, game_name, group_id,
			points, completed_at, updated_at)
		VALUES (:id, :bucket, :position, :title, :description, :icon, :category,
			:rarity, :xp_reward, :progress_percent, :unlocked, :unlocked_at, :game_name, :group_id,
			:points, :completed_at, :updated_at)
	`

	buckets := map[string][]models.Achievement{
		"unlocked":   collections.Unlocked,
		"inProgress": collections.InProgress,
		"locked":     collections.Locked,
	}
	for bucket, list := range buckets {
		for i, a := range list {
			if _, err := tx.NamedExec(insert, toRow(a, bucket, i)); err != nil {
				return fmt.Errorf("failed to cache achievement %s: %w", a.ID, err)
			}
		}
	}

	statsUpsert := `
		INSERT INTO stats (id, total, unlocked, in_progress, locked, completion_rate, saved_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			total = excluded.total,
			unlocked = excluded.unlocked,
			in_progress = excluded.in_progress,
			locked = excluded.locked,
			completion_rate = excluded.completion_rate,
			saved_at = excluded.saved_at
	`
	if _, err := tx.Exec(statsUpsert, stats.Total, stats.Unlocked, stats.InProgress,
		stats.Locked, stats.CompletionRate, time.Now()); err != nil {
		return fmt.Errorf("failed to cache stats: %w", err)
	}

	return tx.Commit()
}

// Load returns the cached snapshot. An empty cache yields empty collections
// and zero stats, not an error.
func (c *Cache) Load() (models.Collections, models.Stats, error) {
	var rows []achievementRow
	query := `SELECT id, bucket, position, title, description, icon, category, rarity,
		xp_reward, progress_percent, unlocked, unlocked_at, game_name, group_id, points,
		completed_at, updated_at
		FROM achievements ORDER BY bucket, position`
	if err := c.db.Select(&rows, query); err != nil {
		return models.Collections{}, models.Stats{}, fmt.Errorf("failed to load cached achievements: %w", err)
	}

	collections := models.Collections{
		Unlocked:   []models.Achievement{},
		InProgress: []models.Achievement{},
		Locked:     []models.Achievement{},
	}
	for _, r := range rows {
		switch r.Bucket {
		case "unlocked":
			collections.Unlocked = append(collections.Unlocked, r.toModel())
		case "inProgress":
			collections.InProgress = append(collections.InProgress, r.toModel())
		case "locked":
			collections.Locked = append(collections.Locked, r.toModel())
		}
	}

	var stats models.Stats
	err := c.db.Get(&stats, `SELECT total, unlocked, in_progress AS inprogress, locked,
		completion_rate AS completionrate FROM stats WHERE id = 1`)
	if err != nil {
		// No stats row yet; zero stats are fine.
		return collections, models.Stats{}, nil
	}
	return collections, stats, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}
