package models

import (
	"time"
)

// Rarity tiers control styling and celebration colors, not unlock logic.
const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityLegendary = "legendary"
)

// Criteria describes how an achievement is earned.
type Criteria struct {
	Threshold float64 `json:"threshold"`
	Type      string  `json:"type"`
}

// AchievementRecord is an achievement as the server sends it. The shape varies:
// newer records carry progressPercentage, older ones carry a raw progress count
// plus criteria, and the oldest carry goal/game fields from before the rename.
// Optional fields are pointers so absence is distinguishable from zero.
type AchievementRecord struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Category    string    `json:"category"`
	Rarity      string    `json:"rarity"`
	XPReward    int       `json:"xpReward"`
	Criteria    *Criteria `json:"criteria,omitempty"`

	Progress           *float64   `json:"progress,omitempty"`
	ProgressPercentage *float64   `json:"progressPercentage,omitempty"`
	Unlocked           *bool      `json:"unlocked,omitempty"`
	UnlockedAt         *Timestamp `json:"unlockedAt,omitempty"`

	// Legacy fields still present on older records.
	GoalName    string     `json:"goalName,omitempty"`
	GameName    string     `json:"gameName,omitempty"`
	CompletedAt *Timestamp `json:"completedAt,omitempty"`
	UpdatedAt   *Timestamp `json:"updatedAt,omitempty"`
	Points      *int       `json:"points,omitempty"`
	GroupID     string     `json:"groupId,omitempty"`
}

// Achievement is the canonical, shape-independent achievement every view
// consumes. Produced only by the normalizer.
type Achievement struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Icon            string     `json:"icon"`
	Category        string     `json:"category"`
	Rarity          string     `json:"rarity"`
	XPReward        int        `json:"xpReward"`
	ProgressPercent int        `json:"progressPercent"`
	Unlocked        bool       `json:"unlocked"`
	UnlockedAt      *time.Time `json:"unlockedAt,omitempty"`

	// Carried legacy fields; the sort engine and summaries still need them.
	GameName    string     `json:"gameName,omitempty"`
	GroupID     string     `json:"groupId,omitempty"`
	Points      *int       `json:"points,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Collections holds the three canonical buckets the server reports.
type Collections struct {
	Unlocked   []Achievement `json:"unlocked"`
	InProgress []Achievement `json:"inProgress"`
	Locked     []Achievement `json:"locked"`
}

// Stats are the server-computed aggregates over all achievements.
type Stats struct {
	Total          int     `json:"total"`
	Unlocked       int     `json:"unlocked"`
	InProgress     int     `json:"inProgress"`
	Locked         int     `json:"locked"`
	CompletionRate float64 `json:"completionRate"`
}

// NotificationEntry is one pending unlock notification. Each entry owns its
// dismiss timer; render order is enqueue order.
type NotificationEntry struct {
	ID          string      `json:"id"`
	Achievement Achievement `json:"achievement"`
	EnqueuedAt  time.Time   `json:"enqueuedAt"`
}

// LeaderboardEntry is one row of the global achievement leaderboard.
type LeaderboardEntry struct {
	UserID           string `json:"_id"`
	Username         string `json:"username"`
	AchievementCount int    `json:"achievementCount"`
	TotalXP          int    `json:"totalXP"`
}
