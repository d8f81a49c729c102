// internal/achievements/normalize.go
package achievements

import (
	"fmt"
	"math"

	"github.com/tahcohcat/goalquest-web/internal/models"
)

// Normalize converts a raw achievement record, old or new shape, into the
// canonical form. It is the only place dual-shape defaulting happens; cards,
// the detail panel and notifications all consume its output.
func Normalize(rec models.AchievementRecord) models.Achievement {
	unlocked := rec.UnlockedAt.Ptr() != nil || (rec.Unlocked != nil && *rec.Unlocked)

	var percent int
	switch {
	case rec.ProgressPercentage != nil:
		percent = clampPercent(*rec.ProgressPercentage)
	case rec.Progress != nil && rec.Criteria != nil && rec.Criteria.Threshold > 0:
		percent = clampPercent(*rec.Progress / rec.Criteria.Threshold * 100)
	case unlocked:
		percent = 100
	default:
		percent = 0
	}

	rarity := rec.Rarity
	if rarity == "" {
		rarity = models.RarityCommon
	}

	title := rec.Title
	if title == "" {
		title = rec.GoalName
	}

	return models.Achievement{
		ID:              rec.ID,
		Title:           title,
		Description:     rec.Description,
		Icon:            rec.Icon,
		Category:        rec.Category,
		Rarity:          rarity,
		XPReward:        rec.XPReward,
		ProgressPercent: percent,
		Unlocked:        unlocked,
		UnlockedAt:      rec.UnlockedAt.Ptr(),
		GameName:        rec.GameName,
		GroupID:         rec.GroupID,
		Points:          rec.Points,
		CompletedAt:     rec.CompletedAt.Ptr(),
		UpdatedAt:       rec.UpdatedAt.Ptr(),
	}
}

// WithDefaults fills the fields a notification card cannot render without.
func WithDefaults(a models.Achievement) models.Achievement {
	if a.Title == "" {
		a.Title = "Achievement Unlocked"
	}
	if a.Category == "" {
		a.Category = "General"
	}
	if a.Rarity == "" {
		a.Rarity = models.RarityCommon
	}
	if a.XPReward < 0 {
		a.XPReward = 0
	}
	return a
}

// ProgressLabel renders the progress line shown under a card.
func ProgressLabel(a models.Achievement) string {
	if a.Unlocked {
		return "Unlocked"
	}
	return fmt.Sprintf("%d%% complete", a.ProgressPercent)
}

func clampPercent(v float64) int {
	rounded := int(math.Round(v))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}
