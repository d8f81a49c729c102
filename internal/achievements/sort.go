// internal/achievements/sort.go
package achievements

import (
	"sort"
	"time"

	"github.com/tahcohcat/goalquest-web/internal/models"
)

const (
	SortRecent = "recent"
	SortOldest = "oldest"
	SortGame   = "game"
)

// Sort returns a new list ordered by the requested mode. An unknown mode is a
// stable no-op: the input order comes back unchanged. The input is never
// mutated.
func Sort(list []models.Achievement, sortBy string) []models.Achievement {
	out := make([]models.Achievement, len(list))
	copy(out, list)

	switch sortBy {
	case SortRecent:
		sort.SliceStable(out, func(i, j int) bool {
			return effectiveDate(out[i]).After(effectiveDate(out[j]))
		})
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return effectiveDate(out[i]).Before(effectiveDate(out[j]))
		})
	case SortGame:
		sort.SliceStable(out, func(i, j int) bool {
			return groupKey(out[i]) < groupKey(out[j])
		})
	}
	return out
}

// effectiveDate is the first present of completedAt, updatedAt, unlockedAt.
// Achievements with no dates sort as epoch 0.
func effectiveDate(a models.Achievement) time.Time {
	switch {
	case a.CompletedAt != nil:
		return *a.CompletedAt
	case a.UpdatedAt != nil:
		return *a.UpdatedAt
	case a.UnlockedAt != nil:
		return *a.UnlockedAt
	}
	return time.Unix(0, 0)
}

// groupKey prefers the legacy gameName over category. Observed behavior of the
// old client, kept as-is.
func groupKey(a models.Achievement) string {
	if a.GameName != "" {
		return a.GameName
	}
	return a.Category
}

// Summary holds the aggregates shown above a list. They are always computed
// from the list actually rendered, never from the raw store, so the numbers
// match the visible set.
type Summary struct {
	Count       int `json:"count"`
	Groups      int `json:"groups"`
	TotalPoints int `json:"totalPoints"`
}

func Summarize(list []models.Achievement) Summary {
	groups := make(map[string]struct{})
	total := 0
	for _, a := range list {
		if key := groupKey(a); key != "" {
			groups[key] = struct{}{}
		}
		if a.Points != nil {
			total += *a.Points
		} else {
			total += a.XPReward
		}
	}
	return Summary{Count: len(list), Groups: len(groups), TotalPoints: total}
}
