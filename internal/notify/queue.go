// internal/notify/queue.go
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tahcohcat/goalquest-web/internal/achievements"
	"github.com/tahcohcat/goalquest-web/internal/logger"
	"github.com/tahcohcat/goalquest-web/internal/models"
)

// DefaultDwell is how long a notification stays visible absent manual
// dismissal.
const DefaultDwell = 5 * time.Second

// Queue is the ordered list of pending unlock notifications. Render order is
// enqueue order. Every entry schedules its own auto-dismiss timer counted from
// its own enqueue time, so simultaneous unlocks each get a full dwell.
//
// Mutations replace the whole slice under the lock (copy-on-write), so
// snapshots handed out by Entries stay valid while timers fire.
type Queue struct {
	dwell     time.Duration
	celebrate func(models.Achievement)
	onChange  func([]models.NotificationEntry)
	log       *logger.Log

	mu      sync.Mutex
	entries []models.NotificationEntry
}

// New creates a queue. celebrate fires once per enqueue as a best-effort side
// effect; onChange reports every queue mutation. Both may be nil.
func New(dwell time.Duration, celebrate func(models.Achievement), onChange func([]models.NotificationEntry), log *logger.Log) *Queue {
	if dwell <= 0 {
		dwell = DefaultDwell
	}
	return &Queue{
		dwell:     dwell,
		celebrate: celebrate,
		onChange:  onChange,
		log:       log.WithComponent("notify"),
		entries:   []models.NotificationEntry{},
	}
}

// Enqueue appends a notification for the achievement and returns its id.
func (q *Queue) Enqueue(a models.Achievement) string {
	entry := models.NotificationEntry{
		ID:          uuid.NewString(),
		Achievement: achievements.WithDefaults(a),
		EnqueuedAt:  time.Now(),
	}

	q.mu.Lock()
	next := make([]models.NotificationEntry, len(q.entries)+1)
	copy(next, q.entries)
	next[len(next)-1] = entry
	q.entries = next
	snapshot := q.entries
	q.mu.Unlock()

	// Each entry dismisses itself, with the dwell counted from its own enqueue
	// time. Scheduled before the callbacks so a slow celebration cannot stretch
	// the dwell; an earlier manual Remove makes the firing a no-op.
	time.AfterFunc(q.dwell, func() {
		q.Remove(entry.ID)
	})

	q.fireCelebration(entry.Achievement)
	q.notifyChange(snapshot)

	return entry.ID
}

// Remove dismisses the notification with the given id. Removing an absent id
// is a no-op, which is what makes late timer firings safe.
func (q *Queue) Remove(id string) {
	q.mu.Lock()
	next := make([]models.NotificationEntry, 0, len(q.entries))
	for _, e := range q.entries {
		if e.ID != id {
			next = append(next, e)
		}
	}
	removed := len(next) != len(q.entries)
	if removed {
		q.entries = next
	}
	snapshot := q.entries
	q.mu.Unlock()

	if removed {
		q.notifyChange(snapshot)
	}
}

// Entries returns the live notifications in render order.
func (q *Queue) Entries() []models.NotificationEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]models.NotificationEntry, len(q.entries))
	copy(out, q.entries)
	return out
}

// fireCelebration runs the celebration hook. Failures there are presentation
// problems and must never block notification delivery.
func (q *Queue) fireCelebration(a models.Achievement) {
	if q.celebrate == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			q.log.Warnf("celebration effect failed: %v", r)
		}
	}()
	q.celebrate(a)
}

func (q *Queue) notifyChange(entries []models.NotificationEntry) {
	if q.onChange == nil {
		return
	}
	out := make([]models.NotificationEntry, len(entries))
	copy(out, entries)
	q.onChange(out)
}
