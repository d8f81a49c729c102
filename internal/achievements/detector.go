// internal/achievements/detector.go
package achievements

import (
	"context"

	"github.com/tahcohcat/goalquest-web/internal/client"
	"github.com/tahcohcat/goalquest-web/internal/logger"
	"github.com/tahcohcat/goalquest-web/internal/models"
	"github.com/tahcohcat/goalquest-web/internal/session"
)

// Notifier receives one notification per newly unlocked achievement.
type Notifier interface {
	Enqueue(a models.Achievement) string
}

// Detector asks the server whether achievements unlocked since the last check
// and turns positive answers into notifications plus a single store refresh.
// It never lets an error escape: callers polling or reacting to signals must
// not be crashed by a transient failure.
type Detector struct {
	gate  *session.Gate
	api   *client.Client
	store *Store
	queue Notifier
	log   *logger.Log
}

func NewDetector(gate *session.Gate, api *client.Client, store *Store, queue Notifier, log *logger.Log) *Detector {
	return &Detector{
		gate:  gate,
		api:   api,
		store: store,
		queue: queue,
		log:   log.WithComponent("detector"),
	}
}

// Check returns true only when at least one new unlock was found. Notifications
// are enqueued strictly in server order; a non-empty result triggers exactly
// one store refresh so lists and stats match what was just announced.
func (d *Detector) Check(ctx context.Context) bool {
	if !d.gate.CheckAuthentication(ctx) {
		return false
	}

	records, err := d.api.CheckNew(ctx)
	if err != nil {
		d.log.WithError(err).Warn("unlock check failed")
		return false
	}
	if len(records) == 0 {
		return false
	}

	for _, rec := range records {
		d.queue.Enqueue(Normalize(rec))
	}
	d.log.Infof("%d new achievement(s) unlocked", len(records))

	d.store.Fetch(ctx)
	return true
}
