// internal/events/bridge.go
package events

import (
	"context"
	"sync"
	"time"

	"github.com/tahcohcat/goalquest-web/internal/logger"
)

// Checker is the unlock detector as the bridge sees it.
type Checker interface {
	Check(ctx context.Context) bool
}

// Bridge connects the achievement-update signal to the unlock detector. The
// detector already refreshes the store when it finds unlocks, so the bridge
// performs no refresh of its own. With a poll interval set it also ticks the
// detector periodically as a fallback for missed signals.
type Bridge struct {
	detector    Checker
	unsubscribe func()
	stop        chan struct{}
	closeOnce   sync.Once
	log         *logger.Log
}

func NewBridge(bus *Bus, detector Checker, pollInterval time.Duration, log *logger.Log) *Bridge {
	b := &Bridge{
		detector: detector,
		stop:     make(chan struct{}),
		log:      log.WithComponent("bridge"),
	}
	b.unsubscribe = bus.Subscribe(b.onSignal)

	if pollInterval > 0 {
		go b.poll(pollInterval)
	}
	return b
}

func (b *Bridge) onSignal() {
	if b.detector.Check(context.Background()) {
		b.log.Debug("unlock signal handled")
	}
}

func (b *Bridge) poll(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.detector.Check(context.Background())
		case <-b.stop:
			return
		}
	}
}

// Close tears the subscription down exactly once and stops polling.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		b.unsubscribe()
		close(b.stop)
	})
}
