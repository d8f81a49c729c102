// internal/events/bus.go
package events

import (
	"sync"
)

// Bus is a typed replacement for the global "achievementUpdate" broadcast the
// goal-completion flow raises. Signals carry no payload.
type Bus struct {
	mu   sync.Mutex
	subs map[int]func()
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]func())}
}

// Subscribe registers fn and returns an unsubscribe function. Unsubscribing
// more than once is safe.
func (b *Bus) Subscribe(fn func()) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish invokes every current subscriber. Subscribers run outside the lock
// so they may unsubscribe or publish again.
func (b *Bus) Publish() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
