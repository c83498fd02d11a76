// Package events fans store notifications out to subscribers: the facade's
// reactive consumers and anything else that wants cart change callbacks.
package events

import (
	"sync"

	"github.com/sugarloaf/cakecart/internal/domains/cart/domain"
	"github.com/sugarloaf/cakecart/internal/domains/cart/ports"
)

var _ ports.Events = (*Broadcaster)(nil)

// Subscriber receives store notifications. Callbacks run on the mutating
// goroutine and must return quickly; nil fields are skipped.
type Subscriber struct {
	OnCartChanged     func(userID string, snapshot ports.Snapshot)
	OnSwitchRequested func(userID string, request domain.SwitchRequest)
}

// Broadcaster is a fan-out Events implementation.
type Broadcaster struct {
	mu   sync.RWMutex
	next int
	subs map[int]Subscriber
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: map[int]Subscriber{}}
}

// Subscribe registers a subscriber and returns an unsubscribe function.
func (b *Broadcaster) Subscribe(sub Subscriber) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = sub
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *Broadcaster) CartChanged(userID string, snapshot ports.Snapshot) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if sub.OnCartChanged != nil {
			sub.OnCartChanged(userID, snapshot)
		}
	}
}

func (b *Broadcaster) SwitchRequested(userID string, request domain.SwitchRequest) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if sub.OnSwitchRequested != nil {
			sub.OnSwitchRequested(userID, request)
		}
	}
}
