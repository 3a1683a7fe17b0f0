// Package bus provides the in-process cascade bus: an explicit
// publish/subscribe registry keyed by element ID.
package bus

import (
	"context"
	"sync"

	"github.com/aretw0/shift/pkg/domain"
	"github.com/aretw0/shift/pkg/ports"
)

type subscriber struct {
	id int
	fn func(*domain.StateChangedEvent)
}

// Bus implements ports.Bus with an in-memory registry.
// Safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string][]subscriber
	closed bool
}

var _ ports.Bus = (*Bus)(nil)

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[string][]subscriber)}
}

// Publish delivers the event synchronously to every matching subscriber.
// Handlers run on the caller's goroutine, which keeps cascade chains ordered
// by construction.
func (b *Bus) Publish(_ context.Context, evt *domain.StateChangedEvent) error {
	b.mu.RLock()
	targets := make([]subscriber, 0, len(b.subs[evt.ElementID])+len(b.subs[ports.SubscribeAll]))
	targets = append(targets, b.subs[evt.ElementID]...)
	targets = append(targets, b.subs[ports.SubscribeAll]...)
	b.mu.RUnlock()

	for _, s := range targets {
		s.fn(evt)
	}
	return nil
}

// Subscribe registers a handler for one source element, or for every source
// when sourceID is ports.SubscribeAll.
func (b *Bus) Subscribe(sourceID string, fn func(*domain.StateChangedEvent)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := subscriber{id: b.nextID, fn: fn}
	b.subs[sourceID] = append(b.subs[sourceID], sub)

	id := sub.id
	return func() { b.unsubscribe(sourceID, id) }, nil
}

func (b *Bus) unsubscribe(sourceID string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[sourceID]
	for i, s := range list {
		if s.id == id {
			b.subs[sourceID] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(b.subs[sourceID]) == 0 {
		delete(b.subs, sourceID)
	}
}

// Close drops every subscription.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[string][]subscriber)
	b.closed = true
	return nil
}
