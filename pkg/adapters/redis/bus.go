// Package redis provides a cascade bus backed by Redis pub/sub, so a state
// change in one process can trigger cascading elements in another (e.g.
// multiple signage screens driven by the same page definition). It carries
// notifications only; element state is never persisted.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/shift/pkg/domain"
	"github.com/aretw0/shift/pkg/ports"
)

// Bus implements ports.Bus over Redis pub/sub. Each element gets its own
// channel under the configured prefix; wildcard subscriptions use a pattern
// subscription.
type Bus struct {
	client *backend.Client
	prefix string

	mu     sync.Mutex
	subs   []*subscription
	closed bool
}

type subscription struct {
	pubsub *backend.PubSub
	cancel context.CancelFunc
	done   chan struct{}
}

var _ ports.Bus = (*Bus)(nil)

// Option configures the bus.
type Option func(*Bus)

// WithPrefix sets the channel name prefix.
func WithPrefix(prefix string) Option {
	return func(b *Bus) {
		b.prefix = prefix
	}
}

// New creates a bus with its own Redis client.
func New(address, password string, db int, opts ...Option) *Bus {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a bus from an existing client. The client is not
// closed by Close.
func NewFromClient(client *backend.Client, opts ...Option) *Bus {
	b := &Bus{
		client: client,
		prefix: "shift:cascade:",
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bus) channel(elementID string) string {
	return b.prefix + elementID
}

// Publish sends the notification on the element's channel.
func (b *Bus) Publish(ctx context.Context, evt *domain.StateChangedEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshaling state change: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel(evt.ElementID), data).Err(); err != nil {
		return fmt.Errorf("publishing state change: %w", err)
	}
	return nil
}

// Subscribe listens on one element's channel, or on every channel under the
// prefix when sourceID is ports.SubscribeAll.
func (b *Bus) Subscribe(sourceID string, fn func(*domain.StateChangedEvent)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("bus is closed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	var pubsub *backend.PubSub
	if sourceID == ports.SubscribeAll {
		pubsub = b.client.PSubscribe(ctx, b.prefix+"*")
	} else {
		pubsub = b.client.Subscribe(ctx, b.channel(sourceID))
	}

	sub := &subscription{pubsub: pubsub, cancel: cancel, done: make(chan struct{})}
	b.subs = append(b.subs, sub)

	go func() {
		defer close(sub.done)
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var evt domain.StateChangedEvent
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					continue
				}
				fn(&evt)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.cancel()
			_ = sub.pubsub.Close()
			<-sub.done
		})
	}, nil
}

// Close cancels every subscription. The underlying client is left open for
// the caller to manage.
func (b *Bus) Close() error {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.closed = true
	b.mu.Unlock()

	for _, sub := range subs {
		sub.cancel()
		_ = sub.pubsub.Close()
		<-sub.done
	}
	return nil
}
