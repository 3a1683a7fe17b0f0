package ports

import (
	"context"

	"github.com/aretw0/shift/pkg/domain"
)

// SubscribeAll is the wildcard source ID: the handler receives every
// published notification regardless of origin.
const SubscribeAll = "*"

// Bus carries state-change notifications between engines. An engine that
// declares a cascade source subscribes to that source's element ID; the
// composition root publishes every state change it observes.
//
// Implementations must be safe for concurrent use: timer callbacks publish
// from their own goroutines.
type Bus interface {
	// Publish delivers the event to every subscriber of its element ID and
	// to wildcard subscribers.
	Publish(ctx context.Context, evt *domain.StateChangedEvent) error

	// Subscribe registers a handler for notifications from the given source
	// element, or from all elements when sourceID is SubscribeAll. The
	// returned func cancels the subscription and is safe to call more than
	// once.
	Subscribe(sourceID string, fn func(*domain.StateChangedEvent)) (cancel func(), err error)

	// Close releases the bus and every remaining subscription.
	Close() error
}
