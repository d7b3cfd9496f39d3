// Package event carries change notifications from the lifecycle services to
// whatever is watching the store: UI sessions, the metrics layer, or the
// messaging bridge that fans changes out to other processes.
package event

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Change describes one completed mutation.
type Change struct {
	Resource   string    `json:"resource"`
	Operation  string    `json:"operation"`
	EntityID   uuid.UUID `json:"entity_id"`
	ClientID   uuid.UUID `json:"client_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Subscriber receives every change exactly once.
type Subscriber func(Change)

// Notifier is the subscribe/notify contract the services publish through.
// After a mutating operation returns, all subscribers have been notified
// exactly once; the notifier's lock serializes notifications so no subscriber
// sees changes out of order.
type Notifier interface {
	Subscribe(fn Subscriber) uuid.UUID
	Unsubscribe(id uuid.UUID)
	Notify(change Change)
}

type notifier struct {
	mu          sync.Mutex
	subscribers map[uuid.UUID]Subscriber
}

func NewNotifier() Notifier {
	return &notifier{subscribers: make(map[uuid.UUID]Subscriber)}
}

func (n *notifier) Subscribe(fn Subscriber) uuid.UUID {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := uuid.New()
	n.subscribers[id] = fn
	return id
}

func (n *notifier) Unsubscribe(id uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.subscribers, id)
}

// Notify calls every subscriber synchronously under the notifier lock, so the
// next mutation cannot be observed before all subscribers saw this one.
func (n *notifier) Notify(change Change) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if change.OccurredAt.IsZero() {
		change.OccurredAt = time.Now()
	}
	for _, fn := range n.subscribers {
		fn(change)
	}
}
