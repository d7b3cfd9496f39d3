// Package memory provides an in-process broker for single-node deployments
// and tests. Delivery is best-effort: a subscriber with a full buffer drops
// the message rather than blocking the publisher.
package memory

import (
	"context"
	"sync"

	"github.com/careloop/careops-api/pkg/messaging"
)

const subscriberBuffer = 100

type MemoryBroker struct {
	mu          sync.RWMutex
	subscribers map[string][]chan []byte
	closed      bool
}

func NewMemoryBroker() messaging.Broker {
	return &MemoryBroker{subscribers: make(map[string][]chan []byte)}
}

func (b *MemoryBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers[topic] {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, topic string) (<-chan []byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan []byte, subscriberBuffer)
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	return ch, nil
}

func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for _, chans := range b.subscribers {
		for _, ch := range chans {
			close(ch)
		}
	}
	b.subscribers = make(map[string][]chan []byte)
	return nil
}
