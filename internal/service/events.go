package service

import (
	"sync"

	"payment-terminal-bridge/internal/core/domain"
)

const eventBufferSize = 32

// EventBus fans StatusEvents out to per-terminal subscribers.
type EventBus struct {
	mu      sync.RWMutex
	clients map[string]map[chan domain.StatusEvent]struct{}
	closed  bool
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{clients: make(map[string]map[chan domain.StatusEvent]struct{})}
}

// Publish delivers ev to every subscriber of its terminal. A subscriber that
// is not keeping up misses the event.
func (b *EventBus) Publish(ev domain.StatusEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.clients[ev.TerminalID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a listener for terminalID. Returns the channel and an
// unsubscribe func that closes it.
func (b *EventBus) Subscribe(terminalID string) (<-chan domain.StatusEvent, func()) {
	ch := make(chan domain.StatusEvent, eventBufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	if b.clients[terminalID] == nil {
		b.clients[terminalID] = make(map[chan domain.StatusEvent]struct{})
	}
	b.clients[terminalID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.clients[terminalID][ch]; !ok {
				return // already closed by Close
			}
			delete(b.clients[terminalID], ch)
			if len(b.clients[terminalID]) == 0 {
				delete(b.clients, terminalID)
			}
			close(ch)
		})
	}
}

// SubscriberCount returns the number of listeners on terminalID.
func (b *EventBus) SubscriberCount(terminalID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients[terminalID])
}

// Close ends every subscription, which lets open event streams finish during
// server shutdown. Later subscriptions receive an already closed channel.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for terminalID, subs := range b.clients {
		for ch := range subs {
			close(ch)
		}
		delete(b.clients, terminalID)
	}
}
