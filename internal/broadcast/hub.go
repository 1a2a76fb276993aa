// Package broadcast drives the periodic metrics fan-out to subscribers.
package broadcast

import (
	"log/slog"
	"sync"

	"github.com/holee9/gx10-dashboard/internal/model"
)

// Subscriber is one connected viewer. Send must not block on a slow
// consumer: transports queue internally and return an error when the
// subscriber can no longer keep up or has gone away.
type Subscriber interface {
	Send(msg model.WireMessage) error
}

// Hub is the registry of currently connected subscribers. Fan-out is
// unordered and best-effort; a subscriber whose Send fails is pruned.
type Hub struct {
	mu   sync.RWMutex
	subs map[Subscriber]struct{}
}

// NewHub returns an empty registry.
func NewHub() *Hub {
	return &Hub{subs: make(map[Subscriber]struct{})}
}

// Add registers a subscriber.
func (h *Hub) Add(sub Subscriber) {
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()
	slog.Info("subscriber connected", "total", n)
}

// Remove unregisters a subscriber. Removing an unknown subscriber is a no-op.
func (h *Hub) Remove(sub Subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		slog.Info("subscriber disconnected", "total", len(h.subs))
	}
	h.mu.Unlock()
}

// Count returns the number of registered subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Broadcast delivers msg to every registered subscriber. Delivery errors are
// isolated per subscriber: the failing one is pruned and the rest still
// receive the message.
func (h *Hub) Broadcast(msg model.WireMessage) {
	h.mu.RLock()
	subs := make([]Subscriber, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.Send(msg); err != nil {
			slog.Warn("pruning subscriber", "error", err)
			h.Remove(sub)
		}
	}
}
