// Package events carries the process-wide session-expired broadcast. Any
// collaborator may announce expiry (the polling monitor, an HTTP client that
// saw an auth-rejected response); every subscriber reacts through the same
// path. Handlers must be idempotent: the same logical expiry can be observed
// more than once.
package events

import (
	"sync"

	"github.com/google/uuid"
)

// SessionExpiredBus is the fire-and-forget broadcast channel.
type SessionExpiredBus struct {
	mu       sync.RWMutex
	handlers map[string]func()
}

// NewSessionExpiredBus creates an empty bus.
func NewSessionExpiredBus() *SessionExpiredBus {
	return &SessionExpiredBus{handlers: make(map[string]func())}
}

// Subscribe registers a handler and returns a function that removes it.
func (b *SessionExpiredBus) Subscribe(handler func()) (unsubscribe func()) {
	id := uuid.New().String()

	b.mu.Lock()
	b.handlers[id] = handler
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

// Publish delivers the expiry signal to every subscriber. Delivery is
// synchronous so that by the time Publish returns, the forced-logout path has
// already run. Handlers are invoked outside the lock; a handler may
// unsubscribe itself.
func (b *SessionExpiredBus) Publish() {
	b.mu.RLock()
	handlers := make([]func(), 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h()
	}
}
