package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPublishReachesAllSubscribers tests multi-listener delivery
func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewSessionExpiredBus()

	first, second := 0, 0
	bus.Subscribe(func() { first++ })
	bus.Subscribe(func() { second++ })

	bus.Publish()

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}

// TestUnsubscribe tests that a removed handler no longer fires
func TestUnsubscribe(t *testing.T) {
	bus := NewSessionExpiredBus()

	calls := 0
	unsubscribe := bus.Subscribe(func() { calls++ })

	bus.Publish()
	unsubscribe()
	bus.Publish()

	assert.Equal(t, 1, calls)
}

// TestDuplicateDelivery tests that publishing twice reaches handlers twice,
// matching the contract that handlers themselves must be idempotent
func TestDuplicateDelivery(t *testing.T) {
	bus := NewSessionExpiredBus()

	calls := 0
	bus.Subscribe(func() { calls++ })

	bus.Publish()
	bus.Publish()

	assert.Equal(t, 2, calls)
}

// TestPublishWithNoSubscribers tests that an empty bus does not panic
func TestPublishWithNoSubscribers(t *testing.T) {
	bus := NewSessionExpiredBus()
	assert.NotPanics(t, func() { bus.Publish() })
}

// TestHandlerMayUnsubscribeItself tests self-removal during delivery
func TestHandlerMayUnsubscribeItself(t *testing.T) {
	bus := NewSessionExpiredBus()

	calls := 0
	var unsubscribe func()
	unsubscribe = bus.Subscribe(func() {
		calls++
		unsubscribe()
	})

	bus.Publish()
	bus.Publish()

	assert.Equal(t, 1, calls)
}
