package events

import (
	"context"

	"eduadmin-client/utils/logger"

	"github.com/redis/go-redis/v9"
)

// channel name for cross-process expiry fan-out.
const expiredChannel = "eduadmin.session.expired"

// RedisBridge connects the local SessionExpiredBus to a Redis pub/sub channel
// so that an expiry detected by one process forces logout in every process
// sharing the session store.
type RedisBridge struct {
	client *redis.Client
	bus    *SessionExpiredBus
	logger logger.Logger
	sub    *redis.PubSub
	cancel context.CancelFunc
}

// NewRedisBridge starts listening for remote expiry announcements and
// republishes them on the local bus.
func NewRedisBridge(client *redis.Client, bus *SessionExpiredBus, log logger.Logger) *RedisBridge {
	ctx, cancel := context.WithCancel(context.Background())

	bridge := &RedisBridge{
		client: client,
		bus:    bus,
		logger: log,
		sub:    client.Subscribe(ctx, expiredChannel),
		cancel: cancel,
	}

	go bridge.listen(ctx)
	return bridge
}

func (b *RedisBridge) listen(ctx context.Context) {
	ch := b.sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			b.logger.Debug("Remote session-expired signal received")
			b.bus.Publish()
		}
	}
}

// Announce publishes the expiry signal to every process on the channel.
// Local subscribers are reached through the pub/sub round trip as well, so
// handlers must tolerate duplicate delivery (they already must).
func (b *RedisBridge) Announce(ctx context.Context) error {
	return b.client.Publish(ctx, expiredChannel, "expired").Err()
}

// Close stops the bridge.
func (b *RedisBridge) Close() error {
	b.cancel()
	return b.sub.Close()
}
