package storage

import (
	"context"
	"errors"
	"fmt"

	"eduadmin-client/models"
	"eduadmin-client/utils/logger"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a KeyValueStore backed by Redis, for deployments that already
// run Redis and want session state shared across devices.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger logger.Logger
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg *models.Config, log logger.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	log.Infof("Redis session store initialized (addr: %s)", cfg.RedisAddr)
	return &RedisStore{
		client: client,
		prefix: cfg.AppName + ":",
		logger: log,
	}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Client exposes the underlying connection for collaborators that share it
// (e.g. the pub/sub session-expired bridge).
func (s *RedisStore) Client() *redis.Client {
	return s.client
}
