package novelty

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the recent-outputs window with Redis so multiple
// processes share one novelty view. Entries expire after the configured TTL
// instead of being evicted by count.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

const redisKeyPrefix = "slopwatch:novelty:"

// NewRedisStore wraps an existing Redis client. A zero ttl defaults to one hour.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

// IsRecentDuplicate reports whether the hash key still exists in Redis.
func (s *RedisStore) IsRecentDuplicate(ctx context.Context, hash string) (bool, error) {
	err := s.client.Get(ctx, redisKeyPrefix+hash).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Record stores the hash with the configured TTL.
func (s *RedisStore) Record(ctx context.Context, hash string) error {
	return s.client.Set(ctx, redisKeyPrefix+hash, 1, s.ttl).Err()
}
