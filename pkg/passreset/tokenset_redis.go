package passreset

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokenSet is the durable implementation, surviving restarts and shared
// across replicas. SET NX gives the at-most-one-consumer guarantee; the TTL
// replaces the memory implementation's size-triggered clear and should match
// the provider-side token lifetime.
type RedisTokenSet struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisTokenSet creates a Redis-backed token set.
func NewRedisTokenSet(client *redis.Client, ttl time.Duration) *RedisTokenSet {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisTokenSet{
		client: client,
		prefix: "passreset:used:",
		ttl:    ttl,
	}
}

func (s *RedisTokenSet) Reserve(ctx context.Context, token string) (bool, error) {
	return s.client.SetNX(ctx, s.prefix+token, 1, s.ttl).Result()
}

func (s *RedisTokenSet) Release(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.prefix+token).Err()
}

var _ UsedTokenSet = (*RedisTokenSet)(nil)
