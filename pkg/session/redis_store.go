package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis. Record lifetime maps onto key TTL,
// so expired sessions evict themselves.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "session:",
	}
}

func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	if rec.Token == "" {
		return ErrInvalidToken
	}

	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return ErrSessionExpired
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+rec.Token, raw, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, token string) (Record, error) {
	raw, err := s.client.Get(ctx, s.prefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, ErrSessionNotFound
		}
		return Record{}, err
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, err
	}

	if rec.IsExpired() {
		_ = s.client.Del(ctx, s.prefix+token).Err()
		return Record{}, ErrSessionExpired
	}

	return rec, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.prefix+token).Err()
}

var _ Store = (*RedisStore)(nil)
