package cartlock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "cartlock:"

// RedisStore keeps lock records in Redis with a TTL matching the lock
// expiry, so abandoned locks evict themselves even without a sweep.
type RedisStore struct {
	redis *redis.Client
}

func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{redis: redisClient}
}

func lockKey(identity string) string {
	return redisKeyPrefix + identity
}

func (s *RedisStore) Acquire(ctx context.Context, lock *Lock) (bool, error) {
	data, err := json.Marshal(lock)
	if err != nil {
		return false, fmt.Errorf("cartlock: marshal: %w", err)
	}

	ttl := time.Until(lock.ExpiresAt)
	if ttl <= 0 {
		return false, fmt.Errorf("cartlock: lock already expired at creation")
	}

	ok, err := s.redis.SetNX(ctx, lockKey(lock.Identity), data, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("cartlock: setnx: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Get(ctx context.Context, identity string) (*Lock, error) {
	data, err := s.redis.Get(ctx, lockKey(identity)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cartlock: get: %w", err)
	}

	var lock Lock
	if err := json.Unmarshal([]byte(data), &lock); err != nil {
		return nil, fmt.Errorf("cartlock: unmarshal: %w", err)
	}
	return &lock, nil
}

func (s *RedisStore) Put(ctx context.Context, lock *Lock) error {
	data, err := json.Marshal(lock)
	if err != nil {
		return fmt.Errorf("cartlock: marshal: %w", err)
	}

	if err := s.redis.Set(ctx, lockKey(lock.Identity), data, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("cartlock: set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, identity string) (bool, error) {
	n, err := s.redis.Del(ctx, lockKey(identity)).Result()
	if err != nil {
		return false, fmt.Errorf("cartlock: del: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) Identities(ctx context.Context) ([]string, error) {
	keys, err := s.redis.Keys(ctx, redisKeyPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("cartlock: keys: %w", err)
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, strings.TrimPrefix(key, redisKeyPrefix))
	}
	return ids, nil
}
