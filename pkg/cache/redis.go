package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefixes used by RedisStore
const (
	PrefixValue = "blog:cache:"
	PrefixTag   = "blog:tag:"
)

// tag sets outlive their members so a late invalidation still finds them
const tagSetTTL = 24 * time.Hour

// RedisStore keeps values in Redis with one SET per tag listing its keys
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps a connected client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get reads a value
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, PrefixValue+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return data, true, nil
}

// Set writes the value and records it in each tag set
func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags []string) error {
	if ttl < 0 {
		ttl = 0
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, PrefixValue+key, value, ttl)
		for _, tag := range tags {
			pipe.SAdd(ctx, PrefixTag+tag, key)
			pipe.Expire(ctx, PrefixTag+tag, tagSetTTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate deletes every key listed in the tag sets, then the sets
func (r *RedisStore) Invalidate(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		members, err := r.client.SMembers(ctx, PrefixTag+tag).Result()
		if err != nil {
			return fmt.Errorf("redis smembers %s: %w", tag, err)
		}
		keys := make([]string, 0, len(members)+1)
		for _, m := range members {
			keys = append(keys, PrefixValue+m)
		}
		keys = append(keys, PrefixTag+tag)
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("redis del %s: %w", tag, err)
		}
	}
	return nil
}

// Ping checks the connection
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
