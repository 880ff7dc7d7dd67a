package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"messenger-service/internal/observability"
)

// Cache is the shared key-value store used for ephemeral cross-process
// state: presence, typing flags and the recent-message ring buffers.
// Values are JSON-encoded. Read failures degrade to a miss and are never
// fatal; write failures are returned to the caller.
type Cache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string, dest any) (bool, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	PushList(ctx context.Context, key string, value any) error
	RangeList(ctx context.Context, key string, start, end int64) ([]string, error)
	TrimList(ctx context.Context, key string, start, end int64) error
}

// RedisCache implements Cache on go-redis. The client reconnects with its
// own capped exponential backoff, so callers never see connection churn.
type RedisCache struct {
	client *redis.Client
}

// Connect dials Redis and verifies the connection.
func Connect(ctx context.Context, addr, password string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            addr,
		Password:        password,
		MaxRetries:      5,
		MinRetryBackoff: 50 * time.Millisecond,
		MaxRetryBackoff: 2 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Client exposes the underlying connection for pub/sub use.
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache set %s: marshal: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Get unmarshals the value at key into dest. It returns false on a miss and
// on any read failure; a broken cache must never block a request.
func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("cache get %s failed, treating as miss: %v", key, err)
			observability.IncCacheMiss()
		}
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("cache get %s: stale encoding, treating as miss: %v", key, err)
		return false, nil
	}
	observability.IncCacheHit()
	return true, nil
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache del %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		log.Printf("cache exists %s failed, treating as absent: %v", key, err)
		return false, nil
	}
	return n == 1, nil
}

func (c *RedisCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("cache expire %s: %w", key, err)
	}
	return nil
}

// PushList prepends a JSON-encoded value to the list at key.
func (c *RedisCache) PushList(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache push %s: marshal: %w", key, err)
	}
	if err := c.client.LPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("cache push %s: %w", key, err)
	}
	return nil
}

// RangeList returns raw JSON entries. Failures degrade to an empty slice.
func (c *RedisCache) RangeList(ctx context.Context, key string, start, end int64) ([]string, error) {
	entries, err := c.client.LRange(ctx, key, start, end).Result()
	if err != nil {
		log.Printf("cache range %s failed, treating as empty: %v", key, err)
		return nil, nil
	}
	return entries, nil
}

func (c *RedisCache) TrimList(ctx context.Context, key string, start, end int64) error {
	if err := c.client.LTrim(ctx, key, start, end).Err(); err != nil {
		return fmt.Errorf("cache trim %s: %w", key, err)
	}
	return nil
}

var _ Cache = (*RedisCache)(nil)
