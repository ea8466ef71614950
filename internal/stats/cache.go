package stats

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a best-effort JSON cache over Redis. Every method degrades to a
// miss or no-op on any error; the caller recomputes.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps a Redis client with a TTL. Returns nil when the client is
// nil or the TTL is not positive, so callers can pass the result straight
// to NewService.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

// Read decodes the cached value into out, reporting whether it was a hit.
func (c *Cache) Read(ctx context.Context, key string, out any) bool {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

// Write stores the value under key with the configured TTL.
func (c *Cache) Write(ctx context.Context, key string, val any) {
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, data, c.ttl).Err()
}

// Invalidate drops a cached key.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	_ = c.client.Del(ctx, key).Err()
}
