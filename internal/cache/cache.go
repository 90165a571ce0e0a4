// Package cache provides a Redis-based caching layer with the cache-aside
// pattern, used to take dashboard reads off the hot path.
//
// CACHE-ASIDE:
// The caller asks the cache first; on a miss it computes the value from the
// store and writes it back with a TTL. The cache is never the source of
// truth — losing Redis only costs latency, never correctness — so every
// Redis error here degrades to a miss instead of failing the request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides JSON-serialized caching operations on top of a Redis
// client. All keys are namespaced with a prefix so several deployments can
// share one Redis.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New creates a cache instance around an existing Redis client.
func New(client *redis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Get retrieves a value from the cache into dest.
// Returns true on a hit, false on a miss. Redis errors count as misses.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false // cache disabled
	}

	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		// redis.Nil is an ordinary miss; anything else we also treat as a
		// miss so a flaky Redis never breaks a read path.
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false
	}
	return true
}

// Set stores a value in the cache with the configured TTL. Errors are
// swallowed for the same reason Get degrades to a miss.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	if c == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.prefix+key, data, c.ttl)
}

// Delete removes one or more keys from the cache. Used by writers to
// invalidate derived values after a mutation.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	c.client.Del(ctx, full...)
}

// Ping verifies the Redis connection. Called once at startup so a bad
// REDIS_ADDR surfaces immediately instead of as silent cache misses.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return errors.New("cache: not configured")
	}
	return c.client.Ping(ctx).Err()
}
