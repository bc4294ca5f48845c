package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "cache:page:"

// RedisCache is a PageCache backed by Redis, shared across processes.
type RedisCache struct {
	rc  *redis.Client
	ttl time.Duration
}

// NewRedis creates a RedisCache. A non-positive ttl falls back to DefaultTTL.
func NewRedis(rc *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{rc: rc, ttl: ttl}
}

// Get returns the cached body for a key.
func (c *RedisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	b, err := c.rc.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

// Set stores the body with the cache TTL. Errors are dropped: a failed cache
// write only costs a recompute on the next request.
func (c *RedisCache) Set(key string, body []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = c.rc.Set(ctx, redisKeyPrefix+key, body, c.ttl).Err()
}

// ClearAll deletes every page entry using SCAN over the key prefix.
func (c *RedisCache) ClearAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var cursor uint64
	for i := 0; i < 10; i++ { // bound rounds to avoid long loops
		keys, cur, err := c.rc.Scan(ctx, cursor, redisKeyPrefix+"*", 1000).Result()
		if err != nil {
			return
		}
		cursor = cur
		if len(keys) > 0 {
			pipe := c.rc.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			_, _ = pipe.Exec(ctx)
		}
		if cursor == 0 {
			return
		}
	}
}
