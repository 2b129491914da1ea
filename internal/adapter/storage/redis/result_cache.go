package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ResultCache implements ports.ResultCache using Redis.
type ResultCache struct {
	client *goredis.Client
	prefix string
}

// NewResultCache creates a new Redis-backed cache of approved results.
func NewResultCache(client *goredis.Client) *ResultCache {
	return &ResultCache{
		client: client,
		prefix: "result:",
	}
}

// Get retrieves a cached result by replay key.
// Returns nil, nil if the key does not exist.
func (c *ResultCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis result get: %w", err)
	}
	return val, nil
}

// Set stores a result with TTL.
func (c *ResultCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis result set: %w", err)
	}
	return nil
}
