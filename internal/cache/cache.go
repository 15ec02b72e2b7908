// Package cache wraps redis as a fail-safe lookaside cache: every error,
// including an unreachable redis, degrades to a cache miss so callers always
// fall through to the database.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is a fail-safe redis wrapper. A nil *Client is valid and behaves as
// an always-empty cache, which keeps tests and redis-less deployments simple.
type Client struct {
	rdb *redis.Client
}

// New connects a Client to the given redis instance.
func New(addr, password string, db int) *Client {
	return &Client{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Get returns the value for key, or nil on miss or redis failure.
func (c *Client) Get(ctx context.Context, key string) []byte {
	if c == nil || c.rdb == nil {
		return nil
	}
	res, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	return res
}

// Set stores value under key with a TTL, ignoring redis failures.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Set(ctx, key, value, ttl)
}

// Delete removes key. Invalidation must not be skipped silently on redis
// failure, so unlike Get/Set the error is reported.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, key).Err()
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
