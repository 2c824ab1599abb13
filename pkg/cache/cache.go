// Package cache is a thin Redis wrapper used for read-heavy reference data.
// A nil *Client is valid and behaves as a disabled cache, so callers never
// branch on whether Redis is configured.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is absent or the cache is disabled.
var ErrMiss = errors.New("cache miss")

// Client wraps a Redis connection with a default TTL.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to Redis at addr. An empty addr returns a nil (disabled)
// client.
func New(addr, password string, db int, ttl time.Duration) *Client {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Client{rdb: rdb, ttl: ttl}
}

// Get returns the raw value at key, or ErrMiss.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if c == nil {
		return nil, ErrMiss
	}
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}
	return val, nil
}

// Set stores value at key with the default TTL.
func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	if c == nil {
		return nil
	}
	return c.rdb.Set(ctx, key, value, c.ttl).Err()
}

// Delete removes keys, used to invalidate after admin writes.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}
