// Package cache provides the Redis-backed session cache.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides Redis cache access methods.
type Cache struct {
	client     *redis.Client
	sessionTTL time.Duration
}

// DefaultSessionTTL is used when New is given a non-positive TTL.
const DefaultSessionTTL = time.Minute

// New creates a new Cache with a Redis client. Cached sessions expire
// after sessionTTL.
func New(ctx context.Context, redisURL string, sessionTTL time.Duration) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Connection pool settings
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return NewWithClient(client, sessionTTL), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, sessionTTL time.Duration) *Cache {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Cache{client: client, sessionTTL: sessionTTL}
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client.
// Use sparingly - prefer adding methods to Cache.
func (c *Cache) Client() *redis.Client {
	return c.client
}
