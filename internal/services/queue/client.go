// Package queue holds the Redis-backed generation job queue shared by the
// API (producer) and the worker (consumer).
package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Client wraps the shared Redis connection used for queue operations.
type Client struct {
	rdb *redis.Client
}

// NewClient wraps an existing Redis connection.
func NewClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Ping tests the queue connection.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("queue ping failed: %w", err)
	}
	return nil
}
