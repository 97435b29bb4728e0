/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/suparena/redismodel/backend"
	"github.com/suparena/redismodel/metrics"
)

// Client implements backend.Backend on top of a go-redis client.
// The underlying connection pool belongs to the caller.
type Client struct {
	rdb     goredis.UniversalClient
	logger  *slog.Logger
	metrics *metrics.Metrics
	breaker *BreakerConfig
}

var _ backend.Backend = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithMetrics records every command in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithCircuitBreaker makes commands fail fast while Redis keeps failing
func WithCircuitBreaker(cfg BreakerConfig) Option {
	return func(c *Client) {
		c.breaker = &cfg
	}
}

// WithLogger sets the logger used by the hooks (default: slog.Default())
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Redis client from a URL (e.g., "redis://localhost:6379/4").
func NewClient(redisURL string, opts ...Option) (*Client, error) {
	redisOpts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return New(goredis.NewClient(redisOpts), opts...), nil
}

// New wraps an existing client. Hooks requested through opts are added to rdb.
func New(rdb goredis.UniversalClient, opts ...Option) *Client {
	c := &Client{rdb: rdb, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}

	if c.metrics != nil {
		rdb.AddHook(NewMetricsHook(c.metrics))
	}
	if c.breaker != nil {
		rdb.AddHook(NewCircuitBreakerHook(*c.breaker, c.metrics, c.logger))
	}
	return c
}

// Ping verifies the Redis connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Underlying returns the raw go-redis client for advanced operations.
func (c *Client) Underlying() goredis.UniversalClient {
	return c.rdb
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (c *Client) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([][]byte, len(vals))
	for i, v := range vals {
		switch tv := v.(type) {
		case string:
			out[i] = []byte(tv)
		case []byte:
			out[i] = tv
		}
	}
	return out, nil
}

// Set uses SET with EX/PX, so value and TTL are written atomically.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.rdb.Expire(ctx, key, ttl).Err()
}

func (c *Client) Scan(ctx context.Context, match string, count int64, fn func(keys []string) error) error {
	var cursor uint64
	for {
		// Check context cancellation/timeout before each scan iteration
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		keys, next, err := c.rdb.Scan(ctx, cursor, match, count).Result()
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (c *Client) HGet(ctx context.Context, key, field string) ([]byte, bool, error) {
	v, err := c.rdb.HGet(ctx, key, field).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (c *Client) HSet(ctx context.Context, key, field string, value []byte) error {
	return c.rdb.HSet(ctx, key, field, value).Err()
}

func (c *Client) HDel(ctx context.Context, key string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return c.rdb.HDel(ctx, key, fields...).Err()
}

func (c *Client) HGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	vals, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(vals))
	for field, v := range vals {
		out[field] = []byte(v)
	}
	return out, nil
}
