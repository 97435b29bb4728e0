/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package backend

import (
	"context"
	"time"
)

// Backend is the key-value store contract the model layouts are written against.
// Absence is reported through the found flag, never as an error.
type Backend interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// MGet returns one entry per key, nil where the key does not exist.
	MGet(ctx context.Context, keys ...string) ([][]byte, error)

	// Set writes value under key. A positive ttl is applied with the write.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes keys; missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Scan calls fn with pages of keys matching a Redis glob pattern.
	// count is a page size hint.
	Scan(ctx context.Context, match string, count int64, fn func(keys []string) error) error

	HGet(ctx context.Context, key, field string) (value []byte, found bool, err error)

	HSet(ctx context.Context, key, field string, value []byte) error

	// HDel removes fields; missing fields or a missing hash are ignored.
	HDel(ctx context.Context, key string, fields ...string) error

	// HGetAll returns every field of the hash, an empty map if it does not exist.
	HGetAll(ctx context.Context, key string) (map[string][]byte, error)
}
