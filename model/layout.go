/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/suparena/redismodel/backend"
	"github.com/suparena/redismodel/errors"
)

// StorageLayout maps primary keys to backend storage. Layouts move
// serialized records only; decoding and matching happen in the store.
type StorageLayout interface {
	Kind() LayoutKind
	Namespace() string
	ExpiryScope() ExpiryScope
	// Key returns the backend key holding the record for pk
	Key(pk string) string
	Write(ctx context.Context, pk string, data []byte) error
	// Read returns found=false when the record does not exist
	Read(ctx context.Context, pk string) (data []byte, found bool, err error)
	// Remove succeeds when the record is already absent
	Remove(ctx context.Context, pk string) error
	// Scan calls fn for every stored record until fn returns an error.
	// pk is the key slot the record was found under, which for a per-key
	// layout may belong to a nested namespace.
	Scan(ctx context.Context, fn func(pk string, data []byte) error) error
}

// PerKeyLayout stores each record under "namespace:pk" with its own TTL.
type PerKeyLayout struct {
	kv        backend.Backend
	namespace string
	expire    time.Duration
	scanCount int64
}

var _ StorageLayout = (*PerKeyLayout)(nil)

// NewPerKeyLayout creates a per-key layout. scanCount is the SCAN page size hint.
func NewPerKeyLayout(kv backend.Backend, namespace string, expire time.Duration, scanCount int64) *PerKeyLayout {
	if scanCount <= 0 {
		scanCount = DefaultScanCount
	}
	return &PerKeyLayout{kv: kv, namespace: namespace, expire: expire, scanCount: scanCount}
}

func (l *PerKeyLayout) Kind() LayoutKind { return LayoutPerKey }
func (l *PerKeyLayout) Namespace() string { return l.namespace }
func (l *PerKeyLayout) Key(pk string) string { return l.namespace + ":" + pk }

func (l *PerKeyLayout) ExpiryScope() ExpiryScope {
	if l.expire > 0 {
		return ExpiryPerInstance
	}
	return ExpiryNone
}

func (l *PerKeyLayout) Write(ctx context.Context, pk string, data []byte) error {
	key := l.Key(pk)
	return errors.NewBackendError("set", key, l.kv.Set(ctx, key, data, l.expire))
}

func (l *PerKeyLayout) Read(ctx context.Context, pk string) ([]byte, bool, error) {
	key := l.Key(pk)
	data, found, err := l.kv.Get(ctx, key)
	if err != nil {
		return nil, false, errors.NewBackendError("get", key, err)
	}
	return data, found, nil
}

func (l *PerKeyLayout) Remove(ctx context.Context, pk string) error {
	key := l.Key(pk)
	return errors.NewBackendError("delete", key, l.kv.Delete(ctx, key))
}

// Scan walks "namespace:*" page by page and fetches each page with one
// MGET. Keys that vanish between the two calls are skipped, and keys the
// cursor returns twice are visited once.
func (l *PerKeyLayout) Scan(ctx context.Context, fn func(pk string, data []byte) error) error {
	prefix := l.namespace + ":"
	match := backend.EscapePattern(l.namespace) + ":*"
	seen := make(map[string]struct{})

	var fnErr error
	err := l.kv.Scan(ctx, match, l.scanCount, func(page []string) error {
		keys := page[:0:0]
		for _, k := range page {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
		if len(keys) == 0 {
			return nil
		}

		values, err := l.kv.MGet(ctx, keys...)
		if err != nil {
			return errors.NewBackendError("mget", l.namespace, err)
		}
		for i, v := range values {
			if v == nil {
				continue
			}
			if err := fn(strings.TrimPrefix(keys[i], prefix), v); err != nil {
				fnErr = err
				return err
			}
		}
		return nil
	})
	if err != nil && fnErr == nil && !errors.IsBackendError(err) {
		return errors.NewBackendError("scan", match, err)
	}
	return err
}

// SharedHashLayout stores all records of a namespace as fields of the hash
// "namespace". Expiry is set on the hash itself, so every record of the
// type shares one deadline which each write pushes out.
type SharedHashLayout struct {
	kv        backend.Backend
	namespace string
	expire    time.Duration
}

var _ StorageLayout = (*SharedHashLayout)(nil)

// NewSharedHashLayout creates a shared-hash layout
func NewSharedHashLayout(kv backend.Backend, namespace string, expire time.Duration) *SharedHashLayout {
	return &SharedHashLayout{kv: kv, namespace: namespace, expire: expire}
}

func (l *SharedHashLayout) Kind() LayoutKind { return LayoutSharedHash }
func (l *SharedHashLayout) Namespace() string { return l.namespace }
func (l *SharedHashLayout) Key(string) string { return l.namespace }

func (l *SharedHashLayout) ExpiryScope() ExpiryScope {
	if l.expire > 0 {
		return ExpiryPerType
	}
	return ExpiryNone
}

// Write runs HSET and then EXPIRE on the whole hash. The two commands are
// not atomic; a failed EXPIRE leaves the field written without a deadline
// update and is reported as an error.
func (l *SharedHashLayout) Write(ctx context.Context, pk string, data []byte) error {
	if err := l.kv.HSet(ctx, l.namespace, pk, data); err != nil {
		return errors.NewBackendError("hset", l.namespace, err)
	}
	if l.expire > 0 {
		return errors.NewBackendError("expire", l.namespace, l.kv.Expire(ctx, l.namespace, l.expire))
	}
	return nil
}

func (l *SharedHashLayout) Read(ctx context.Context, pk string) ([]byte, bool, error) {
	data, found, err := l.kv.HGet(ctx, l.namespace, pk)
	if err != nil {
		return nil, false, errors.NewBackendError("hget", l.namespace, err)
	}
	return data, found, nil
}

func (l *SharedHashLayout) Remove(ctx context.Context, pk string) error {
	return errors.NewBackendError("hdel", l.namespace, l.kv.HDel(ctx, l.namespace, pk))
}

// Scan reads the hash with HGETALL and visits fields in key order.
func (l *SharedHashLayout) Scan(ctx context.Context, fn func(pk string, data []byte) error) error {
	all, err := l.kv.HGetAll(ctx, l.namespace)
	if err != nil {
		return errors.NewBackendError("hgetall", l.namespace, err)
	}

	fields := make([]string, 0, len(all))
	for f := range all {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, f := range fields {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(f, all[f]); err != nil {
			return err
		}
	}
	return nil
}
