/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory implementation of backend.Backend for testing
package mock

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/suparena/redismodel/backend"
)

// ErrWrongType mirrors Redis' WRONGTYPE reply for string commands on hashes and vice versa
var ErrWrongType = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")

// Operation names accepted by WithError
const (
	OpGet     = "get"
	OpMGet    = "mget"
	OpSet     = "set"
	OpDelete  = "del"
	OpExpire  = "expire"
	OpScan    = "scan"
	OpHGet    = "hget"
	OpHSet    = "hset"
	OpHDel    = "hdel"
	OpHGetAll = "hgetall"
)

type entry struct {
	value    []byte
	hash     map[string][]byte
	expireAt time.Time
}

func (e entry) isHash() bool {
	return e.hash != nil
}

// Backend is a mock implementation of backend.Backend for testing
type Backend struct {
	mu     sync.Mutex
	clock  clockwork.Clock
	data   map[string]entry
	errs   map[string]error
	counts map[string]int
}

var _ backend.Backend = (*Backend)(nil)

// New creates a new mock Backend driven by the real clock
func New() *Backend {
	return &Backend{
		clock:  clockwork.NewRealClock(),
		data:   make(map[string]entry),
		errs:   make(map[string]error),
		counts: make(map[string]int),
	}
}

// WithClock sets the clock used for expiry, typically a clockwork.FakeClock
func (m *Backend) WithClock(clock clockwork.Clock) *Backend {
	m.clock = clock
	return m
}

// WithError makes every call of op return err; a nil err clears it
func (m *Backend) WithError(op string, err error) *Backend {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, op)
		return m
	}
	m.errs[op] = err
	return m
}

// begin locks the backend, counts the call and returns the injected error, if any.
// Callers must unlock when err is nil.
func (m *Backend) begin(op string) error {
	m.mu.Lock()
	m.counts[op]++
	if err := m.errs[op]; err != nil {
		m.mu.Unlock()
		return err
	}
	return nil
}

// lookup returns the live entry for key, evicting it when expired. Caller holds mu.
func (m *Backend) lookup(key string) (entry, bool) {
	e, ok := m.data[key]
	if !ok {
		return entry{}, false
	}
	if !e.expireAt.IsZero() && !m.clock.Now().Before(e.expireAt) {
		delete(m.data, key)
		return entry{}, false
	}
	return e, true
}

func (m *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := m.begin(OpGet); err != nil {
		return nil, false, err
	}
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		return nil, false, nil
	}
	if e.isHash() {
		return nil, false, ErrWrongType
	}
	return clone(e.value), true, nil
}

func (m *Backend) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	if err := m.begin(OpMGet); err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	out := make([][]byte, len(keys))
	for i, key := range keys {
		if e, ok := m.lookup(key); ok && !e.isHash() {
			out[i] = clone(e.value)
		}
	}
	return out, nil
}

func (m *Backend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := m.begin(OpSet); err != nil {
		return err
	}
	defer m.mu.Unlock()

	e := entry{value: clone(value)}
	if ttl > 0 {
		e.expireAt = m.clock.Now().Add(ttl)
	}
	m.data[key] = e
	return nil
}

func (m *Backend) Delete(ctx context.Context, keys ...string) error {
	if err := m.begin(OpDelete); err != nil {
		return err
	}
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *Backend) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := m.begin(OpExpire); err != nil {
		return err
	}
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		return nil
	}
	if ttl <= 0 {
		delete(m.data, key)
		return nil
	}
	e.expireAt = m.clock.Now().Add(ttl)
	m.data[key] = e
	return nil
}

func (m *Backend) Scan(ctx context.Context, match string, count int64, fn func(keys []string) error) error {
	if err := m.begin(OpScan); err != nil {
		return err
	}
	var keys []string
	for key := range m.data {
		if _, ok := m.lookup(key); ok && backend.MatchPattern(match, key) {
			keys = append(keys, key)
		}
	}
	m.mu.Unlock()

	sort.Strings(keys)
	if count <= 0 {
		count = 10
	}
	for start := 0; start < len(keys); start += int(count) {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+int(count), len(keys))
		if err := fn(keys[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Backend) HGet(ctx context.Context, key, field string) ([]byte, bool, error) {
	if err := m.begin(OpHGet); err != nil {
		return nil, false, err
	}
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		return nil, false, nil
	}
	if !e.isHash() {
		return nil, false, ErrWrongType
	}
	v, ok := e.hash[field]
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

func (m *Backend) HSet(ctx context.Context, key, field string, value []byte) error {
	if err := m.begin(OpHSet); err != nil {
		return err
	}
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if ok && !e.isHash() {
		return ErrWrongType
	}
	if !ok {
		e = entry{hash: make(map[string][]byte)}
	}
	e.hash[field] = clone(value)
	m.data[key] = e
	return nil
}

func (m *Backend) HDel(ctx context.Context, key string, fields ...string) error {
	if err := m.begin(OpHDel); err != nil {
		return err
	}
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		return nil
	}
	if !e.isHash() {
		return ErrWrongType
	}
	for _, field := range fields {
		delete(e.hash, field)
	}
	if len(e.hash) == 0 {
		delete(m.data, key)
	}
	return nil
}

func (m *Backend) HGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	if err := m.begin(OpHGetAll); err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	out := make(map[string][]byte)
	e, ok := m.lookup(key)
	if !ok {
		return out, nil
	}
	if !e.isHash() {
		return nil, ErrWrongType
	}
	for field, v := range e.hash {
		out[field] = clone(v)
	}
	return out, nil
}

// Helper methods for testing

// Exists reports whether key currently holds a live value
func (m *Backend) Exists(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.lookup(key)
	return ok
}

// TTL returns the remaining time to live of key, or 0 if it has none or does not exist
func (m *Backend) TTL(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(key)
	if !ok || e.expireAt.IsZero() {
		return 0
	}
	return e.expireAt.Sub(m.clock.Now())
}

// Keys returns the sorted live keys
func (m *Backend) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		if _, ok := m.lookup(key); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Count returns the number of live keys
func (m *Backend) Count() int {
	return len(m.Keys())
}

// Calls returns how many times op was invoked
func (m *Backend) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[op]
}

// SetRaw stores value under key without going through the model layer,
// for seeding corrupt or foreign records
func (m *Backend) SetRaw(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = entry{value: clone(value)}
}

// Clear removes all data
func (m *Backend) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]entry)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
