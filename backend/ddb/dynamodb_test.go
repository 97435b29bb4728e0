/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func newTestBackend() (*Backend, *fakeAPI, *clockwork.FakeClock) {
	api := newFakeAPI()
	clock := clockwork.NewFakeClock()
	return New(api, "models", WithClock(clock)), api, clock
}

func TestBackendValues(t *testing.T) {
	ctx := context.Background()
	b, _, clock := newTestBackend()

	if _, found, err := b.Get(ctx, "IceCream:vanilla"); err != nil || found {
		t.Fatalf("Get on empty table = %v, %v", found, err)
	}

	if err := b.Set(ctx, "IceCream:vanilla", []byte("a"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := b.Set(ctx, "IceCream:chocolate", []byte("b"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	values, err := b.MGet(ctx, "IceCream:vanilla", "IceCream:missing", "IceCream:chocolate")
	if err != nil {
		t.Fatalf("MGet failed: %v", err)
	}
	if string(values[0]) != "a" || values[1] != nil || string(values[2]) != "b" {
		t.Fatalf("MGet returned %q", values)
	}

	clock.Advance(time.Minute)
	if _, found, _ := b.Get(ctx, "IceCream:vanilla"); found {
		t.Error("vanilla should have expired")
	}
	if _, found, _ := b.Get(ctx, "IceCream:chocolate"); !found {
		t.Error("chocolate has no TTL and should still exist")
	}

	if err := b.Delete(ctx, "IceCream:chocolate", "IceCream:missing"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found, _ := b.Get(ctx, "IceCream:chocolate"); found {
		t.Error("chocolate should be deleted")
	}
}

func TestBackendExpireValue(t *testing.T) {
	ctx := context.Background()
	b, api, clock := newTestBackend()

	_ = b.Set(ctx, "k", []byte("v"), 0)
	if err := b.Expire(ctx, "k", time.Second); err != nil {
		t.Fatalf("Expire failed: %v", err)
	}

	item := api.items["k"][valueSK]
	if item["TTL"] == nil || item["ExpiresAtMs"] == nil {
		t.Fatalf("expected expiry attributes on item, got %v", item)
	}

	clock.Advance(time.Second)
	if _, found, _ := b.Get(ctx, "k"); found {
		t.Error("value should have expired")
	}

	_ = b.Set(ctx, "k2", []byte("v"), 0)
	if err := b.Expire(ctx, "k2", 0); err != nil {
		t.Fatalf("Expire failed: %v", err)
	}
	if _, found, _ := b.Get(ctx, "k2"); found {
		t.Error("non-positive TTL should delete the key")
	}

	// expiring a missing key is a no-op
	if err := b.Expire(ctx, "missing", time.Second); err != nil {
		t.Fatalf("Expire on missing key failed: %v", err)
	}
	if _, ok := api.items["missing"]; ok {
		t.Error("Expire must not create rows")
	}
}

func TestBackendHash(t *testing.T) {
	ctx := context.Background()
	b, _, clock := newTestBackend()

	for field, v := range map[string]string{"vanilla": "a", "chocolate": "b"} {
		if err := b.HSet(ctx, "IceCream", field, []byte(v)); err != nil {
			t.Fatalf("HSet failed: %v", err)
		}
	}
	if err := b.Expire(ctx, "IceCream", time.Minute); err != nil {
		t.Fatalf("Expire failed: %v", err)
	}

	v, found, err := b.HGet(ctx, "IceCream", "vanilla")
	if err != nil || !found || string(v) != "a" {
		t.Fatalf("HGet = %q, %v, %v", v, found, err)
	}
	if _, found, _ := b.HGet(ctx, "IceCream", "strawberry"); found {
		t.Error("strawberry should not exist")
	}

	all, err := b.HGetAll(ctx, "IceCream")
	if err != nil {
		t.Fatalf("HGetAll failed: %v", err)
	}
	if len(all) != 2 || string(all["chocolate"]) != "b" {
		t.Fatalf("HGetAll returned %v", all)
	}

	if err := b.HDel(ctx, "IceCream", "vanilla"); err != nil {
		t.Fatalf("HDel failed: %v", err)
	}
	if _, found, _ := b.HGet(ctx, "IceCream", "vanilla"); found {
		t.Error("vanilla should be removed")
	}

	// the TTL covers the whole hash
	clock.Advance(time.Minute)
	all, err = b.HGetAll(ctx, "IceCream")
	if err != nil || len(all) != 0 {
		t.Fatalf("expired hash returned %v, %v", all, err)
	}
	if _, found, _ := b.HGet(ctx, "IceCream", "chocolate"); found {
		t.Error("chocolate should have expired with the hash")
	}

	// writing into an expired hash starts over without TTL
	if err := b.HSet(ctx, "IceCream", "mint", []byte("c")); err != nil {
		t.Fatalf("HSet failed: %v", err)
	}
	all, _ = b.HGetAll(ctx, "IceCream")
	if len(all) != 1 || string(all["mint"]) != "c" {
		t.Fatalf("expected only mint, got %v", all)
	}
}

func TestBackendDeleteHash(t *testing.T) {
	ctx := context.Background()
	b, api, _ := newTestBackend()

	_ = b.HSet(ctx, "IceCream", "vanilla", []byte("a"))
	_ = b.Expire(ctx, "IceCream", time.Minute)

	if err := b.Delete(ctx, "IceCream"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(api.items) != 0 {
		t.Fatalf("expected empty table, got %v", api.items)
	}
}

func TestBackendScan(t *testing.T) {
	ctx := context.Background()
	b, api, clock := newTestBackend()
	api.pageSize = 2

	_ = b.Set(ctx, "IceCream:a", []byte("1"), 0)
	_ = b.Set(ctx, "IceCream:b", []byte("2"), time.Second)
	_ = b.Set(ctx, "IceCream:c", []byte("3"), 0)
	_ = b.Set(ctx, "IceCreamX:a", []byte("4"), 0)
	_ = b.Set(ctx, "Other:a", []byte("5"), 0)
	_ = b.HSet(ctx, "IceCream:h", "f1", []byte("6"))
	_ = b.HSet(ctx, "IceCream:h", "f2", []byte("7"))
	clock.Advance(time.Second)

	var keys []string
	err := b.Scan(ctx, "IceCream:*", 100, func(page []string) error {
		keys = append(keys, page...)
		return nil
	})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	sort.Strings(keys)

	expected := []string{"IceCream:a", "IceCream:c", "IceCream:h"}
	if len(keys) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, keys)
	}
	for i := range expected {
		if keys[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, keys)
		}
	}
	if api.scans < 2 {
		t.Errorf("expected several scan pages, got %d", api.scans)
	}
}

func TestBackendScanStopsOnCallbackError(t *testing.T) {
	ctx := context.Background()
	b, _, _ := newTestBackend()
	_ = b.Set(ctx, "IceCream:a", []byte("1"), 0)

	stop := errors.New("stop")
	err := b.Scan(ctx, "*", 10, func([]string) error { return stop })
	if !errors.Is(err, stop) {
		t.Fatalf("expected callback error, got %v", err)
	}
}

func TestBackendErrors(t *testing.T) {
	ctx := context.Background()
	b, api, _ := newTestBackend()
	api.err = errors.New("ProvisionedThroughputExceededException")

	if _, _, err := b.Get(ctx, "k"); err == nil {
		t.Error("expected Get error")
	}
	if err := b.Set(ctx, "k", []byte("v"), 0); err == nil {
		t.Error("expected Set error")
	}
	if _, err := b.HGetAll(ctx, "k"); err == nil {
		t.Error("expected HGetAll error")
	}
	if err := b.Scan(ctx, "*", 10, func([]string) error { return nil }); !errors.Is(err, api.err) {
		t.Errorf("expected wrapped scan error, got %v", err)
	}
}
