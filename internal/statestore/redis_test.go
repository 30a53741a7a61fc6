// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package statestore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newMiniredisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := DefaultRedisConfig()
	cfg.Addr = mr.Addr()
	store := NewRedisStore(cfg)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore_Contract(t *testing.T) {
	store, mr := newMiniredisStore(t)
	testStoreContract(t, store, 300*time.Second, mr.FastForward)
}

func TestRedisStore_KeyAndTTL(t *testing.T) {
	store, mr := newMiniredisStore(t)

	if err := store.SetLocation(context.Background(), "u1", "NYC", 300*time.Second); err != nil {
		t.Fatalf("SetLocation() error = %v", err)
	}

	got, err := mr.Get("loc:u1")
	if err != nil {
		t.Fatalf("miniredis Get(loc:u1) error = %v", err)
	}
	if got != "NYC" {
		t.Errorf("loc:u1 = %q, want NYC", got)
	}
	if ttl := mr.TTL("loc:u1"); ttl != 300*time.Second {
		t.Errorf("TTL(loc:u1) = %v, want 300s", ttl)
	}
}

func TestRedisStore_ExpiryBoundary(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	if err := store.SetLocation(ctx, "u1", "NYC", 300*time.Second); err != nil {
		t.Fatal(err)
	}

	mr.FastForward(299 * time.Second)
	if _, found, _ := store.GetLocation(ctx, "u1"); !found {
		t.Error("record missing before TTL elapsed")
	}

	mr.FastForward(2 * time.Second)
	if _, found, _ := store.GetLocation(ctx, "u1"); found {
		t.Error("record present after TTL elapsed")
	}
}

func TestRedisStore_ErrorsAreNotMisses(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	mr.SetError("LOADING Redis is loading the dataset in memory")

	if _, found, err := store.GetLocation(ctx, "u1"); err == nil || found {
		t.Errorf("GetLocation() = found %v, err %v; want error", found, err)
	}
	if err := store.SetLocation(ctx, "u1", "NYC", time.Minute); err == nil {
		t.Error("SetLocation() error = nil, want error")
	}
	if err := store.Ping(ctx); err == nil {
		t.Error("Ping() error = nil, want error")
	}
}

func TestRedisStore_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := DefaultRedisConfig()
	cfg.Addr = addr
	cfg.DialTimeout = 100 * time.Millisecond
	store := NewRedisStore(cfg)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, found, err := store.GetLocation(ctx, "u1"); err == nil || found {
		t.Errorf("GetLocation() = found %v, err %v; want error", found, err)
	}
	if err := PingWithTimeout(context.Background(), store, 500*time.Millisecond); err == nil {
		t.Error("PingWithTimeout() error = nil, want error")
	}
}

func TestNewRedisStoreFromClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreFromClient(client)
	defer store.Close()

	if err := store.SetLocation(context.Background(), "u7", "TOKYO", time.Minute); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("loc:u7") {
		t.Error("loc:u7 not written through provided client")
	}
}
