// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package statestore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newInMemoryBadger(t *testing.T) *BadgerStore {
	t.Helper()

	store, err := OpenBadgerStore(BadgerConfig{InMemory: true})
	if err != nil {
		t.Fatalf("OpenBadgerStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBadgerStore_Contract(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for real TTL expiry")
	}
	store := newInMemoryBadger(t)
	// Badger expiry uses wall clock seconds, so the TTL is kept short and
	// time actually passes.
	testStoreContract(t, store, time.Second, func(d time.Duration) { time.Sleep(d) })
}

func TestBadgerStore_OnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := OpenBadgerStore(BadgerConfig{Dir: dir})
	if err != nil {
		t.Fatalf("OpenBadgerStore() error = %v", err)
	}
	if err := store.SetLocation(ctx, "u1", "NYC", time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenBadgerStore(BadgerConfig{Dir: dir})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	loc, found, err := reopened.GetLocation(ctx, "u1")
	if err != nil || !found || loc != "NYC" {
		t.Errorf("GetLocation after reopen = %q, %v, %v; want NYC", loc, found, err)
	}
}

func TestBadgerStore_Closed(t *testing.T) {
	store, err := OpenBadgerStore(BadgerConfig{InMemory: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if _, _, err := store.GetLocation(ctx, "u1"); !errors.Is(err, ErrClosed) {
		t.Errorf("GetLocation() error = %v, want ErrClosed", err)
	}
	if err := store.SetLocation(ctx, "u1", "NYC", time.Minute); !errors.Is(err, ErrClosed) {
		t.Errorf("SetLocation() error = %v, want ErrClosed", err)
	}
	if err := store.Ping(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Ping() error = %v, want ErrClosed", err)
	}
}

func TestBadgerStore_ServeStopsOnCancel(t *testing.T) {
	store := newInMemoryBadger(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
