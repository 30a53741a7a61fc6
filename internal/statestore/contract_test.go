// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package statestore

import (
	"context"
	"testing"
	"time"
)

// testStoreContract exercises behavior every backend must share. advance
// moves the backend's notion of time forward.
func testStoreContract(t *testing.T, store Store, ttl time.Duration, advance func(time.Duration)) {
	t.Helper()
	ctx := context.Background()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	if _, found, err := store.GetLocation(ctx, "nobody"); err != nil || found {
		t.Fatalf("GetLocation(missing) = found %v, err %v; want miss", found, err)
	}

	if err := store.SetLocation(ctx, "u1", "NYC", ttl); err != nil {
		t.Fatalf("SetLocation() error = %v", err)
	}
	loc, found, err := store.GetLocation(ctx, "u1")
	if err != nil || !found || loc != "NYC" {
		t.Fatalf("GetLocation(u1) = %q, %v, %v; want NYC, true, nil", loc, found, err)
	}

	// Last write wins.
	if err := store.SetLocation(ctx, "u1", "LONDON", ttl); err != nil {
		t.Fatalf("SetLocation() overwrite error = %v", err)
	}
	if loc, _, _ := store.GetLocation(ctx, "u1"); loc != "LONDON" {
		t.Errorf("GetLocation after overwrite = %q, want LONDON", loc)
	}

	// Users are independent.
	if err := store.SetLocation(ctx, "u2", "PARIS", ttl); err != nil {
		t.Fatal(err)
	}
	if loc, _, _ := store.GetLocation(ctx, "u1"); loc != "LONDON" {
		t.Errorf("GetLocation(u1) = %q after writing u2, want LONDON", loc)
	}

	advance(ttl + time.Second)

	if _, found, err := store.GetLocation(ctx, "u1"); err != nil || found {
		t.Errorf("GetLocation(expired) = found %v, err %v; want miss", found, err)
	}
}
