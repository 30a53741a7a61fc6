// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

//go:build integration

package statestore

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/sentinel/internal/testinfra"
)

func TestRedisStore_Integration(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx := context.Background()
	container, err := testinfra.NewRedisContainer(ctx)
	if err != nil {
		t.Fatalf("NewRedisContainer() error = %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, container)

	cfg := DefaultRedisConfig()
	cfg.Addr = container.Addr
	store := NewRedisStore(cfg)
	defer store.Close()

	if err := PingWithTimeout(ctx, store, 5*time.Second); err != nil {
		t.Fatalf("PingWithTimeout() error = %v", err)
	}

	// Real Redis expires on wall-clock seconds.
	testStoreContract(t, store, time.Second, func(d time.Duration) { time.Sleep(d) })
}
