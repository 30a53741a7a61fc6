// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package testinfra provides container helpers for integration tests.
//
// Helpers are compiled only with the integration build tag and skip the
// calling test when Docker is not reachable:
//
//	func TestRedisStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    redis, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, redis)
//
//	    store := statestore.NewRedisStore(statestore.RedisConfig{Addr: redis.Addr})
//	}
//
// Run with:
//
//	go test -tags integration ./...
package testinfra
