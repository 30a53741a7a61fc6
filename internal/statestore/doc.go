// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

/*
Package statestore provides the TTL key-value backends that hold each
user's last-seen location.

Three backends implement detection.LocationStore:

  - RedisStore (default): go-redis client, key "loc:{userId}" written with
    SET ... EX. Shared by every pipeline instance; writes are
    last-write-wins.
  - BadgerStore: embedded BadgerDB with per-entry TTL, for single-node
    deployments that must survive restarts without Redis.
  - MemoryStore: in-process LRU with lazy TTL expiry, for local runs and
    tests.

A missing or expired key is reported as found=false with a nil error. Any
other failure is returned as is; the velocity rule classifies it as
state store unavailability.

Use New to build the backend named in configuration:

	store, err := statestore.New(cfg)
	if err != nil {
	    return err
	}
	defer store.Close()
	if err := store.Ping(ctx); err != nil {
	    return err // unreachable at startup is fatal
	}
*/
package statestore
