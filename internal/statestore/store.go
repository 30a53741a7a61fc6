// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package statestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/sentinel/internal/detection"
	"github.com/tomtom215/sentinel/internal/logging"
)

// Backend names accepted by New.
const (
	BackendRedis  = "redis"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// locationKeyPrefix namespaces location records.
const locationKeyPrefix = "loc:"

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("state store closed")

// ErrUnknownBackend is returned by New for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown state store backend")

// LocationKey returns the storage key for a user's location record.
func LocationKey(userID string) string {
	return locationKeyPrefix + userID
}

// Store is a location store with lifecycle hooks.
type Store interface {
	detection.LocationStore

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend's resources.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend string
	Redis   RedisConfig
	Badger  BadgerConfig
	Memory  MemoryConfig
}

// New creates the store named by cfg.Backend.
func New(cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendRedis, "":
		logging.Info().Str("backend", BackendRedis).Str("addr", cfg.Redis.Addr).Msg("Using Redis state store")
		return NewRedisStore(cfg.Redis), nil
	case BackendBadger:
		logging.Info().Str("backend", BackendBadger).Str("dir", cfg.Badger.Dir).Bool("in_memory", cfg.Badger.InMemory).
			Msg("Using BadgerDB state store")
		return OpenBadgerStore(cfg.Badger)
	case BackendMemory:
		logging.Warn().Str("backend", BackendMemory).Msg("Using in-process state store; location history is lost on restart")
		return NewMemoryStore(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// PingWithTimeout pings store, bounding the call by timeout.
func PingWithTimeout(ctx context.Context, store Store, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return store.Ping(ctx)
}
