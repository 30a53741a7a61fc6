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

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sentinel/internal/logging"
)

// BadgerConfig holds embedded store settings.
type BadgerConfig struct {
	// Dir is the data directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps all data in RAM.
	InMemory bool

	// GCInterval is how often value log garbage collection runs.
	GCInterval time.Duration
}

// DefaultBadgerConfig returns production defaults.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		Dir:        "/data/badger",
		GCInterval: 5 * time.Minute,
	}
}

// BadgerStore keeps location records in an embedded BadgerDB. Expiry uses
// Badger's per-entry TTL, which has one second resolution.
type BadgerStore struct {
	db         *badger.DB
	gcInterval time.Duration
	inMemory   bool
}

var _ Store = (*BadgerStore)(nil)

// OpenBadgerStore opens (or creates) the database described by cfg.
func OpenBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	// Location values are tiny; keep value log files small.
	opts.ValueLogFileSize = 16 << 20
	opts.Logger = &badgerLogger{logger: logging.WithComponent("badger")}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger state store: %w", err)
	}

	gc := cfg.GCInterval
	if gc <= 0 {
		gc = DefaultBadgerConfig().GCInterval
	}
	return &BadgerStore{db: db, gcInterval: gc, inMemory: cfg.InMemory}, nil
}

// GetLocation returns the stored location for userID.
func (s *BadgerStore) GetLocation(_ context.Context, userID string) (string, bool, error) {
	if s.db.IsClosed() {
		return "", false, ErrClosed
	}

	var location string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(LocationKey(userID)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			location = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("badger get: %w", err)
	}
	return location, true, nil
}

// SetLocation writes location for userID with the given TTL.
func (s *BadgerStore) SetLocation(_ context.Context, userID, location string, ttl time.Duration) error {
	if s.db.IsClosed() {
		return ErrClosed
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(LocationKey(userID)), []byte(location))
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("badger set: %w", err)
	}
	return nil
}

// Ping reports whether the database is open.
func (s *BadgerStore) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Serve runs value log garbage collection until ctx is done. It implements
// suture.Service. In-memory databases have no value log to collect.
func (s *BadgerStore) Serve(ctx context.Context) error {
	if s.inMemory {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runGC()
		}
	}
}

// runGC rewrites value log files until Badger reports nothing to collect.
func (s *BadgerStore) runGC() {
	for {
		err := s.db.RunValueLogGC(0.5)
		if err == nil {
			continue
		}
		if !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrRejected) {
			logging.Warn().Err(err).Msg("Badger value log GC failed")
		}
		return
	}
}

// String identifies the GC service in supervisor logs.
func (s *BadgerStore) String() string {
	return "badger-gc"
}

// badgerLogger routes Badger's internal logging through zerolog. Info and
// debug chatter is demoted to debug level.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace().Msgf(format, args...)
}
