// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package statestore

import (
	"context"
	"sync"
	"time"
)

// MemoryConfig holds in-process store settings.
type MemoryConfig struct {
	// Capacity bounds the number of users tracked. The least recently
	// used record is evicted first.
	Capacity int
}

// DefaultMemoryConfig returns defaults for the in-process store.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{Capacity: 100_000}
}

type memoryEntry struct {
	key       string
	location  string
	expiresAt time.Time
	prev      *memoryEntry
	next      *memoryEntry
}

// MemoryStore is a thread-safe LRU of location records with lazy TTL
// expiration. Expired records are dropped when read.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	now      func() time.Time
	items    map[string]*memoryEntry

	// head.next is the most recently used entry, tail.prev the least.
	head *memoryEntry
	tail *memoryEntry

	closed bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore(cfg MemoryConfig) *MemoryStore {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultMemoryConfig().Capacity
	}
	s := &MemoryStore{
		capacity: cfg.Capacity,
		now:      time.Now,
		items:    make(map[string]*memoryEntry),
		head:     &memoryEntry{},
		tail:     &memoryEntry{},
	}
	s.head.next = s.tail
	s.tail.prev = s.head
	return s
}

// WithClock replaces the store's time source. Intended for tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// GetLocation returns the stored location for userID.
func (s *MemoryStore) GetLocation(_ context.Context, userID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", false, ErrClosed
	}

	entry, ok := s.items[LocationKey(userID)]
	if !ok {
		return "", false, nil
	}
	if !s.now().Before(entry.expiresAt) {
		s.removeEntry(entry)
		return "", false, nil
	}
	s.moveToFront(entry)
	return entry.location, true, nil
}

// SetLocation writes location for userID with the given TTL.
func (s *MemoryStore) SetLocation(_ context.Context, userID, location string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	key := LocationKey(userID)
	expiresAt := s.now().Add(ttl)

	if entry, ok := s.items[key]; ok {
		entry.location = location
		entry.expiresAt = expiresAt
		s.moveToFront(entry)
		return nil
	}

	entry := &memoryEntry{key: key, location: location, expiresAt: expiresAt}
	s.addToFront(entry)
	s.items[key] = entry

	for len(s.items) > s.capacity {
		s.removeEntry(s.tail.prev)
	}
	return nil
}

// Len returns the number of records held, including expired ones not yet
// read.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Ping reports whether the store is open.
func (s *MemoryStore) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close drops all records.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.items = make(map[string]*memoryEntry)
	s.head.next = s.tail
	s.tail.prev = s.head
	return nil
}

func (s *MemoryStore) addToFront(entry *memoryEntry) {
	entry.prev = s.head
	entry.next = s.head.next
	s.head.next.prev = entry
	s.head.next = entry
}

func (s *MemoryStore) moveToFront(entry *memoryEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	s.addToFront(entry)
}

func (s *MemoryStore) removeEntry(entry *memoryEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(s.items, entry.key)
}
