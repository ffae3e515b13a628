// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultCleanupInterval is how often the memory store sweeps expired entries.
const DefaultCleanupInterval = 5 * time.Minute

// Entry represents a cached value with expiration
type Entry struct {
	Data      []byte
	ExpiresAt time.Time
}

func (e Entry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Stats tracks cache performance metrics
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// MemoryStore is a thread-safe in-memory Store with TTL support. When
// maxEntries is positive the entry closest to expiry is evicted to make room.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]Entry
	maxEntries int

	statsMu sync.Mutex
	stats   Stats

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore creates a memory store and starts its cleanup loop.
// maxEntries <= 0 means unbounded.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return newMemoryStore(maxEntries, DefaultCleanupInterval)
}

func newMemoryStore(maxEntries int, interval time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries:    make(map[string]Entry),
		maxEntries: maxEntries,
		stats:      Stats{LastCleanup: time.Now()},
		stop:       make(chan struct{}),
	}
	go s.cleanupLoop(interval)
	return s
}

// Name implements Store.
func (s *MemoryStore) Name() string { return BackendMemory }

// Get returns the value for key, or ErrCacheMiss when it is absent or expired.
// Expired entries are removed on access.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	entry, exists := s.entries[key]
	s.mu.RUnlock()

	if !exists {
		s.record(func(st *Stats) { st.Misses++ })
		return nil, ErrCacheMiss
	}

	if entry.expired(time.Now()) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		s.record(func(st *Stats) { st.Misses++; st.Evictions++ })
		return nil, ErrCacheMiss
	}

	s.record(func(st *Stats) { st.Hits++ })
	out := make([]byte, len(entry.Data))
	copy(out, entry.Data)
	return out, nil
}

// Set stores value under key for ttl. A ttl <= 0 never expires.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	data := make([]byte, len(value))
	copy(data, value)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		s.evictOneLocked()
	}
	entry := Entry{Data: data}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}
	s.entries[key] = entry

	s.record(func(st *Stats) { st.TotalKeys = int64(len(s.entries)) })
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	_, existed := s.entries[key]
	delete(s.entries, key)
	n := len(s.entries)
	s.mu.Unlock()

	s.record(func(st *Stats) {
		if existed {
			st.Evictions++
		}
		st.TotalKeys = int64(n)
	})
	return nil
}

// Clear removes all entries.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	evictions := int64(len(s.entries))
	s.entries = make(map[string]Entry)
	s.mu.Unlock()

	s.record(func(st *Stats) {
		st.Evictions += evictions
		st.TotalKeys = 0
	})
}

// Close stops the cleanup loop. The store remains usable.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

// GetStats returns a snapshot of the store statistics.
func (s *MemoryStore) GetStats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}

// HitRate returns the hit rate as a percentage
func (s *MemoryStore) HitRate() float64 {
	stats := s.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) record(fn func(*Stats)) {
	s.statsMu.Lock()
	fn(&s.stats)
	s.statsMu.Unlock()
}

// evictOneLocked drops the entry closest to expiry. Caller holds s.mu.
func (s *MemoryStore) evictOneLocked() {
	var (
		victim  string
		soonest time.Time
		found   bool
	)
	for key, entry := range s.entries {
		if !found || (!entry.ExpiresAt.IsZero() && (soonest.IsZero() || entry.ExpiresAt.Before(soonest))) {
			victim, soonest, found = key, entry.ExpiresAt, true
		}
	}
	if found {
		delete(s.entries, victim)
		s.record(func(st *Stats) { st.Evictions++ })
	}
}

func (s *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stop:
			return
		}
	}
}

// cleanup removes all expired entries
func (s *MemoryStore) cleanup() {
	now := time.Now()
	s.mu.Lock()
	evictions := int64(0)
	for key, entry := range s.entries {
		if entry.expired(now) {
			delete(s.entries, key)
			evictions++
		}
	}
	n := len(s.entries)
	s.mu.Unlock()

	s.record(func(st *Stats) {
		st.Evictions += evictions
		st.TotalKeys = int64(n)
		st.LastCleanup = now
	})
}
