package cache

import (
	"context"
	"sync"
	"time"

	"github.com/helpdeskhq/smartfaq/internal/domain/retrieval"
)

// Stats counts cache activity. Observability only, not part of the
// correctness contract.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Sets      uint64 `json:"sets"`
	Deletes   uint64 `json:"deletes"`
	Evictions uint64 `json:"evictions"`
}

type entry struct {
	rows        []retrieval.Row
	expiresAt   time.Time
	lastTouched time.Time
}

// Memory is a bounded in-process RowCache with per-entry TTL. Expiry is
// evaluated lazily on access and eagerly by a periodic sweep; on overflow the
// least-recently-touched entry is evicted. Every get/set refreshes the
// entry's last-touched timestamp.
type Memory struct {
	mu         sync.Mutex
	capacity   int
	defaultTTL time.Duration
	entries    map[string]*entry
	stats      Stats

	done      chan struct{}
	closeOnce sync.Once
	now       func() time.Time
}

// NewMemory constructs the cache. A sweepInterval of zero disables the
// background sweep; expiry then relies on lazy eviction only.
func NewMemory(capacity int, defaultTTL, sweepInterval time.Duration) *Memory {
	if capacity <= 0 {
		capacity = 500
	}
	m := &Memory{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		entries:    make(map[string]*entry, capacity),
		done:       make(chan struct{}),
		now:        time.Now,
	}
	if sweepInterval > 0 {
		go m.sweepLoop(sweepInterval)
	}
	return m
}

// Get implements retrieval.RowCache.
func (m *Memory) Get(_ context.Context, key string) ([]retrieval.Row, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		m.stats.Misses++
		return nil, false
	}
	now := m.now()
	if hasExpired(e.expiresAt, now) {
		delete(m.entries, key)
		m.stats.Misses++
		return nil, false
	}
	e.lastTouched = now
	m.stats.Hits++
	return e.rows, true
}

// Set implements retrieval.RowCache. A non-positive ttl falls back to the
// default TTL.
func (m *Memory) Set(_ context.Context, key string, rows []retrieval.Row, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.entries[key]; ok {
		existing.rows = rows
		existing.expiresAt = expiry(now, ttl)
		existing.lastTouched = now
		m.stats.Sets++
		return
	}
	if len(m.entries) >= m.capacity {
		m.evictOldestLocked()
	}
	m.entries[key] = &entry{
		rows:        rows,
		expiresAt:   expiry(now, ttl),
		lastTouched: now,
	}
	m.stats.Sets++
}

// Delete implements retrieval.RowCache.
func (m *Memory) Delete(_ context.Context, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; !ok {
		return false
	}
	delete(m.entries, key)
	m.stats.Deletes++
	return true
}

// Has implements retrieval.RowCache without refreshing the entry.
func (m *Memory) Has(_ context.Context, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return false
	}
	if hasExpired(e.expiresAt, m.now()) {
		delete(m.entries, key)
		return false
	}
	return true
}

// Stats returns a snapshot of the activity counters.
func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Len returns the live entry count.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close stops the background sweep.
func (m *Memory) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}

func (m *Memory) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Memory) sweep() {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, e := range m.entries {
		if hasExpired(e.expiresAt, now) {
			delete(m.entries, key)
		}
	}
}

func (m *Memory) evictOldestLocked() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for key, e := range m.entries {
		if !found || e.lastTouched.Before(oldest) {
			oldestKey = key
			oldest = e.lastTouched
			found = true
		}
	}
	if found {
		delete(m.entries, oldestKey)
		m.stats.Evictions++
	}
}

func expiry(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

func hasExpired(ts, now time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(now)
}

var _ retrieval.RowCache = (*Memory)(nil)
