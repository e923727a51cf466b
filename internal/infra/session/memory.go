package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/helpdeskhq/smartfaq/internal/domain/retrieval"
)

type entry struct {
	ctx       retrieval.SessionContext
	touchedAt time.Time
}

// Store keeps per-conversation context keyed by session id. It is injected
// rather than ambient so its lifecycle is tied to the service: Close stops
// the cleanup loop.
type Store struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]*entry

	done      chan struct{}
	closeOnce sync.Once
	now       func() time.Time
}

// NewStore constructs the store. A cleanupInterval of zero disables the
// background sweep.
func NewStore(ttl, cleanupInterval time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	s := &Store{
		ttl:     ttl,
		entries: make(map[string]*entry),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	if cleanupInterval > 0 {
		go s.cleanupLoop(cleanupInterval)
	}
	return s
}

// Resolve returns the stored context for id, minting a fresh session when id
// is empty or unknown. Known sessions are refreshed and merged with any
// non-empty fields of the supplied context.
func (s *Store) Resolve(id string, supplied retrieval.SessionContext) retrieval.SessionContext {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if e, ok := s.entries[id]; ok && now.Sub(e.touchedAt) <= s.ttl {
			merged := e.ctx
			if supplied.Language != "" {
				merged.Language = supplied.Language
			}
			if supplied.Category != "" {
				merged.Category = supplied.Category
			}
			if supplied.ProductRef != "" {
				merged.ProductRef = supplied.ProductRef
			}
			e.ctx = merged
			e.touchedAt = now
			return merged
		}
	}

	fresh := supplied
	fresh.SessionID = uuid.NewString()
	s.entries[fresh.SessionID] = &entry{ctx: fresh, touchedAt: now}
	return fresh
}

// Get returns the stored context without refreshing it.
func (s *Store) Get(id string) (retrieval.SessionContext, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok || s.now().Sub(e.touchedAt) > s.ttl {
		return retrieval.SessionContext{}, false
	}
	return e.ctx, true
}

// Len returns the live session count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the cleanup loop.
func (s *Store) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Store) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *Store) cleanup() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if now.Sub(e.touchedAt) > s.ttl {
			delete(s.entries, id)
		}
	}
}
