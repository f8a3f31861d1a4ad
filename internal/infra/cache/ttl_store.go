package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// TTLStore is a small in-process cache with per-entry expiry. Lookups are
// served from memory so a hot read path never leaves the process; entries
// are dropped lazily on access.
type TTLStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewTTLStore(ttl time.Duration) *TTLStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TTLStore{
		entries: map[string]entry{},
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *TTLStore) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.now().After(e.expiresAt) {
		s.mu.Lock()
		// recheck under the write lock; a Set may have refreshed it
		if cur, ok := s.entries[key]; ok && s.now().After(cur.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (s *TTLStore) Set(key string, value interface{}) {
	s.mu.Lock()
	s.entries[key] = entry{value: value, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
}

func (s *TTLStore) Delete(keys ...string) {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.entries, k)
	}
	s.mu.Unlock()
}

func (s *TTLStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
