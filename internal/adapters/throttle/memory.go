package throttle

import (
	"context"
	"sync"
	"time"
)

type counter struct {
	n       int
	expires time.Time
}

// MemoryStore is a process-local attempt store for development and tests.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]counter
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]counter), now: time.Now}
}

// live returns the unexpired counter for key. Callers hold mu.
func (s *MemoryStore) live(key string) (counter, bool) {
	c, ok := s.counters[key]
	if !ok {
		return counter{}, false
	}
	if !s.now().Before(c.expires) {
		delete(s.counters, key)
		return counter{}, false
	}
	return c, true
}

func (s *MemoryStore) Get(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, _ := s.live(key)
	return c.n, nil
}

func (s *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, _ := s.live(key)
	c.n++
	c.expires = s.now().Add(ttl)
	s.counters[key] = c
	return c.n, nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counters, key)
	return nil
}
