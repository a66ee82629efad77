package novelty

import (
	"context"
	"sync"
)

// MemoryStore is an in-process bounded store of recent content hashes.
// When capacity is reached the oldest hash is forgotten first.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	order    []string
	seen     map[string]bool
}

// NewMemoryStore creates a memory store holding up to capacity hashes.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemoryStore{
		capacity: capacity,
		order:    make([]string, 0, capacity),
		seen:     make(map[string]bool, capacity),
	}
}

// IsRecentDuplicate reports whether the hash is still in the window.
func (s *MemoryStore) IsRecentDuplicate(_ context.Context, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[hash], nil
}

// Record remembers the hash, evicting the oldest entry when full.
// Recording an already-known hash is a no-op (its position is not refreshed).
func (s *MemoryStore) Record(_ context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seen[hash] {
		return nil
	}

	if len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.seen, oldest)
	}

	s.order = append(s.order, hash)
	s.seen[hash] = true
	return nil
}

// Len returns the number of hashes currently held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
