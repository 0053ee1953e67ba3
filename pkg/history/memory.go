package history

import (
	"context"
	"sync"
)

// DefaultCapacity is the number of records a MemoryStore keeps when no
// capacity is given.
const DefaultCapacity = 1000

// MemoryStore keeps the most recent records in a ring buffer.
// It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
	next    int
	full    bool
}

// NewMemoryStore creates a store holding at most capacity records.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{records: make([]Record, capacity)}
}

// Add stores r, evicting the oldest record when full.
func (s *MemoryStore) Add(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[s.next] = r
	s.next = (s.next + 1) % len(s.records)
	if s.next == 0 {
		s.full = true
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.next
	if s.full {
		n = len(s.records)
	}
	limit = max(0, min(limit, n))

	out := make([]Record, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + len(s.records)) % len(s.records)
		out = append(out, s.records[idx])
	}
	return out, nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close(context.Context) error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
