package sequence

import (
	"context"
	"sync"
)

// InMemory is a mutex-guarded counter map for development and tests.
type InMemory struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewInMemory() *InMemory {
	return &InMemory{counts: make(map[string]int64)}
}

func (s *InMemory) Next(_ context.Context, period string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[period]++
	return s.counts[period], nil
}

// Seed sets the current counter value for a period. Test helper for
// simulating a mid-month sequence position.
func (s *InMemory) Seed(period string, value int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[period] = value
}
