// Package activity records the outcome of every dashboard action.
package activity

import (
	"context"
	"sync"

	"github.com/yanqian/breatheeasy/internal/domain/action"
)

const defaultCapacity = 1000

// MemoryStore keeps the most recent entries in a bounded ring for tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []action.Activity
	next    int
	full    bool
}

// NewMemoryStore constructs a store holding up to capacity entries.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &MemoryStore{entries: make([]action.Activity, capacity)}
}

// Append implements action.ActivityLog.
func (s *MemoryStore) Append(_ context.Context, entry action.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[s.next] = entry
	s.next = (s.next + 1) % len(s.entries)
	if s.next == 0 {
		s.full = true
	}
	return nil
}

// Recent implements action.ActivityLog, newest first.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]action.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	size := s.next
	if s.full {
		size = len(s.entries)
	}
	if limit <= 0 || limit > size {
		limit = size
	}
	out := make([]action.Activity, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + len(s.entries)) % len(s.entries)
		out = append(out, s.entries[idx])
	}
	return out, nil
}

var _ action.ActivityLog = (*MemoryStore)(nil)
