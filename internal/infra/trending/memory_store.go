// Package trending counts how often each location is searched.
package trending

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/yanqian/breatheeasy/internal/domain/action"
)

// MemoryStore is an in-memory ranking for tests/dev.
type MemoryStore struct {
	mu       sync.RWMutex
	counts   map[string]int64
	displays map[string]string
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counts:   make(map[string]int64),
		displays: make(map[string]string),
	}
}

// Bump implements action.Trending. The first spelling seen is the one shown.
func (s *MemoryStore) Bump(_ context.Context, location string) error {
	canonical := Canonical(location)
	if canonical == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[canonical]++
	if _, exists := s.displays[canonical]; !exists {
		s.displays[canonical] = strings.TrimSpace(location)
	}
	return nil
}

// Top implements action.Trending.
func (s *MemoryStore) Top(_ context.Context, limit int) ([]action.TrendingLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = len(s.counts)
	}
	items := make([]action.TrendingLocation, 0, len(s.counts))
	for canonical, count := range s.counts {
		items = append(items, action.TrendingLocation{Location: s.displays[canonical], Searches: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Searches == items[j].Searches {
			return items[i].Location < items[j].Location
		}
		return items[i].Searches > items[j].Searches
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Canonical folds case and inner whitespace so "new  delhi" and "New Delhi" share a counter.
func Canonical(location string) string {
	return strings.ToLower(strings.Join(strings.Fields(location), " "))
}

var _ action.Trending = (*MemoryStore)(nil)
