// Package memory provides in-memory store implementations for tests and
// fixture-driven runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"trading-call-lab/internal/domain"
	"trading-call-lab/internal/storage"
)

// CallStore is an in-memory implementation of storage.CallStore.
type CallStore struct {
	mu   sync.RWMutex
	data map[string]*domain.CallRecord // keyed by call ID
}

// NewCallStore creates a new in-memory call store.
func NewCallStore() *CallStore {
	return &CallStore{
		data: make(map[string]*domain.CallRecord),
	}
}

// Insert adds a new call. Returns ErrDuplicateKey if the ID exists.
func (s *CallStore) Insert(_ context.Context, c *domain.CallRecord) error {
	if c == nil || c.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[c.ID]; exists {
		return storage.ErrDuplicateKey
	}

	callCopy := *c
	s.data[c.ID] = &callCopy
	return nil
}

// GetByID retrieves a call by its ID. Returns ErrNotFound if not exists.
func (s *CallStore) GetByID(_ context.Context, id string) (*domain.CallRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	callCopy := *c
	return &callCopy, nil
}

// GetFiltered retrieves calls matching the filters, most recent first
// (entry_time DESC, id ASC on ties), capped at limit (0 means no cap).
// The cap keeps the most recent calls.
func (s *CallStore) GetFiltered(_ context.Context, filters *domain.CallFilters, limit int) ([]*domain.CallRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CallRecord
	for _, c := range s.data {
		if filters != nil && !filters.Matches(c) {
			continue
		}
		callCopy := *c
		result = append(result, &callCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].EntryTime != result[j].EntryTime {
			return result[i].EntryTime > result[j].EntryTime
		}
		return result[i].ID < result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

var _ storage.CallStore = (*CallStore)(nil)
