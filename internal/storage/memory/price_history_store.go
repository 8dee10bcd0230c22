package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"trading-call-lab/internal/domain"
	"trading-call-lab/internal/storage"
)

// PriceHistoryStore is an in-memory implementation of storage.PriceHistoryStore.
type PriceHistoryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PriceSnapshot // keyed by (token_address, timestamp_ms)
}

// NewPriceHistoryStore creates a new in-memory price history store.
func NewPriceHistoryStore() *PriceHistoryStore {
	return &PriceHistoryStore{
		data: make(map[string]*domain.PriceSnapshot),
	}
}

// snapshotKey generates a unique key for a snapshot.
func snapshotKey(tokenAddress string, timestampMs int64) string {
	return fmt.Sprintf("%s|%d", tokenAddress, timestampMs)
}

// InsertBulk adds multiple snapshots. Fails the entire batch on a duplicate
// (token_address, timestamp_ms).
func (s *PriceHistoryStore) InsertBulk(_ context.Context, snapshots []*domain.PriceSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: reject existing and intra-batch duplicates before writing.
	batchKeys := make(map[string]struct{}, len(snapshots))
	for _, p := range snapshots {
		if p == nil || p.TokenAddress == "" {
			return storage.ErrInvalidInput
		}
		key := snapshotKey(p.TokenAddress, p.TimestampMs)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range snapshots {
		key := snapshotKey(p.TokenAddress, p.TimestampMs)
		snapCopy := *p
		s.data[key] = &snapCopy
	}

	return nil
}

// GetHistory retrieves snapshots for a token at or after sinceMs, ordered
// by timestamp ASC, capped at limit (0 means no cap).
func (s *PriceHistoryStore) GetHistory(_ context.Context, tokenAddress string, sinceMs int64, limit int) ([]*domain.PriceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceSnapshot
	for _, p := range s.data {
		if p.TokenAddress == tokenAddress && p.TimestampMs >= sinceMs {
			snapCopy := *p
			result = append(result, &snapCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)
