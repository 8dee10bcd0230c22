package scenario

import (
	"context"
	"sync"

	"trading-call-lab/internal/domain"
	"trading-call-lab/internal/storage"
)

// PriceProvider supplies the full snapshot history for a token.
type PriceProvider interface {
	History(ctx context.Context, tokenAddress string) ([]*domain.PriceSnapshot, error)
}

// CachedPriceProvider memoizes per-token history loaded from a
// PriceHistoryStore. One backtest runs the same call set through every
// trailing-stop percentage, so each token's history is fetched exactly once.
type CachedPriceProvider struct {
	store   storage.PriceHistoryStore
	limit   int
	sinceMs map[string]int64

	mu    sync.Mutex
	cache map[string][]*domain.PriceSnapshot
}

// NewCachedPriceProvider creates a caching provider. limit caps the number
// of snapshots fetched per token (0 means no cap). sinceMs optionally
// bounds each token's fetch to its earliest call entry; without it a
// snapshot cap would keep the oldest rows and cut off the recent end of
// history for calls entering late. Nil fetches from the beginning.
func NewCachedPriceProvider(store storage.PriceHistoryStore, limit int, sinceMs map[string]int64) *CachedPriceProvider {
	return &CachedPriceProvider{
		store:   store,
		limit:   limit,
		sinceMs: sinceMs,
		cache:   make(map[string][]*domain.PriceSnapshot),
	}
}

// History returns the ascending snapshot history for a token, loading it on
// first use. Failed loads are not cached so a later scenario can retry.
func (p *CachedPriceProvider) History(ctx context.Context, tokenAddress string) ([]*domain.PriceSnapshot, error) {
	p.mu.Lock()
	cached, ok := p.cache[tokenAddress]
	p.mu.Unlock()
	if ok {
		return cached, nil
	}

	history, err := p.store.GetHistory(ctx, tokenAddress, p.sinceMs[tokenAddress], p.limit)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cache[tokenAddress] = history
	p.mu.Unlock()
	return history, nil
}

var _ PriceProvider = (*CachedPriceProvider)(nil)
