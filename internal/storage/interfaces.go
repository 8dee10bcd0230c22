package storage

import (
	"context"

	"trading-call-lab/internal/domain"
)

// CallStore provides access to trading_calls storage.
type CallStore interface {
	// Insert adds a new call. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, c *domain.CallRecord) error

	// GetByID retrieves a call by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.CallRecord, error)

	// GetFiltered retrieves calls matching the filters, most recent first
	// (entry_time DESC, id ASC on ties), capped at limit (0 means no cap).
	// The cap keeps the most recent calls, and downstream order-sensitive
	// metrics consume the rows in exactly this order.
	GetFiltered(ctx context.Context, filters *domain.CallFilters, limit int) ([]*domain.CallRecord, error)
}

// PriceHistoryStore provides access to price_history storage.
type PriceHistoryStore interface {
	// InsertBulk adds multiple snapshots. Fails the entire batch on a
	// duplicate (token_address, timestamp_ms).
	InsertBulk(ctx context.Context, snapshots []*domain.PriceSnapshot) error

	// GetHistory retrieves snapshots for a token at or after sinceMs,
	// ordered by timestamp ASC, capped at limit (0 means no cap).
	GetHistory(ctx context.Context, tokenAddress string, sinceMs int64, limit int) ([]*domain.PriceSnapshot, error)
}
