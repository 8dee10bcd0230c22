package clickhouse

import (
	"context"
	"fmt"

	"trading-call-lab/internal/domain"
	"trading-call-lab/internal/storage"
)

// PriceHistoryStore implements storage.PriceHistoryStore using ClickHouse.
type PriceHistoryStore struct {
	conn *Conn
}

// NewPriceHistoryStore creates a new PriceHistoryStore.
func NewPriceHistoryStore(conn *Conn) *PriceHistoryStore {
	return &PriceHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// InsertBulk adds multiple snapshots. Fails the entire batch on a duplicate
// (token_address, timestamp_ms). MergeTree does not enforce uniqueness, so
// duplicates are rejected with explicit checks before the batch is sent.
func (s *PriceHistoryStore) InsertBulk(ctx context.Context, snapshots []*domain.PriceSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	type key struct {
		tokenAddress string
		timestampMs  int64
	}
	seen := make(map[key]struct{}, len(snapshots))
	for _, p := range snapshots {
		if p == nil || p.TokenAddress == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.TokenAddress, p.TimestampMs}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, p := range snapshots {
		exists, err := s.exists(ctx, p.TokenAddress, p.TimestampMs)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_history (token_address, timestamp_ms, price_usd)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range snapshots {
		if err := batch.Append(p.TokenAddress, uint64(p.TimestampMs), p.PriceUSD); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetHistory retrieves snapshots for a token at or after sinceMs, ordered
// by timestamp ASC, capped at limit (0 means no cap).
func (s *PriceHistoryStore) GetHistory(ctx context.Context, tokenAddress string, sinceMs int64, limit int) ([]*domain.PriceSnapshot, error) {
	query := `
		SELECT token_address, timestamp_ms, price_usd
		FROM price_history
		WHERE token_address = ? AND timestamp_ms >= ?
		ORDER BY timestamp_ms ASC
	`
	args := []any{tokenAddress, uint64(sinceMs)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, uint64(limit))
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query price history: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// exists checks if a snapshot with the given key exists.
func (s *PriceHistoryStore) exists(ctx context.Context, tokenAddress string, timestampMs int64) (bool, error) {
	query := `
		SELECT count(*) FROM price_history
		WHERE token_address = ? AND timestamp_ms = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, tokenAddress, uint64(timestampMs)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanSnapshots scans multiple rows.
func scanSnapshots(rows chRows) ([]*domain.PriceSnapshot, error) {
	var snapshots []*domain.PriceSnapshot

	for rows.Next() {
		var p domain.PriceSnapshot
		var timestampMs uint64

		if err := rows.Scan(&p.TokenAddress, &timestampMs, &p.PriceUSD); err != nil {
			return nil, fmt.Errorf("scan price history row: %w", err)
		}

		p.TimestampMs = int64(timestampMs)
		snapshots = append(snapshots, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price history rows: %w", err)
	}

	return snapshots, nil
}
