package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-call-lab/internal/domain"
	"trading-call-lab/internal/storage"
)

func snapshots(token string, startMs, intervalMs int64, prices ...float64) []*domain.PriceSnapshot {
	result := make([]*domain.PriceSnapshot, len(prices))
	for i, p := range prices {
		result[i] = &domain.PriceSnapshot{
			TokenAddress: token,
			TimestampMs:  startMs + int64(i)*intervalMs,
			PriceUSD:     p,
		}
	}
	return result
}

func TestPriceHistoryStore_InsertBulkAndGetHistory(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceHistoryStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, snapshots("TokenAddr1", 1700000000000, 60_000, 0.001, 0.002, 0.0015))
	require.NoError(t, err)

	got, err := store.GetHistory(ctx, "TokenAddr1", 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, int64(1700000000000), got[0].TimestampMs)
	assert.Equal(t, 0.001, got[0].PriceUSD)
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i].TimestampMs, got[i-1].TimestampMs)
	}
}

func TestPriceHistoryStore_SinceBoundInclusive(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceHistoryStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, snapshots("TokenAddr1", 1000, 1000, 1.0, 2.0, 1.5)))

	got, err := store.GetHistory(ctx, "TokenAddr1", 2000, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2000), got[0].TimestampMs)
}

func TestPriceHistoryStore_Limit(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceHistoryStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, snapshots("TokenAddr1", 1000, 1000, 1.0, 2.0, 1.5, 1.2)))

	got, err := store.GetHistory(ctx, "TokenAddr1", 0, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1000), got[0].TimestampMs)
	assert.Equal(t, int64(2000), got[1].TimestampMs)
}

func TestPriceHistoryStore_DuplicateRejected(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceHistoryStore(conn)
	ctx := context.Background()

	// Intra-batch duplicate.
	err := store.InsertBulk(ctx, snapshots("TokenAddr1", 1000, 0, 1.0, 2.0))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Duplicate against an existing row.
	require.NoError(t, store.InsertBulk(ctx, snapshots("TokenAddr1", 1000, 1000, 1.0)))
	err = store.InsertBulk(ctx, snapshots("TokenAddr1", 1000, 1000, 9.9))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestPriceHistoryStore_TokenIsolation(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceHistoryStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, snapshots("TokenAddr1", 1000, 1000, 1.0, 2.0)))
	require.NoError(t, store.InsertBulk(ctx, snapshots("TokenAddr2", 1000, 1000, 5.0)))

	got, err := store.GetHistory(ctx, "TokenAddr2", 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 5.0, got[0].PriceUSD)
}
