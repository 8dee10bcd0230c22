package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"trading-call-lab/internal/domain"
	"trading-call-lab/internal/storage"
)

// CallStore implements storage.CallStore using PostgreSQL.
type CallStore struct {
	pool *Pool
}

// NewCallStore creates a new CallStore.
func NewCallStore(pool *Pool) *CallStore {
	return &CallStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CallStore = (*CallStore)(nil)

const callColumns = `
	id, token_address, token_symbol, call_type, label,
	entry_time, entry_price, entry_price_estimated,
	entry_market_cap, liquidity, volume_24h, current_market_cap
`

// Insert adds a new call. Returns ErrDuplicateKey if the ID exists.
func (s *CallStore) Insert(ctx context.Context, c *domain.CallRecord) error {
	if c == nil || c.ID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trading_calls (` + callColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.pool.Exec(ctx, query,
		c.ID,
		c.TokenAddress,
		c.TokenSymbol,
		c.CallType,
		c.Label,
		c.EntryTime,
		c.EntryPrice,
		c.EntryPriceEstimated,
		c.EntryMarketCap,
		c.Liquidity,
		c.Volume24h,
		c.CurrentMarketCap,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert call: %w", err)
	}
	return nil
}

// GetByID retrieves a call by its ID. Returns ErrNotFound if not exists.
func (s *CallStore) GetByID(ctx context.Context, id string) (*domain.CallRecord, error) {
	query := `
		SELECT ` + callColumns + `
		FROM trading_calls
		WHERE id = $1
	`

	row := s.pool.QueryRow(ctx, query, id)
	c, err := scanCall(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get call by id: %w", err)
	}
	return c, nil
}

// GetFiltered retrieves calls matching the filters, most recent first
// (entry_time DESC, id ASC on ties), capped at limit (0 means no cap).
// The cap keeps the most recent calls.
func (s *CallStore) GetFiltered(ctx context.Context, filters *domain.CallFilters, limit int) ([]*domain.CallRecord, error) {
	query, args := buildFilteredQuery(filters, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get filtered calls: %w", err)
	}
	defer rows.Close()

	return scanCalls(rows)
}

// buildFilteredQuery translates CallFilters into a WHERE clause with
// positional args. Nil/empty filter fields add no condition.
func buildFilteredQuery(filters *domain.CallFilters, limit int) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters != nil {
		if len(filters.CallTypes) > 0 {
			conds = append(conds, "call_type = ANY("+arg(filters.CallTypes)+")")
		}
		if len(filters.Labels) > 0 {
			var plain []string
			wantNoLabel := false
			for _, l := range filters.Labels {
				if l == domain.NoLabel {
					wantNoLabel = true
				} else {
					plain = append(plain, l)
				}
			}
			switch {
			case wantNoLabel && len(plain) > 0:
				conds = append(conds, "(label IS NULL OR label = ANY("+arg(plain)+"))")
			case wantNoLabel:
				conds = append(conds, "label IS NULL")
			default:
				conds = append(conds, "label = ANY("+arg(plain)+")")
			}
		}
		if filters.MarketCapMin != nil {
			conds = append(conds, "entry_market_cap >= "+arg(*filters.MarketCapMin))
		}
		if filters.MarketCapMax != nil {
			conds = append(conds, "entry_market_cap <= "+arg(*filters.MarketCapMax))
		}
		if filters.LiquidityMin != nil {
			conds = append(conds, "liquidity >= "+arg(*filters.LiquidityMin))
		}
		if filters.VolumeMin != nil {
			conds = append(conds, "volume_24h >= "+arg(*filters.VolumeMin))
		}
		if startMs, ok := filters.StartDateMs(); ok {
			conds = append(conds, "entry_time >= "+arg(startMs))
		}
		if endMs, ok := filters.EndDateBoundMs(); ok {
			// Exclusive bound; covers the end day through 23:59:59.999.
			conds = append(conds, "entry_time < "+arg(endMs))
		}
		if len(filters.IncludeTokens) > 0 {
			conds = append(conds, "token_address = ANY("+arg(filters.IncludeTokens)+")")
		}
		if len(filters.ExcludeTokens) > 0 {
			conds = append(conds, "NOT (token_address = ANY("+arg(filters.ExcludeTokens)+"))")
		}
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(callColumns)
	b.WriteString(" FROM trading_calls")
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY entry_time DESC, id ASC")
	if limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(arg(limit))
	}

	return b.String(), args
}

// scanCall scans a single row into a CallRecord.
func scanCall(row pgx.Row) (*domain.CallRecord, error) {
	var c domain.CallRecord

	err := row.Scan(
		&c.ID,
		&c.TokenAddress,
		&c.TokenSymbol,
		&c.CallType,
		&c.Label,
		&c.EntryTime,
		&c.EntryPrice,
		&c.EntryPriceEstimated,
		&c.EntryMarketCap,
		&c.Liquidity,
		&c.Volume24h,
		&c.CurrentMarketCap,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// scanCalls scans multiple rows into a slice of CallRecord.
func scanCalls(rows pgx.Rows) ([]*domain.CallRecord, error) {
	var calls []*domain.CallRecord

	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("scan call row: %w", err)
		}
		calls = append(calls, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate call rows: %w", err)
	}

	return calls, nil
}
