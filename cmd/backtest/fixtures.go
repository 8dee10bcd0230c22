package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"trading-call-lab/internal/domain"
	"trading-call-lab/internal/idhash"
	"trading-call-lab/internal/storage"
)

// loadCallsCSV seeds a call store from a CSV fixture. Expected header:
//
//	token_address,token_symbol,call_type,label,entry_time_ms,entry_price,
//	entry_market_cap,liquidity,volume_24h,current_market_cap
//
// An optional leading id column is honored; otherwise IDs are derived
// deterministically so re-imports hit the duplicate check instead of
// doubling the dataset.
func loadCallsCSV(ctx context.Context, store storage.CallStore, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	cols := indexColumns(header)

	inserted := 0
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return inserted, fmt.Errorf("line %d: %w", line, err)
		}

		call, err := parseCallRow(cols, row)
		if err != nil {
			return inserted, fmt.Errorf("line %d: %w", line, err)
		}
		if err := store.Insert(ctx, call); err != nil {
			return inserted, fmt.Errorf("line %d: insert: %w", line, err)
		}
		inserted++
	}
	return inserted, nil
}

// loadPricesCSV seeds a price history store from a CSV fixture with
// header token_address,timestamp_ms,price_usd. The whole file is
// inserted as one batch.
func loadPricesCSV(ctx context.Context, store storage.PriceHistoryStore, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	cols := indexColumns(header)

	var snapshots []*domain.PriceSnapshot
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", line, err)
		}

		ts, err := strconv.ParseInt(field(cols, row, "timestamp_ms"), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("line %d: timestamp_ms: %w", line, err)
		}
		price, err := strconv.ParseFloat(field(cols, row, "price_usd"), 64)
		if err != nil {
			return 0, fmt.Errorf("line %d: price_usd: %w", line, err)
		}
		snapshots = append(snapshots, &domain.PriceSnapshot{
			TokenAddress: field(cols, row, "token_address"),
			TimestampMs:  ts,
			PriceUSD:     price,
		})
	}

	if len(snapshots) == 0 {
		return 0, nil
	}
	if err := store.InsertBulk(ctx, snapshots); err != nil {
		return 0, err
	}
	return len(snapshots), nil
}

func parseCallRow(cols map[string]int, row []string) (*domain.CallRecord, error) {
	entryTime, err := strconv.ParseInt(field(cols, row, "entry_time_ms"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("entry_time_ms: %w", err)
	}

	call := &domain.CallRecord{
		TokenAddress: field(cols, row, "token_address"),
		TokenSymbol:  field(cols, row, "token_symbol"),
		CallType:     field(cols, row, "call_type"),
		EntryTime:    entryTime,
	}

	if v := field(cols, row, "label"); v != "" {
		call.Label = &v
	}
	if v := field(cols, row, "entry_price"); v != "" {
		call.EntryPrice, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("entry_price: %w", err)
		}
	}
	if call.EntryMarketCap, err = optionalFloat(cols, row, "entry_market_cap"); err != nil {
		return nil, err
	}
	if call.Liquidity, err = optionalFloat(cols, row, "liquidity"); err != nil {
		return nil, err
	}
	if call.Volume24h, err = optionalFloat(cols, row, "volume_24h"); err != nil {
		return nil, err
	}
	if call.CurrentMarketCap, err = optionalFloat(cols, row, "current_market_cap"); err != nil {
		return nil, err
	}

	if id := field(cols, row, "id"); id != "" {
		call.ID = id
	} else {
		call.ID = idhash.ComputeCallID(call.TokenAddress, call.EntryTime, call.CallType, call.Label)
	}
	return call, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	return cols
}

func field(cols map[string]int, row []string, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func optionalFloat(cols map[string]int, row []string, name string) (*float64, error) {
	s := field(cols, row, name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &v, nil
}
