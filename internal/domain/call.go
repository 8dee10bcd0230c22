package domain

// CallRecord represents one historical trading signal under test.
// Corresponds to the trading_calls table in PostgreSQL.
type CallRecord struct {
	ID           string  // PRIMARY KEY, deterministic hash
	TokenAddress string  // token contract address (base58)
	TokenSymbol  string  // display symbol
	CallType     string  // signal classification from the upstream parser
	Label        *string // channel/tag label (nullable)

	EntryTime  int64   // Unix timestamp in milliseconds
	EntryPrice float64 // USD, must be > 0 to be simulatable

	// EntryPriceEstimated marks entry prices derived from the market-cap
	// fallback rather than an observed snapshot. Unreliable; surfaced in
	// per-call detail rows.
	EntryPriceEstimated bool

	// Contextual fields. Absent means unknown, never zero.
	EntryMarketCap   *float64
	Liquidity        *float64
	Volume24h        *float64
	CurrentMarketCap *float64 // latest known market cap, used for the "actual" comparison only
}

// Simulatable reports whether the record passes the pre-simulation
// entry-price invariant.
func (c *CallRecord) Simulatable() bool {
	return c != nil && c.EntryPrice > 0
}

// ActualROI returns the no-strategy ROI proxy in percent:
// (currentMarketCap - entryMarketCap) / entryMarketCap * 100.
// Returns 0 when either market cap is unknown or entry is non-positive.
func (c *CallRecord) ActualROI() float64 {
	if c.EntryMarketCap == nil || c.CurrentMarketCap == nil {
		return 0
	}
	if *c.EntryMarketCap <= 0 {
		return 0
	}
	return (*c.CurrentMarketCap - *c.EntryMarketCap) / *c.EntryMarketCap * 100
}
