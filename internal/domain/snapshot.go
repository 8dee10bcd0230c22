package domain

// PriceSnapshot represents one observed price point for a token.
// Corresponds to the price_history table in ClickHouse.
type PriceSnapshot struct {
	TokenAddress string  // token contract address
	TimestampMs  int64   // Unix timestamp in milliseconds
	PriceUSD     float64 // non-negative
}
