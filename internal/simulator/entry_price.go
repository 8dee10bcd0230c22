package simulator

import "trading-call-lab/internal/domain"

// EntryPriceEstimator derives an entry price for calls that have no price
// snapshot at or after their entry time. Implementations return ok=false
// when no estimate is possible.
type EntryPriceEstimator interface {
	EstimateEntryPrice(call *domain.CallRecord) (price float64, ok bool)
}

// MarketCapEstimator estimates entry price as entryMarketCap divided by an
// assumed circulating supply. A rough heuristic with no guarantee of
// accuracy; results derived from it are flagged EntryPriceEstimated.
type MarketCapEstimator struct {
	// AssumedSupply defaults to 1e6 tokens when zero.
	AssumedSupply float64
}

// EstimateEntryPrice implements EntryPriceEstimator.
func (e MarketCapEstimator) EstimateEntryPrice(call *domain.CallRecord) (float64, bool) {
	if call.EntryMarketCap == nil || *call.EntryMarketCap <= 0 {
		return 0, false
	}
	supply := e.AssumedSupply
	if supply == 0 {
		supply = 1_000_000
	}
	return *call.EntryMarketCap / supply, true
}

var _ EntryPriceEstimator = MarketCapEstimator{}
