package domain

// ProfitFactorCap encodes "all gains, no losses" as a finite value instead
// of raising a division error.
const ProfitFactorCap = 999.0

// Percentiles holds nearest-rank percentile bands over a ROI distribution.
type Percentiles struct {
	P10 float64
	P25 float64
	P75 float64
	P90 float64
}

// RiskMetrics holds dispersion and drawdown measures over a ROI list.
type RiskMetrics struct {
	StandardDeviation float64 // population stddev (divides by n)
	MaxROI            float64
	MinROI            float64
	SharpeRatio       float64 // mean / stddev, 0 risk-free rate; 0 when stddev is 0
	// MaxDrawdown is a running-peak scan over ROI values in input order.
	// A proxy measure, not a true equity-curve drawdown: input order is the
	// CallSource return order, typically recency-descending.
	MaxDrawdown float64
}

// PerformanceMetrics aggregates a list of per-trade ROI percentages.
// The zero value is the defined result for an empty input.
type PerformanceMetrics struct {
	WinRate      float64 // percent of trades with ROI > 0
	MedianROI    float64
	AverageROI   float64
	ProfitFactor float64 // sum(gains) / |sum(losses)|; ProfitFactorCap when lossless
	Percentiles  Percentiles
	Risk         RiskMetrics
}
