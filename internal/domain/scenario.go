package domain

// ExitBreakdown counts simulated trades by how they ended.
type ExitBreakdown struct {
	TakeProfit   int
	TrailingStop int
	MaxHold      int
	StillOpen    int
}

// ImprovementMetrics compares simulated performance against the
// no-strategy baseline computed from market caps.
type ImprovementMetrics struct {
	AvgROIDelta       float64 // mean of per-call (simulatedROI - actualROI)
	WinRateDelta      float64
	MedianROIDelta    float64
	ProfitFactorDelta float64
}

// ScenarioMetrics holds portfolio-level measures for one scenario.
type ScenarioMetrics struct {
	PortfolioValue1000 float64 // 1000 * simulatedCount * (1 + avgROI/100)
	// Streaks scan simulated ROIs in CallSource return order, which is
	// recency-descending rather than chronological. Kept for compatibility
	// with the established report format.
	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
	// RecoveryRate is the fraction of losing trades whose recorded peak
	// exceeded the entry price at some point before the exit.
	RecoveryRate float64
	// AvgTimeInMarketDays averages daysToExit over closed trades.
	AvgTimeInMarketDays float64
}

// CallDetail is one per-call row of a detailed scenario report.
type CallDetail struct {
	CallID              string
	TokenSymbol         string
	TokenAddress        string
	EntryTimeMs         int64
	EntryPrice          float64
	EntryPriceEstimated bool
	ExitReason          string // "" while still open
	SimulatedROI        *float64
	ActualROI           float64
	PeakPrice           float64
	DaysToPeak          float64
	DaysToExit          *float64
	FeesPaid            float64
}

// ScenarioResult is the full report for one trailing-stop percentage across
// all filtered calls.
type ScenarioResult struct {
	TrailingStopPct float64

	TotalCalls     int
	SimulatedCalls int
	Coverage       float64 // percent: simulatedCalls / totalCalls * 100

	ExitBreakdown ExitBreakdown

	Simulated     PerformanceMetrics
	AvgDaysToExit float64
	AvgDaysToPeak float64

	// Actual is computed over the market-cap ROI proxy for every filtered
	// call, independent of the stop percentage, so the baseline is
	// identical across scenarios.
	Actual PerformanceMetrics

	Improvement ImprovementMetrics

	TotalFees   float64
	AvgFees     float64
	TotalPnlUSD float64 // sum(investment * simulatedROI/100) over simulated trades

	Metrics ScenarioMetrics

	// Details is populated only when the caller requested per-call rows.
	Details []CallDetail
}
