package domain

// Exit reason codes
const (
	ExitReasonTakeProfit   = "TAKE_PROFIT"
	ExitReasonTrailingStop = "TRAILING_STOP"
	ExitReasonMaxHold      = "MAX_HOLD"
)

// Default execution cost parameters (basis points / USD).
const (
	DefaultSlippageBps      = 20.0
	DefaultFeesBps          = 10.0
	DefaultInvestmentAmount = 1000.0
)

// SimulationParams holds exit-rule and execution-cost configuration shared
// by every scenario in a backtest run.
type SimulationParams struct {
	TrailingStopPercentages []float64 // fractions, e.g. 0.15 = 15%
	TakeProfitMultiplier    *float64  // exit when price >= entryPrice * multiplier (optional)
	MaxHoldDays             *float64  // forced exit after N days (optional)
	SlippageBps             float64   // deducted from the gross exit price
	FeesBps                 float64   // charged on both entry and exit
	InvestmentAmount        float64   // per-trade stake for dollar P&L
}

// DefaultSimulationParams returns params with standard execution costs and
// no optional exit rules.
func DefaultSimulationParams() SimulationParams {
	return SimulationParams{
		SlippageBps:      DefaultSlippageBps,
		FeesBps:          DefaultFeesBps,
		InvestmentAmount: DefaultInvestmentAmount,
	}
}

// SimulationResult is the outcome of replaying one call under one trailing
// stop percentage. Exit fields are nil and ExitReason is "" when no exit
// condition fired before the price history ended (the trade is still open).
// Computed once per (call, percentage) pair; never persisted.
type SimulationResult struct {
	CallID string

	PeakPrice  float64 // highest price observed, >= entry price
	PeakTimeMs int64
	DaysToPeak float64

	ExitPrice    *float64 // net of slippage and fees
	ExitTimeMs   *int64
	ExitReason   string // "" while still open
	SimulatedROI *float64
	DaysToExit   *float64
	FeesPaid     float64
}

// Closed reports whether an exit condition fired.
func (r *SimulationResult) Closed() bool {
	return r != nil && r.ExitReason != ""
}
