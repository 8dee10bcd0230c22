package domain

import "strconv"

// OptimalConfig identifies the scenario with the strictly highest simulated
// profit factor. Ties keep the first scenario processed.
type OptimalConfig struct {
	Key             string // formatted percentage key into Scenarios
	TrailingStopPct float64
	ProfitFactor    float64
}

// Overview summarizes a backtest run.
type Overview struct {
	TotalCalls int
	// CallsWithPriceData is the simulated-call count of the first scenario
	// processed. Price availability does not depend on the stop
	// percentage, so the first scenario approximates all of them.
	CallsWithPriceData  int
	DataAvailabilityPct float64
	ScenariosRun        int
}

// BacktestReport is the top-level result of a backtest run.
type BacktestReport struct {
	Scenarios map[string]*ScenarioResult // keyed by ScenarioKey
	Optimal   OptimalConfig
	Overview  Overview
	// Details carries per-call rows for the optimal scenario when the
	// caller requested them.
	Details []CallDetail
}

// ScenarioKey formats a trailing-stop fraction as a percentage string,
// e.g. 0.15 -> "15%". Duplicate percentages collide on the same key.
func ScenarioKey(trailingStopPct float64) string {
	return strconv.FormatFloat(trailingStopPct*100, 'g', -1, 64) + "%"
}
