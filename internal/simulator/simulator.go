// Package simulator replays one call's price history forward under a
// trailing-stop configuration and determines the realized exit.
package simulator

import (
	"errors"
	"fmt"
	"math"

	"trading-call-lab/internal/domain"
)

const msPerDay = 24 * 60 * 60 * 1000

// ErrInvalidTrailingStopPct is returned for percentages outside (0,1).
var ErrInvalidTrailingStopPct = errors.New("trailing stop percentage must be in (0,1)")

// Simulate replays price movement forward from the call's entry and applies
// exit-condition logic in fixed priority: take-profit, trailing stop,
// max hold. The first condition to match on a snapshot wins.
//
// Returns (nil, nil) when the history is empty or the call has no positive
// entry price: such calls are excluded, not failed. Snapshots before the
// call's entry time are ignored.
func Simulate(call *domain.CallRecord, history []*domain.PriceSnapshot, trailingStopPct float64, params domain.SimulationParams) (*domain.SimulationResult, error) {
	if trailingStopPct <= 0 || trailingStopPct >= 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTrailingStopPct, trailingStopPct)
	}
	if len(history) == 0 || !call.Simulatable() {
		return nil, nil
	}

	entryPrice := call.EntryPrice
	peakPrice := entryPrice
	peakTime := call.EntryTime

	var takeProfitLevel float64
	if params.TakeProfitMultiplier != nil {
		takeProfitLevel = entryPrice * *params.TakeProfitMultiplier
	}
	var maxHoldBound int64
	if params.MaxHoldDays != nil {
		maxHoldBound = call.EntryTime + int64(*params.MaxHoldDays*msPerDay)
	}

	for _, snap := range history {
		if snap.TimestampMs < call.EntryTime {
			continue
		}

		if snap.PriceUSD > peakPrice {
			peakPrice = snap.PriceUSD
			peakTime = snap.TimestampMs
		}

		trailingStopLevel := peakPrice * (1 - trailingStopPct)

		// Exit checks in fixed priority; the exit price depends on which
		// rule fired, not on the raw snapshot price alone.
		switch {
		case params.TakeProfitMultiplier != nil && snap.PriceUSD >= takeProfitLevel:
			return closeTrade(call, peakPrice, peakTime, takeProfitLevel, snap.TimestampMs, domain.ExitReasonTakeProfit, params), nil
		case snap.PriceUSD <= trailingStopLevel:
			return closeTrade(call, peakPrice, peakTime, trailingStopLevel, snap.TimestampMs, domain.ExitReasonTrailingStop, params), nil
		case params.MaxHoldDays != nil && snap.TimestampMs >= maxHoldBound:
			return closeTrade(call, peakPrice, peakTime, snap.PriceUSD, snap.TimestampMs, domain.ExitReasonMaxHold, params), nil
		}
	}

	// No exit condition fired: the trade is still open as of the last
	// observed snapshot. Only peak data is populated.
	return &domain.SimulationResult{
		CallID:     call.ID,
		PeakPrice:  peakPrice,
		PeakTimeMs: peakTime,
		DaysToPeak: daysBetween(call.EntryTime, peakTime),
	}, nil
}

// closeTrade applies slippage and fees to the gross exit price and builds
// the final result.
//
// Cost model: slippage is deducted from the gross exit price, then fees are
// charged on both legs (entry notional and slipped exit) and netted against
// the exit price at half weight, since ROI is measured against the entry
// leg alone.
func closeTrade(call *domain.CallRecord, peakPrice float64, peakTime int64, grossExit float64, exitTime int64, reason string, params domain.SimulationParams) *domain.SimulationResult {
	slipped := grossExit * (1 - params.SlippageBps/10000)
	entryFee := call.EntryPrice * params.FeesBps / 10000
	exitFee := slipped * params.FeesBps / 10000
	feesPaid := (entryFee + exitFee) / 2
	netExit := slipped - feesPaid

	roi := (netExit - call.EntryPrice) / call.EntryPrice * 100
	daysToExit := daysBetween(call.EntryTime, exitTime)

	return &domain.SimulationResult{
		CallID:       call.ID,
		PeakPrice:    peakPrice,
		PeakTimeMs:   peakTime,
		DaysToPeak:   daysBetween(call.EntryTime, peakTime),
		ExitPrice:    &netExit,
		ExitTimeMs:   &exitTime,
		ExitReason:   reason,
		SimulatedROI: &roi,
		DaysToExit:   &daysToExit,
		FeesPaid:     feesPaid,
	}
}

// daysBetween returns the absolute day-count difference between two
// millisecond timestamps.
func daysBetween(a, b int64) float64 {
	return math.Abs(float64(b-a)) / msPerDay
}
