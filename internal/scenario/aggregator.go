// Package scenario aggregates per-call simulations into scenario-level
// reports, one per trailing-stop percentage.
package scenario

import (
	"context"
	"log"
	"runtime"
	"sync"

	"trading-call-lab/internal/domain"
	"trading-call-lab/internal/lookup"
	"trading-call-lab/internal/metrics"
	"trading-call-lab/internal/simulator"
)

// Options contains configuration for creating an Aggregator.
type Options struct {
	Prices PriceProvider

	// Estimator supplies the market-cap entry-price fallback for calls
	// without a usable entry price. Nil disables the fallback.
	Estimator simulator.EntryPriceEstimator

	Logger *log.Logger

	// Workers bounds the per-call simulation pool. <= 0 uses NumCPU.
	Workers int
}

// Aggregator runs every filtered call through the simulator at one
// trailing-stop percentage and reduces the results into a ScenarioResult.
type Aggregator struct {
	prices    PriceProvider
	estimator simulator.EntryPriceEstimator
	logger    *log.Logger
	workers   int
}

// NewAggregator creates a scenario aggregator.
func NewAggregator(opts Options) *Aggregator {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Aggregator{
		prices:    opts.Prices,
		estimator: opts.Estimator,
		logger:    logger,
		workers:   workers,
	}
}

// callOutcome pairs one call with its simulation result. sim is nil when
// the call could not be simulated (no history, no usable entry price, or a
// per-call error that was logged and skipped).
type callOutcome struct {
	call       *domain.CallRecord
	sim        *domain.SimulationResult
	entryPrice float64
	estimated  bool
}

// RunScenario simulates every call at the given trailing-stop percentage.
// Calls are processed by a worker pool but reduced in their original order,
// so order-sensitive metrics (streaks, drawdown) are deterministic.
func (a *Aggregator) RunScenario(ctx context.Context, calls []*domain.CallRecord, trailingStopPct float64, params domain.SimulationParams, includeDetails bool) (*domain.ScenarioResult, error) {
	if trailingStopPct <= 0 || trailingStopPct >= 1 {
		return nil, simulator.ErrInvalidTrailingStopPct
	}

	outcomes := a.simulateAll(ctx, calls, trailingStopPct, params)
	return a.reduce(outcomes, trailingStopPct, params, includeDetails), nil
}

// simulateAll fans calls out to the worker pool and collects outcomes
// indexed by their position in the input.
func (a *Aggregator) simulateAll(ctx context.Context, calls []*domain.CallRecord, pct float64, params domain.SimulationParams) []callOutcome {
	type work struct {
		idx  int
		call *domain.CallRecord
	}

	outcomes := make([]callOutcome, len(calls))
	workCh := make(chan work, len(calls))

	var wg sync.WaitGroup
	for i := 0; i < a.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for w := range workCh {
				// Each worker owns a distinct index, so no lock is needed.
				outcomes[w.idx] = a.simulateOne(ctx, w.call, pct, params)
			}
		}()
	}

	for i, c := range calls {
		workCh <- work{idx: i, call: c}
	}
	close(workCh)
	wg.Wait()

	return outcomes
}

// simulateOne loads history, resolves the entry price, and simulates a
// single call. Failures are logged and produce an unsimulated outcome.
func (a *Aggregator) simulateOne(ctx context.Context, call *domain.CallRecord, pct float64, params domain.SimulationParams) callOutcome {
	out := callOutcome{call: call, entryPrice: call.EntryPrice, estimated: call.EntryPriceEstimated}

	history, err := a.prices.History(ctx, call.TokenAddress)
	if err != nil {
		a.logger.Printf("call %s: fetch price history: %v", call.ID, err)
		return out
	}
	if len(history) == 0 {
		return out
	}

	simCall := *call
	if simCall.EntryPrice <= 0 {
		price, estimated, ok := a.resolveEntryPrice(&simCall, history)
		if !ok {
			return out
		}
		simCall.EntryPrice = price
		simCall.EntryPriceEstimated = estimated
		out.entryPrice = price
		out.estimated = estimated
	}

	result, err := simulator.Simulate(&simCall, history, pct, params)
	if err != nil {
		a.logger.Printf("call %s: simulate: %v", call.ID, err)
		return out
	}

	out.sim = result
	return out
}

// resolveEntryPrice falls back to the first snapshot at or after the entry
// time, then to the market-cap estimator. Estimated prices are flagged.
func (a *Aggregator) resolveEntryPrice(call *domain.CallRecord, history []*domain.PriceSnapshot) (price float64, estimated, ok bool) {
	if p, err := lookup.EntryPriceAt(call.EntryTime, history); err == nil && p > 0 {
		return p, false, true
	}
	if a.estimator != nil {
		if p, found := a.estimator.EstimateEntryPrice(call); found && p > 0 {
			return p, true, true
		}
	}
	return 0, false, false
}

// reduce folds the per-call outcomes into one ScenarioResult, walking them
// in input order.
func (a *Aggregator) reduce(outcomes []callOutcome, pct float64, params domain.SimulationParams, includeDetails bool) *domain.ScenarioResult {
	result := &domain.ScenarioResult{
		TrailingStopPct: pct,
		TotalCalls:      len(outcomes),
	}

	var (
		simROIs    []float64 // closed trades only, input order
		actualROIs []float64 // every simulated call, input order
		details    []domain.CallDetail

		sumDaysToExit, sumDaysToPeak float64
		sumFees, sumPnl              float64
		sumROIDelta                  float64
		closedCount                  int
		losing, recovered            int
	)

	for _, out := range outcomes {
		if out.sim == nil {
			continue
		}
		result.SimulatedCalls++

		sim := out.sim
		actual := out.call.ActualROI()
		actualROIs = append(actualROIs, actual)
		sumDaysToPeak += sim.DaysToPeak

		// Fee amounts convert from per-token price units to dollars on
		// the configured stake.
		var feesUSD float64
		if out.entryPrice > 0 {
			feesUSD = sim.FeesPaid / out.entryPrice * params.InvestmentAmount
		}
		sumFees += feesUSD

		switch sim.ExitReason {
		case domain.ExitReasonTakeProfit:
			result.ExitBreakdown.TakeProfit++
		case domain.ExitReasonTrailingStop:
			result.ExitBreakdown.TrailingStop++
		case domain.ExitReasonMaxHold:
			result.ExitBreakdown.MaxHold++
		default:
			result.ExitBreakdown.StillOpen++
		}

		if sim.Closed() {
			roi := *sim.SimulatedROI
			simROIs = append(simROIs, roi)
			closedCount++
			sumDaysToExit += *sim.DaysToExit
			sumPnl += params.InvestmentAmount * roi / 100
			sumROIDelta += roi - actual

			if roi < 0 {
				losing++
				if sim.PeakPrice > out.entryPrice {
					recovered++
				}
			}
		}

		if includeDetails {
			details = append(details, domain.CallDetail{
				CallID:              out.call.ID,
				TokenSymbol:         out.call.TokenSymbol,
				TokenAddress:        out.call.TokenAddress,
				EntryTimeMs:         out.call.EntryTime,
				EntryPrice:          out.entryPrice,
				EntryPriceEstimated: out.estimated,
				ExitReason:          sim.ExitReason,
				SimulatedROI:        sim.SimulatedROI,
				ActualROI:           actual,
				PeakPrice:           sim.PeakPrice,
				DaysToPeak:          sim.DaysToPeak,
				DaysToExit:          sim.DaysToExit,
				FeesPaid:            feesUSD,
			})
		}
	}

	if result.TotalCalls > 0 {
		result.Coverage = float64(result.SimulatedCalls) / float64(result.TotalCalls) * 100
	}

	result.Simulated = metrics.Compute(simROIs)
	result.Actual = metrics.Compute(actualROIs)

	if closedCount > 0 {
		result.AvgDaysToExit = sumDaysToExit / float64(closedCount)
		result.Improvement.AvgROIDelta = sumROIDelta / float64(closedCount)
	}
	if result.SimulatedCalls > 0 {
		result.AvgDaysToPeak = sumDaysToPeak / float64(result.SimulatedCalls)
		result.AvgFees = sumFees / float64(result.SimulatedCalls)
	}
	result.Improvement.WinRateDelta = result.Simulated.WinRate - result.Actual.WinRate
	result.Improvement.MedianROIDelta = result.Simulated.MedianROI - result.Actual.MedianROI
	result.Improvement.ProfitFactorDelta = result.Simulated.ProfitFactor - result.Actual.ProfitFactor

	result.TotalFees = sumFees
	result.TotalPnlUSD = sumPnl

	wins, losses := metrics.Streaks(simROIs)
	result.Metrics.MaxConsecutiveWins = wins
	result.Metrics.MaxConsecutiveLosses = losses
	result.Metrics.PortfolioValue1000 = 1000 * float64(result.SimulatedCalls) * (1 + result.Simulated.AverageROI/100)
	if losing > 0 {
		result.Metrics.RecoveryRate = float64(recovered) / float64(losing) * 100
	}
	result.Metrics.AvgTimeInMarketDays = result.AvgDaysToExit

	result.Details = details
	return result
}
