// Package backtest runs the full multi-scenario backtest.
// It coordinates: call loading → per-percentage simulation → report assembly.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"log"

	"trading-call-lab/internal/domain"
	"trading-call-lab/internal/scenario"
	"trading-call-lab/internal/simulator"
	"trading-call-lab/internal/storage"
)

// ErrNoPercentages is returned when the request carries no trailing-stop
// percentages to test.
var ErrNoPercentages = errors.New("no trailing stop percentages provided")

// DefaultRecordLimit caps the number of calls fetched per run.
const DefaultRecordLimit = 1000

// Orchestrator coordinates a backtest run. It only reads from the stores;
// results are computed on demand and never persisted.
type Orchestrator struct {
	callStore  storage.CallStore
	priceStore storage.PriceHistoryStore
	estimator  simulator.EntryPriceEstimator

	recordLimit  int
	historyLimit int
	workers      int
	verbose      bool
}

// Options for creating an Orchestrator.
type Options struct {
	// Required stores
	CallStore  storage.CallStore
	PriceStore storage.PriceHistoryStore

	// Estimator supplies the market-cap entry-price fallback. Nil disables it.
	Estimator simulator.EntryPriceEstimator

	// RecordLimit caps the fetched call set; <= 0 uses DefaultRecordLimit.
	RecordLimit int
	// HistoryLimit caps snapshots fetched per token; 0 means no cap.
	HistoryLimit int
	// Workers bounds the per-call simulation pool; <= 0 uses NumCPU.
	Workers int

	Verbose bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	recordLimit := opts.RecordLimit
	if recordLimit <= 0 {
		recordLimit = DefaultRecordLimit
	}
	return &Orchestrator{
		callStore:    opts.CallStore,
		priceStore:   opts.PriceStore,
		estimator:    opts.Estimator,
		recordLimit:  recordLimit,
		historyLimit: opts.HistoryLimit,
		workers:      opts.Workers,
		verbose:      opts.Verbose,
	}
}

// Simulate runs every trailing-stop percentage in params over the filtered
// call set and assembles the report.
//
// Fails fast on an empty percentage list and on invalid filters, before any
// store access. Duplicate percentages collide on the scenario key; the later
// run overwrites the earlier one.
func (o *Orchestrator) Simulate(ctx context.Context, filters *domain.CallFilters, params domain.SimulationParams, includeDetails bool) (*domain.BacktestReport, error) {
	if len(params.TrailingStopPercentages) == 0 {
		return nil, ErrNoPercentages
	}
	if filters != nil {
		if err := filters.Validate(); err != nil {
			return nil, fmt.Errorf("invalid filters: %w", err)
		}
	}

	o.log("loading calls (limit %d)...", o.recordLimit)
	calls, err := o.callStore.GetFiltered(ctx, filters, o.recordLimit)
	if err != nil {
		return nil, fmt.Errorf("load calls: %w", err)
	}
	o.log("loaded %d calls", len(calls))

	// One cache shared across every percentage: history is fetched at most
	// once per token for the whole run.
	agg := scenario.NewAggregator(scenario.Options{
		Prices:    scenario.NewCachedPriceProvider(o.priceStore, o.historyLimit, earliestEntries(calls, o.historyLimit)),
		Estimator: o.estimator,
		Workers:   o.workers,
	})

	report := &domain.BacktestReport{
		Scenarios: make(map[string]*domain.ScenarioResult, len(params.TrailingStopPercentages)),
	}

	var keyOrder []string
	for _, pct := range params.TrailingStopPercentages {
		o.log("running scenario %s...", domain.ScenarioKey(pct))
		result, err := agg.RunScenario(ctx, calls, pct, params, includeDetails)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", domain.ScenarioKey(pct), err)
		}

		key := domain.ScenarioKey(pct)
		if _, seen := report.Scenarios[key]; !seen {
			keyOrder = append(keyOrder, key)
		}
		report.Scenarios[key] = result
	}

	report.Optimal = pickOptimal(report.Scenarios, keyOrder)
	report.Overview = buildOverview(report.Scenarios, keyOrder, len(calls))

	if includeDetails {
		if best, ok := report.Scenarios[report.Optimal.Key]; ok {
			report.Details = best.Details
		}
	}

	return report, nil
}

// earliestEntries maps each token to the earliest entry time among its
// calls. Only needed under a snapshot cap: starting the fetch at the
// earliest entry keeps the cap from truncating the recent end of history
// for calls entering late. Without a cap the full history is fine.
func earliestEntries(calls []*domain.CallRecord, historyLimit int) map[string]int64 {
	if historyLimit <= 0 {
		return nil
	}
	since := make(map[string]int64, len(calls))
	for _, c := range calls {
		if cur, ok := since[c.TokenAddress]; !ok || c.EntryTime < cur {
			since[c.TokenAddress] = c.EntryTime
		}
	}
	return since
}

// pickOptimal selects the scenario with the strictly highest simulated
// profit factor. Ties keep the earliest scenario in processing order.
func pickOptimal(scenarios map[string]*domain.ScenarioResult, keyOrder []string) domain.OptimalConfig {
	var optimal domain.OptimalConfig
	first := true
	for _, key := range keyOrder {
		s := scenarios[key]
		if first || s.Simulated.ProfitFactor > optimal.ProfitFactor {
			optimal = domain.OptimalConfig{
				Key:             key,
				TrailingStopPct: s.TrailingStopPct,
				ProfitFactor:    s.Simulated.ProfitFactor,
			}
			first = false
		}
	}
	return optimal
}

// buildOverview summarizes the run. Price availability does not depend on
// the stop percentage, so the first scenario stands in for all of them.
func buildOverview(scenarios map[string]*domain.ScenarioResult, keyOrder []string, totalCalls int) domain.Overview {
	overview := domain.Overview{
		TotalCalls:   totalCalls,
		ScenariosRun: len(scenarios),
	}
	if len(keyOrder) > 0 {
		firstScenario := scenarios[keyOrder[0]]
		overview.CallsWithPriceData = firstScenario.SimulatedCalls
		overview.DataAvailabilityPct = firstScenario.Coverage
	}
	return overview
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[backtest] "+format, args...)
	}
}
