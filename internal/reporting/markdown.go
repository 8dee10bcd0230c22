// Package reporting renders backtest reports as Markdown and CSV.
package reporting

import (
	"fmt"
	"sort"
	"strings"

	"trading-call-lab/internal/domain"
)

// RenderMarkdown renders a backtest report as a Markdown string.
func RenderMarkdown(r *domain.BacktestReport) string {
	var sb strings.Builder

	sb.WriteString("# Trailing Stop Backtest Report\n\n")

	// Overview
	sb.WriteString("## Overview\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Calls | %d |\n", r.Overview.TotalCalls))
	sb.WriteString(fmt.Sprintf("| Calls With Price Data | %d |\n", r.Overview.CallsWithPriceData))
	sb.WriteString(fmt.Sprintf("| Data Availability | %.1f%% |\n", r.Overview.DataAvailabilityPct))
	sb.WriteString(fmt.Sprintf("| Scenarios Run | %d |\n", r.Overview.ScenariosRun))
	sb.WriteString("\n")

	// Optimal configuration
	sb.WriteString("## Optimal Configuration\n\n")
	sb.WriteString(fmt.Sprintf("Trailing stop **%s** with simulated profit factor **%.2f**.\n\n",
		r.Optimal.Key, r.Optimal.ProfitFactor))

	// Scenario comparison
	sb.WriteString("## Scenarios\n\n")
	scenarios := sortedScenarios(r)
	if len(scenarios) > 0 {
		sb.WriteString("| Stop | Simulated | Coverage | WinRate | AvgROI | MedianROI | PF | Sharpe | MaxDD | TP/TS/MH/Open | AvgDaysToExit | P&L ($) |\n")
		sb.WriteString("|------|-----------|----------|---------|--------|-----------|----|--------|-------|---------------|---------------|--------|\n")
		for _, s := range scenarios {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.1f%% | %.1f%% | %.2f | %.2f | %.2f | %.2f | %.2f | %d/%d/%d/%d | %.2f | %.2f |\n",
				domain.ScenarioKey(s.TrailingStopPct),
				s.SimulatedCalls, s.Coverage,
				s.Simulated.WinRate, s.Simulated.AverageROI, s.Simulated.MedianROI,
				s.Simulated.ProfitFactor, s.Simulated.Risk.SharpeRatio, s.Simulated.Risk.MaxDrawdown,
				s.ExitBreakdown.TakeProfit, s.ExitBreakdown.TrailingStop,
				s.ExitBreakdown.MaxHold, s.ExitBreakdown.StillOpen,
				s.AvgDaysToExit, s.TotalPnlUSD))
		}
	} else {
		sb.WriteString("No scenarios available.\n")
	}
	sb.WriteString("\n")

	// Strategy vs actual baseline
	sb.WriteString("## Simulated vs Actual\n\n")
	if len(scenarios) > 0 {
		sb.WriteString("| Stop | AvgROI Δ | WinRate Δ | MedianROI Δ | PF Δ |\n")
		sb.WriteString("|------|----------|-----------|-------------|------|\n")
		for _, s := range scenarios {
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.2f | %.2f |\n",
				domain.ScenarioKey(s.TrailingStopPct),
				s.Improvement.AvgROIDelta, s.Improvement.WinRateDelta,
				s.Improvement.MedianROIDelta, s.Improvement.ProfitFactorDelta))
		}
		sb.WriteString("\n")
	}

	// Per-call details for the optimal scenario
	if len(r.Details) > 0 {
		sb.WriteString("## Call Details (optimal scenario)\n\n")
		sb.WriteString("| Call | Symbol | Exit | SimROI | ActualROI | Peak | DaysToExit | Est. Entry |\n")
		sb.WriteString("|------|--------|------|--------|-----------|------|------------|------------|\n")
		for _, d := range r.Details {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %.2f | %.6f | %s | %s |\n",
				d.CallID, d.TokenSymbol, exitLabel(d.ExitReason),
				formatOptional(d.SimulatedROI), d.ActualROI, d.PeakPrice,
				formatOptional(d.DaysToExit), yesNo(d.EntryPriceEstimated)))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// sortedScenarios returns scenario results ordered by stop percentage ASC.
func sortedScenarios(r *domain.BacktestReport) []*domain.ScenarioResult {
	scenarios := make([]*domain.ScenarioResult, 0, len(r.Scenarios))
	for _, s := range r.Scenarios {
		scenarios = append(scenarios, s)
	}
	sort.Slice(scenarios, func(i, j int) bool {
		return scenarios[i].TrailingStopPct < scenarios[j].TrailingStopPct
	})
	return scenarios
}

func exitLabel(reason string) string {
	if reason == "" {
		return "OPEN"
	}
	return reason
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
