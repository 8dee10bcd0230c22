package reporting

import (
	"fmt"
	"strings"

	"trading-call-lab/internal/domain"
)

// RenderCSV renders the per-scenario comparison as a CSV string, ordered by
// stop percentage ASC.
func RenderCSV(r *domain.BacktestReport) string {
	var sb strings.Builder

	sb.WriteString("trailing_stop_pct,total_calls,simulated_calls,coverage_pct,win_rate,avg_roi,median_roi,")
	sb.WriteString("profit_factor,sharpe_ratio,max_drawdown,std_dev,")
	sb.WriteString("exits_take_profit,exits_trailing_stop,exits_max_hold,still_open,")
	sb.WriteString("avg_days_to_exit,avg_days_to_peak,total_fees_usd,total_pnl_usd,portfolio_value_1000\n")

	for _, s := range sortedScenarios(r) {
		sb.WriteString(fmt.Sprintf("%g,%d,%d,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%d,%d,%d,%d,%.6f,%.6f,%.6f,%.6f,%.6f\n",
			s.TrailingStopPct,
			s.TotalCalls,
			s.SimulatedCalls,
			s.Coverage,
			s.Simulated.WinRate,
			s.Simulated.AverageROI,
			s.Simulated.MedianROI,
			s.Simulated.ProfitFactor,
			s.Simulated.Risk.SharpeRatio,
			s.Simulated.Risk.MaxDrawdown,
			s.Simulated.Risk.StandardDeviation,
			s.ExitBreakdown.TakeProfit,
			s.ExitBreakdown.TrailingStop,
			s.ExitBreakdown.MaxHold,
			s.ExitBreakdown.StillOpen,
			s.AvgDaysToExit,
			s.AvgDaysToPeak,
			s.TotalFees,
			s.TotalPnlUSD,
			s.Metrics.PortfolioValue1000,
		))
	}

	return sb.String()
}

// RenderDetailsCSV renders per-call detail rows as a CSV string.
func RenderDetailsCSV(details []domain.CallDetail) string {
	var sb strings.Builder

	sb.WriteString("call_id,token_symbol,token_address,entry_time_ms,entry_price,entry_price_estimated,")
	sb.WriteString("exit_reason,simulated_roi,actual_roi,peak_price,days_to_peak,days_to_exit,fees_paid_usd\n")

	for _, d := range details {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%d,%.10g,%t,%s,%s,%.6f,%.10g,%.6f,%s,%.6f\n",
			d.CallID,
			d.TokenSymbol,
			d.TokenAddress,
			d.EntryTimeMs,
			d.EntryPrice,
			d.EntryPriceEstimated,
			exitLabel(d.ExitReason),
			csvOptional(d.SimulatedROI),
			d.ActualROI,
			d.PeakPrice,
			d.DaysToPeak,
			csvOptional(d.DaysToExit),
			d.FeesPaid,
		))
	}

	return sb.String()
}

func csvOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", *v)
}
