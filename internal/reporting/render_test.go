package reporting

import (
	"strings"
	"testing"

	"trading-call-lab/internal/domain"
)

func ptr[T any](v T) *T {
	return &v
}

func sampleReport() *domain.BacktestReport {
	tight := &domain.ScenarioResult{
		TrailingStopPct: 0.15,
		TotalCalls:      4,
		SimulatedCalls:  3,
		Coverage:        75,
		ExitBreakdown:   domain.ExitBreakdown{TrailingStop: 2, StillOpen: 1},
		Simulated: domain.PerformanceMetrics{
			WinRate:      50,
			AverageROI:   20,
			MedianROI:    15,
			ProfitFactor: 2.5,
		},
		AvgDaysToExit: 1.5,
		TotalPnlUSD:   400,
	}
	loose := &domain.ScenarioResult{
		TrailingStopPct: 0.25,
		TotalCalls:      4,
		SimulatedCalls:  3,
		Coverage:        75,
		ExitBreakdown:   domain.ExitBreakdown{TrailingStop: 3},
		Simulated: domain.PerformanceMetrics{
			WinRate:      66.7,
			AverageROI:   35,
			MedianROI:    30,
			ProfitFactor: 4.0,
		},
		AvgDaysToExit: 2.5,
		TotalPnlUSD:   1050,
	}

	return &domain.BacktestReport{
		Scenarios: map[string]*domain.ScenarioResult{
			"15%": tight,
			"25%": loose,
		},
		Optimal: domain.OptimalConfig{Key: "25%", TrailingStopPct: 0.25, ProfitFactor: 4.0},
		Overview: domain.Overview{
			TotalCalls:          4,
			CallsWithPriceData:  3,
			DataAvailabilityPct: 75,
			ScenariosRun:        2,
		},
		Details: []domain.CallDetail{
			{
				CallID:       "call-1",
				TokenSymbol:  "TKN",
				TokenAddress: "TokenAddr1",
				EntryPrice:   1.0,
				ExitReason:   domain.ExitReasonTrailingStop,
				SimulatedROI: ptr(50.0),
				ActualROI:    80,
				PeakPrice:    2.0,
				DaysToPeak:   1,
				DaysToExit:   ptr(2.0),
				FeesPaid:     1.5,
			},
			{
				CallID:       "call-2",
				TokenSymbol:  "OPN",
				TokenAddress: "TokenAddr2",
				EntryPrice:   0.5,
				PeakPrice:    0.6,
				DaysToPeak:   0.5,
			},
		},
	}
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(sampleReport())

	for _, want := range []string{
		"# Trailing Stop Backtest Report",
		"| Total Calls | 4 |",
		"| Data Availability | 75.0% |",
		"Trailing stop **25%** with simulated profit factor **4.00**",
		"| 15% |",
		"| 25% |",
		"| call-1 | TKN | TRAILING_STOP |",
		"| call-2 | OPN | OPEN |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	// Scenarios render in stop-percentage order.
	if strings.Index(md, "| 15% |") > strings.Index(md, "| 25% |") {
		t.Error("scenario rows not ordered by stop percentage")
	}
}

func TestRenderMarkdown_NoDetailsSection(t *testing.T) {
	r := sampleReport()
	r.Details = nil

	md := RenderMarkdown(r)
	if strings.Contains(md, "## Call Details") {
		t.Error("details section rendered without detail rows")
	}
}

func TestRenderCSV(t *testing.T) {
	out := RenderCSV(sampleReport())

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "trailing_stop_pct,") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "0.15,") || !strings.HasPrefix(lines[2], "0.25,") {
		t.Errorf("rows not ordered by stop percentage: %s / %s", lines[1], lines[2])
	}

	fields := strings.Split(lines[0], ",")
	for _, line := range lines[1:] {
		if got := len(strings.Split(line, ",")); got != len(fields) {
			t.Errorf("row has %d fields, header has %d", got, len(fields))
		}
	}
}

func TestRenderDetailsCSV(t *testing.T) {
	out := RenderDetailsCSV(sampleReport().Details)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "call-1") || !strings.Contains(lines[1], "TRAILING_STOP") {
		t.Errorf("unexpected closed-trade row: %s", lines[1])
	}
	// Open trades render with an OPEN label and empty optional fields.
	if !strings.Contains(lines[2], "OPEN") {
		t.Errorf("unexpected open-trade row: %s", lines[2])
	}
	if !strings.Contains(lines[2], ",,") {
		t.Errorf("expected empty optional columns for an open trade: %s", lines[2])
	}
}

func TestRenderCSV_Empty(t *testing.T) {
	r := &domain.BacktestReport{Scenarios: map[string]*domain.ScenarioResult{}}

	out := RenderCSV(r)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 1 {
		t.Errorf("expected header only for an empty report, got %d lines", len(lines))
	}
}
