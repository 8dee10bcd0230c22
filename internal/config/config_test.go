package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FromYAML(t *testing.T) {
	path := writeConfig(t, `
storage:
  postgres_dsn: postgres://localhost/calls
  clickhouse_dsn: clickhouse://localhost/prices
backtest:
  trailing_stop_percentages: [0.1, 0.2]
  take_profit_multiplier: 3.0
  max_hold_days: 14
  slippage_bps: 30
  fees_bps: 15
  investment_amount: 500
  record_limit: 200
  include_details: true
  output: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.PostgresDSN != "postgres://localhost/calls" {
		t.Errorf("unexpected postgres dsn: %s", cfg.Storage.PostgresDSN)
	}
	if len(cfg.Backtest.TrailingStopPercentages) != 2 || cfg.Backtest.TrailingStopPercentages[1] != 0.2 {
		t.Errorf("unexpected percentages: %v", cfg.Backtest.TrailingStopPercentages)
	}
	if cfg.Backtest.RecordLimit != 200 || !cfg.Backtest.IncludeDetails || cfg.Backtest.Output != "json" {
		t.Errorf("unexpected backtest config: %+v", cfg.Backtest)
	}

	params := cfg.SimulationParams()
	if params.TakeProfitMultiplier == nil || *params.TakeProfitMultiplier != 3.0 {
		t.Errorf("expected take-profit 3.0, got %v", params.TakeProfitMultiplier)
	}
	if params.MaxHoldDays == nil || *params.MaxHoldDays != 14 {
		t.Errorf("expected max hold 14, got %v", params.MaxHoldDays)
	}
	if params.SlippageBps != 30 || params.FeesBps != 15 || params.InvestmentAmount != 500 {
		t.Errorf("unexpected cost params: %+v", params)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Backtest.TrailingStopPercentages) == 0 {
		t.Error("expected default percentages")
	}
	if cfg.Backtest.SlippageBps != 20 || cfg.Backtest.FeesBps != 10 {
		t.Errorf("unexpected default costs: %+v", cfg.Backtest)
	}
	if cfg.Backtest.InvestmentAmount != 1000 || cfg.Backtest.RecordLimit != 1000 {
		t.Errorf("unexpected default sizing: %+v", cfg.Backtest)
	}
	if cfg.Backtest.Output != "markdown" {
		t.Errorf("expected markdown output default, got %s", cfg.Backtest.Output)
	}

	// Optional exit rules stay disabled by default.
	params := cfg.SimulationParams()
	if params.TakeProfitMultiplier != nil || params.MaxHoldDays != nil {
		t.Error("expected optional exit rules to be nil by default")
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
storage:
  postgres_dsn: postgres://yaml-host/calls
`)

	t.Setenv("POSTGRES_DSN", "postgres://env-host/calls")
	t.Setenv("CLICKHOUSE_DSN", "clickhouse://env-host/prices")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.PostgresDSN != "postgres://env-host/calls" {
		t.Errorf("env must override yaml, got %s", cfg.Storage.PostgresDSN)
	}
	if cfg.Storage.ClickhouseDSN != "clickhouse://env-host/prices" {
		t.Errorf("env must fill missing yaml value, got %s", cfg.Storage.ClickhouseDSN)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
