// Package config loads backtest configuration from YAML with .env
// overrides.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"trading-call-lab/internal/domain"
)

// Config is the full configuration of a backtest run.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Backtest BacktestConfig `yaml:"backtest"`
}

// StorageConfig selects where calls and price history come from.
type StorageConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`

	// UseMemory runs against in-memory stores seeded from CSV fixtures.
	UseMemory bool   `yaml:"use_memory"`
	CallsCSV  string `yaml:"calls_csv"`
	PricesCSV string `yaml:"prices_csv"`
}

// BacktestConfig controls the simulation itself.
type BacktestConfig struct {
	TrailingStopPercentages []float64 `yaml:"trailing_stop_percentages"` // fractions, e.g. 0.15

	TakeProfitMultiplier float64 `yaml:"take_profit_multiplier"` // 0 disables
	MaxHoldDays          float64 `yaml:"max_hold_days"`          // 0 disables

	SlippageBps      float64 `yaml:"slippage_bps"`
	FeesBps          float64 `yaml:"fees_bps"`
	InvestmentAmount float64 `yaml:"investment_amount"`

	RecordLimit    int    `yaml:"record_limit"`
	Workers        int    `yaml:"workers"`
	IncludeDetails bool   `yaml:"include_details"`
	Output         string `yaml:"output"` // markdown | json | csv
}

// Load reads the YAML config file and the .env file if present. Environment
// values override YAML for the keys they cover. An empty path yields the
// defaults only.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// SimulationParams converts the backtest section into domain params. Zero
// values for optional exit rules map to nil (disabled).
func (c *Config) SimulationParams() domain.SimulationParams {
	params := domain.SimulationParams{
		TrailingStopPercentages: c.Backtest.TrailingStopPercentages,
		SlippageBps:             c.Backtest.SlippageBps,
		FeesBps:                 c.Backtest.FeesBps,
		InvestmentAmount:        c.Backtest.InvestmentAmount,
	}
	if c.Backtest.TakeProfitMultiplier > 0 {
		v := c.Backtest.TakeProfitMultiplier
		params.TakeProfitMultiplier = &v
	}
	if c.Backtest.MaxHoldDays > 0 {
		v := c.Backtest.MaxHoldDays
		params.MaxHoldDays = &v
	}
	return params
}

// applyEnvOverrides overrides values with environment variables if present.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		cfg.Storage.ClickhouseDSN = v
	}
}

// setDefaults ensures required values carry sensible defaults.
func setDefaults(cfg *Config) {
	if len(cfg.Backtest.TrailingStopPercentages) == 0 {
		cfg.Backtest.TrailingStopPercentages = []float64{0.1, 0.15, 0.2, 0.25, 0.3}
	}
	if cfg.Backtest.SlippageBps <= 0 {
		cfg.Backtest.SlippageBps = domain.DefaultSlippageBps
	}
	if cfg.Backtest.FeesBps <= 0 {
		cfg.Backtest.FeesBps = domain.DefaultFeesBps
	}
	if cfg.Backtest.InvestmentAmount <= 0 {
		cfg.Backtest.InvestmentAmount = domain.DefaultInvestmentAmount
	}
	if cfg.Backtest.RecordLimit <= 0 {
		cfg.Backtest.RecordLimit = 1000
	}
	if cfg.Backtest.Output == "" {
		cfg.Backtest.Output = "markdown"
	}
}
