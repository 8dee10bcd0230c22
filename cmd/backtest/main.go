package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"trading-call-lab/internal/backtest"
	"trading-call-lab/internal/config"
	"trading-call-lab/internal/domain"
	"trading-call-lab/internal/reporting"
	"trading-call-lab/internal/simulator"
	"trading-call-lab/internal/storage"
	chstore "trading-call-lab/internal/storage/clickhouse"
	"trading-call-lab/internal/storage/memory"
	pgstore "trading-call-lab/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")

	// Storage
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (trading calls)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (price history)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage seeded from CSV fixtures")
	callsCSV := flag.String("calls-csv", "", "CSV fixture with trading calls (memory mode)")
	pricesCSV := flag.String("prices-csv", "", "CSV fixture with price snapshots (memory mode)")

	// Simulation parameters
	percentages := flag.String("percentages", "", "Comma-separated trailing stop percentages, e.g. 0.1,0.15 or 10,15")
	takeProfit := flag.Float64("take-profit", 0, "Take-profit multiplier, e.g. 2.0 (0 disables)")
	maxHoldDays := flag.Float64("max-hold-days", 0, "Forced exit after N days (0 disables)")
	slippageBps := flag.Float64("slippage-bps", 0, "Slippage in basis points")
	feesBps := flag.Float64("fees-bps", 0, "Fees in basis points, applied on both legs")
	investment := flag.Float64("investment", 0, "Per-trade stake in USD for dollar P&L")

	// Filters
	callTypes := flag.String("call-types", "", "Comma-separated call types to include")
	labels := flag.String("labels", "", "Comma-separated labels to include (NO_LABEL matches unlabeled)")
	startDate := flag.String("start-date", "", "Earliest entry date, YYYY-MM-DD (UTC)")
	endDate := flag.String("end-date", "", "Latest entry date inclusive, YYYY-MM-DD (UTC)")
	includeTokens := flag.String("include-tokens", "", "Comma-separated token addresses to include")
	excludeTokens := flag.String("exclude-tokens", "", "Comma-separated token addresses to exclude")
	minMarketCap := flag.Float64("min-market-cap", 0, "Minimum entry market cap")
	maxMarketCap := flag.Float64("max-market-cap", 0, "Maximum entry market cap")
	minLiquidity := flag.Float64("min-liquidity", 0, "Minimum liquidity at entry")
	minVolume := flag.Float64("min-volume", 0, "Minimum 24h volume at entry")

	// Run options
	limit := flag.Int("limit", 0, "Maximum calls to backtest")
	includeDetails := flag.Bool("details", false, "Include per-call detail rows for the optimal scenario")
	output := flag.String("output", "", "Output format: markdown, json, csv")
	verbose := flag.Bool("verbose", false, "Verbose progress logging")

	flag.Parse()

	logger := log.New(os.Stderr, "[backtest] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	applyFlagOverrides(cfg, flagOverrides{
		postgresDSN:    *postgresDSN,
		clickhouseDSN:  *clickhouseDSN,
		useMemory:      *useMemory,
		callsCSV:       *callsCSV,
		pricesCSV:      *pricesCSV,
		takeProfit:     *takeProfit,
		maxHoldDays:    *maxHoldDays,
		slippageBps:    *slippageBps,
		feesBps:        *feesBps,
		investment:     *investment,
		limit:          *limit,
		includeDetails: *includeDetails,
		output:         *output,
	})

	params := cfg.SimulationParams()
	if *percentages != "" {
		pcts, err := parsePercentages(*percentages)
		if err != nil {
			logger.Fatalf("parse percentages: %v", err)
		}
		params.TrailingStopPercentages = pcts
	}

	filters, err := buildFilters(filterFlags{
		callTypes:     *callTypes,
		labels:        *labels,
		startDate:     *startDate,
		endDate:       *endDate,
		includeTokens: *includeTokens,
		excludeTokens: *excludeTokens,
		minMarketCap:  *minMarketCap,
		maxMarketCap:  *maxMarketCap,
		minLiquidity:  *minLiquidity,
		minVolume:     *minVolume,
	})
	if err != nil {
		logger.Fatalf("build filters: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	callStore, priceStore, closeStores, err := buildStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("storage setup: %v", err)
	}
	defer closeStores()

	orch := backtest.New(backtest.Options{
		CallStore:   callStore,
		PriceStore:  priceStore,
		Estimator:   simulator.MarketCapEstimator{},
		RecordLimit: cfg.Backtest.RecordLimit,
		Workers:     cfg.Backtest.Workers,
		Verbose:     *verbose,
	})

	logger.Printf("Running backtest: %d percentages, record limit %d",
		len(params.TrailingStopPercentages), cfg.Backtest.RecordLimit)

	report, err := orch.Simulate(ctx, filters, params, cfg.Backtest.IncludeDetails)
	if err != nil {
		logger.Fatalf("backtest failed: %v", err)
	}

	if err := writeReport(os.Stdout, report, cfg.Backtest.Output); err != nil {
		logger.Fatalf("write report: %v", err)
	}
}

func writeReport(w *os.File, report *domain.BacktestReport, format string) error {
	switch format {
	case "json":
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		fmt.Fprintln(w, string(out))
	case "csv":
		fmt.Fprint(w, reporting.RenderCSV(report))
		if len(report.Details) > 0 {
			fmt.Fprintln(w)
			fmt.Fprint(w, reporting.RenderDetailsCSV(report.Details))
		}
	case "markdown":
		fmt.Fprint(w, reporting.RenderMarkdown(report))
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return nil
}

// buildStores wires the configured backends. Memory mode seeds from CSV
// fixtures; otherwise both DSNs are required.
func buildStores(ctx context.Context, cfg *config.Config, logger *log.Logger) (storage.CallStore, storage.PriceHistoryStore, func(), error) {
	if cfg.Storage.UseMemory {
		callStore := memory.NewCallStore()
		priceStore := memory.NewPriceHistoryStore()

		if cfg.Storage.CallsCSV != "" {
			n, err := loadCallsCSV(ctx, callStore, cfg.Storage.CallsCSV)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("load calls fixture: %w", err)
			}
			logger.Printf("Loaded %d calls from %s", n, cfg.Storage.CallsCSV)
		}
		if cfg.Storage.PricesCSV != "" {
			n, err := loadPricesCSV(ctx, priceStore, cfg.Storage.PricesCSV)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("load prices fixture: %w", err)
			}
			logger.Printf("Loaded %d snapshots from %s", n, cfg.Storage.PricesCSV)
		}

		return callStore, priceStore, func() {}, nil
	}

	if cfg.Storage.PostgresDSN == "" {
		return nil, nil, nil, fmt.Errorf("postgres DSN is required unless use_memory is set")
	}
	if cfg.Storage.ClickhouseDSN == "" {
		return nil, nil, nil, fmt.Errorf("clickhouse DSN is required unless use_memory is set")
	}

	pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	conn, err := chstore.NewConn(ctx, cfg.Storage.ClickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}

	closeStores := func() {
		pool.Close()
		conn.Close()
	}
	return pgstore.NewCallStore(pool), chstore.NewPriceHistoryStore(conn), closeStores, nil
}

type flagOverrides struct {
	postgresDSN    string
	clickhouseDSN  string
	useMemory      bool
	callsCSV       string
	pricesCSV      string
	takeProfit     float64
	maxHoldDays    float64
	slippageBps    float64
	feesBps        float64
	investment     float64
	limit          int
	includeDetails bool
	output         string
}

// applyFlagOverrides lets explicit CLI flags win over the YAML config.
func applyFlagOverrides(cfg *config.Config, f flagOverrides) {
	if f.postgresDSN != "" {
		cfg.Storage.PostgresDSN = f.postgresDSN
	}
	if f.clickhouseDSN != "" {
		cfg.Storage.ClickhouseDSN = f.clickhouseDSN
	}
	if f.useMemory {
		cfg.Storage.UseMemory = true
	}
	if f.callsCSV != "" {
		cfg.Storage.CallsCSV = f.callsCSV
	}
	if f.pricesCSV != "" {
		cfg.Storage.PricesCSV = f.pricesCSV
	}
	if f.takeProfit > 0 {
		cfg.Backtest.TakeProfitMultiplier = f.takeProfit
	}
	if f.maxHoldDays > 0 {
		cfg.Backtest.MaxHoldDays = f.maxHoldDays
	}
	if f.slippageBps > 0 {
		cfg.Backtest.SlippageBps = f.slippageBps
	}
	if f.feesBps > 0 {
		cfg.Backtest.FeesBps = f.feesBps
	}
	if f.investment > 0 {
		cfg.Backtest.InvestmentAmount = f.investment
	}
	if f.limit > 0 {
		cfg.Backtest.RecordLimit = f.limit
	}
	if f.includeDetails {
		cfg.Backtest.IncludeDetails = true
	}
	if f.output != "" {
		cfg.Backtest.Output = f.output
	}
}

// parsePercentages parses a comma-separated list of stop percentages.
// Values at or above 1 are read as percents (15 -> 0.15), below 1 as
// fractions.
func parsePercentages(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	pcts := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid percentage %q: %w", p, err)
		}
		if v >= 1 {
			v /= 100
		}
		pcts = append(pcts, v)
	}
	return pcts, nil
}

type filterFlags struct {
	callTypes     string
	labels        string
	startDate     string
	endDate       string
	includeTokens string
	excludeTokens string
	minMarketCap  float64
	maxMarketCap  float64
	minLiquidity  float64
	minVolume     float64
}

func buildFilters(f filterFlags) (*domain.CallFilters, error) {
	filters := &domain.CallFilters{
		CallTypes:     splitList(f.callTypes),
		Labels:        splitList(f.labels),
		IncludeTokens: splitList(f.includeTokens),
		ExcludeTokens: splitList(f.excludeTokens),
	}

	if f.startDate != "" {
		t, err := time.Parse("2006-01-02", f.startDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start date %q: %w", f.startDate, err)
		}
		filters.StartDate = &t
	}
	if f.endDate != "" {
		t, err := time.Parse("2006-01-02", f.endDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end date %q: %w", f.endDate, err)
		}
		filters.EndDate = &t
	}
	if f.minMarketCap > 0 {
		filters.MarketCapMin = &f.minMarketCap
	}
	if f.maxMarketCap > 0 {
		filters.MarketCapMax = &f.maxMarketCap
	}
	if f.minLiquidity > 0 {
		filters.LiquidityMin = &f.minLiquidity
	}
	if f.minVolume > 0 {
		filters.VolumeMin = &f.minVolume
	}

	return filters, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}
