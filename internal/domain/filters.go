package domain

import (
	"fmt"
	"time"

	"github.com/mr-tron/base58"
)

// NoLabel is the special Labels filter value matching calls with a nil
// label.
const NoLabel = "NO_LABEL"

// CallFilters narrows the historical call set fed into a backtest.
// Nil/empty fields impose no constraint.
type CallFilters struct {
	CallTypes []string
	Labels    []string // NoLabel matches calls without a label

	MarketCapMin *float64
	MarketCapMax *float64
	LiquidityMin *float64
	VolumeMin    *float64

	StartDate *time.Time
	EndDate   *time.Time // inclusive through 23:59:59.999 of that day

	IncludeTokens []string // contract addresses
	ExcludeTokens []string
}

// EndDateBoundMs returns the exclusive upper bound in Unix ms implied by
// EndDate: the first instant of the following day, so the whole end day
// through 23:59:59.999 is included. Returns (0, false) when EndDate is nil.
func (f *CallFilters) EndDateBoundMs() (int64, bool) {
	if f.EndDate == nil {
		return 0, false
	}
	d := f.EndDate.UTC()
	next := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return next.UnixMilli(), true
}

// StartDateMs returns the inclusive lower bound in Unix ms implied by
// StartDate. Returns (0, false) when StartDate is nil.
func (f *CallFilters) StartDateMs() (int64, bool) {
	if f.StartDate == nil {
		return 0, false
	}
	return f.StartDate.UTC().UnixMilli(), true
}

// Validate checks that every token constraint is a decodable base58
// contract address.
func (f *CallFilters) Validate() error {
	for _, addr := range f.IncludeTokens {
		if err := validateAddress(addr); err != nil {
			return fmt.Errorf("includeTokens: %w", err)
		}
	}
	for _, addr := range f.ExcludeTokens {
		if err := validateAddress(addr); err != nil {
			return fmt.Errorf("excludeTokens: %w", err)
		}
	}
	return nil
}

// validateAddress checks base58 shape without chain-specific length rules.
func validateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("empty token address")
	}
	if _, err := base58.Decode(addr); err != nil {
		return fmt.Errorf("invalid token address %q: %w", addr, err)
	}
	return nil
}

// Matches reports whether a call passes every configured constraint.
// Store implementations that filter in SQL may skip it; the memory store
// relies on it.
func (f *CallFilters) Matches(c *CallRecord) bool {
	if len(f.CallTypes) > 0 && !containsString(f.CallTypes, c.CallType) {
		return false
	}
	if len(f.Labels) > 0 && !matchesLabel(f.Labels, c.Label) {
		return false
	}
	if f.MarketCapMin != nil && (c.EntryMarketCap == nil || *c.EntryMarketCap < *f.MarketCapMin) {
		return false
	}
	if f.MarketCapMax != nil && (c.EntryMarketCap == nil || *c.EntryMarketCap > *f.MarketCapMax) {
		return false
	}
	if f.LiquidityMin != nil && (c.Liquidity == nil || *c.Liquidity < *f.LiquidityMin) {
		return false
	}
	if f.VolumeMin != nil && (c.Volume24h == nil || *c.Volume24h < *f.VolumeMin) {
		return false
	}
	if startMs, ok := f.StartDateMs(); ok && c.EntryTime < startMs {
		return false
	}
	if endMs, ok := f.EndDateBoundMs(); ok && c.EntryTime >= endMs {
		return false
	}
	if len(f.IncludeTokens) > 0 && !containsString(f.IncludeTokens, c.TokenAddress) {
		return false
	}
	if containsString(f.ExcludeTokens, c.TokenAddress) {
		return false
	}
	return true
}

func matchesLabel(labels []string, label *string) bool {
	for _, l := range labels {
		if l == NoLabel {
			if label == nil {
				return true
			}
			continue
		}
		if label != nil && *label == l {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
