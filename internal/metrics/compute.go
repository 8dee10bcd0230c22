// Package metrics turns lists of per-trade ROI percentages into aggregate
// performance and risk statistics.
package metrics

import (
	"math"
	"sort"

	"trading-call-lab/internal/domain"
)

// Compute calculates all performance metrics from a slice of ROI
// percentages. For an empty input every field is 0; no ratio can raise a
// division error.
//
// The max-drawdown scan runs over rois in input order, which callers keep
// as the CallSource return order.
func Compute(rois []float64) domain.PerformanceMetrics {
	n := len(rois)
	if n == 0 {
		return domain.PerformanceMetrics{}
	}

	sorted := make([]float64, n)
	copy(sorted, rois)
	sort.Float64s(sorted)

	wins := 0
	for _, r := range rois {
		if r > 0 {
			wins++
		}
	}

	mean := computeMean(rois)
	stddev := computeStddev(rois, mean)

	return domain.PerformanceMetrics{
		WinRate:      float64(wins) / float64(n) * 100,
		MedianROI:    computeMedian(sorted),
		AverageROI:   mean,
		ProfitFactor: computeProfitFactor(rois),
		Percentiles: domain.Percentiles{
			P10: computePercentile(sorted, 10),
			P25: computePercentile(sorted, 25),
			P75: computePercentile(sorted, 75),
			P90: computePercentile(sorted, 90),
		},
		Risk: domain.RiskMetrics{
			StandardDeviation: stddev,
			MaxROI:            sorted[n-1],
			MinROI:            sorted[0],
			SharpeRatio:       computeSharpe(mean, stddev),
			MaxDrawdown:       computeMaxDrawdown(rois),
		},
	}
}

// computeMean calculates the arithmetic mean.
func computeMean(rois []float64) float64 {
	if len(rois) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range rois {
		sum += r
	}
	return sum / float64(len(rois))
}

// computeMedian uses the conventional even/odd mid-point average.
// sorted must be pre-sorted ASC.
func computeMedian(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// computeStddev calculates population standard deviation (n denominator).
func computeStddev(rois []float64, mean float64) float64 {
	n := len(rois)
	if n == 0 {
		return 0
	}
	sumSq := 0.0
	for _, r := range rois {
		diff := r - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n))
}

// computePercentile uses nearest-rank: ceil(p/100 * n) - 1, clamped.
// sorted must be pre-sorted ASC; p is in [0, 100].
func computePercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}

// computeProfitFactor returns sum(gains) / |sum(losses)|.
// With no losses the result is the ProfitFactorCap when any gains exist,
// else 0.
func computeProfitFactor(rois []float64) float64 {
	gains := 0.0
	losses := 0.0
	for _, r := range rois {
		if r > 0 {
			gains += r
		} else if r < 0 {
			losses += r
		}
	}
	if losses == 0 {
		if gains > 0 {
			return domain.ProfitFactorCap
		}
		return 0
	}
	return gains / math.Abs(losses)
}

// computeSharpe returns mean/stddev with a 0 risk-free rate.
func computeSharpe(mean, stddev float64) float64 {
	if stddev == 0 {
		return 0
	}
	return mean / stddev
}

// computeMaxDrawdown runs a running-peak scan over the ROI values in input
// order, tracking the largest peak-to-value drop. A proxy measure over
// per-trade ROIs, not a true equity-curve drawdown.
func computeMaxDrawdown(rois []float64) float64 {
	if len(rois) == 0 {
		return 0
	}

	peak := rois[0]
	maxDrawdown := 0.0
	for _, r := range rois {
		if r > peak {
			peak = r
		}
		if dd := peak - r; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}
	return maxDrawdown
}
