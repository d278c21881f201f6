// Package metric computes statistics over realized trade results.
package metric

import (
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// Interval is a bootstrap confidence interval over a trade statistic.
type Interval struct {
	Lower  float64 // Lower bound of the confidence interval
	Upper  float64 // Upper bound of the confidence interval
	StdDev float64 // Standard deviation of the bootstrap estimates
	Mean   float64 // Mean of the bootstrap estimates
}

// Measure reduces a PnL sample to a single statistic.
type Measure func([]float64) float64

// MeanPnl is the average result per trade.
func MeanPnl(pnls []float64) float64 {
	return stat.Mean(pnls, nil)
}

// WinRate is the fraction of trades that closed positive.
func WinRate(pnls []float64) float64 {
	if len(pnls) == 0 {
		return 0
	}
	wins := lo.CountBy(pnls, func(p float64) bool { return p > 0 })
	return float64(wins) / float64(len(pnls))
}

// Bootstrap estimates the confidence interval of a statistic over the
// per-trade PnL sample by resampling with replacement.
func Bootstrap(pnls []float64, measure Measure, resamples int, confidence float64) Interval {
	if len(pnls) == 0 {
		return Interval{}
	}

	estimates := make([]float64, 0, resamples)
	for i := 0; i < resamples; i++ {
		sample := make([]float64, len(pnls))
		for j := range sample {
			sample[j] = lo.Sample(pnls)
		}
		estimates = append(estimates, measure(sample))
	}

	tail := 1 - confidence
	sort.Float64s(estimates)

	mean, stdDev := stat.MeanStdDev(estimates, nil)
	return Interval{
		Lower:  stat.Quantile(tail/2, stat.LinInterp, estimates, nil),
		Upper:  stat.Quantile(1-tail/2, stat.LinInterp, estimates, nil),
		StdDev: stdDev,
		Mean:   mean,
	}
}
