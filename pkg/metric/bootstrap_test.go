package metric

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBootstrapEmptySample(t *testing.T) {
	require.Zero(t, Bootstrap(nil, MeanPnl, 100, 0.95))
}

func TestBootstrapConstantSample(t *testing.T) {
	pnls := []float64{500, 500, 500, 500}

	interval := Bootstrap(pnls, MeanPnl, 200, 0.95)
	require.Equal(t, 500.0, interval.Lower)
	require.Equal(t, 500.0, interval.Upper)
	require.Equal(t, 500.0, interval.Mean)
	require.Zero(t, interval.StdDev)
}

func TestBootstrapIntervalBracketsMean(t *testing.T) {
	pnls := []float64{-200, -100, 50, 150, 300, 450, 700, -50, 120, 80}

	interval := Bootstrap(pnls, MeanPnl, 500, 0.95)
	require.Less(t, interval.Lower, interval.Upper)
	require.GreaterOrEqual(t, interval.Mean, interval.Lower)
	require.LessOrEqual(t, interval.Mean, interval.Upper)
}

func TestWinRate(t *testing.T) {
	require.Zero(t, WinRate(nil))
	require.Equal(t, 0.5, WinRate([]float64{100, -100}))
	require.Equal(t, 1.0, WinRate([]float64{1, 2, 3}))
	require.Equal(t, 0.75, WinRate([]float64{10, 20, 30, -5}))
}
