package indicator

import (
	"testing"

	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/stretchr/testify/require"
)

func candle(high, low, close float64) core.Candle {
	return core.Candle{High: high, Low: low, Close: close, Open: close, Ticks: 1}
}

func TestSuperTrendWarmup(t *testing.T) {
	st := NewSuperTrend(3, 3.0)

	require.False(t, st.Ready())
	require.Equal(t, 0, st.Direction())
	require.Equal(t, core.SignalNone, st.Signal())
	require.Zero(t, st.Value())

	st.Update(candle(101, 99, 100))
	st.Update(candle(102, 100, 101))
	require.False(t, st.Ready(), "bands must not form before a full true-range window")

	st.Update(candle(103, 101, 102))
	require.True(t, st.Ready())
	require.NotEqual(t, 0, st.Direction())
}

func TestSuperTrendBandsAndFlip(t *testing.T) {
	st := NewSuperTrend(2, 1.0)

	st.Update(candle(12, 8, 10))
	require.False(t, st.Ready())

	// TR window full: ATR=(4+4)/2=4, hl2=12, bands 8..16, close 13 below
	// the upper band so the trend starts down.
	st.Update(candle(14, 10, 13))
	require.True(t, st.Ready())
	require.Equal(t, -1, st.Direction())
	require.Equal(t, core.SignalRed, st.Signal())
	require.InDelta(t, 16.0, st.Value(), 1e-9)

	// ATR=(4+7)/2=5.5, hl2=18, basic bands 12.5..23.5. The upper band is
	// sticky at 16; close 19 breaks it and flips the trend up, and the
	// active band becomes the raised lower band.
	st.Update(candle(20, 16, 19))
	require.Equal(t, 1, st.Direction())
	require.Equal(t, core.SignalGreen, st.Signal())
	require.InDelta(t, 12.5, st.Value(), 1e-9)
}

func TestSuperTrendMonotoneRiseTurnsUp(t *testing.T) {
	st := NewSuperTrend(5, 3.0)

	price := 100.0
	for i := 0; i < 40; i++ {
		st.Update(candle(price+0.5, price-0.5, price))
		price += 10
	}

	require.Equal(t, 1, st.Direction())
}

func TestSuperTrendMonotoneFallTurnsDown(t *testing.T) {
	st := NewSuperTrend(5, 3.0)

	price := 1000.0
	for i := 0; i < 40; i++ {
		st.Update(candle(price+0.5, price-0.5, price))
		price -= 10
	}

	require.Equal(t, -1, st.Direction())
}

func TestSuperTrendHistoryCap(t *testing.T) {
	st := NewSuperTrend(2, 1.0)

	price := 100.0
	for i := 0; i < 300; i++ {
		st.Update(candle(price+1, price-1, price))
		price += 1
	}

	require.LessOrEqual(t, len(st.History()), 100)
}
