package candle

import (
	"testing"
	"time"

	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 4, 7, 9, 15, 0, 0, time.UTC)

func tick(offset time.Duration, price float64) core.Tick {
	return core.Tick{Index: "NIFTY", Price: price, Time: t0.Add(offset)}
}

func TestAggregatorBucketsTicksIntoOHLC(t *testing.T) {
	agg := NewAggregator("NIFTY", 60, 0)
	require.False(t, agg.HTFActive())

	require.Empty(t, agg.Update(tick(0, 100)))
	require.Empty(t, agg.Update(tick(10*time.Second, 105)))
	require.Empty(t, agg.Update(tick(20*time.Second, 95)))
	require.Empty(t, agg.Update(tick(30*time.Second, 102)))

	// First tick of the next window rolls the previous candle over.
	closed := agg.Update(tick(61*time.Second, 103))
	require.Len(t, closed, 1)

	c := closed[0]
	require.True(t, c.Complete)
	require.Equal(t, 100.0, c.Open)
	require.Equal(t, 105.0, c.High)
	require.Equal(t, 95.0, c.Low)
	require.Equal(t, 102.0, c.Close)
	require.Equal(t, 4, c.Ticks)
	require.Equal(t, t0, c.Start)
}

func TestAggregatorWallClockSweep(t *testing.T) {
	agg := NewAggregator("NIFTY", 60, 0)

	agg.Update(tick(5*time.Second, 100))
	require.Empty(t, agg.Sweep(t0.Add(59*time.Second)))

	// No further ticks arrive; the candle still closes once the window
	// has elapsed.
	closed := agg.Sweep(t0.Add(61 * time.Second))
	require.Len(t, closed, 1)
	require.Equal(t, 100.0, closed[0].Close)
	require.Equal(t, 1, closed[0].Ticks)
}

func TestAggregatorSkipsEmptyBuckets(t *testing.T) {
	agg := NewAggregator("NIFTY", 60, 0)

	require.Empty(t, agg.Sweep(t0.Add(10*time.Minute)))

	// A gap of several windows between ticks yields exactly one candle,
	// never zero-filled ones for the quiet windows.
	agg.Update(tick(0, 100))
	closed := agg.Update(tick(5*time.Minute, 110))
	require.Len(t, closed, 1)
	require.Equal(t, 100.0, closed[0].Close)
}

func TestAggregatorHTFSharesTickStream(t *testing.T) {
	agg := NewAggregator("NIFTY", 15, 60)
	require.True(t, agg.HTFActive())

	var closed []core.Candle
	for i := 0; i < 8; i++ {
		closed = append(closed, agg.Update(tick(time.Duration(i*10)*time.Second, 100+float64(i)))...)
	}
	closed = append(closed, agg.Sweep(t0.Add(3*time.Minute))...)

	var base, htf int
	for _, c := range closed {
		switch c.Timeframe {
		case 15:
			base++
		case 60:
			htf++
		}
	}
	require.Equal(t, 5, base)
	require.Equal(t, 2, htf)
}

func TestAggregatorHTFInactiveForMinutePlus(t *testing.T) {
	require.False(t, NewAggregator("NIFTY", 60, 60).HTFActive())
	require.False(t, NewAggregator("NIFTY", 300, 60).HTFActive())
	require.True(t, NewAggregator("NIFTY", 5, 60).HTFActive())
}

func TestAggregatorResetBaseDropsPartialCandle(t *testing.T) {
	agg := NewAggregator("NIFTY", 60, 0)

	agg.Update(tick(5*time.Second, 100))
	agg.ResetBase()

	require.Empty(t, agg.Sweep(t0.Add(2*time.Minute)))
}

func TestAggregatorIgnoresBadTicks(t *testing.T) {
	agg := NewAggregator("NIFTY", 60, 0)

	agg.Update(core.Tick{Index: "BANKNIFTY", Price: 100, Time: t0})
	agg.Update(core.Tick{Index: "NIFTY", Price: 0, Time: t0})
	agg.Update(core.Tick{Index: "NIFTY", Price: -5, Time: t0})

	require.Empty(t, agg.Sweep(t0.Add(2*time.Minute)))
}
