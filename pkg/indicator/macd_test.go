package indicator

import (
	"testing"

	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/stretchr/testify/require"
)

func TestEMASeededWithSimpleMean(t *testing.T) {
	m := NewMACD(2, 3, 2)

	m.Update(10)
	m.Update(20)
	require.Zero(t, m.Value(), "macd line must wait for the slow ema")

	// fast: seed (10+20)/2=15 then 15+(30-15)*2/3=25
	// slow: seed (10+20+30)/3=20
	m.Update(30)
	require.InDelta(t, 5.0, m.Value(), 1e-9)
}

func TestMACDFlatMarketEmitsNoCrossover(t *testing.T) {
	m := NewMACD(2, 3, 2)

	for i := 0; i < 20; i++ {
		m.Update(100)
		require.Equal(t, core.SignalNone, m.Crossover())
	}
	require.True(t, m.Ready())
	require.Zero(t, m.Value())
	require.Zero(t, m.SignalLine())
}

func TestMACDCrossoverOnTrendChange(t *testing.T) {
	m := NewMACD(2, 3, 2)

	for i := 0; i < 10; i++ {
		m.Update(100)
	}

	// The fast ema reacts to the jump before the signal line can catch
	// up, completing a bullish crossover.
	m.Update(110)
	require.Equal(t, core.SignalGreen, m.Crossover())
	require.True(t, m.Bullish())

	sawRed := false
	for i := 0; i < 20; i++ {
		m.Update(60)
		if m.Crossover() == core.SignalRed {
			sawRed = true
			break
		}
	}
	require.True(t, sawRed, "sustained drop must complete a bearish crossover")
	require.True(t, m.Bearish())
}
