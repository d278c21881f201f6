package indicator

import (
	"math"

	"github.com/kaviraj-dev/strikebot/pkg/core"
)

// ADX is a trend-strength heuristic: recent range over mean true range.
// It is deliberately not the canonical Wilder ADX; it trades fidelity for
// a cheap streaming form that ranks "trending" vs "chopping" well enough
// to gate entries.
type ADX struct {
	period int

	seen      int
	prevClose float64
	highs     core.Series[float64]
	lows      core.Series[float64]
	trs       core.Series[float64]
}

func NewADX(period int) *ADX {
	return &ADX{period: period}
}

// Update consumes one closed candle.
func (a *ADX) Update(candle core.Candle) {
	if a.seen > 0 {
		tr := math.Max(candle.High-candle.Low, math.Max(
			math.Abs(candle.High-a.prevClose),
			math.Abs(candle.Low-a.prevClose)))
		a.trs.Push(tr, a.period)
	}
	a.highs.Push(candle.High, a.period)
	a.lows.Push(candle.Low, a.period)
	a.prevClose = candle.Close
	a.seen++
}

// Ready reports whether a full true-range window has accumulated.
func (a *ADX) Ready() bool {
	return a.seen >= a.period+1
}

// Value returns the trend-strength reading. Until two full windows have
// been seen it returns a neutral 50 so that threshold gates neither pass
// nor block on noise.
func (a *ADX) Value() float64 {
	if !a.Ready() {
		return 0
	}
	if a.seen < 2*a.period {
		return 50
	}

	recentHigh := a.highs.Last(0)
	recentLow := a.lows.Last(0)
	for _, h := range a.highs.Values() {
		recentHigh = math.Max(recentHigh, h)
	}
	for _, l := range a.lows.Values() {
		recentLow = math.Min(recentLow, l)
	}

	meanTR := 0.0
	for _, tr := range a.trs.Values() {
		meanTR += tr
	}
	meanTR /= float64(a.trs.Length())

	return math.Abs(recentHigh-recentLow) / (meanTR + 0.001) * 100
}
