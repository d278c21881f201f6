package indicator

import "github.com/kaviraj-dev/strikebot/pkg/core"

// ema is an incremental exponential moving average seeded with the simple
// mean of the first period values.
type ema struct {
	period int
	alpha  float64
	count  int
	sum    float64
	value  float64
	ready  bool
}

func newEMA(period int) *ema {
	return &ema{period: period, alpha: 2.0 / float64(period+1)}
}

func (e *ema) Update(v float64) {
	if !e.ready {
		e.sum += v
		e.count++
		if e.count == e.period {
			e.value = e.sum / float64(e.period)
			e.ready = true
		}
		return
	}
	e.value = (v-e.value)*e.alpha + e.value
}

// MACD tracks the difference of a fast and slow close-price EMA together
// with a signal-line EMA over that difference.
type MACD struct {
	fast   *ema
	slow   *ema
	signal *ema

	macdSeries   core.Series[float64]
	signalSeries core.Series[float64]
}

func NewMACD(fastPeriod, slowPeriod, signalPeriod int) *MACD {
	return &MACD{
		fast:   newEMA(fastPeriod),
		slow:   newEMA(slowPeriod),
		signal: newEMA(signalPeriod),
	}
}

// Update consumes one closing price.
func (m *MACD) Update(closePrice float64) {
	m.fast.Update(closePrice)
	m.slow.Update(closePrice)
	if !m.fast.ready || !m.slow.ready {
		return
	}

	macd := m.fast.value - m.slow.value
	m.macdSeries.Push(macd, historyCap)

	m.signal.Update(macd)
	if m.signal.ready {
		m.signalSeries.Push(m.signal.value, historyCap)
	}
}

// Ready reports whether both the MACD line and signal line are formed.
func (m *MACD) Ready() bool {
	return m.signalSeries.Length() > 0
}

// Value returns the latest MACD line value.
func (m *MACD) Value() float64 {
	if m.macdSeries.Length() == 0 {
		return 0
	}
	return m.macdSeries.Last(0)
}

// SignalLine returns the latest signal line value.
func (m *MACD) SignalLine() float64 {
	if m.signalSeries.Length() == 0 {
		return 0
	}
	return m.signalSeries.Last(0)
}

// Bullish reports whether the MACD line is above its signal line.
func (m *MACD) Bullish() bool {
	return m.Ready() && m.Value() > m.SignalLine()
}

// Bearish reports whether the MACD line is below its signal line.
func (m *MACD) Bearish() bool {
	return m.Ready() && m.Value() < m.SignalLine()
}

// Crossover returns the crossover event completed by the latest update:
// GREEN when the MACD line crossed above the signal line, RED when it
// crossed below, none otherwise.
func (m *MACD) Crossover() core.Signal {
	if m.signalSeries.Length() < 2 || m.macdSeries.Length() < 2 {
		return core.SignalNone
	}
	// The signal series lags the macd series by signal-period warmup, so
	// align both on their own last two values.
	if m.macdSeries.Last(0) > m.signalSeries.Last(0) && m.macdSeries.Last(1) <= m.signalSeries.Last(1) {
		return core.SignalGreen
	}
	if m.macdSeries.Last(0) < m.signalSeries.Last(0) && m.macdSeries.Last(1) >= m.signalSeries.Last(1) {
		return core.SignalRed
	}
	return core.SignalNone
}
