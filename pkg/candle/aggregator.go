// Package candle turns a raw tick stream into fixed-interval OHLC candles.
package candle

import (
	"time"

	"github.com/kaviraj-dev/strikebot/pkg/core"
)

// htfThreshold is the execution interval (seconds) below which a parallel
// higher-timeframe bucket is maintained from the same tick stream.
const htfThreshold = 60

type bucket struct {
	timeframe int
	candle    core.Candle
	open      bool
}

func (b *bucket) interval() time.Duration {
	return time.Duration(b.timeframe) * time.Second
}

func (b *bucket) alignedStart(ts time.Time) time.Time {
	return ts.Truncate(b.interval())
}

// apply folds a tick into the bucket and returns the candle closed by a
// window rollover, if any.
func (b *bucket) apply(tick core.Tick) (core.Candle, bool) {
	start := b.alignedStart(tick.Time)

	var closed core.Candle
	var hasClosed bool

	if b.open && !b.candle.Start.Equal(start) {
		closed, hasClosed = b.close()
	}

	if !b.open {
		b.candle = core.Candle{
			Index:     tick.Index,
			Timeframe: b.timeframe,
			Start:     start,
		}
		b.open = true
	}

	b.candle.Update(tick.Price)
	return closed, hasClosed
}

// sweep closes the bucket if its window has fully elapsed by wall clock,
// regardless of whether any further tick arrived.
func (b *bucket) sweep(now time.Time) (core.Candle, bool) {
	if !b.open || now.Sub(b.candle.Start) < b.interval() {
		return core.Candle{}, false
	}
	return b.close()
}

func (b *bucket) close() (core.Candle, bool) {
	c := b.candle
	b.open = false
	b.candle = core.Candle{}
	if c.Empty() {
		return core.Candle{}, false
	}
	c.Complete = true
	return c, true
}

// Aggregator buckets one index's ticks into a base execution timeframe
// and, for sub-minute execution, a parallel higher timeframe derived from
// the same stream. It is driven by a single goroutine; closing is
// wall-clock based so quiet markets still close their candles on time.
type Aggregator struct {
	index string
	base  *bucket
	htf   *bucket
}

func NewAggregator(index string, baseTimeframe, htfTimeframe int) *Aggregator {
	a := &Aggregator{
		index: index,
		base:  &bucket{timeframe: baseTimeframe},
	}
	if baseTimeframe < htfThreshold {
		a.htf = &bucket{timeframe: htfTimeframe}
	}
	return a
}

// HTFActive reports whether a higher-timeframe bucket is maintained.
func (a *Aggregator) HTFActive() bool { return a.htf != nil }

// Update folds a tick into all active buckets and returns any candles
// closed by window rollover.
func (a *Aggregator) Update(tick core.Tick) []core.Candle {
	if tick.Index != a.index || tick.Price <= 0 {
		return nil
	}

	var out []core.Candle
	if c, ok := a.base.apply(tick); ok {
		out = append(out, c)
	}
	if a.htf != nil {
		if c, ok := a.htf.apply(tick); ok {
			out = append(out, c)
		}
	}
	return out
}

// Sweep closes any bucket whose interval has elapsed and returns the
// resulting candles. Empty buckets produce nothing.
func (a *Aggregator) Sweep(now time.Time) []core.Candle {
	var out []core.Candle
	if c, ok := a.base.sweep(now); ok {
		out = append(out, c)
	}
	if a.htf != nil {
		if c, ok := a.htf.sweep(now); ok {
			out = append(out, c)
		}
	}
	return out
}

// ResetBase discards the open base bucket. Used after an intra-candle
// exit so the partial candle cannot also fire a close-level decision.
func (a *Aggregator) ResetBase() {
	a.base.open = false
	a.base.candle = core.Candle{}
}
