package core

import (
	"fmt"
	"strconv"
	"time"
)

// Tick is a single last-traded-price observation for an index.
type Tick struct {
	Index string
	Price float64
	Time  time.Time
}

// Candle is an OHLC bucket aggregated from ticks over a fixed interval.
// Start is the bucket open time aligned to the interval; a candle is
// immutable once Complete is set.
type Candle struct {
	Index     string
	Timeframe int // seconds
	Start     time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Ticks     int
	Complete  bool
}

// Empty reports whether no tick has been applied to the candle.
func (c Candle) Empty() bool { return c.Ticks == 0 }

// HL2 is the midpoint of high and low, the SuperTrend band anchor.
func (c Candle) HL2() float64 { return (c.High + c.Low) / 2 }

// Update folds a price into the candle.
func (c *Candle) Update(price float64) {
	if c.Ticks == 0 {
		c.Open = price
		c.High = price
		c.Low = price
	}
	if price > c.High {
		c.High = price
	}
	if price < c.Low {
		c.Low = price
	}
	c.Close = price
	c.Ticks++
}

func (c Candle) String() string {
	return fmt.Sprintf("[CANDLE] %s %ds | %s | O:%.2f H:%.2f L:%.2f C:%.2f (%d ticks)",
		c.Index, c.Timeframe, c.Start.Format("15:04:05"), c.Open, c.High, c.Low, c.Close, c.Ticks)
}

// FeedKey identifies a candle stream by index and timeframe.
func (c Candle) FeedKey() string {
	return c.Index + "--" + strconv.Itoa(c.Timeframe)
}
