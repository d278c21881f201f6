// Package indicator implements streaming per-candle technical indicators.
// Every indicator consumes one closed candle at a time and keeps O(period)
// state; no batch recomputation over full history.
package indicator

import (
	"math"

	"github.com/kaviraj-dev/strikebot/pkg/core"
)

const historyCap = 100

// SuperTrend is the primary directional indicator: a Wilder-smoothed ATR
// band pair around hl2 with sticky band carry-forward and direction flips
// on band breach.
type SuperTrend struct {
	period     int
	multiplier float64

	seen      int
	prevClose float64
	trs       core.Series[float64]

	atr      float64
	atrReady bool

	finalUpper float64
	finalLower float64
	bandsReady bool

	direction int
	value     float64
	history   core.Series[float64]
}

func NewSuperTrend(period int, multiplier float64) *SuperTrend {
	return &SuperTrend{period: period, multiplier: multiplier}
}

// Update consumes one closed candle.
func (s *SuperTrend) Update(candle core.Candle) {
	tr := candle.High - candle.Low
	if s.seen > 0 {
		tr = math.Max(tr, math.Max(
			math.Abs(candle.High-s.prevClose),
			math.Abs(candle.Low-s.prevClose)))
	}
	s.seen++
	s.trs.Push(tr, s.period)

	if s.trs.Length() < s.period {
		s.prevClose = candle.Close
		return
	}

	if !s.atrReady {
		sum := 0.0
		for _, v := range s.trs.Values() {
			sum += v
		}
		s.atr = sum / float64(s.period)
		s.atrReady = true
	} else {
		s.atr = (s.atr*float64(s.period-1) + tr) / float64(s.period)
	}

	hl2 := candle.HL2()
	basicUpper := hl2 + s.multiplier*s.atr
	basicLower := hl2 - s.multiplier*s.atr

	if !s.bandsReady {
		s.finalUpper = basicUpper
		s.finalLower = basicLower
		if candle.Close > s.finalUpper {
			s.direction = 1
		} else {
			s.direction = -1
		}
		s.bandsReady = true
	} else {
		// Bands only tighten; they loosen again only after price has
		// closed through them.
		if basicLower > s.finalLower || s.prevClose < s.finalLower {
			s.finalLower = basicLower
		}
		if basicUpper < s.finalUpper || s.prevClose > s.finalUpper {
			s.finalUpper = basicUpper
		}

		if s.direction == 1 && candle.Close < s.finalLower {
			s.direction = -1
		} else if s.direction == -1 && candle.Close > s.finalUpper {
			s.direction = 1
		}
	}

	if s.direction == 1 {
		s.value = s.finalLower
	} else {
		s.value = s.finalUpper
	}
	s.history.Push(s.value, historyCap)
	s.prevClose = candle.Close
}

// Ready reports whether enough candles have been seen to trust Direction.
func (s *SuperTrend) Ready() bool { return s.bandsReady }

// Direction returns +1 (uptrend), -1 (downtrend) or 0 while warming up.
func (s *SuperTrend) Direction() int {
	if !s.bandsReady {
		return 0
	}
	return s.direction
}

// Value returns the active band: the lower band in an uptrend, the upper
// band in a downtrend. Zero while warming up.
func (s *SuperTrend) Value() float64 {
	if !s.bandsReady {
		return 0
	}
	return s.value
}

// Signal maps the direction to a qualitative entry signal.
func (s *SuperTrend) Signal() core.Signal {
	switch s.Direction() {
	case 1:
		return core.SignalGreen
	case -1:
		return core.SignalRed
	}
	return core.SignalNone
}

// History returns the recent band values, oldest first.
func (s *SuperTrend) History() []float64 { return s.history.Values() }
