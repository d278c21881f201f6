// Package risk implements trailing-stop management, protective exit
// evaluation and position sizing.
package risk

import (
	"math"

	"github.com/kaviraj-dev/strikebot/pkg/core"
)

// Params are the resolved risk parameters for one strategy instance.
// A zero value on any threshold disables that check.
type Params struct {
	InitialStoploss float64
	TrailStart      float64
	TrailStep       float64
	TargetPoints    float64
	MaxLossPerTrade float64
	DailyMaxLoss    float64
	RiskPerTrade    float64
	OrderQtyLots    int
}

// TrailingEnabled reports whether any stop management happens at all.
// Both the activation profit and the step must be configured; otherwise
// no stop is ever armed, not even the initial one.
func (p Params) TrailingEnabled() bool {
	return p.TrailStart > 0 && p.TrailStep > 0
}

// UpdateTrailing advances the trailing-stop state machine for one price
// observation. The running profit high-water mark is always refreshed
// first. Phase one arms the initial stop once; phase two ratchets the
// stop upward in whole steps above the activation profit. The stop never
// moves down.
func UpdateTrailing(pos *core.Position, ltp float64, p Params) {
	if !p.TrailingEnabled() {
		return
	}

	profit := pos.ProfitPoints(ltp)
	if profit > pos.HighestProfit {
		pos.HighestProfit = profit
	}

	if p.InitialStoploss > 0 && pos.TrailingStop == nil {
		stop := pos.EntryPrice - p.InitialStoploss
		pos.TrailingStop = &stop
		return
	}

	if pos.HighestProfit < p.TrailStart {
		return
	}

	steps := math.Floor((pos.HighestProfit - p.TrailStart) / p.TrailStep)
	candidate := pos.EntryPrice + steps*p.TrailStep
	if pos.TrailingStop == nil || candidate > *pos.TrailingStop {
		pos.TrailingStop = &candidate
	}
}

// EvaluateTickExit checks the protective exits in strict priority order
// and returns the exit reason of the first breach, or "" to hold.
// dailyPnl is the realized rupee PnL of the day so far.
func EvaluateTickExit(pos *core.Position, ltp, dailyPnl float64, p Params) string {
	profit := pos.ProfitPoints(ltp)

	if p.DailyMaxLoss > 0 && dailyPnl+pos.OpenPnl(ltp) < -p.DailyMaxLoss {
		return core.ExitReasonDailyMaxLoss
	}
	if p.MaxLossPerTrade > 0 && profit <= -p.MaxLossPerTrade {
		return core.ExitReasonMaxLossPerTrade
	}
	if p.TargetPoints > 0 && profit >= p.TargetPoints {
		return core.ExitReasonTarget
	}

	UpdateTrailing(pos, ltp, p)
	if pos.TrailingStop != nil && ltp <= *pos.TrailingStop {
		return core.ExitReasonTrailingStop
	}
	return ""
}

// EvaluateCloseExit checks the candle-close exits: target first, then the
// trailing stop. The indicator-reversal exit is the caller's concern.
func EvaluateCloseExit(pos *core.Position, closePrice float64, p Params) string {
	profit := pos.ProfitPoints(closePrice)

	if p.TargetPoints > 0 && profit >= p.TargetPoints {
		return core.ExitReasonTarget
	}

	UpdateTrailing(pos, closePrice, p)
	if pos.TrailingStop != nil && closePrice <= *pos.TrailingStop {
		return core.ExitReasonTrailingStop
	}
	return ""
}

// Qty computes the order quantity in units. The lot count defaults to the
// configured lots and is clamped to a rupee risk budget when both the
// budget and the initial stop distance are set.
func Qty(lotSize int, p Params) int {
	lots := p.OrderQtyLots
	if p.RiskPerTrade > 0 && p.InitialStoploss > 0 {
		byRisk := int(math.Floor(p.RiskPerTrade / (p.InitialStoploss * float64(lotSize))))
		if byRisk < 1 {
			byRisk = 1
		}
		if byRisk < lots {
			lots = byRisk
		}
	}
	if lots < 1 {
		lots = 1
	}
	return lots * lotSize
}
