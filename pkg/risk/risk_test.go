package risk

import (
	"testing"

	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/stretchr/testify/require"
)

func position(entry float64) *core.Position {
	return &core.Position{EntryPrice: entry, Qty: 75}
}

func TestTrailingStopRatchet(t *testing.T) {
	p := Params{TrailStart: 10, TrailStep: 5}
	pos := position(100)

	require.Nil(t, pos.TrailingStop)

	UpdateTrailing(pos, 112, p)
	require.NotNil(t, pos.TrailingStop)
	require.Equal(t, 100.0, *pos.TrailingStop)

	UpdateTrailing(pos, 117, p)
	require.Equal(t, 105.0, *pos.TrailingStop)

	UpdateTrailing(pos, 123, p)
	require.Equal(t, 110.0, *pos.TrailingStop)
}

func TestTrailingStopNeverLoosens(t *testing.T) {
	p := Params{TrailStart: 10, TrailStep: 5}
	pos := position(100)

	UpdateTrailing(pos, 123, p)
	require.Equal(t, 110.0, *pos.TrailingStop)

	// Price retreat must not pull the stop back down; the high-water
	// mark keeps it pinned.
	UpdateTrailing(pos, 111, p)
	require.Equal(t, 110.0, *pos.TrailingStop)
	UpdateTrailing(pos, 105, p)
	require.Equal(t, 110.0, *pos.TrailingStop)
}

func TestTrailingDisabledArmsNoStop(t *testing.T) {
	pos := position(100)

	// Without both activation profit and step, no stop management
	// happens at all, including the initial stop.
	UpdateTrailing(pos, 150, Params{InitialStoploss: 50})
	require.Nil(t, pos.TrailingStop)

	UpdateTrailing(pos, 150, Params{InitialStoploss: 50, TrailStart: 10})
	require.Nil(t, pos.TrailingStop)

	UpdateTrailing(pos, 150, Params{InitialStoploss: 50, TrailStep: 5})
	require.Nil(t, pos.TrailingStop)
}

func TestInitialStopArmedOnceThenRatchets(t *testing.T) {
	p := Params{InitialStoploss: 50, TrailStart: 10, TrailStep: 5}
	pos := position(100)

	// Phase one arms the initial stop and yields, even though profit is
	// already above the activation threshold.
	UpdateTrailing(pos, 112, p)
	require.Equal(t, 50.0, *pos.TrailingStop)

	UpdateTrailing(pos, 112, p)
	require.Equal(t, 100.0, *pos.TrailingStop)
}

func TestTickExitPriorityOrder(t *testing.T) {
	p := Params{
		DailyMaxLoss:    1000,
		MaxLossPerTrade: 20,
		TargetPoints:    50,
		TrailStart:      10,
		TrailStep:       5,
	}

	// Daily loss cap wins over everything else.
	pos := position(100)
	reason := EvaluateTickExit(pos, 75, -900, p)
	require.Equal(t, core.ExitReasonDailyMaxLoss, reason)

	// Per-trade loss next.
	pos = position(100)
	reason = EvaluateTickExit(pos, 75, 0, p)
	require.Equal(t, core.ExitReasonMaxLossPerTrade, reason)

	// Target before the trailing stop.
	pos = position(100)
	reason = EvaluateTickExit(pos, 155, 0, p)
	require.Equal(t, core.ExitReasonTarget, reason)

	// Trailing stop breach last.
	pos = position(100)
	require.Empty(t, EvaluateTickExit(pos, 123, 0, p))
	reason = EvaluateTickExit(pos, 109, 0, p)
	require.Equal(t, core.ExitReasonTrailingStop, reason)
}

func TestTickExitHoldsInsideLimits(t *testing.T) {
	p := Params{MaxLossPerTrade: 20, TargetPoints: 50, TrailStart: 10, TrailStep: 5}
	pos := position(100)

	require.Empty(t, EvaluateTickExit(pos, 105, 0, p))
	require.Empty(t, EvaluateTickExit(pos, 95, 0, p))
}

func TestCloseExitChecksTargetThenTrailing(t *testing.T) {
	p := Params{TargetPoints: 50, TrailStart: 10, TrailStep: 5}

	pos := position(100)
	require.Equal(t, core.ExitReasonTarget, EvaluateCloseExit(pos, 151, p))

	pos = position(100)
	require.Empty(t, EvaluateCloseExit(pos, 123, p))
	require.Equal(t, core.ExitReasonTrailingStop, EvaluateCloseExit(pos, 110, p))
}

func TestQtySizing(t *testing.T) {
	require.Equal(t, 150, Qty(75, Params{OrderQtyLots: 2}))

	// Risk budget caps the lot count.
	require.Equal(t, 75, Qty(75, Params{OrderQtyLots: 5, RiskPerTrade: 5000, InitialStoploss: 50}))

	// Budget below one lot still trades the minimum.
	require.Equal(t, 75, Qty(75, Params{OrderQtyLots: 3, RiskPerTrade: 100, InitialStoploss: 50}))

	// A generous budget never exceeds the configured lots.
	require.Equal(t, 150, Qty(75, Params{OrderQtyLots: 2, RiskPerTrade: 1e9, InitialStoploss: 10}))
}
