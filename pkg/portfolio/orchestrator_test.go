package portfolio

import (
	"context"
	"testing"
	"time"

	"github.com/kaviraj-dev/strikebot/pkg/config"
	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/kaviraj-dev/strikebot/pkg/exchange"
	"github.com/kaviraj-dev/strikebot/pkg/logger"
	"github.com/kaviraj-dev/strikebot/pkg/order"
	"github.com/kaviraj-dev/strikebot/pkg/strategy"
	"github.com/stretchr/testify/require"
)

type panickingStrategy struct{ fakeStrategy }

func (p *panickingStrategy) OnCandle(core.Candle) { panic("indicator blew up") }

func newPortfolioFixture(t *testing.T, strats ...strategy.Strategy) (*Orchestrator, []*Instance, *settableFeeder) {
	t.Helper()

	trading := config.DefaultTrading()
	trading.MinOrderCooldown = 0
	feeder := &settableFeeder{price: 23500}
	broker := exchange.NewPaperBroker(feeder, logger.Nop())
	coord := order.NewCoordinator(broker, logger.Nop())
	now := time.Date(2025, 4, 7, 10, 0, 0, 0, exchange.IST)

	instances := make([]*Instance, 0, len(strats))
	for idx, s := range strats {
		resolver := config.NewResolver(&trading, nil, nil)
		inst := NewInstance("inst-"+string(rune('a'+idx)), "NIFTY", core.ModePaper,
			trading.CandleInterval, s, resolver, coord, logger.Nop(), nil)
		inst.SetClock(func() time.Time { return now })
		instances = append(instances, inst)
	}

	return NewOrchestrator(NewShared(), logger.Nop(), instances...), instances, feeder
}

func TestPanicInOneInstanceDoesNotStopOthers(t *testing.T) {
	bad := &panickingStrategy{}
	good := &fakeStrategy{signal: core.SignalGreen, confirm: true}

	orch, instances, _ := newPortfolioFixture(t, bad, good)

	candle := core.Candle{Index: "NIFTY", Timeframe: 60, Close: 23500, Complete: true, Ticks: 1}
	orch.OnBaseCandle(context.Background(), candle)

	require.Nil(t, instances[0].Position())
	require.NotNil(t, instances[1].Position(), "healthy instance must still evaluate")
}

func TestSharedGuardsVisibleAcrossInstances(t *testing.T) {
	first := &fakeStrategy{signal: core.SignalGreen, confirm: true}
	second := &fakeStrategy{signal: core.SignalGreen, confirm: true}

	orch, instances, _ := newPortfolioFixture(t, first, second)
	orch.Shared().Reset("2025-04-07")

	candle := core.Candle{Index: "NIFTY", Timeframe: 60, Close: 23500, Complete: true, Ticks: 1}
	orch.OnBaseCandle(context.Background(), candle)

	// Both instances entered; each saw the counters before acting.
	require.NotNil(t, instances[0].Position())
	require.NotNil(t, instances[1].Position())
	require.Equal(t, 2, orch.Shared().DailyTrades())
	require.Equal(t, 2, orch.OpenPositions())
}

func TestSquareOffAllFlattensEveryInstance(t *testing.T) {
	first := &fakeStrategy{signal: core.SignalGreen, confirm: true}
	second := &fakeStrategy{signal: core.SignalRed, confirm: true}

	orch, instances, _ := newPortfolioFixture(t, first, second)

	candle := core.Candle{Index: "NIFTY", Timeframe: 60, Close: 23500, Complete: true, Ticks: 1}
	orch.OnBaseCandle(context.Background(), candle)
	require.Equal(t, 2, orch.OpenPositions())

	orch.SquareOffAll(context.Background())
	require.Zero(t, orch.OpenPositions())
	for _, inst := range instances {
		require.Nil(t, inst.Position())
	}
}

func TestSquareOffByID(t *testing.T) {
	first := &fakeStrategy{signal: core.SignalGreen, confirm: true}
	second := &fakeStrategy{signal: core.SignalRed, confirm: true}

	orch, instances, _ := newPortfolioFixture(t, first, second)

	candle := core.Candle{Index: "NIFTY", Timeframe: 60, Close: 23500, Complete: true, Ticks: 1}
	orch.OnBaseCandle(context.Background(), candle)

	require.NoError(t, orch.SquareOff(context.Background(), instances[0].ID()))
	require.Nil(t, instances[0].Position())
	require.NotNil(t, instances[1].Position())

	require.Error(t, orch.SquareOff(context.Background(), "nope"))
}

func TestDailyResetIsIdempotentWithinTheDay(t *testing.T) {
	orch, _, _ := newPortfolioFixture(t, &fakeStrategy{})

	now := time.Date(2025, 4, 7, 9, 15, 0, 0, exchange.IST)
	orch.DailyReset(now)
	orch.Shared().RecordEntry(now)
	require.Equal(t, 1, orch.Shared().DailyTrades())

	// Re-entering the boundary minute must not clear the counters.
	orch.DailyReset(now.Add(30 * time.Second))
	require.Equal(t, 1, orch.Shared().DailyTrades())

	orch.DailyReset(now.AddDate(0, 0, 1))
	require.Zero(t, orch.Shared().DailyTrades())
}

func TestStatusesSnapshotEveryInstance(t *testing.T) {
	first := &fakeStrategy{signal: core.SignalGreen, confirm: true}
	second := &fakeStrategy{signal: core.SignalRed, confirm: false}

	orch, _, _ := newPortfolioFixture(t, first, second)

	candle := core.Candle{Index: "NIFTY", Timeframe: 60, Close: 23500, Complete: true, Ticks: 1}
	orch.OnBaseCandle(context.Background(), candle)

	statuses := orch.Statuses()
	require.Len(t, statuses, 2)
	require.Equal(t, core.SignalGreen, statuses[0].Signal)
	require.NotNil(t, statuses[0].Position)
	require.Nil(t, statuses[1].Position, "confirmation gate held this one back")
}
