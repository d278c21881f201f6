package storage

import (
	"testing"
	"time"

	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *BuntStorage {
	t.Helper()
	st, err := FromMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func sampleTrade(strategy string, entry time.Time) *core.Trade {
	return &core.Trade{
		Strategy:   strategy,
		Index:      "NIFTY",
		SecurityID: "SIM_NIFTY_23500_CE",
		OptionType: core.OptionTypeCall,
		Strike:     23500,
		Expiry:     "2025-04-10",
		Qty:        75,
		Mode:       core.ModePaper,
		EntryTime:  entry,
		EntryPrice: 150,
		Status:     core.TradeStatusOpen,
	}
}

func TestCreateAndFetchTrades(t *testing.T) {
	st := newTestStorage(t)
	now := time.Now()

	first := sampleTrade("alpha", now)
	second := sampleTrade("beta", now)

	require.NoError(t, st.CreateTrade(first))
	require.NoError(t, st.CreateTrade(second))
	require.NotZero(t, first.ID)
	require.NotEqual(t, first.ID, second.ID)

	trades, err := st.Trades()
	require.NoError(t, err)
	require.Len(t, trades, 2)
}

func TestUpdateTradeClosesRoundTrip(t *testing.T) {
	st := newTestStorage(t)
	now := time.Now()

	trade := sampleTrade("alpha", now)
	require.NoError(t, st.CreateTrade(trade))

	trade.ExitTime = now.Add(5 * time.Minute)
	trade.ExitPrice = 165
	trade.ExitReason = core.ExitReasonTarget
	trade.Pnl = (165 - 150) * 75
	trade.Status = core.TradeStatusClosed
	require.NoError(t, st.UpdateTrade(trade))

	trades, err := st.Trades(core.TradeFilterStatus(core.TradeStatusClosed))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	require.Equal(t, core.ExitReasonTarget, trades[0].ExitReason)
	require.Equal(t, 1125.0, trades[0].Pnl)
}

func TestUpdateUnknownTradeFails(t *testing.T) {
	st := newTestStorage(t)

	trade := sampleTrade("alpha", time.Now())
	trade.ID = 999
	require.Error(t, st.UpdateTrade(trade))
}

func TestTradeFilters(t *testing.T) {
	st := newTestStorage(t)
	now := time.Now()

	require.NoError(t, st.CreateTrade(sampleTrade("alpha", now.Add(-2*time.Hour))))
	require.NoError(t, st.CreateTrade(sampleTrade("alpha", now)))
	require.NoError(t, st.CreateTrade(sampleTrade("beta", now)))

	byStrategy, err := st.Trades(core.TradeFilterStrategy("alpha"))
	require.NoError(t, err)
	require.Len(t, byStrategy, 2)

	recent, err := st.Trades(
		core.TradeFilterStrategy("alpha"),
		core.TradeFilterSince(now.Add(-time.Hour)),
	)
	require.NoError(t, err)
	require.Len(t, recent, 1)
}

func TestSaveCandleKeepsLatestPerFeed(t *testing.T) {
	st := newTestStorage(t)

	c := core.Candle{Index: "NIFTY", Timeframe: 60, Close: 23500, Ticks: 10, Complete: true}
	require.NoError(t, st.SaveCandle(c))

	c.Close = 23550
	require.NoError(t, st.SaveCandle(c))

	// Candle snapshots must not leak into the trade listing.
	trades, err := st.Trades()
	require.NoError(t, err)
	require.Empty(t, trades)
}
