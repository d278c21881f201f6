package order

import (
	"testing"
	"time"

	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/stretchr/testify/require"
)

func TestFeedPublishesToSubscribers(t *testing.T) {
	feed := NewFeed()
	defer feed.Stop()

	received := make(chan core.Trade, 1)
	feed.Subscribe("alpha", func(trade core.Trade) {
		received <- trade
	}, false)
	feed.Start()

	feed.Publish(core.Trade{Strategy: "alpha", Status: core.TradeStatusOpen, EntryPrice: 150})

	select {
	case trade := <-received:
		require.Equal(t, "alpha", trade.Strategy)
		require.Equal(t, 150.0, trade.EntryPrice)
	case <-time.After(time.Second):
		require.Fail(t, "timed out waiting for trade event")
	}
}

func TestFeedOnlyEntriesFilter(t *testing.T) {
	feed := NewFeed()
	defer feed.Stop()

	entries := make(chan core.Trade, 2)
	feed.Subscribe("alpha", func(trade core.Trade) {
		entries <- trade
	}, true)
	feed.Start()

	feed.Publish(core.Trade{Strategy: "alpha", Status: core.TradeStatusOpen})
	feed.Publish(core.Trade{Strategy: "alpha", Status: core.TradeStatusClosed})

	select {
	case trade := <-entries:
		require.Equal(t, core.TradeStatusOpen, trade.Status)
	case <-time.After(time.Second):
		require.Fail(t, "timed out waiting for entry event")
	}

	select {
	case trade := <-entries:
		require.Fail(t, "unexpected event", "status %s", trade.Status)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFeedDropsWhenNobodyListens(t *testing.T) {
	feed := NewFeed()
	defer feed.Stop()

	// No subscription for this strategy; publish must not block.
	done := make(chan bool, 1)
	go func() {
		for i := 0; i < 1000; i++ {
			feed.Publish(core.Trade{Strategy: "ghost"})
		}
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "publish blocked without subscribers")
	}
}

func TestFeedStopDrainsBufferedEvents(t *testing.T) {
	feed := NewFeed()

	received := make(chan core.Trade, 10)
	feed.Subscribe("alpha", func(trade core.Trade) {
		received <- trade
	}, false)
	feed.Start()

	for i := 0; i < 5; i++ {
		feed.Publish(core.Trade{Strategy: "alpha", Qty: i})
	}
	feed.Stop()

	require.Len(t, received, 5, "events published before Stop must still be delivered")
}
