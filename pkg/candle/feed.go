package candle

import (
	"fmt"
	"sync"

	"github.com/StudioSol/set"
	"github.com/kaviraj-dev/strikebot/pkg/core"
)

// Consumer is a function that consumes closed candles.
type Consumer func(core.Candle)

type subscription struct {
	onCloseOnly bool
	consumer    Consumer
}

// FeedSubscription fans closed candles out to registered consumers,
// keyed by index and timeframe. Registration order is preserved so
// strategy instances always observe candles in a stable order.
type FeedSubscription struct {
	feeds         *set.LinkedHashSetString
	subscriptions map[string][]subscription
	mu            sync.RWMutex
}

func NewFeedSubscription() *FeedSubscription {
	return &FeedSubscription{
		feeds:         set.NewLinkedHashSetString(),
		subscriptions: make(map[string][]subscription),
	}
}

func feedKey(index string, timeframe int) string {
	return fmt.Sprintf("%s--%d", index, timeframe)
}

// Subscribe registers a consumer for one index and timeframe.
func (f *FeedSubscription) Subscribe(index string, timeframe int, consumer Consumer, onCloseOnly bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := feedKey(index, timeframe)
	f.feeds.Add(key)
	f.subscriptions[key] = append(f.subscriptions[key], subscription{
		onCloseOnly: onCloseOnly,
		consumer:    consumer,
	})
}

// Publish delivers a candle synchronously to every matching consumer in
// registration order.
func (f *FeedSubscription) Publish(candle core.Candle) {
	f.mu.RLock()
	subs := f.subscriptions[feedKey(candle.Index, candle.Timeframe)]
	f.mu.RUnlock()

	for _, sub := range subs {
		if sub.onCloseOnly && !candle.Complete {
			continue
		}
		sub.consumer(candle)
	}
}

// Keys returns the registered feed keys in subscription order.
func (f *FeedSubscription) Keys() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	keys := make([]string, 0, f.feeds.Length())
	for key := range f.feeds.Iter() {
		keys = append(keys, key)
	}
	return keys
}
