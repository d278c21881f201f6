package order

import (
	"sync"

	"github.com/kaviraj-dev/strikebot/pkg/core"
)

// FeedConsumer is a function type that processes trade events
type FeedConsumer func(trade core.Trade)

// DataFeed represents channels for trade data and errors
type DataFeed struct {
	Data chan core.Trade
	Err  chan error
}

// Subscription represents a consumer subscription to trade updates
type Subscription struct {
	onlyEntries bool
	consumer    FeedConsumer
}

// Feed fans confirmed trade events (entries and exits) out to background
// consumers such as the notifier and telemetry, keyed by strategy id.
type Feed struct {
	mu                      sync.RWMutex
	wg                      sync.WaitGroup
	TradeFeeds              map[string]*DataFeed
	SubscriptionsByStrategy map[string][]Subscription
}

// NewFeed creates a new trade feed manager
func NewFeed() *Feed {
	return &Feed{
		TradeFeeds:              make(map[string]*DataFeed),
		SubscriptionsByStrategy: make(map[string][]Subscription),
	}
}

// Subscribe registers a consumer to receive trade updates for a strategy
func (f *Feed) Subscribe(strategy string, consumer FeedConsumer, onlyEntries bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.TradeFeeds[strategy]; !ok {
		f.TradeFeeds[strategy] = &DataFeed{
			Data: make(chan core.Trade, 100), // Buffered channel to prevent blocking
			Err:  make(chan error, 100),
		}
	}

	f.SubscriptionsByStrategy[strategy] = append(f.SubscriptionsByStrategy[strategy], Subscription{
		onlyEntries: onlyEntries,
		consumer:    consumer,
	})
}

// Publish sends a trade update to the strategy's feed. The send never
// blocks the trading loop; when the buffer is full the event is dropped.
func (f *Feed) Publish(trade core.Trade) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if feed, ok := f.TradeFeeds[trade.Strategy]; ok {
		select {
		case feed.Data <- trade:
		default:
			// Buffer full; consumers are lagging and this event is lost.
		}
	}
}

// Start begins processing trade updates for all registered feeds
func (f *Feed) Start() {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for strategy, feed := range f.TradeFeeds {
		f.wg.Add(1)
		go f.processTradesForStrategy(strategy, feed)
	}
}

func (f *Feed) processTradesForStrategy(strategy string, feed *DataFeed) {
	defer f.wg.Done()
	for trade := range feed.Data {
		f.mu.RLock()
		subscriptions := f.SubscriptionsByStrategy[strategy]
		f.mu.RUnlock()

		for _, subscription := range subscriptions {
			if subscription.onlyEntries && trade.Status != core.TradeStatusOpen {
				continue
			}
			subscription.consumer(trade)
		}
	}
}

// Stop closes all feed channels and waits until the buffered events have
// been delivered, so no confirmed trade is lost on shutdown.
func (f *Feed) Stop() {
	f.mu.Lock()
	for strategy, feed := range f.TradeFeeds {
		close(feed.Data)
		close(feed.Err)
		delete(f.TradeFeeds, strategy)
	}
	f.mu.Unlock()

	f.wg.Wait()

	f.mu.Lock()
	f.SubscriptionsByStrategy = make(map[string][]Subscription)
	f.mu.Unlock()
}
