// Package engine runs the trading loop. The loop is the sole mutator of
// trading state: quote polling, candle aggregation, portfolio evaluation
// and configuration patches all execute on it, so the decision path needs
// no locking. External callers talk to the loop through commands and read
// state through telemetry snapshots.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"github.com/kaviraj-dev/strikebot/pkg/candle"
	"github.com/kaviraj-dev/strikebot/pkg/config"
	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/kaviraj-dev/strikebot/pkg/exchange"
	"github.com/kaviraj-dev/strikebot/pkg/logger"
	"github.com/kaviraj-dev/strikebot/pkg/order"
	"github.com/kaviraj-dev/strikebot/pkg/portfolio"
)

const defaultPollInterval = time.Second

type Engine struct {
	index   string
	trading *config.Trading

	orch      *portfolio.Orchestrator
	agg       *candle.Aggregator
	candles   *candle.FeedSubscription
	tradeFeed *order.Feed
	feeder    core.Feeder
	storage   core.TradeStorage
	notifier  core.Notifier
	log       logger.Logger

	pollInterval   time.Duration
	enforceSession bool
	retry          *backoff.Backoff

	commands chan func(ctx context.Context)
	quit     chan struct{}
	finished chan struct{}
	quitOnce sync.Once

	mu       sync.RWMutex
	simNow   time.Time
	snapshot Telemetry
	watchers []chan Telemetry

	tradeMu      sync.Mutex
	openTradeIDs map[string]int64
	candleQueue  chan core.Candle

	squaredOffDay string
	loopCtx       context.Context
}

type Option func(*Engine)

// WithStorage enables trade and candle persistence.
func WithStorage(storage core.TradeStorage) Option {
	return func(e *Engine) { e.storage = storage }
}

// WithNotifier registers a notifier for trade events and alerts.
func WithNotifier(notifier core.Notifier) Option {
	return func(e *Engine) { e.notifier = notifier }
}

// WithPollInterval overrides the quote polling cadence, for tests.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) { e.pollInterval = d }
}

// WithoutSessionGuard disables the market-hours gate so simulated feeds
// can run at any wall-clock time.
func WithoutSessionGuard() Option {
	return func(e *Engine) { e.enforceSession = false }
}

func New(trading *config.Trading, orch *portfolio.Orchestrator, feeder core.Feeder,
	log logger.Logger, opts ...Option) *Engine {

	e := &Engine{
		index:          trading.Index,
		trading:        trading,
		orch:           orch,
		feeder:         feeder,
		log:            log,
		pollInterval:   defaultPollInterval,
		enforceSession: true,
		retry:          &backoff.Backoff{Min: 500 * time.Millisecond, Max: 5 * time.Second},
		commands:       make(chan func(ctx context.Context), 16),
		quit:           make(chan struct{}),
		finished:       make(chan struct{}),
		openTradeIDs:   make(map[string]int64),
		loopCtx:        context.Background(),
	}
	e.agg = candle.NewAggregator(trading.Index, trading.CandleInterval, config.HTFTimeframe)
	e.candles = candle.NewFeedSubscription()
	e.tradeFeed = order.NewFeed()

	for _, opt := range opts {
		opt(e)
	}

	if e.storage != nil {
		e.candleQueue = make(chan core.Candle, 64)
		go e.candleWorker()
	}

	e.candles.Subscribe(trading.Index, trading.CandleInterval, e.onBaseCandle, true)
	if e.agg.HTFActive() {
		e.candles.Subscribe(trading.Index, config.HTFTimeframe, e.onHTFCandle, true)
	}

	for _, inst := range orch.Instances() {
		inst.SetClock(e.now)
		inst.SetTradeHook(e.tradeFeed.Publish)
		e.tradeFeed.Subscribe(inst.ID(), e.persistTrade, false)
		if e.notifier != nil {
			e.tradeFeed.Subscribe(inst.ID(), e.notifier.OnTrade, false)
		}
	}

	return e
}

// Orchestrator exposes the managed portfolio, mainly for wiring and tests.
func (e *Engine) Orchestrator() *portfolio.Orchestrator { return e.orch }

// AttachNotifier registers a notifier built after the engine, such as the
// telegram bot that needs the engine as its controller. Must be called
// before Start.
func (e *Engine) AttachNotifier(n core.Notifier) {
	e.notifier = n
	for _, inst := range e.orch.Instances() {
		e.tradeFeed.Subscribe(inst.ID(), n.OnTrade, false)
	}
}

// Clock returns the engine's time source. It follows the recorded
// timestamps during a replay, so venue components that depend on the
// date, such as expiry resolution, must share it.
func (e *Engine) Clock() core.Clock { return e.now }

func (e *Engine) now() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.simNow.IsZero() {
		return e.simNow
	}
	return time.Now()
}

func (e *Engine) setSimNow(t time.Time) {
	e.mu.Lock()
	e.simNow = t
	e.mu.Unlock()
}

// Start runs the loop until the context is cancelled or Stop is called.
// Any position still open on the way out is force-closed.
func (e *Engine) Start(ctx context.Context) error {
	e.loopCtx = ctx
	e.tradeFeed.Start()
	defer e.tradeFeed.Stop()
	defer close(e.finished)

	if n, ok := e.notifier.(core.NotifierWithStart); ok {
		n.Start()
	}

	e.log.WithFields(map[string]any{
		"index":    e.index,
		"interval": e.trading.CandleInterval,
		"mode":     e.trading.Mode,
		"feeds":    e.candles.Keys(),
	}).Info("trading loop started")

	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.shutdown()
			return ctx.Err()
		case <-e.quit:
			e.shutdown()
			return nil
		case cmd := <-e.commands:
			cmd(ctx)
		case <-ticker.C:
			e.cycle(ctx)
		}
	}
}

// Stop asks the loop to finish and waits for it.
func (e *Engine) Stop() {
	e.quitOnce.Do(func() { close(e.quit) })
	<-e.finished
}

func (e *Engine) shutdown() {
	if e.orch.OpenPositions() > 0 {
		e.log.Warn("shutting down with open positions, forcing square-off")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		e.orch.SquareOffAll(ctx)
	}
	e.log.Info("trading loop stopped")
}

// cycle is one poll iteration: session housekeeping, one quote, one pass
// through the aggregator and the portfolio.
func (e *Engine) cycle(ctx context.Context) {
	now := e.now()
	e.orch.DailyReset(now)

	if e.enforceSession {
		e.sessionSquareOff(ctx, now)
		if !exchange.IsMarketOpen(now) {
			return
		}
	}

	price, err := e.feeder.IndexLTP(ctx, e.index)
	if err != nil {
		wait := e.retry.Duration()
		e.log.WithError(err).Warnf("quote poll failed, backing off %s", wait)
		time.Sleep(wait)
		return
	}
	e.retry.Reset()

	e.processTick(ctx, core.Tick{Index: e.index, Price: price, Time: now})
	e.publishTelemetry(now, price)
}

func (e *Engine) sessionSquareOff(ctx context.Context, now time.Time) {
	day := exchange.TradingDay(now)
	if !exchange.IsSquareOffTime(now) || e.squaredOffDay == day {
		return
	}
	e.squaredOffDay = day
	if e.orch.OpenPositions() > 0 {
		e.log.Info("square-off window reached, flattening all positions")
		e.orch.SquareOffAll(ctx)
	}
}

func (e *Engine) processTick(ctx context.Context, tick core.Tick) {
	e.loopCtx = ctx
	for _, c := range e.agg.Update(tick) {
		e.candles.Publish(c)
	}
	for _, c := range e.agg.Sweep(tick.Time) {
		e.candles.Publish(c)
	}
	if e.orch.OnTick(ctx) {
		// The exit consumed this candle's decision; drop the partial
		// bucket so the same window cannot also fire a close decision.
		e.agg.ResetBase()
	}
}

func (e *Engine) onBaseCandle(c core.Candle) {
	e.saveCandle(c)
	if e.orch.OnBaseCandle(e.loopCtx, c) {
		e.agg.ResetBase()
	}
}

func (e *Engine) onHTFCandle(c core.Candle) {
	e.saveCandle(c)
	e.orch.OnHTFCandle(c)
}

// Replay drives the loop from a recorded tick session instead of the wall
// clock. Candle windows, session boundaries and hold timers all follow the
// recorded timestamps.
func (e *Engine) Replay(ctx context.Context, feed *exchange.ReplayFeed) error {
	e.loopCtx = ctx
	e.tradeFeed.Start()
	defer e.tradeFeed.Stop()

	e.log.Infof("replaying %d recorded ticks on %s", feed.Len(), e.index)

	var last core.Tick
	for {
		tick, ok := feed.Next()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		e.setSimNow(tick.Time)
		e.orch.DailyReset(tick.Time)
		if e.enforceSession {
			e.sessionSquareOff(ctx, tick.Time)
		}

		e.processTick(ctx, tick)
		e.publishTelemetry(tick.Time, tick.Price)
		last = tick
	}

	// Close the final window and flatten whatever is still open.
	horizon := last.Time.Add(time.Duration(e.trading.CandleInterval) * time.Second)
	e.setSimNow(horizon)
	for _, c := range e.agg.Sweep(horizon) {
		e.candles.Publish(c)
	}
	e.orch.SquareOffAll(ctx)
	e.publishTelemetry(horizon, last.Price)
	return nil
}

// do runs fn on the loop goroutine and waits for it. Valid only while the
// loop is running.
func (e *Engine) do(fn func(ctx context.Context)) {
	done := make(chan struct{})
	select {
	case e.commands <- func(ctx context.Context) {
		fn(ctx)
		close(done)
	}:
	case <-e.finished:
		return
	}
	select {
	case <-done:
	case <-e.finished:
	}
}

// SquareOff force-closes every open position.
func (e *Engine) SquareOff() {
	e.do(func(ctx context.Context) { e.orch.SquareOffAll(ctx) })
}

// SquareOffStrategy force-closes one strategy instance's position.
func (e *Engine) SquareOffStrategy(id string) error {
	var err error
	e.do(func(ctx context.Context) { err = e.orch.SquareOff(ctx, id) })
	return err
}

// UpdateConfig applies a partial configuration patch on the loop and
// returns the accepted field names.
func (e *Engine) UpdateConfig(patch map[string]any) []string {
	var accepted []string
	e.do(func(context.Context) {
		accepted = e.trading.ApplyPatch(patch)
		e.log.WithField("fields", accepted).Info("configuration updated")
	})
	return accepted
}
