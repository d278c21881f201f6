package portfolio

import (
	"context"
	"errors"
	"time"

	"github.com/kaviraj-dev/strikebot/pkg/config"
	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/kaviraj-dev/strikebot/pkg/exchange"
	"github.com/kaviraj-dev/strikebot/pkg/logger"
	"github.com/kaviraj-dev/strikebot/pkg/order"
	"github.com/kaviraj-dev/strikebot/pkg/risk"
	"github.com/kaviraj-dev/strikebot/pkg/strategy"
)

// TradeHook receives confirmed trade events. It must be fast and never
// block; heavy work belongs behind a channel.
type TradeHook func(trade core.Trade)

// Instance is one strategy's full decision state machine: indicators,
// entry gating, the single open position and its risk state.
type Instance struct {
	id       string
	index    string
	mode     core.Mode
	interval time.Duration

	strat    strategy.Strategy
	resolver *config.Resolver
	coord    *order.Coordinator
	log      logger.Logger

	pos   *core.Position
	trade core.Trade

	// lastSignal is the flip gate: entries require a signal different
	// from the one that opened (or closed) the previous trade. A
	// reversal exit clears it so the opposite side can enter at once.
	lastSignal core.Signal
	lastEntry  time.Time
	lastExit   time.Time

	onTrade TradeHook
	clock   core.Clock
}

func NewInstance(id, index string, mode core.Mode, intervalSeconds int,
	strat strategy.Strategy, resolver *config.Resolver, coord *order.Coordinator,
	log logger.Logger, onTrade TradeHook) *Instance {

	if onTrade == nil {
		onTrade = func(core.Trade) {}
	}
	return &Instance{
		id:       id,
		index:    index,
		mode:     mode,
		interval: time.Duration(intervalSeconds) * time.Second,
		strat:    strat,
		resolver: resolver,
		coord:    coord,
		log:      log.WithField("strategy", id),
		onTrade:  onTrade,
		clock:    time.Now,
	}
}

// SetClock overrides the wall clock, for tests.
func (i *Instance) SetClock(clock core.Clock) { i.clock = clock }

// SetTradeHook replaces the confirmed-trade callback. The engine uses it
// to route fills into the trade feed after instances are constructed.
func (i *Instance) SetTradeHook(hook TradeHook) {
	if hook == nil {
		hook = func(core.Trade) {}
	}
	i.onTrade = hook
}

// ID returns the instance identifier.
func (i *Instance) ID() string { return i.id }

// Index returns the traded index name.
func (i *Instance) Index() string { return i.index }

// Position returns the open position, or nil when flat.
func (i *Instance) Position() *core.Position { return i.pos }

// Signal returns the current directional signal.
func (i *Instance) Signal() core.Signal { return i.strat.Signal() }

// SupertrendValue returns the active band value for telemetry.
func (i *Instance) SupertrendValue() float64 { return i.strat.Value() }

// HTFDirection returns the higher-timeframe trend direction.
func (i *Instance) HTFDirection() int { return i.strat.HTFDirection() }

func (i *Instance) riskParams() risk.Params {
	return risk.Params{
		InitialStoploss: i.resolver.InitialStoploss(),
		TrailStart:      i.resolver.TrailStart(),
		TrailStep:       i.resolver.TrailStep(),
		TargetPoints:    i.resolver.TargetPoints(),
		MaxLossPerTrade: i.resolver.MaxLossPerTrade(),
		DailyMaxLoss:    i.resolver.Global().DailyMaxLoss,
		RiskPerTrade:    i.resolver.RiskPerTrade(),
		OrderQtyLots:    i.resolver.OrderQty(),
	}
}

// OnHTFCandle feeds a closed higher-timeframe candle to the filter trend.
func (i *Instance) OnHTFCandle(candle core.Candle) {
	i.strat.OnHTFCandle(candle)
}

// OnCandleClose runs the candle-close evaluation: indicator update, then
// strategic exits, then entry gating. Returns true when a position was
// closed.
func (i *Instance) OnCandleClose(ctx context.Context, candle core.Candle, shared *Shared) bool {
	i.strat.OnCandle(candle)
	now := i.clock()

	if i.pos != nil {
		if exited := i.evaluateCloseExits(ctx, candle, shared, now); exited {
			return true
		}
	}
	if i.pos != nil {
		return false
	}

	i.tryEnter(ctx, candle, shared, now)
	return false
}

func (i *Instance) evaluateCloseExits(ctx context.Context, candle core.Candle, shared *Shared, now time.Time) bool {
	params := i.riskParams()

	ltp, err := i.optionLTP(ctx)
	if err != nil {
		i.log.WithError(err).Warn("no exit quote on candle close")
		return false
	}

	if reason := risk.EvaluateCloseExit(i.pos, ltp, params); reason != "" {
		return i.exit(ctx, reason, shared) == nil
	}

	// Indicator reversal against the held side, suppressed until the
	// minimum hold has elapsed.
	signal := i.strat.Signal()
	if signal == core.SignalNone || signal == i.pos.OptionType.Signal() {
		return false
	}
	minHold := time.Duration(i.resolver.MinHold()) * time.Second
	if held := i.pos.HeldFor(now); minHold > 0 && held < minHold {
		i.log.Debugf("reversal suppressed, held %s of %s", held, minHold)
		return false
	}

	if err := i.exit(ctx, core.ExitReasonReversal, shared); err != nil {
		return false
	}
	// Allow the opposite side to enter immediately.
	i.lastSignal = core.SignalNone
	return true
}

// OnTick runs the protective exits against a fresh option quote. Returns
// true when the position was closed, so the caller can reset the open
// candle bucket.
func (i *Instance) OnTick(ctx context.Context, shared *Shared) bool {
	if i.pos == nil {
		return false
	}

	ltp, err := i.optionLTP(ctx)
	if err != nil {
		return false
	}

	reason := risk.EvaluateTickExit(i.pos, ltp, shared.DailyPnl(), i.riskParams())
	if reason == "" {
		return false
	}

	if reason == core.ExitReasonDailyMaxLoss {
		shared.TripBreaker()
		i.log.Warn("daily max loss breached, breaker tripped")
	}

	return i.exit(ctx, reason, shared) == nil
}

// SquareOff force-closes any open position, bypassing all gating.
func (i *Instance) SquareOff(ctx context.Context, shared *Shared) error {
	if i.pos == nil {
		return nil
	}
	return i.exit(ctx, core.ExitReasonSquareOff, shared)
}

func (i *Instance) optionLTP(ctx context.Context) (float64, error) {
	return i.coord.Quote(ctx, i.pos.SecurityID)
}

// exit sells the open position. On failure the position is left open and
// the next cycle retries; the ledger never transitions on an unconfirmed
// order.
func (i *Instance) exit(ctx context.Context, reason string, shared *Shared) error {
	premium, _, err := i.coord.Exit(ctx, i.pos)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			i.pos.ReconcilePending = true
			i.log.Error("exit order interrupted by shutdown, position needs reconciliation")
		} else {
			i.log.WithError(err).Error("exit order failed, retrying next cycle")
		}
		return err
	}

	now := i.clock()
	pnl := (premium - i.pos.EntryPrice) * float64(i.pos.Qty)

	i.trade.ExitTime = now
	i.trade.ExitPrice = premium
	i.trade.ExitReason = reason
	i.trade.Pnl = pnl
	i.trade.Status = core.TradeStatusClosed

	if shared.RecordExit(pnl, now, i.resolver.Global().DailyMaxLoss) {
		i.log.Warn("daily max loss breached on realized pnl, breaker tripped")
	}

	i.log.WithFields(map[string]any{
		"reason": reason,
		"pnl":    pnl,
		"exit":   premium,
		"entry":  i.pos.EntryPrice,
	}).Info("position closed")

	// The flip gate remembers the executed side until the opposite
	// signal shows up.
	i.lastSignal = i.pos.OptionType.Signal()
	i.lastExit = now
	i.pos = nil

	i.onTrade(i.trade)
	return nil
}

func (i *Instance) tryEnter(ctx context.Context, candle core.Candle, shared *Shared, now time.Time) {
	if !i.resolver.TradingEnabled() {
		if shared.ShouldLogPause(now) {
			i.log.Info("trading paused, skipping entries")
		}
		return
	}
	if shared.Breaker() {
		i.log.Debug("entry skipped: breaker tripped")
		return
	}
	if !i.lastExit.IsZero() && now.Sub(i.lastExit) < i.interval {
		i.log.Debug("entry skipped: post-exit cool-off")
		return
	}
	cooldown := time.Duration(i.resolver.Global().MinOrderCooldown) * time.Second
	if shared.InCooldown(now, cooldown) {
		i.log.Debug("entry skipped: global order cooldown")
		return
	}
	if !exchange.InEntryWindow(now) {
		i.log.Debug("entry skipped: outside entry window")
		return
	}
	if maxTrades := i.resolver.Global().MaxTradesPerDay; maxTrades > 0 && shared.DailyTrades() >= maxTrades {
		i.log.Debug("entry skipped: daily trade cap reached")
		return
	}
	gap := time.Duration(i.resolver.MinTradeGap()) * time.Second
	if gap > 0 && !i.lastEntry.IsZero() && now.Sub(i.lastEntry) < gap {
		i.log.Debug("entry skipped: min trade gap")
		return
	}

	signal := i.strat.Signal()
	if signal == core.SignalNone {
		return
	}

	if i.resolver.HTFFilterEnabled() && i.interval < htfGateThreshold {
		dir := i.strat.HTFDirection()
		if dir == 0 {
			i.log.Debug("entry skipped: HTF trend not established")
			return
		}
		if dir != signal.Direction() {
			i.log.Debugf("entry skipped: HTF direction %d against signal %s", dir, signal)
			return
		}
	}

	if i.lastSignal == signal {
		i.log.Debugf("entry skipped: signal %s already executed", signal)
		return
	}

	gates := strategy.Gates{
		MACDConfirmation: i.resolver.MACDConfirmation(),
		ADXThreshold:     i.resolver.ADXThreshold(),
	}
	if !i.strat.ConfirmEntry(signal, gates) {
		i.log.Debugf("entry skipped: %s confirmation failed", signal)
		return
	}

	i.enter(ctx, signal, candle.Close, shared, now)
}

const htfGateThreshold = 60 * time.Second

// enter resolves the ATM contract and buys it. A failed entry leaves no
// position and is not retried within the candle.
func (i *Instance) enter(ctx context.Context, signal core.Signal, spot float64, shared *Shared, now time.Time) {
	contract, err := i.coord.ResolveContract(ctx, i.index, signal, spot)
	if err != nil {
		i.log.WithError(err).Error("contract resolution failed")
		return
	}

	qty := risk.Qty(contract.LotSize, i.riskParams())

	premium, orderID, err := i.coord.Enter(ctx, contract, qty)
	if err != nil {
		i.log.WithError(err).Error("entry order failed")
		return
	}

	i.pos = &core.Position{
		Index:      i.index,
		SecurityID: contract.SecurityID,
		OptionType: contract.OptionType,
		Strike:     contract.Strike,
		Expiry:     contract.Expiry,
		Qty:        qty,
		Mode:       i.mode,
		EntryPrice: premium,
		EntryTime:  now,
	}
	i.trade = core.Trade{
		Strategy:   i.id,
		Index:      i.index,
		SecurityID: contract.SecurityID,
		OptionType: contract.OptionType,
		Strike:     contract.Strike,
		Expiry:     contract.Expiry,
		Qty:        qty,
		Mode:       i.mode,
		EntryTime:  now,
		EntryPrice: premium,
		Status:     core.TradeStatusOpen,
	}

	i.lastSignal = signal
	i.lastEntry = now
	shared.RecordEntry(now)

	i.log.WithFields(map[string]any{
		"signal":   signal,
		"security": contract.SecurityID,
		"qty":      qty,
		"premium":  premium,
		"order_id": orderID,
	}).Info("position opened")

	i.onTrade(i.trade)
}
