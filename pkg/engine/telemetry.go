package engine

import (
	"time"

	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/kaviraj-dev/strikebot/pkg/exchange"
	"github.com/kaviraj-dev/strikebot/pkg/portfolio"
)

// Telemetry is one observable snapshot of the whole engine, published
// once per poll cycle.
type Telemetry struct {
	Time          time.Time
	Index         string
	Spot          float64
	MarketOpen    bool
	EntryWindow   bool
	Breaker       bool
	DailyPnl      float64
	MaxDrawdown   float64
	DailyTrades   int
	OpenPositions int
	Statuses      []portfolio.Status
}

// DaySummary aggregates the current trading day's closed trades.
type DaySummary struct {
	Day         string
	Trades      int
	Wins        int
	Losses      int
	Pnl         float64
	MaxDrawdown float64
	ByReason    map[string]int
	Breaker     bool
}

// Status returns the latest telemetry snapshot. Safe from any goroutine.
func (e *Engine) Status() Telemetry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot
}

// Position returns a copy of one instance's open position, or nil.
func (e *Engine) Position(id string) *core.Position {
	snap := e.Status()
	for _, s := range snap.Statuses {
		if s.ID == id {
			return s.Position
		}
	}
	return nil
}

// Watch returns a channel of telemetry snapshots. Slow consumers miss
// snapshots rather than stalling the loop.
func (e *Engine) Watch() <-chan Telemetry {
	ch := make(chan Telemetry, 8)
	e.mu.Lock()
	e.watchers = append(e.watchers, ch)
	e.mu.Unlock()
	return ch
}

func (e *Engine) publishTelemetry(now time.Time, spot float64) {
	statuses := e.orch.Statuses()
	// Positions are copied so readers never share memory with the loop.
	for i := range statuses {
		if p := statuses[i].Position; p != nil {
			cp := *p
			statuses[i].Position = &cp
		}
	}

	snap := Telemetry{
		Time:          now,
		Index:         e.index,
		Spot:          spot,
		MarketOpen:    exchange.IsMarketOpen(now),
		EntryWindow:   exchange.InEntryWindow(now),
		Breaker:       e.orch.Shared().Breaker(),
		DailyPnl:      e.orch.Shared().DailyPnl(),
		MaxDrawdown:   e.orch.Shared().MaxDrawdown(),
		DailyTrades:   e.orch.Shared().DailyTrades(),
		OpenPositions: e.orch.OpenPositions(),
		Statuses:      statuses,
	}

	e.mu.Lock()
	tripped := snap.Breaker && !e.snapshot.Breaker
	e.snapshot = snap
	watchers := e.watchers
	e.mu.Unlock()

	if tripped && e.notifier != nil {
		e.notifier.OnError(core.ErrBreakerTripped)
	}

	for _, ch := range watchers {
		select {
		case ch <- snap:
		default:
		}
	}
}

// DailySummary reports the current day's realized results. Without
// storage it falls back to the in-memory counters.
func (e *Engine) DailySummary() (DaySummary, error) {
	now := e.now()
	out := DaySummary{
		Day:      exchange.TradingDay(now),
		ByReason: make(map[string]int),
		Breaker:  e.orch.Shared().Breaker(),
	}

	if e.storage == nil {
		out.Pnl = e.orch.Shared().DailyPnl()
		out.MaxDrawdown = e.orch.Shared().MaxDrawdown()
		out.Trades = e.orch.Shared().DailyTrades()
		return out, nil
	}

	ist := now.In(exchange.IST)
	dayStart := time.Date(ist.Year(), ist.Month(), ist.Day(), 0, 0, 0, 0, exchange.IST)

	trades, err := e.storage.Trades(
		core.TradeFilterStatus(core.TradeStatusClosed),
		core.TradeFilterSince(dayStart),
	)
	if err != nil {
		return out, err
	}

	for _, trade := range trades {
		out.Trades++
		out.Pnl += trade.Pnl
		if out.Pnl < out.MaxDrawdown {
			out.MaxDrawdown = out.Pnl
		}
		if trade.Pnl > 0 {
			out.Wins++
		} else {
			out.Losses++
		}
		out.ByReason[trade.ExitReason]++
	}
	return out, nil
}
