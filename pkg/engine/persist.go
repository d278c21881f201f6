package engine

import "github.com/kaviraj-dev/strikebot/pkg/core"

// persistTrade writes confirmed fills behind the trade feed, off the
// decision path. One record per round trip: the entry creates it, the
// exit updates it in place. Each instance holds at most one open
// position, so the open record is keyed by strategy id.
func (e *Engine) persistTrade(trade core.Trade) {
	if e.storage == nil {
		return
	}

	switch trade.Status {
	case core.TradeStatusOpen:
		if err := e.storage.CreateTrade(&trade); err != nil {
			e.log.WithField("strategy", trade.Strategy).WithError(err).Error("trade persist failed")
			return
		}
		e.tradeMu.Lock()
		e.openTradeIDs[trade.Strategy] = trade.ID
		e.tradeMu.Unlock()

	case core.TradeStatusClosed:
		e.tradeMu.Lock()
		id, ok := e.openTradeIDs[trade.Strategy]
		delete(e.openTradeIDs, trade.Strategy)
		e.tradeMu.Unlock()

		if !ok {
			// The entry record was lost (persist failure or restart);
			// keep the round trip by writing a closed record directly.
			e.log.WithField("strategy", trade.Strategy).Warn("no open trade record, creating closed record")
			if err := e.storage.CreateTrade(&trade); err != nil {
				e.log.WithError(err).Error("trade persist failed")
			}
			return
		}

		trade.ID = id
		if err := e.storage.UpdateTrade(&trade); err != nil {
			e.log.WithField("strategy", trade.Strategy).WithError(err).Error("trade update failed")
		}
	}
}

// saveCandle queues a closed candle for the snapshot worker. The send
// never blocks the loop; when the buffer is full the snapshot is skipped.
func (e *Engine) saveCandle(c core.Candle) {
	if e.candleQueue == nil {
		return
	}
	select {
	case e.candleQueue <- c:
	default:
	}
}

// candleWorker drains candle snapshots into storage off the decision
// path. Best effort; a failed write is logged and forgotten.
func (e *Engine) candleWorker() {
	for c := range e.candleQueue {
		if err := e.storage.SaveCandle(c); err != nil {
			e.log.WithError(err).Warn("candle snapshot failed")
		}
	}
}
