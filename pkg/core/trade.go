package core

import "time"

// TradeStatusType tracks the lifecycle of a persisted trade record.
type TradeStatusType string

const (
	TradeStatusOpen   TradeStatusType = "OPEN"
	TradeStatusClosed TradeStatusType = "CLOSED"
)

// Exit reasons recorded on closed trades.
const (
	ExitReasonDailyMaxLoss    = "Daily Max Loss"
	ExitReasonMaxLossPerTrade = "Max Loss Per Trade"
	ExitReasonTarget          = "Target Hit"
	ExitReasonTrailingStop    = "Trailing SL Hit"
	ExitReasonReversal        = "SuperTrend Reversal"
	ExitReasonSquareOff       = "Force Square-off"
)

// Trade is the persisted record of one round trip (or one open leg).
// Exactly one record exists per executed entry; the exit updates it in place.
type Trade struct {
	ID         int64           `db:"id" json:"id" gorm:"primaryKey,autoIncrement"`
	Strategy   string          `db:"strategy" json:"strategy"`
	Index      string          `db:"index" json:"index"`
	SecurityID string          `db:"security_id" json:"security_id"`
	OptionType OptionType      `db:"option_type" json:"option_type"`
	Strike     int             `db:"strike" json:"strike"`
	Expiry     string          `db:"expiry" json:"expiry"`
	Qty        int             `db:"qty" json:"qty"`
	Mode       Mode            `db:"mode" json:"mode"`
	EntryTime  time.Time       `db:"entry_time" json:"entry_time"`
	EntryPrice float64         `db:"entry_price" json:"entry_price"`
	ExitTime   time.Time       `db:"exit_time" json:"exit_time"`
	ExitPrice  float64         `db:"exit_price" json:"exit_price"`
	ExitReason string          `db:"exit_reason" json:"exit_reason"`
	Pnl        float64         `db:"pnl" json:"pnl"`
	Status     TradeStatusType `db:"status" json:"status"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// TradeFilter narrows the result set of Storage.Trades.
type TradeFilter func(trade Trade) bool

// TradeFilterStatus keeps trades in the given status.
func TradeFilterStatus(status TradeStatusType) TradeFilter {
	return func(trade Trade) bool {
		return trade.Status == status
	}
}

// TradeFilterStrategy keeps trades belonging to one strategy instance.
func TradeFilterStrategy(strategy string) TradeFilter {
	return func(trade Trade) bool {
		return trade.Strategy == strategy
	}
}

// TradeFilterSince keeps trades entered at or after the given time.
func TradeFilterSince(t time.Time) TradeFilter {
	return func(trade Trade) bool {
		return !trade.EntryTime.Before(t)
	}
}

// TradeStorage persists trade records and candle snapshots. Writes are
// best-effort from the engine's point of view; a failed write never blocks
// or reverses a ledger transition.
type TradeStorage interface {
	CreateTrade(trade *Trade) error
	UpdateTrade(trade *Trade) error
	Trades(filters ...TradeFilter) ([]*Trade, error)
	SaveCandle(candle Candle) error
}
