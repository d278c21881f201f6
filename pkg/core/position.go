package core

import "time"

// Position is the in-memory open leg held by one strategy instance.
// At most one position exists per instance at any time.
type Position struct {
	Index      string
	SecurityID string
	OptionType OptionType
	Strike     int
	Expiry     string
	Qty        int
	Mode       Mode
	EntryPrice float64
	EntryTime  time.Time

	// TrailingStop is nil until the risk manager arms the initial stop.
	TrailingStop  *float64
	HighestProfit float64

	// ReconcilePending marks a position whose exit order outcome is
	// unknown (for example cancellation mid-flight). The engine surfaces
	// it in status and keeps retrying; it never closes it silently.
	ReconcilePending bool
}

// OpenPnl is the unrealized profit in premium points times quantity.
func (p Position) OpenPnl(ltp float64) float64 {
	return (ltp - p.EntryPrice) * float64(p.Qty)
}

// ProfitPoints is the unrealized profit per unit of premium.
func (p Position) ProfitPoints(ltp float64) float64 {
	return ltp - p.EntryPrice
}

// HeldFor reports how long the position has been open.
func (p Position) HeldFor(now time.Time) time.Duration {
	return now.Sub(p.EntryTime)
}
