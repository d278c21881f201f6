package core

import (
	"context"
	"time"
)

// SideType represents the direction of an order (BUY or SELL)
type SideType string

// OptionType is the option leg traded against the index signal
type OptionType string

// Mode selects between simulated and real order routing
type Mode string

// Signal is the qualitative directional output of an indicator
type Signal string

const (
	SideTypeBuy  SideType = "BUY"
	SideTypeSell SideType = "SELL"
)

const (
	OptionTypeCall OptionType = "CE"
	OptionTypePut  OptionType = "PE"
)

const (
	ModePaper Mode = "paper"
	ModeLive  Mode = "live"
)

const (
	SignalNone  Signal = ""
	SignalGreen Signal = "GREEN"
	SignalRed   Signal = "RED"
)

// Direction returns +1 for a bullish signal, -1 for bearish, 0 for none.
func (s Signal) Direction() int {
	switch s {
	case SignalGreen:
		return 1
	case SignalRed:
		return -1
	}
	return 0
}

// OptionType maps a signal to the option leg bought on entry.
func (s Signal) OptionType() OptionType {
	if s == SignalRed {
		return OptionTypePut
	}
	return OptionTypeCall
}

// Signal returns the entry signal that opened a position of this type.
func (o OptionType) Signal() Signal {
	if o == OptionTypePut {
		return SignalRed
	}
	return SignalGreen
}

// OrderResult is the venue acknowledgement for a placed order.
// A ledger transition is only legal when Confirmed is true.
type OrderResult struct {
	OrderID   string
	Confirmed bool
}

// Feeder provides market quotes. A zero or negative price, or any error,
// means "no data this tick" and must never be treated as a price.
type Feeder interface {
	IndexLTP(ctx context.Context, index string) (float64, error)
	OptionLTP(ctx context.Context, securityID string) (float64, error)
}

// Broker is the execution venue boundary: quotes, contract resolution
// and order placement. All calls may fail or report "unavailable".
type Broker interface {
	Feeder
	PlaceOrder(ctx context.Context, securityID string, side SideType, qty int) (OrderResult, error)
	ATMOptionSecurityID(ctx context.Context, index string, strike int, opt OptionType, expiry string) (string, error)
	NearestExpiry(ctx context.Context, index string) (string, error)
}

// Notifier receives user-facing trading events.
type Notifier interface {
	Notify(message string)
	OnTrade(trade Trade)
	OnError(err error)
}

// NotifierWithStart is a notifier that runs its own receive loop.
type NotifierWithStart interface {
	Notifier
	Start()
}

// Clock abstracts wall time so the decision loop can be driven in tests.
type Clock func() time.Time
