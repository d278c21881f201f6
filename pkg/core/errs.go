package core

import "errors"

var (
	// ErrNoQuote is returned when the venue has no usable price this tick.
	ErrNoQuote = errors.New("no quote available")

	// ErrOrderRejected is returned when the venue refuses an order.
	ErrOrderRejected = errors.New("order rejected")

	// ErrOrderUnconfirmed is returned when an order was sent but the venue
	// never acknowledged the fill.
	ErrOrderUnconfirmed = errors.New("order not confirmed")

	// ErrContractUnavailable is returned when no tradable option contract
	// can be resolved for the requested strike and expiry.
	ErrContractUnavailable = errors.New("option contract unavailable")

	// ErrInvalidConfig is returned for out-of-range configuration values.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrBreakerTripped blocks entries after the daily max loss is hit.
	ErrBreakerTripped = errors.New("daily loss breaker tripped")
)
