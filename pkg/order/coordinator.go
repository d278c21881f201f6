// Package order is the execution boundary: it resolves option contracts,
// routes orders to the venue and publishes confirmed trade events.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/kaviraj-dev/strikebot/pkg/exchange"
	"github.com/kaviraj-dev/strikebot/pkg/logger"
)

// Contract identifies one resolved option leg.
type Contract struct {
	Index      string
	SecurityID string
	Strike     int
	Expiry     string
	OptionType core.OptionType
	LotSize    int
}

// Coordinator talks to the venue. All ledger transitions happen strictly
// after a confirmed fill; an unconfirmed or failed order changes nothing.
type Coordinator struct {
	broker core.Broker
	log    logger.Logger
}

func NewCoordinator(broker core.Broker, log logger.Logger) *Coordinator {
	return &Coordinator{broker: broker, log: log}
}

// ResolveContract picks the at-the-money contract for a directional
// signal at the given spot price.
func (c *Coordinator) ResolveContract(ctx context.Context, index string, signal core.Signal, spot float64) (Contract, error) {
	inst, err := exchange.GetInstrument(index)
	if err != nil {
		return Contract{}, err
	}
	if signal.Direction() == 0 {
		return Contract{}, fmt.Errorf("%w: no directional signal", core.ErrContractUnavailable)
	}

	strike := inst.RoundToStrike(spot)
	optionType := signal.OptionType()

	expiry, err := c.broker.NearestExpiry(ctx, index)
	if err != nil {
		// The venue chain is unavailable; fall back to the computed
		// weekly expiry.
		c.log.WithError(err).Warn("expiry lookup failed, using computed expiry")
		expiry = inst.NextExpiry(time.Now())
	}

	securityID, err := c.broker.ATMOptionSecurityID(ctx, index, strike, optionType, expiry)
	if err != nil {
		return Contract{}, fmt.Errorf("resolve %s %d %s: %w", index, strike, optionType, err)
	}

	return Contract{
		Index:      index,
		SecurityID: securityID,
		Strike:     strike,
		Expiry:     expiry,
		OptionType: optionType,
		LotSize:    inst.LotSize,
	}, nil
}

// Quote returns the current premium for a contract. Zero or negative
// prices are reported as missing quotes, never as prices.
func (c *Coordinator) Quote(ctx context.Context, securityID string) (float64, error) {
	premium, err := c.broker.OptionLTP(ctx, securityID)
	if err != nil {
		return 0, err
	}
	if premium <= 0 {
		return 0, core.ErrNoQuote
	}
	return premium, nil
}

// Enter buys the contract and returns the confirmed fill premium.
func (c *Coordinator) Enter(ctx context.Context, contract Contract, qty int) (float64, string, error) {
	premium, err := c.broker.OptionLTP(ctx, contract.SecurityID)
	if err != nil {
		return 0, "", fmt.Errorf("entry quote %s: %w", contract.SecurityID, err)
	}
	if premium <= 0 {
		return 0, "", fmt.Errorf("entry quote %s: %w", contract.SecurityID, core.ErrNoQuote)
	}

	result, err := c.broker.PlaceOrder(ctx, contract.SecurityID, core.SideTypeBuy, qty)
	if err != nil {
		return 0, "", fmt.Errorf("entry order %s: %w", contract.SecurityID, err)
	}
	if !result.Confirmed {
		return 0, "", fmt.Errorf("entry order %s: %w", contract.SecurityID, core.ErrOrderUnconfirmed)
	}

	c.log.WithFields(map[string]any{
		"security_id": contract.SecurityID,
		"qty":         qty,
		"premium":     premium,
		"order_id":    result.OrderID,
	}).Info("entry filled")

	return premium, result.OrderID, nil
}

// Exit sells the position and returns the confirmed fill premium. On any
// failure the position must be left untouched by the caller and retried
// on the next cycle.
func (c *Coordinator) Exit(ctx context.Context, pos *core.Position) (float64, string, error) {
	premium, err := c.broker.OptionLTP(ctx, pos.SecurityID)
	if err != nil {
		return 0, "", fmt.Errorf("exit quote %s: %w", pos.SecurityID, err)
	}
	if premium <= 0 {
		return 0, "", fmt.Errorf("exit quote %s: %w", pos.SecurityID, core.ErrNoQuote)
	}

	result, err := c.broker.PlaceOrder(ctx, pos.SecurityID, core.SideTypeSell, pos.Qty)
	if err != nil {
		return 0, "", fmt.Errorf("exit order %s: %w", pos.SecurityID, err)
	}
	if !result.Confirmed {
		return 0, "", fmt.Errorf("exit order %s: %w", pos.SecurityID, core.ErrOrderUnconfirmed)
	}

	c.log.WithFields(map[string]any{
		"security_id": pos.SecurityID,
		"qty":         pos.Qty,
		"premium":     premium,
		"order_id":    result.OrderID,
	}).Info("exit filled")

	return premium, result.OrderID, nil
}
