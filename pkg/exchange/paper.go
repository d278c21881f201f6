package exchange

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/kaviraj-dev/strikebot/pkg/logger"
)

const tickSize = 0.05

// PaperBroker simulates the option venue: it resolves synthetic SIM_
// contracts, prices them from the live index quote and fills every order
// instantly at the quoted premium.
type PaperBroker struct {
	feeder core.Feeder
	log    logger.Logger
	clock  core.Clock
	lastID int64
}

func NewPaperBroker(feeder core.Feeder, log logger.Logger) *PaperBroker {
	return &PaperBroker{feeder: feeder, log: log, clock: time.Now}
}

// SetClock overrides the wall clock, for tests.
func (p *PaperBroker) SetClock(clock core.Clock) { p.clock = clock }

// IndexLTP implements core.Feeder by delegating to the index feed.
func (p *PaperBroker) IndexLTP(ctx context.Context, index string) (float64, error) {
	return p.feeder.IndexLTP(ctx, index)
}

// OptionLTP prices a synthetic contract: intrinsic value plus a time
// value that decays linearly with distance from the money, snapped to
// the exchange tick.
func (p *PaperBroker) OptionLTP(ctx context.Context, securityID string) (float64, error) {
	index, strike, optionType, err := parseSimID(securityID)
	if err != nil {
		return 0, err
	}

	spot, err := p.feeder.IndexLTP(ctx, index)
	if err != nil {
		return 0, err
	}
	if spot <= 0 {
		return 0, core.ErrNoQuote
	}

	return SyntheticPremium(spot, strike, optionType), nil
}

// PlaceOrder fills unconditionally at the current simulated premium.
func (p *PaperBroker) PlaceOrder(ctx context.Context, securityID string, side core.SideType, qty int) (core.OrderResult, error) {
	if qty <= 0 {
		return core.OrderResult{}, fmt.Errorf("%w: qty %d", core.ErrOrderRejected, qty)
	}
	if _, _, _, err := parseSimID(securityID); err != nil {
		return core.OrderResult{}, err
	}

	id := atomic.AddInt64(&p.lastID, 1)
	p.log.WithFields(map[string]any{
		"security_id": securityID,
		"side":        side,
		"qty":         qty,
	}).Info("paper order filled")

	return core.OrderResult{OrderID: fmt.Sprintf("PAPER-%d", id), Confirmed: true}, nil
}

// ATMOptionSecurityID mints the synthetic contract id for a strike.
func (p *PaperBroker) ATMOptionSecurityID(_ context.Context, index string, strike int, opt core.OptionType, _ string) (string, error) {
	if _, err := GetInstrument(index); err != nil {
		return "", err
	}
	return fmt.Sprintf("SIM_%s_%d_%s", index, strike, opt), nil
}

// NearestExpiry falls back to the computed weekly expiry.
func (p *PaperBroker) NearestExpiry(_ context.Context, index string) (string, error) {
	inst, err := GetInstrument(index)
	if err != nil {
		return "", err
	}
	return inst.NextExpiry(p.clock()), nil
}

// SyntheticPremium models an option premium from spot and strike alone:
// intrinsic value plus up to 150 points of time value fading to zero at
// 500 points from the money. The result is snapped to the 0.05 tick and
// floored at one tick.
func SyntheticPremium(spot float64, strike int, opt core.OptionType) float64 {
	var intrinsic float64
	if opt == core.OptionTypeCall {
		intrinsic = math.Max(0, spot-float64(strike))
	} else {
		intrinsic = math.Max(0, float64(strike)-spot)
	}

	distance := math.Abs(spot - float64(strike))
	timeValue := 150 * math.Max(0, 1-distance/500)

	premium := math.Round((intrinsic+timeValue)/tickSize) * tickSize
	premium = math.Round(premium*100) / 100
	return math.Max(tickSize, premium)
}

func parseSimID(securityID string) (index string, strike int, opt core.OptionType, err error) {
	parts := strings.Split(securityID, "_")
	if len(parts) != 4 || parts[0] != "SIM" {
		return "", 0, "", fmt.Errorf("%w: security id %q", core.ErrContractUnavailable, securityID)
	}

	strike, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, "", fmt.Errorf("%w: bad strike in %q", core.ErrContractUnavailable, securityID)
	}

	switch core.OptionType(parts[3]) {
	case core.OptionTypeCall, core.OptionTypePut:
		opt = core.OptionType(parts[3])
	default:
		return "", 0, "", fmt.Errorf("%w: bad option type in %q", core.ErrContractUnavailable, securityID)
	}

	return parts[1], strike, opt, nil
}
