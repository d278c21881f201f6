package order

import (
	"context"
	"errors"
	"testing"

	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/kaviraj-dev/strikebot/pkg/logger"
	"github.com/stretchr/testify/require"
)

type stubBroker struct {
	price        float64
	quoteErr     error
	placeErr     error
	unconfirmed  bool
	expiryErr    error
	placedOrders []core.SideType
}

func (s *stubBroker) IndexLTP(context.Context, string) (float64, error) {
	return 23500, nil
}

func (s *stubBroker) OptionLTP(context.Context, string) (float64, error) {
	if s.quoteErr != nil {
		return 0, s.quoteErr
	}
	return s.price, nil
}

func (s *stubBroker) PlaceOrder(_ context.Context, _ string, side core.SideType, _ int) (core.OrderResult, error) {
	if s.placeErr != nil {
		return core.OrderResult{}, s.placeErr
	}
	s.placedOrders = append(s.placedOrders, side)
	return core.OrderResult{OrderID: "ORD-1", Confirmed: !s.unconfirmed}, nil
}

func (s *stubBroker) ATMOptionSecurityID(_ context.Context, index string, strike int, opt core.OptionType, _ string) (string, error) {
	return "SIM_NIFTY_23500_CE", nil
}

func (s *stubBroker) NearestExpiry(context.Context, string) (string, error) {
	if s.expiryErr != nil {
		return "", s.expiryErr
	}
	return "2025-04-10", nil
}

func TestResolveContractPicksATMStrike(t *testing.T) {
	broker := &stubBroker{price: 150}
	coord := NewCoordinator(broker, logger.Nop())

	contract, err := coord.ResolveContract(context.Background(), "NIFTY", core.SignalGreen, 23512)
	require.NoError(t, err)
	require.Equal(t, 23500, contract.Strike)
	require.Equal(t, core.OptionTypeCall, contract.OptionType)
	require.Equal(t, "2025-04-10", contract.Expiry)
	require.Equal(t, 75, contract.LotSize)

	contract, err = coord.ResolveContract(context.Background(), "NIFTY", core.SignalRed, 23530)
	require.NoError(t, err)
	require.Equal(t, 23550, contract.Strike)
	require.Equal(t, core.OptionTypePut, contract.OptionType)
}

func TestResolveContractRequiresSignal(t *testing.T) {
	coord := NewCoordinator(&stubBroker{price: 150}, logger.Nop())

	_, err := coord.ResolveContract(context.Background(), "NIFTY", core.SignalNone, 23500)
	require.ErrorIs(t, err, core.ErrContractUnavailable)
}

func TestResolveContractFallsBackToComputedExpiry(t *testing.T) {
	broker := &stubBroker{price: 150, expiryErr: errors.New("chain down")}
	coord := NewCoordinator(broker, logger.Nop())

	contract, err := coord.ResolveContract(context.Background(), "NIFTY", core.SignalGreen, 23500)
	require.NoError(t, err)
	require.NotEmpty(t, contract.Expiry)
}

func TestEnterRequiresConfirmedFill(t *testing.T) {
	ctx := context.Background()
	contract := Contract{Index: "NIFTY", SecurityID: "SIM_NIFTY_23500_CE", LotSize: 75}

	broker := &stubBroker{price: 150}
	coord := NewCoordinator(broker, logger.Nop())
	premium, orderID, err := coord.Enter(ctx, contract, 75)
	require.NoError(t, err)
	require.Equal(t, 150.0, premium)
	require.Equal(t, "ORD-1", orderID)
	require.Equal(t, []core.SideType{core.SideTypeBuy}, broker.placedOrders)

	broker = &stubBroker{price: 150, unconfirmed: true}
	coord = NewCoordinator(broker, logger.Nop())
	_, _, err = coord.Enter(ctx, contract, 75)
	require.ErrorIs(t, err, core.ErrOrderUnconfirmed)

	broker = &stubBroker{quoteErr: core.ErrNoQuote}
	coord = NewCoordinator(broker, logger.Nop())
	_, _, err = coord.Enter(ctx, contract, 75)
	require.ErrorIs(t, err, core.ErrNoQuote)
}

func TestExitFailuresLeaveOrderUnplaced(t *testing.T) {
	ctx := context.Background()
	pos := &core.Position{SecurityID: "SIM_NIFTY_23500_CE", Qty: 75, EntryPrice: 150}

	broker := &stubBroker{price: 165}
	coord := NewCoordinator(broker, logger.Nop())
	premium, _, err := coord.Exit(ctx, pos)
	require.NoError(t, err)
	require.Equal(t, 165.0, premium)
	require.Equal(t, []core.SideType{core.SideTypeSell}, broker.placedOrders)

	broker = &stubBroker{price: 165, placeErr: core.ErrOrderRejected}
	coord = NewCoordinator(broker, logger.Nop())
	_, _, err = coord.Exit(ctx, pos)
	require.ErrorIs(t, err, core.ErrOrderRejected)
	require.Empty(t, broker.placedOrders)
}
