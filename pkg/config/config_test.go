package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/stretchr/testify/require"
)

func TestDefaultTradingIsValid(t *testing.T) {
	trading := DefaultTrading()
	require.NoError(t, trading.Validate())
	require.Equal(t, "NIFTY", trading.Index)
	require.Equal(t, core.ModePaper, trading.Mode)
	require.Equal(t, 60, trading.CandleInterval)
}

func TestValidateRejectsBadTimeframe(t *testing.T) {
	trading := DefaultTrading()
	trading.CandleInterval = 42
	require.ErrorIs(t, trading.Validate(), core.ErrInvalidConfig)
}

func TestValidateClampsOrderQty(t *testing.T) {
	trading := DefaultTrading()
	trading.OrderQty = 50
	require.NoError(t, trading.Validate())
	require.Equal(t, MaxOrderQtyLots, trading.OrderQty)

	trading.OrderQty = 0
	require.NoError(t, trading.Validate())
	require.Equal(t, MinOrderQtyLots, trading.OrderQty)
}

func TestApplyPatchReportsAcceptedFields(t *testing.T) {
	trading := DefaultTrading()

	accepted := trading.ApplyPatch(map[string]any{
		"trading_enabled":    false,
		"target_points":      "25",
		"order_qty":          99,
		"candle_interval":    42,
		"trail_step":         -1,
		"not_a_real_field":   true,
		"max_trades_per_day": 5,
	})

	require.ElementsMatch(t,
		[]string{"trading_enabled", "target_points", "order_qty", "max_trades_per_day"},
		accepted)
	require.False(t, trading.TradingEnabled)
	require.InDelta(t, 25.0, trading.TargetPoints, 1e-9)
	require.Equal(t, MaxOrderQtyLots, trading.OrderQty, "out-of-range qty clamps")
	require.Equal(t, 60, trading.CandleInterval, "interval is start-up only")
	require.InDelta(t, 5.0, trading.TrailStep, 1e-9, "negative step rejected")
	require.Equal(t, 5, trading.MaxTradesPerDay)
}

func TestApplyPatchRejectsCandleInterval(t *testing.T) {
	trading := DefaultTrading()

	// The aggregator and feed subscriptions are built from the interval
	// at startup, so even a legal value is rejected at runtime.
	accepted := trading.ApplyPatch(map[string]any{"candle_interval": 300})
	require.Empty(t, accepted)
	require.Equal(t, 60, trading.CandleInterval)
}

func TestApplyPatchPinsHTFTimeframe(t *testing.T) {
	trading := DefaultTrading()
	accepted := trading.ApplyPatch(map[string]any{"htf_filter_timeframe": 300})
	require.Equal(t, []string{"htf_filter_timeframe"}, accepted)
	require.Equal(t, HTFTimeframe, trading.HTFFilterTimeframe)
}

func TestResolverPrecedence(t *testing.T) {
	global := DefaultTrading()
	global.TargetPoints = 10

	strategyTarget := 20.0
	instanceTarget := 30.0
	strategyQty := 3

	resolver := NewResolver(&global,
		&Overrides{TargetPoints: &strategyTarget, OrderQty: &strategyQty},
		&Overrides{TargetPoints: &instanceTarget})

	require.InDelta(t, 30.0, resolver.TargetPoints(), 1e-9, "instance wins")
	require.Equal(t, 3, resolver.OrderQty(), "absent instance level falls through")
	require.InDelta(t, global.TrailStart, resolver.TrailStart(), 1e-9, "absent levels fall to global")
}

func TestResolverClampsOverriddenQty(t *testing.T) {
	global := DefaultTrading()
	tooMany := 99
	resolver := NewResolver(&global, nil, &Overrides{OrderQty: &tooMany})
	require.Equal(t, MaxOrderQtyLots, resolver.OrderQty())
}

func TestParseTimeframe(t *testing.T) {
	seconds, err := ParseTimeframe("15s")
	require.NoError(t, err)
	require.Equal(t, 15, seconds)

	seconds, err = ParseTimeframe("5m")
	require.NoError(t, err)
	require.Equal(t, 300, seconds)

	_, err = ParseTimeframe("7s")
	require.Error(t, err)

	_, err = ParseTimeframe("banana")
	require.Error(t, err)
}

func TestLoadReadsYAMLAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strikebot.yaml")
	yaml := `
trading:
  index: BANKNIFTY
  candle_interval: 300
  target_points: 40
storage_path: /tmp/strikebot.db
log_level: debug
telegram:
  enabled: true
  token: dummy
  user_ids: [123]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	app, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "BANKNIFTY", app.Trading.Index)
	require.Equal(t, 300, app.Trading.CandleInterval)
	require.InDelta(t, 40.0, app.Trading.TargetPoints, 1e-9)
	require.Equal(t, "/tmp/strikebot.db", app.StoragePath)
	require.True(t, app.Telegram.Enabled)
	require.Equal(t, []int64{123}, app.Telegram.UserIDs)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	app, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultTrading().Index, app.Trading.Index)
}
