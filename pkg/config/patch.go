package config

import (
	"github.com/spf13/cast"
)

// ApplyPatch applies a partial configuration update and returns the names
// of the fields that were accepted. Unknown keys and values that fail type
// coercion are dropped; numeric fields are clamped to their legal range.
func (t *Trading) ApplyPatch(patch map[string]any) []string {
	accepted := make([]string, 0, len(patch))

	for key, raw := range patch {
		if t.applyField(key, raw) {
			accepted = append(accepted, key)
		}
	}

	// Re-run clamps so a patch can never leave the config in an
	// illegal state.
	t.HTFFilterTimeframe = HTFTimeframe
	if t.OrderQty < MinOrderQtyLots {
		t.OrderQty = MinOrderQtyLots
	}
	if t.OrderQty > MaxOrderQtyLots {
		t.OrderQty = MaxOrderQtyLots
	}

	return accepted
}

func (t *Trading) applyField(key string, raw any) bool {
	switch key {
	case "trading_enabled":
		return setBool(&t.TradingEnabled, raw)
	case "order_qty":
		if !setInt(&t.OrderQty, raw) {
			return false
		}
		if t.OrderQty < MinOrderQtyLots {
			t.OrderQty = MinOrderQtyLots
		}
		if t.OrderQty > MaxOrderQtyLots {
			t.OrderQty = MaxOrderQtyLots
		}
		return true
	case "candle_interval":
		// The aggregator, feed subscriptions and cool-off intervals are
		// built from this at startup; a runtime change would not reach
		// them, so the key is rejected rather than silently ignored.
		return false
	case "risk_per_trade":
		return setNonNegative(&t.RiskPerTrade, raw)
	case "initial_stoploss":
		return setNonNegative(&t.InitialStoploss, raw)
	case "trail_start_profit":
		return setNonNegative(&t.TrailStart, raw)
	case "trail_step":
		return setNonNegative(&t.TrailStep, raw)
	case "target_points":
		return setNonNegative(&t.TargetPoints, raw)
	case "max_loss_per_trade":
		return setNonNegative(&t.MaxLossPerTrade, raw)
	case "daily_max_loss":
		return setNonNegative(&t.DailyMaxLoss, raw)
	case "min_hold_seconds":
		return setNonNegativeInt(&t.MinHold, raw)
	case "max_trades_per_day":
		return setNonNegativeInt(&t.MaxTradesPerDay, raw)
	case "min_order_cooldown_seconds":
		return setNonNegativeInt(&t.MinOrderCooldown, raw)
	case "min_trade_gap":
		return setNonNegativeInt(&t.MinTradeGap, raw)
	case "htf_filter_enabled":
		return setBool(&t.HTFFilterEnabled, raw)
	case "htf_filter_timeframe":
		// Accepted for compatibility but pinned to the supported value.
		if _, err := cast.ToIntE(raw); err != nil {
			return false
		}
		t.HTFFilterTimeframe = HTFTimeframe
		return true
	case "macd_confirmation_enabled":
		return setBool(&t.MACDConfirmation, raw)
	case "adx_period":
		v, err := cast.ToIntE(raw)
		if err != nil || v <= 0 {
			return false
		}
		t.ADXPeriod = v
		return true
	case "adx_threshold":
		return setNonNegative(&t.ADXThreshold, raw)
	case "portfolio_enabled":
		return setBool(&t.PortfolioEnabled, raw)
	case "portfolio_strategy_ids":
		v, err := cast.ToStringSliceE(raw)
		if err != nil {
			return false
		}
		t.PortfolioStrategyIDs = v
		return true
	case "portfolio_instances":
		return setNonNegativeInt(&t.PortfolioInstances, raw)
	}
	return false
}

func setBool(dst *bool, raw any) bool {
	v, err := cast.ToBoolE(raw)
	if err != nil {
		return false
	}
	*dst = v
	return true
}

func setInt(dst *int, raw any) bool {
	v, err := cast.ToIntE(raw)
	if err != nil {
		return false
	}
	*dst = v
	return true
}

func setNonNegative(dst *float64, raw any) bool {
	v, err := cast.ToFloat64E(raw)
	if err != nil || v < 0 {
		return false
	}
	*dst = v
	return true
}

func setNonNegativeInt(dst *int, raw any) bool {
	v, err := cast.ToIntE(raw)
	if err != nil || v < 0 {
		return false
	}
	*dst = v
	return true
}
