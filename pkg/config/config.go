// Package config handles application configuration management using Viper
package config

import (
	"fmt"

	"github.com/kaviraj-dev/strikebot/pkg/core"
)

// Limits applied when loading or patching the trading configuration.
const (
	MinOrderQtyLots = 1
	MaxOrderQtyLots = 10
	HTFTimeframe    = 60
)

// ValidTimeframes is the closed set of supported candle intervals (seconds).
var ValidTimeframes = []int{5, 15, 30, 60, 300, 900}

// Trading holds the tunable strategy and risk parameters. A zero value for
// a threshold field means "disabled" throughout.
type Trading struct {
	Index          string    `mapstructure:"index"`
	Mode           core.Mode `mapstructure:"mode"`
	Strategy       string    `mapstructure:"strategy"`
	CandleInterval int       `mapstructure:"candle_interval"`

	TradingEnabled bool `mapstructure:"trading_enabled"`

	// Indicator parameters
	SupertrendPeriod     int     `mapstructure:"supertrend_period"`
	SupertrendMultiplier float64 `mapstructure:"supertrend_multiplier"`
	MACDFast             int     `mapstructure:"macd_fast"`
	MACDSlow             int     `mapstructure:"macd_slow"`
	MACDSignal           int     `mapstructure:"macd_signal"`
	MACDConfirmation     bool    `mapstructure:"macd_confirmation_enabled"`
	ADXPeriod            int     `mapstructure:"adx_period"`
	ADXThreshold         float64 `mapstructure:"adx_threshold"`

	// HTF direction filter, active only when CandleInterval < 60
	HTFFilterEnabled   bool `mapstructure:"htf_filter_enabled"`
	HTFFilterTimeframe int  `mapstructure:"htf_filter_timeframe"`

	// Risk parameters (premium points unless noted)
	OrderQty        int     `mapstructure:"order_qty"`
	RiskPerTrade    float64 `mapstructure:"risk_per_trade"`
	InitialStoploss float64 `mapstructure:"initial_stoploss"`
	TrailStart      float64 `mapstructure:"trail_start_profit"`
	TrailStep       float64 `mapstructure:"trail_step"`
	TargetPoints    float64 `mapstructure:"target_points"`
	MaxLossPerTrade float64 `mapstructure:"max_loss_per_trade"`
	DailyMaxLoss    float64 `mapstructure:"daily_max_loss"`

	// Timing guards (seconds)
	MinHold          int `mapstructure:"min_hold_seconds"`
	MaxTradesPerDay  int `mapstructure:"max_trades_per_day"`
	MinOrderCooldown int `mapstructure:"min_order_cooldown_seconds"`
	MinTradeGap      int `mapstructure:"min_trade_gap"`

	// Portfolio mode
	PortfolioEnabled     bool     `mapstructure:"portfolio_enabled"`
	PortfolioStrategyIDs []string `mapstructure:"portfolio_strategy_ids"`
	PortfolioInstances   int      `mapstructure:"portfolio_instances"`
}

// DefaultTrading mirrors the stock parameter set for a NIFTY paper session.
func DefaultTrading() Trading {
	return Trading{
		Index:                "NIFTY",
		Mode:                 core.ModePaper,
		Strategy:             "supertrend_macd",
		CandleInterval:       60,
		TradingEnabled:       true,
		SupertrendPeriod:     10,
		SupertrendMultiplier: 3.0,
		MACDFast:             12,
		MACDSlow:             26,
		MACDSignal:           9,
		MACDConfirmation:     false,
		ADXPeriod:            14,
		ADXThreshold:         0,
		HTFFilterEnabled:     true,
		HTFFilterTimeframe:   HTFTimeframe,
		OrderQty:             1,
		RiskPerTrade:         0,
		InitialStoploss:      0,
		TrailStart:           10,
		TrailStep:            5,
		TargetPoints:         0,
		MaxLossPerTrade:      0,
		DailyMaxLoss:         0,
		MinHold:              120,
		MaxTradesPerDay:      10,
		MinOrderCooldown:     30,
		MinTradeGap:          0,
	}
}

// Validate normalizes out-of-range values in place. It is applied after
// every load and patch so downstream code never sees an illegal config.
func (t *Trading) Validate() error {
	if t.OrderQty < MinOrderQtyLots {
		t.OrderQty = MinOrderQtyLots
	}
	if t.OrderQty > MaxOrderQtyLots {
		t.OrderQty = MaxOrderQtyLots
	}
	// HTF candles come from a single shared subscription; only one slower
	// interval is supported.
	t.HTFFilterTimeframe = HTFTimeframe
	if !validTimeframe(t.CandleInterval) {
		return fmt.Errorf("%w: candle_interval %d not in %v",
			core.ErrInvalidConfig, t.CandleInterval, ValidTimeframes)
	}
	if t.SupertrendPeriod <= 0 || t.SupertrendMultiplier <= 0 {
		return fmt.Errorf("%w: supertrend period/multiplier must be positive", core.ErrInvalidConfig)
	}
	if t.MACDFast <= 0 || t.MACDSlow <= t.MACDFast || t.MACDSignal <= 0 {
		return fmt.Errorf("%w: macd periods must satisfy 0 < fast < slow, signal > 0", core.ErrInvalidConfig)
	}
	if t.ADXPeriod <= 0 {
		t.ADXPeriod = 14
	}
	return nil
}

func validTimeframe(tf int) bool {
	for _, v := range ValidTimeframes {
		if v == tf {
			return true
		}
	}
	return false
}
