package config

import "sync"

// Overrides is a sparse parameter set. A nil field falls through to the
// next resolution level.
type Overrides struct {
	TradingEnabled       *bool    `mapstructure:"trading_enabled"`
	OrderQty             *int     `mapstructure:"order_qty"`
	RiskPerTrade         *float64 `mapstructure:"risk_per_trade"`
	InitialStoploss      *float64 `mapstructure:"initial_stoploss"`
	TrailStart           *float64 `mapstructure:"trail_start_profit"`
	TrailStep            *float64 `mapstructure:"trail_step"`
	TargetPoints         *float64 `mapstructure:"target_points"`
	MaxLossPerTrade      *float64 `mapstructure:"max_loss_per_trade"`
	MinHold              *int     `mapstructure:"min_hold_seconds"`
	MinTradeGap          *int     `mapstructure:"min_trade_gap"`
	HTFFilterEnabled     *bool    `mapstructure:"htf_filter_enabled"`
	MACDConfirmation     *bool    `mapstructure:"macd_confirmation_enabled"`
	ADXThreshold         *float64 `mapstructure:"adx_threshold"`
	SupertrendPeriod     *int     `mapstructure:"supertrend_period"`
	SupertrendMultiplier *float64 `mapstructure:"supertrend_multiplier"`
}

// Resolver answers effective parameter lookups through the three-level
// chain: instance override > strategy override > global default. Absence
// at a level always falls through; no level is skipped.
type Resolver struct {
	mu       sync.RWMutex
	global   *Trading
	strategy *Overrides
	instance *Overrides
}

func NewResolver(global *Trading, strategy, instance *Overrides) *Resolver {
	return &Resolver{global: global, strategy: strategy, instance: instance}
}

// Global returns the shared base configuration.
func (r *Resolver) Global() *Trading {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.global
}

func resolveBool(instance, strategy *bool, global bool) bool {
	if instance != nil {
		return *instance
	}
	if strategy != nil {
		return *strategy
	}
	return global
}

func resolveInt(instance, strategy *int, global int) int {
	if instance != nil {
		return *instance
	}
	if strategy != nil {
		return *strategy
	}
	return global
}

func resolveFloat(instance, strategy *float64, global float64) float64 {
	if instance != nil {
		return *instance
	}
	if strategy != nil {
		return *strategy
	}
	return global
}

func (r *Resolver) levels() (*Overrides, *Overrides) {
	inst, strat := r.instance, r.strategy
	if inst == nil {
		inst = &Overrides{}
	}
	if strat == nil {
		strat = &Overrides{}
	}
	return inst, strat
}

func (r *Resolver) TradingEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, strat := r.levels()
	return resolveBool(inst.TradingEnabled, strat.TradingEnabled, r.global.TradingEnabled)
}

func (r *Resolver) OrderQty() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, strat := r.levels()
	qty := resolveInt(inst.OrderQty, strat.OrderQty, r.global.OrderQty)
	if qty < MinOrderQtyLots {
		qty = MinOrderQtyLots
	}
	if qty > MaxOrderQtyLots {
		qty = MaxOrderQtyLots
	}
	return qty
}

func (r *Resolver) RiskPerTrade() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, strat := r.levels()
	return resolveFloat(inst.RiskPerTrade, strat.RiskPerTrade, r.global.RiskPerTrade)
}

func (r *Resolver) InitialStoploss() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, strat := r.levels()
	return resolveFloat(inst.InitialStoploss, strat.InitialStoploss, r.global.InitialStoploss)
}

func (r *Resolver) TrailStart() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, strat := r.levels()
	return resolveFloat(inst.TrailStart, strat.TrailStart, r.global.TrailStart)
}

func (r *Resolver) TrailStep() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, strat := r.levels()
	return resolveFloat(inst.TrailStep, strat.TrailStep, r.global.TrailStep)
}

func (r *Resolver) TargetPoints() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, strat := r.levels()
	return resolveFloat(inst.TargetPoints, strat.TargetPoints, r.global.TargetPoints)
}

func (r *Resolver) MaxLossPerTrade() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, strat := r.levels()
	return resolveFloat(inst.MaxLossPerTrade, strat.MaxLossPerTrade, r.global.MaxLossPerTrade)
}

func (r *Resolver) MinHold() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, strat := r.levels()
	return resolveInt(inst.MinHold, strat.MinHold, r.global.MinHold)
}

func (r *Resolver) MinTradeGap() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, strat := r.levels()
	return resolveInt(inst.MinTradeGap, strat.MinTradeGap, r.global.MinTradeGap)
}

func (r *Resolver) HTFFilterEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, strat := r.levels()
	return resolveBool(inst.HTFFilterEnabled, strat.HTFFilterEnabled, r.global.HTFFilterEnabled)
}

func (r *Resolver) MACDConfirmation() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, strat := r.levels()
	return resolveBool(inst.MACDConfirmation, strat.MACDConfirmation, r.global.MACDConfirmation)
}

func (r *Resolver) ADXThreshold() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, strat := r.levels()
	return resolveFloat(inst.ADXThreshold, strat.ADXThreshold, r.global.ADXThreshold)
}

func (r *Resolver) SupertrendPeriod() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, strat := r.levels()
	return resolveInt(inst.SupertrendPeriod, strat.SupertrendPeriod, r.global.SupertrendPeriod)
}

func (r *Resolver) SupertrendMultiplier() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, strat := r.levels()
	return resolveFloat(inst.SupertrendMultiplier, strat.SupertrendMultiplier, r.global.SupertrendMultiplier)
}
