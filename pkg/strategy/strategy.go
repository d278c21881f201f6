// Package strategy defines the entry/exit rule variants. The variant set
// is closed: a strategy is selected once at configuration time and the
// engine talks to it through the Strategy interface only.
package strategy

import (
	"fmt"

	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/kaviraj-dev/strikebot/pkg/indicator"
)

// Names of the available variants.
const (
	NameSupertrendMACD = "supertrend_macd"
	NameSupertrendADX  = "supertrend_adx"
)

// Config carries the indicator periods resolved for one instance.
type Config struct {
	SupertrendPeriod     int
	SupertrendMultiplier float64
	MACDFast             int
	MACDSlow             int
	MACDSignal           int
	ADXPeriod            int
}

// Gates are the resolved confirmation toggles checked on each entry.
type Gates struct {
	MACDConfirmation bool
	ADXThreshold     float64
}

// Strategy consumes closed candles and produces the directional signal
// plus the entry confirmation verdict for its variant.
type Strategy interface {
	Name() string

	// OnCandle consumes a closed base-timeframe candle.
	OnCandle(candle core.Candle)

	// OnHTFCandle consumes a closed higher-timeframe candle.
	OnHTFCandle(candle core.Candle)

	// Signal is the current directional signal, empty while warming up.
	Signal() core.Signal

	// Value is the active SuperTrend band, for telemetry.
	Value() float64

	// HTFDirection is the higher-timeframe trend: +1, -1 or 0 while
	// not yet established.
	HTFDirection() int

	// ConfirmEntry applies the variant's confirmation gates to a
	// prospective entry in the given direction.
	ConfirmEntry(signal core.Signal, gates Gates) bool
}

// New builds the named variant. Unknown names fail here, once, instead
// of being re-dispatched per tick.
func New(name string, cfg Config) (Strategy, error) {
	base := newBase(cfg)
	switch name {
	case NameSupertrendMACD:
		return &supertrendMACD{
			base: base,
			macd: indicator.NewMACD(cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal),
		}, nil
	case NameSupertrendADX:
		return &supertrendADX{
			base: base,
			adx:  indicator.NewADX(cfg.ADXPeriod),
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown strategy %q", core.ErrInvalidConfig, name)
}

// base holds the SuperTrend pair shared by every variant: the execution
// timeframe trend and the higher-timeframe filter trend.
type base struct {
	st  *indicator.SuperTrend
	htf *indicator.SuperTrend
}

func newBase(cfg Config) base {
	return base{
		st:  indicator.NewSuperTrend(cfg.SupertrendPeriod, cfg.SupertrendMultiplier),
		htf: indicator.NewSuperTrend(cfg.SupertrendPeriod, cfg.SupertrendMultiplier),
	}
}

func (b *base) OnHTFCandle(candle core.Candle) { b.htf.Update(candle) }
func (b *base) Signal() core.Signal            { return b.st.Signal() }
func (b *base) Value() float64                 { return b.st.Value() }
func (b *base) HTFDirection() int              { return b.htf.Direction() }

type supertrendMACD struct {
	base
	macd *indicator.MACD
}

func (s *supertrendMACD) Name() string { return NameSupertrendMACD }

func (s *supertrendMACD) OnCandle(candle core.Candle) {
	s.st.Update(candle)
	s.macd.Update(candle.Close)
}

// ConfirmEntry requires the MACD line to agree with the direction when
// confirmation is enabled.
func (s *supertrendMACD) ConfirmEntry(signal core.Signal, gates Gates) bool {
	if !gates.MACDConfirmation {
		return true
	}
	switch signal {
	case core.SignalGreen:
		return s.macd.Bullish()
	case core.SignalRed:
		return s.macd.Bearish()
	}
	return false
}

type supertrendADX struct {
	base
	adx *indicator.ADX
}

func (s *supertrendADX) Name() string { return NameSupertrendADX }

func (s *supertrendADX) OnCandle(candle core.Candle) {
	s.st.Update(candle)
	s.adx.Update(candle)
}

// ConfirmEntry requires trend strength above the threshold when one is
// configured.
func (s *supertrendADX) ConfirmEntry(_ core.Signal, gates Gates) bool {
	if gates.ADXThreshold <= 0 {
		return true
	}
	return s.adx.Value() > gates.ADXThreshold
}
