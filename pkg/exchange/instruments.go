// Package exchange provides the instrument catalog, trading-hours rules
// and the execution venues (paper simulation and tick replay).
package exchange

import (
	"fmt"
	"math"
	"time"

	"github.com/kaviraj-dev/strikebot/pkg/core"
)

// Instrument describes one tradable index and its option contract terms.
type Instrument struct {
	Name           string
	LotSize        int
	StrikeInterval int
	ExpiryWeekday  time.Weekday
	SimBasePrice   float64
}

var instruments = map[string]Instrument{
	"NIFTY":      {Name: "NIFTY", LotSize: 75, StrikeInterval: 50, ExpiryWeekday: time.Thursday, SimBasePrice: 23500},
	"BANKNIFTY":  {Name: "BANKNIFTY", LotSize: 30, StrikeInterval: 100, ExpiryWeekday: time.Wednesday, SimBasePrice: 51500},
	"FINNIFTY":   {Name: "FINNIFTY", LotSize: 65, StrikeInterval: 50, ExpiryWeekday: time.Tuesday, SimBasePrice: 22000},
	"MIDCPNIFTY": {Name: "MIDCPNIFTY", LotSize: 120, StrikeInterval: 25, ExpiryWeekday: time.Monday, SimBasePrice: 12500},
	"SENSEX":     {Name: "SENSEX", LotSize: 20, StrikeInterval: 100, ExpiryWeekday: time.Friday, SimBasePrice: 70000},
}

// GetInstrument looks up an index by name.
func GetInstrument(index string) (Instrument, error) {
	inst, ok := instruments[index]
	if !ok {
		return Instrument{}, fmt.Errorf("%w: unknown index %q", core.ErrContractUnavailable, index)
	}
	return inst, nil
}

// Indices returns the supported index names.
func Indices() []string {
	return []string{"NIFTY", "BANKNIFTY", "FINNIFTY", "MIDCPNIFTY", "SENSEX"}
}

// RoundToStrike snaps a spot price to the nearest listed strike.
func (i Instrument) RoundToStrike(spot float64) int {
	interval := float64(i.StrikeInterval)
	return int(math.Round(spot/interval) * interval)
}

// NextExpiry computes the next weekly expiry date on or after now.
// Used as a fallback when the venue cannot provide the contract chain.
func (i Instrument) NextExpiry(now time.Time) string {
	now = now.In(IST)
	days := (int(i.ExpiryWeekday) - int(now.Weekday()) + 7) % 7
	expiry := now.AddDate(0, 0, days)

	// Same-day expiry is only tradable until the close.
	if days == 0 && !now.Before(marketClose(now)) {
		expiry = now.AddDate(0, 0, 7)
	}
	return expiry.Format("2006-01-02")
}
