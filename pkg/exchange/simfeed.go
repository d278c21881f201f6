package exchange

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"github.com/kaviraj-dev/strikebot/pkg/core"
)

// simTickSteps are the per-poll index moves, weighted toward small ticks.
var simTickSteps = []float64{-15, -10, -5, -2, 0, 2, 5, 10, 15}

// SimFeeder is a random-walk index quote source for paper sessions run
// outside market hours or without venue credentials.
type SimFeeder struct {
	mu     sync.Mutex
	prices map[string]float64
	rng    *rand.Rand
}

func NewSimFeeder(seed int64) *SimFeeder {
	return &SimFeeder{
		prices: make(map[string]float64),
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// IndexLTP advances the walk one step and returns the new price.
func (s *SimFeeder) IndexLTP(_ context.Context, index string) (float64, error) {
	inst, err := GetInstrument(index)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.prices[index]
	if !ok {
		price = inst.SimBasePrice
	}
	price += simTickSteps[s.rng.Intn(len(simTickSteps))]
	price = math.Round(price*100) / 100
	s.prices[index] = price

	return price, nil
}

// OptionLTP is not served by the walk; option premiums come from the
// paper broker's synthetic pricing.
func (s *SimFeeder) OptionLTP(context.Context, string) (float64, error) {
	return 0, core.ErrNoQuote
}
