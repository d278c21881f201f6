// Package portfolio runs one or more strategy instances against a shared
// candle feed, with shared daily guards and per-instance isolation.
package portfolio

import (
	"sync"
	"time"
)

// Shared holds the counters and guards common to every instance: the
// realized day PnL, its drawdown low-water mark, the day's trade count,
// the loss breaker and the global order cooldown. It is mutated only
// from the engine loop.
type Shared struct {
	mu sync.RWMutex

	dailyPnl       float64
	maxDrawdown    float64
	dailyTrades    int
	breaker        bool
	lastOrderTime  time.Time
	lastResetDay   string
	pauseLoggedAt  time.Time
}

func NewShared() *Shared {
	return &Shared{}
}

// DailyPnl returns the realized PnL for the current trading day.
func (s *Shared) DailyPnl() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dailyPnl
}

// MaxDrawdown returns the lowest realized day PnL reached so far today.
// It is zero or negative.
func (s *Shared) MaxDrawdown() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxDrawdown
}

// DailyTrades returns the number of entries taken today.
func (s *Shared) DailyTrades() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dailyTrades
}

// Breaker reports whether the daily loss circuit-breaker has tripped.
func (s *Shared) Breaker() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.breaker
}

// TripBreaker blocks all new entries until the next daily reset.
func (s *Shared) TripBreaker() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breaker = true
}

// RecordEntry counts a confirmed entry against the shared guards.
func (s *Shared) RecordEntry(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dailyTrades++
	s.lastOrderTime = now
}

// RecordExit realizes a closed trade's PnL into the day total and the
// drawdown mark. When the realized total breaches the daily loss cap
// the breaker trips regardless of which exit path closed the trade;
// the return value reports whether this exit tripped it.
func (s *Shared) RecordExit(pnl float64, now time.Time, dailyMaxLoss float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dailyPnl += pnl
	if s.dailyPnl < s.maxDrawdown {
		s.maxDrawdown = s.dailyPnl
	}
	s.lastOrderTime = now
	if dailyMaxLoss > 0 && s.dailyPnl < -dailyMaxLoss && !s.breaker {
		s.breaker = true
		return true
	}
	return false
}

// InCooldown reports whether the global minimum order spacing has not
// yet elapsed.
func (s *Shared) InCooldown(now time.Time, cooldown time.Duration) bool {
	if cooldown <= 0 {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.lastOrderTime.IsZero() && now.Sub(s.lastOrderTime) < cooldown
}

// Reset clears the daily counters. It is idempotent within a trading
// day: re-entering the boundary minute does not double-reset.
func (s *Shared) Reset(day string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastResetDay == day {
		return false
	}
	s.lastResetDay = day
	s.dailyPnl = 0
	s.maxDrawdown = 0
	s.dailyTrades = 0
	s.breaker = false
	s.lastOrderTime = time.Time{}
	return true
}

// ShouldLogPause rate-limits the "trading paused" log line.
func (s *Shared) ShouldLogPause(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.pauseLoggedAt) < 10*time.Second {
		return false
	}
	s.pauseLoggedAt = now
	return true
}
