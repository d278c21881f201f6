package exchange

import "time"

// IST is the exchange timezone. All session boundaries are defined in it.
var IST = time.FixedZone("IST", 5*3600+1800)

// Session boundaries, minutes since midnight IST.
const (
	marketOpenMinute  = 9*60 + 15  // 09:15
	marketCloseMinute = 15*60 + 30 // 15:30
	entryOpenMinute   = 9*60 + 25  // 09:25
	entryCloseMinute  = 15*60 + 10 // 15:10
	squareOffMinute   = 15*60 + 25 // 15:25
)

func minuteOfDay(t time.Time) int {
	t = t.In(IST)
	return t.Hour()*60 + t.Minute()
}

func isWeekday(t time.Time) bool {
	wd := t.In(IST).Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func marketClose(t time.Time) time.Time {
	t = t.In(IST)
	return time.Date(t.Year(), t.Month(), t.Day(), marketCloseMinute/60, marketCloseMinute%60, 0, 0, IST)
}

// IsMarketOpen reports whether the cash session is live.
func IsMarketOpen(t time.Time) bool {
	if !isWeekday(t) {
		return false
	}
	m := minuteOfDay(t)
	return m >= marketOpenMinute && m < marketCloseMinute
}

// InEntryWindow reports whether new entries are allowed. Entries start
// after the opening noise settles and stop well before the close.
func InEntryWindow(t time.Time) bool {
	if !isWeekday(t) {
		return false
	}
	m := minuteOfDay(t)
	return m >= entryOpenMinute && m < entryCloseMinute
}

// IsSquareOffTime reports whether any open position must be force-closed.
func IsSquareOffTime(t time.Time) bool {
	return isWeekday(t) && minuteOfDay(t) >= squareOffMinute
}

// TradingDay returns the IST calendar date, used as the idempotency key
// for the daily reset.
func TradingDay(t time.Time) string {
	return t.In(IST).Format("2006-01-02")
}
