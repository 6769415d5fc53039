package utils

import "time"

// Exchange session bounds, minutes from midnight. 09:15 to 15:30.
const (
	sessionOpenMinutes  = 9*60 + 15
	sessionCloseMinutes = 15*60 + 30
)

// IsMarketOpen reports whether t falls inside the exchange trading
// session: weekdays 09:15-15:30 in the exchange's local timezone. The
// caller is responsible for converting t into that timezone first.
func IsMarketOpen(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	m := t.Hour()*60 + t.Minute()
	return m >= sessionOpenMinutes && m <= sessionCloseMinutes
}

// NextMidnight returns the first instant of the next calendar day in t's
// location. Used to schedule the daily risk-counter reset.
func NextMidnight(t time.Time) time.Time {
	next := t.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
