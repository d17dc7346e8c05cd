package utils

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// TradingCalendar answers business-day questions for the exchange the
// dashboard reports against, using scmhub/calendar.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// GetCalendar returns the calendar of the given MIC (ISO 10383, e.g. "xnys").
// Unknown MICs fall back to NYSE, then to a plain Mon-Fri calendar.
func GetCalendar(mic string) *TradingCalendar {
	mic = strings.ToLower(strings.TrimSpace(mic))
	if mic == "" {
		mic = "xnys"
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}
	if cal == nil {
		nyLoc, err := time.LoadLocation("America/New_York")
		if err != nil {
			nyLoc = time.UTC
		}
		return &TradingCalendar{Fallback: true, Timezone: nyLoc}
	}

	return &TradingCalendar{Calendar: cal, Fallback: false, Timezone: cal.Loc}
}

// NewWeekdayCalendar is the plain Mon-Fri calendar in loc.
func NewWeekdayCalendar(loc *time.Location) *TradingCalendar {
	if loc == nil {
		loc = time.UTC
	}
	return &TradingCalendar{Fallback: true, Timezone: loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// PreviousTradingDay returns the midnight of the last trading day strictly
// before date, in the calendar's zone.
func (tc *TradingCalendar) PreviousTradingDay(date time.Time) time.Time {
	day := tc.midnight(date)
	for i := 0; i < 366; i++ {
		day = day.AddDate(0, 0, -1)
		if tc.IsTradingDay(day.Add(12 * time.Hour)) {
			return day
		}
	}
	return day
}

// -----------------------------------------------------------------------------

// DefaultRange is the period covering the last n trading days up to and
// including now's day: start is the midnight of the oldest of those days,
// end is now.
func (tc *TradingCalendar) DefaultRange(now time.Time, n int) (time.Time, time.Time) {
	if n < 1 {
		n = 1
	}
	start := tc.midnight(now)
	counted := 0
	if tc.IsTradingDay(start.Add(12 * time.Hour)) {
		counted = 1
	}
	for counted < n {
		start = tc.PreviousTradingDay(start)
		counted++
	}
	if tc.Timezone != nil {
		now = now.In(tc.Timezone)
	}
	return start, now
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) midnight(t time.Time) time.Time {
	loc := tc.Timezone
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
