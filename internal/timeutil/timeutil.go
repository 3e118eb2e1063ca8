package timeutil

import (
	"fmt"
	"time"
)

// Club is the reference location for calendar dates (due dates, forecast months).
var Club *time.Location

func init() {
	var err error
	Club, err = time.LoadLocation("America/Denver")
	if err != nil {
		// Fallback: fixed Mountain Standard Time if tzdata is missing
		Club = time.FixedZone("MST", -7*60*60)
	}
}

// SetLocation replaces the reference location. Call once at startup.
func SetLocation(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("load location %q: %w", name, err)
	}
	Club = loc
	return nil
}

// Now returns the current time in the club location
func Now() time.Time {
	return time.Now().In(Club)
}

// Today returns the current calendar date in the club location
func Today() time.Time {
	return DateOf(time.Now())
}

// DateOf returns the calendar date of t as seen in the club location.
// Dates are represented as midnight UTC so that day arithmetic never crosses a DST change.
func DateOf(t time.Time) time.Time {
	c := t.In(Club)
	return time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a calendar date
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// FormatDate formats a calendar date as YYYY-MM-DD
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// AddYears adds n years to a calendar date. Feb 29 maps to Feb 28 in non-leap years.
func AddYears(d time.Time, n int) time.Time {
	y, m, day := d.Date()
	target := y + n
	if m == time.February && day == 29 && !IsLeapYear(target) {
		day = 28
	}
	return time.Date(target, m, day, 0, 0, 0, 0, time.UTC)
}

// IsLeapYear reports whether y is a Gregorian leap year
func IsLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// DaysBetween returns the whole calendar days from a to b (negative when b is
// earlier). It works on Unix seconds so dates centuries apart do not saturate.
func DaysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int((b.Unix() - a.Unix()) / 86400)
}

// StartOfMonth returns the first day of d's month
func StartOfMonth(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths shifts a month start by n months
func AddMonths(monthStart time.Time, n int) time.Time {
	return time.Date(monthStart.Year(), monthStart.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
}

// DaysLeftInMonth returns the number of days after d until the end of its month
func DaysLeftInMonth(d time.Time) int {
	last := AddMonths(StartOfMonth(d), 1).AddDate(0, 0, -1)
	return last.Day() - d.Day()
}

// Common layouts
const (
	DateLayout     = "2006-01-02"
	MonthLayout    = "2006-01"
	MonthShort     = "Jan"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "Jan 2, 2006"
)
