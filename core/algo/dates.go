// Package algo holds the pure arithmetic used by the mining pipeline.
package algo

import (
	"errors"
	"math"
	"time"
)

// ErrUndefinedTimestamp is returned for a zero time.Time, which has no calendar date in this domain.
var ErrUndefinedTimestamp = errors.New("timestamp has no defined calendar date")

// DaysPerMonth is the fixed month length used to express repository age in months.
const DaysPerMonth = 30

// AgePrecision is the number of decimal places kept for age in months.
const AgePrecision = 5

// CalendarDay truncates t to midnight UTC of the date t shows in its own location.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizeDay maps t to its calendar date at 12:30 UTC so that commits made
// on the same day compare equal regardless of time of day.
func NormalizeDay(t time.Time) time.Time {
	return CalendarDay(t).Add(12*time.Hour + 30*time.Minute)
}

// DaysBetween returns the absolute number of whole days between the calendar
// dates of a and b. The time of day is discarded before subtracting, so 23:00
// and 01:00 on the next day are one day apart.
func DaysBetween(a, b time.Time) (int, error) {
	if a.IsZero() || b.IsZero() {
		return 0, ErrUndefinedTimestamp
	}
	diff := CalendarDay(a).Sub(CalendarDay(b))
	days := int(math.Round(diff.Hours() / 24))
	if days < 0 {
		days = -days
	}
	return days, nil
}

// RoundTo rounds v half away from zero to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

// AgeInMonths converts an age in days to months rounded to AgePrecision places.
func AgeInMonths(days int) float64 {
	return RoundTo(float64(days)/DaysPerMonth, AgePrecision)
}
