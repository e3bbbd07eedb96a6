package core

import "time"

// LastDayOfMonth returns the number of days in the given month.
// Months outside 1..12 are normalized the way time.Date does.
func LastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay builds the date year/month/day, pulling day back to the last day of the
// month when the month is shorter. Overflowing months roll into the next year.
func ClampDay(year int, month time.Month, day int) Date {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := LastDayOfMonth(first.Year(), first.Month())
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return NewDate(first.Year(), first.Month(), day)
}

// AddMonths shifts d by n calendar months keeping the requested day, clamped.
func AddMonths(d Date, n int, day int) Date {
	return ClampDay(d.Year(), d.Month()+time.Month(n), day)
}

// EndOfMonth returns the last calendar day of d's month.
func EndOfMonth(d Date) Date {
	return NewDate(d.Year(), d.Month(), LastDayOfMonth(d.Year(), d.Month()))
}

// EndOfYear returns December 31st of d's year.
func EndOfYear(d Date) Date {
	return NewDate(d.Year(), time.December, 31)
}

// StartOfMonth returns the first day of d's month.
func StartOfMonth(d Date) Date {
	return NewDate(d.Year(), d.Month(), 1)
}
