package core

import (
	"math"
	"time"
)

// Clock supplies "now" so that period defaulting and deadline math stay
// deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Period is an inclusive [Start, End] range of instants covering a
// calendar month or year in local time.
type Period struct {
	Start time.Time
	End   time.Time
}

// MonthRange returns the period covering the given calendar month: the
// first instant of day 1 through the last millisecond of the final day.
// Day 0 of the following month normalizes to that final day, which keeps
// leap years right without a days-in-month table.
func MonthRange(year, month int) Period {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := time.Date(year, time.Month(month)+1, 0, 23, 59, 59, int(999*time.Millisecond), time.Local)
	return Period{Start: start, End: end}
}

// YearRange returns the period covering the full calendar year.
func YearRange(year int) Period {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(year, time.December, 31, 23, 59, 59, int(999*time.Millisecond), time.Local)
	return Period{Start: start, End: end}
}

// ResolveMonth applies the defaulting rule for optional month/year
// parameters: non-positive values fall back to the current month or year.
// A month that is still outside 1-12 after defaulting is rejected rather
// than wrapped around.
func ResolveMonth(clock Clock, month, year int) (int, int, error) {
	now := clock.Now()
	if month <= 0 {
		month = int(now.Month())
	}
	if year <= 0 {
		year = now.Year()
	}
	if month > 12 {
		return 0, 0, Invalid("month", "must be between 1 and 12")
	}
	return month, year, nil
}

// ResolveYear defaults a non-positive year to the current one.
func ResolveYear(clock Clock, year int) int {
	if year <= 0 {
		return clock.Now().Year()
	}
	return year
}

// DaysLeft returns the number of whole or partial days between now and the
// deadline, rounded up. Past deadlines yield negative values.
func DaysLeft(deadline Date, now time.Time) int {
	diff := deadline.Sub(now)
	return int(math.Ceil(diff.Hours() / 24))
}
