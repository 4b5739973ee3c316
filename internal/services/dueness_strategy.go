// Package services holds the business logic between the HTTP layer and the
// stores.
//
// This file implements the strategy registry deciding when a recurring
// transaction template is due for another occurrence. Each frequency has
// its own checker.
package services

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

// DuenessChecker decides whether a recurring template should produce an
// occurrence, given when it last did and the template's original date.
type DuenessChecker interface {
	IsDue(lastApplied, now time.Time, start core.Date) bool
}

// DailyChecker fires once per calendar day.
type DailyChecker struct{}

func (DailyChecker) IsDue(lastApplied, now time.Time, _ core.Date) bool {
	if lastApplied.IsZero() {
		return true
	}
	return lastApplied.Format("2006-01-02") != now.Format("2006-01-02")
}

// WeeklyChecker fires once 7 or more days have passed.
type WeeklyChecker struct{}

func (WeeklyChecker) IsDue(lastApplied, now time.Time, _ core.Date) bool {
	if lastApplied.IsZero() {
		return true
	}
	return now.Sub(lastApplied).Hours()/24 >= 7
}

// MonthlyChecker fires once per month, on or after the template's day of
// month. When the month is shorter than the target day it fires on the
// month's last day.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(lastApplied, now time.Time, start core.Date) bool {
	if lastApplied.IsZero() {
		return true
	}
	if lastApplied.Year() == now.Year() && lastApplied.Month() == now.Month() {
		return false
	}
	return now.Day() >= clampDay(start.Day(), now)
}

// YearlyChecker fires once per year, on or after the template's month and
// day.
type YearlyChecker struct{}

func (YearlyChecker) IsDue(lastApplied, now time.Time, start core.Date) bool {
	if lastApplied.IsZero() {
		return true
	}
	if lastApplied.Year() == now.Year() {
		return false
	}

	targetMonth := int(start.Month())
	if int(now.Month()) < targetMonth {
		return false
	}
	if int(now.Month()) == targetMonth {
		return now.Day() >= clampDay(start.Day(), now)
	}
	return true
}

// clampDay caps the target day at the current month's last day, so a
// template dated the 31st still fires in shorter months.
func clampDay(targetDay int, now time.Time) int {
	lastDayOfMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if targetDay > lastDayOfMonth {
		return lastDayOfMonth
	}
	return targetDay
}

var duenessStrategies = map[core.Frequency]DuenessChecker{
	core.Daily:   DailyChecker{},
	core.Weekly:  WeeklyChecker{},
	core.Monthly: MonthlyChecker{},
	core.Yearly:  YearlyChecker{},
}

// GetDuenessChecker returns the checker for a frequency, or an error for
// unknown or non-recurring frequencies.
func GetDuenessChecker(frequency core.Frequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return checker, nil
}
