// Package core holds the domain model and the budgeting arithmetic: period
// conversion, budget normalization, spend aggregation, utilization and
// virtual-savings calculations.
//
// Every function here is pure. Calendar context (days in the current month
// and year) is passed in by the caller so results are deterministic and
// testable; nothing reads the wall clock.
package core

import "time"

// DaysInMonth returns the number of calendar days in the given month (28-31).
func DaysInMonth(year, month int) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsLeapYear reports whether year is a leap year in the Gregorian calendar.
func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// DaysInYear returns 366 for leap years, 365 otherwise.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// ToDaily converts amount from the given period to a daily amount.
// A zero amount converts to zero regardless of period.
func ToDaily(amount float64, period Period, daysInMonth, daysInYear int) float64 {
	switch period {
	case Monthly:
		return amount / float64(daysInMonth)
	case Yearly:
		return amount / float64(daysInYear)
	}
	return amount
}

// ToMonthly converts amount from the given period to a monthly amount.
func ToMonthly(amount float64, period Period, daysInMonth, daysInYear int) float64 {
	switch period {
	case Daily:
		return amount * float64(daysInMonth)
	case Yearly:
		return amount / 12
	}
	return amount
}

// ToYearly converts amount from the given period to a yearly amount.
func ToYearly(amount float64, period Period, daysInMonth, daysInYear int) float64 {
	switch period {
	case Daily:
		return amount * float64(daysInYear)
	case Monthly:
		return amount * 12
	}
	return amount
}
