package core

// ComputeDailySavings returns the virtual savings for one day: the positive
// part of the daily budget left after spending. Overspending clamps to zero;
// the overspend magnitude is preserved only through the stored ActualSpent
// and DailyBudget fields, never as a negative savings amount.
func ComputeDailySavings(dailyBudget, actualSpent float64) float64 {
	if saved := dailyBudget - actualSpent; saved > 0 {
		return saved
	}
	return 0
}

// SavingsSummary aggregates daily-savings records over a range,
// typically month-to-date.
type SavingsSummary struct {
	TotalSavings float64
	DailyAverage float64 // per recorded day, 0 when there are no records
}

// SummarizeSavings totals the records and averages over the number of
// recorded days. An empty record set yields zeroes, never NaN.
func SummarizeSavings(records []DailySavings) SavingsSummary {
	var sum SavingsSummary
	for _, r := range records {
		sum.TotalSavings += r.Amount
	}
	if len(records) > 0 {
		sum.DailyAverage = sum.TotalSavings / float64(len(records))
	}
	return sum
}

// MonthlySavingsReport is the per-month savings analytics view.
//
// Two day-count bases appear side by side on purpose: DaysInPeriod counts
// calendar days in the queried range, RecordedDays counts only days that
// actually have a savings row. The trend projection uses RecordedDays;
// expense trends use the calendar basis. Exposing both as named fields keeps
// the asymmetry visible to consumers.
type MonthlySavingsReport struct {
	Total          float64
	DailyAverage   float64
	Trend          float64
	RecordedDays   int
	DaysInPeriod   int
	IsCurrentMonth bool
	History        []DailySavings
}

// MonthlySavings builds the savings report for one month, comparing against
// the previous month's records for the trend.
func MonthlySavings(records, previousRecords []DailySavings, isCurrentMonth bool, daysInMonth, daysInPeriod int) MonthlySavingsReport {
	report := MonthlySavingsReport{
		RecordedDays:   len(records),
		DaysInPeriod:   daysInPeriod,
		IsCurrentMonth: isCurrentMonth,
		History:        records,
	}

	for _, r := range records {
		report.Total += r.Amount
	}
	var previousTotal float64
	for _, r := range previousRecords {
		previousTotal += r.Amount
	}

	if report.RecordedDays > 0 {
		report.DailyAverage = report.Total / float64(report.RecordedDays)
	}
	report.Trend = Trend(report.Total, previousTotal, isCurrentMonth, report.RecordedDays, daysInMonth)

	return report
}
