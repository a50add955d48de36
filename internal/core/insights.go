package core

// TargetInsights relates a savings target to the current month's savings
// and spending.
type TargetInsights struct {
	MonthlyTarget          float64
	SavingsGap             float64 // negative means the target is already exceeded
	DailyReductionNeeded   float64 // negative or zero means no reduction needed
	ProjectedAnnualSavings float64
	TimeToTargetMonths     float64 // 0 when the target is already met
	ProgressPercent        float64 // clamped to [0, 100]
	CurrentDailySpending   float64
}

// ComputeTargetInsights derives target progress from a savings target at any
// cadence, the month's accumulated virtual savings and the month's spending.
//
// The time-to-target estimate is a naive linear projection: months of saving
// at the current monthly rate needed to cover the gap. When nothing has been
// saved yet the rate substitutes 1 so the estimate degrades to the gap
// itself instead of dividing by zero.
func ComputeTargetInsights(targetAmount float64, targetPeriod Period, currentMonthlySavings, currentMonthlySpending float64, daysInMonth, daysInYear int) TargetInsights {
	monthlyTarget := ToMonthly(targetAmount, targetPeriod, daysInMonth, daysInYear)
	gap := monthlyTarget - currentMonthlySavings

	in := TargetInsights{
		MonthlyTarget:          monthlyTarget,
		SavingsGap:             gap,
		DailyReductionNeeded:   gap / float64(daysInMonth),
		ProjectedAnnualSavings: currentMonthlySavings * 12,
		CurrentDailySpending:   currentMonthlySpending / float64(daysInMonth),
	}

	if gap > 0 {
		rate := currentMonthlySavings
		if rate == 0 {
			rate = 1
		}
		in.TimeToTargetMonths = gap / rate
	}

	if monthlyTarget > 0 {
		progress := currentMonthlySavings / monthlyTarget * 100
		if progress > 100 {
			progress = 100
		}
		in.ProgressPercent = progress
	}

	return in
}
