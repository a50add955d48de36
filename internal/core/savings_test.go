package core

import (
	"math"
	"testing"
)

func TestComputeDailySavings(t *testing.T) {
	tests := []struct {
		name        string
		dailyBudget float64
		actualSpent float64
		want        float64
	}{
		{"under budget saves the difference", 100, 60, 40},
		{"exactly on budget saves nothing", 100, 100, 0},
		{"overspending clamps to zero", 100, 130, 0},
		{"no spending saves the full budget", 100, 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeDailySavings(tt.dailyBudget, tt.actualSpent); got != tt.want {
				t.Errorf("ComputeDailySavings(%v, %v) = %v, want %v", tt.dailyBudget, tt.actualSpent, got, tt.want)
			}
		})
	}
}

func TestSummarizeSavings(t *testing.T) {
	t.Run("empty records yield zeroes", func(t *testing.T) {
		sum := SummarizeSavings(nil)
		if sum.TotalSavings != 0 || sum.DailyAverage != 0 {
			t.Errorf("empty summary not zero: %+v", sum)
		}
	})

	t.Run("averages over recorded days", func(t *testing.T) {
		sum := SummarizeSavings([]DailySavings{
			{Amount: 10}, {Amount: 20}, {Amount: 30},
		})
		if sum.TotalSavings != 60 {
			t.Errorf("TotalSavings = %v, want 60", sum.TotalSavings)
		}
		if sum.DailyAverage != 20 {
			t.Errorf("DailyAverage = %v, want 20", sum.DailyAverage)
		}
	})
}

func TestMonthlySavings(t *testing.T) {
	records := []DailySavings{{Amount: 10}, {Amount: 20}}
	previous := []DailySavings{{Amount: 15}, {Amount: 15}, {Amount: 30}}

	t.Run("completed month compares totals directly", func(t *testing.T) {
		report := MonthlySavings(records, previous, false, 30, 30)
		if report.Total != 30 {
			t.Errorf("Total = %v, want 30", report.Total)
		}
		if report.RecordedDays != 2 || report.DaysInPeriod != 30 {
			t.Errorf("day counts wrong: %+v", report)
		}
		// (30 - 60) / 60 * 100
		if math.Abs(report.Trend-(-50)) > 1e-9 {
			t.Errorf("Trend = %v, want -50", report.Trend)
		}
		if report.DailyAverage != 15 {
			t.Errorf("DailyAverage = %v, want 15", report.DailyAverage)
		}
	})

	t.Run("current month projects from recorded days", func(t *testing.T) {
		report := MonthlySavings(records, previous, true, 30, 12)
		// projected = 30 / 2 * 30 = 450; (450 - 60) / 60 * 100 = 650
		if math.Abs(report.Trend-650) > 1e-9 {
			t.Errorf("Trend = %v, want 650", report.Trend)
		}
		if !report.IsCurrentMonth {
			t.Error("expected IsCurrentMonth")
		}
	})

	t.Run("no previous records means flat trend", func(t *testing.T) {
		report := MonthlySavings(records, nil, false, 30, 30)
		if report.Trend != 0 {
			t.Errorf("Trend = %v, want 0", report.Trend)
		}
	})
}

func TestComputeTargetInsights(t *testing.T) {
	const daysInMonth, daysInYear = 30, 365

	t.Run("behind target", func(t *testing.T) {
		in := ComputeTargetInsights(600, Monthly, 150, 900, daysInMonth, daysInYear)

		if in.MonthlyTarget != 600 {
			t.Errorf("MonthlyTarget = %v, want 600", in.MonthlyTarget)
		}
		if in.SavingsGap != 450 {
			t.Errorf("SavingsGap = %v, want 450", in.SavingsGap)
		}
		if in.DailyReductionNeeded != 15 {
			t.Errorf("DailyReductionNeeded = %v, want 15", in.DailyReductionNeeded)
		}
		if in.ProjectedAnnualSavings != 1800 {
			t.Errorf("ProjectedAnnualSavings = %v, want 1800", in.ProjectedAnnualSavings)
		}
		if in.TimeToTargetMonths != 3 {
			t.Errorf("TimeToTargetMonths = %v, want 3", in.TimeToTargetMonths)
		}
		if in.ProgressPercent != 25 {
			t.Errorf("ProgressPercent = %v, want 25", in.ProgressPercent)
		}
		if in.CurrentDailySpending != 30 {
			t.Errorf("CurrentDailySpending = %v, want 30", in.CurrentDailySpending)
		}
	})

	t.Run("daily target converts to monthly", func(t *testing.T) {
		in := ComputeTargetInsights(20, Daily, 0, 0, daysInMonth, daysInYear)
		if in.MonthlyTarget != 600 {
			t.Errorf("MonthlyTarget = %v, want 600", in.MonthlyTarget)
		}
	})

	t.Run("zero savings substitutes unit rate", func(t *testing.T) {
		in := ComputeTargetInsights(600, Monthly, 0, 0, daysInMonth, daysInYear)
		if in.TimeToTargetMonths != 600 {
			t.Errorf("TimeToTargetMonths = %v, want 600", in.TimeToTargetMonths)
		}
	})

	t.Run("target already exceeded", func(t *testing.T) {
		in := ComputeTargetInsights(600, Monthly, 900, 0, daysInMonth, daysInYear)
		if in.SavingsGap != -300 {
			t.Errorf("SavingsGap = %v, want -300", in.SavingsGap)
		}
		if in.TimeToTargetMonths != 0 {
			t.Errorf("TimeToTargetMonths = %v, want 0", in.TimeToTargetMonths)
		}
		if in.ProgressPercent != 100 {
			t.Errorf("ProgressPercent = %v, want 100 (clamped)", in.ProgressPercent)
		}
	})

	t.Run("zero target reports zero progress", func(t *testing.T) {
		in := ComputeTargetInsights(0, Monthly, 100, 0, daysInMonth, daysInYear)
		if in.ProgressPercent != 0 {
			t.Errorf("ProgressPercent = %v, want 0", in.ProgressPercent)
		}
	})
}
