package core

import "sort"

// Uncategorized is the presentation label for expenses with an empty section.
const Uncategorized = "Uncategorized"

// CategoryTotal is an amount summed per section label.
type CategoryTotal struct {
	Name  string
	Total float64
}

// SpendSummary aggregates a list of expenses.
type SpendSummary struct {
	Total         float64
	Categories    []CategoryTotal // descending by total, stable on ties
	UniqueDays    int             // distinct calendar days with at least one expense
	AveragePerDay float64         // Total / UniqueDays, 0 when UniqueDays is 0
	Count         int
}

// AggregateSpend computes totals, the per-category breakdown and the
// per-unique-day average for the given expenses. Expenses with an empty
// section are grouped under Uncategorized.
func AggregateSpend(expenses []Expense) SpendSummary {
	sum := SpendSummary{Count: len(expenses)}

	totals := make(map[string]float64)
	var order []string
	days := make(map[string]struct{})

	for _, e := range expenses {
		sum.Total += e.Amount

		name := e.Section
		if name == "" {
			name = Uncategorized
		}
		if _, seen := totals[name]; !seen {
			order = append(order, name)
		}
		totals[name] += e.Amount

		days[DateOf(e.CreatedAt).Key()] = struct{}{}
	}

	sum.UniqueDays = len(days)
	if sum.UniqueDays > 0 {
		sum.AveragePerDay = sum.Total / float64(sum.UniqueDays)
	}

	sum.Categories = make([]CategoryTotal, 0, len(order))
	for _, name := range order {
		sum.Categories = append(sum.Categories, CategoryTotal{Name: name, Total: totals[name]})
	}
	// Stable sort keeps first-encounter order for equal totals.
	sort.SliceStable(sum.Categories, func(i, j int) bool {
		return sum.Categories[i].Total > sum.Categories[j].Total
	})

	return sum
}

// Trend returns the percentage change of a period's total against the
// previous period.
//
// For a completed period the comparison is direct. For the still-in-progress
// current period the total is first projected to a full period:
// (current / daysElapsed) * daysInFullPeriod. A zero previous total (or a
// zero daysElapsed during projection) yields 0 rather than an error; those
// are defined degenerate cases, not failures.
func Trend(currentTotal, previousTotal float64, isCurrentPeriod bool, daysElapsed, daysInFullPeriod int) float64 {
	if previousTotal == 0 {
		return 0
	}
	if isCurrentPeriod {
		if daysElapsed == 0 {
			return 0
		}
		projected := currentTotal / float64(daysElapsed) * float64(daysInFullPeriod)
		return (projected - previousTotal) / previousTotal * 100
	}
	return (currentTotal - previousTotal) / previousTotal * 100
}

// CalendarDaysElapsed returns the inclusive day count from start through end.
func CalendarDaysElapsed(start, end Date) int {
	if end.Before(start.Time) {
		return 0
	}
	return int(end.Sub(start.Time).Hours()/24) + 1
}
