package core

// BudgetAmounts is a user's overall budget expressed at up to three cadences.
// A zero value means the cadence was not set by the user; absent inputs are
// treated as zero throughout.
type BudgetAmounts struct {
	Daily   float64
	Monthly float64
	Yearly  float64
}

// NormalizeBudget applies an edit at one cadence and derives a consistent
// triple from it.
//
// Derived values never overwrite a cadence the user already set, with one
// exception: a yearly edit is authoritative and cascades down to both lower
// cadences unconditionally. A daily or monthly edit whose derived
// higher-cadence value would exceed an existing user-set budget fails with
// the matching conflict error instead of silently overwriting it.
func NormalizeBudget(amounts BudgetAmounts, edited Period, daysInMonth, daysInYear int) (BudgetAmounts, error) {
	out := amounts

	switch edited {
	case Daily:
		derivedMonthly := ToMonthly(amounts.Daily, Daily, daysInMonth, daysInYear)
		derivedYearly := ToYearly(amounts.Daily, Daily, daysInMonth, daysInYear)
		if amounts.Monthly > 0 && derivedMonthly > amounts.Monthly {
			return amounts, ErrDailyExceedsMonthly
		}
		if amounts.Yearly > 0 && derivedYearly > amounts.Yearly {
			return amounts, ErrDailyExceedsYearly
		}
		if amounts.Monthly == 0 {
			out.Monthly = derivedMonthly
		}
		if amounts.Yearly == 0 {
			out.Yearly = derivedYearly
		}

	case Monthly:
		derivedDaily := ToDaily(amounts.Monthly, Monthly, daysInMonth, daysInYear)
		derivedYearly := ToYearly(amounts.Monthly, Monthly, daysInMonth, daysInYear)
		if amounts.Yearly > 0 && derivedYearly > amounts.Yearly {
			return amounts, ErrMonthlyExceedsYearly
		}
		if amounts.Daily == 0 {
			out.Daily = derivedDaily
		}
		if amounts.Yearly == 0 {
			out.Yearly = derivedYearly
		}

	case Yearly:
		// Yearly is the source of truth; always cascade down.
		out.Monthly = ToMonthly(amounts.Yearly, Yearly, daysInMonth, daysInYear)
		out.Daily = ToDaily(amounts.Yearly, Yearly, daysInMonth, daysInYear)

	default:
		return amounts, ErrInvalidPeriod
	}

	return out, nil
}

// EffectiveDaily returns the daily budget implied by whichever cadence is
// set, preferring the cadence closest to daily.
func (b BudgetAmounts) EffectiveDaily(daysInMonth, daysInYear int) float64 {
	switch {
	case b.Daily > 0:
		return b.Daily
	case b.Monthly > 0:
		return ToDaily(b.Monthly, Monthly, daysInMonth, daysInYear)
	case b.Yearly > 0:
		return ToDaily(b.Yearly, Yearly, daysInMonth, daysInYear)
	}
	return 0
}

// EffectiveMonthly returns the monthly budget implied by whichever cadence
// is set, preferring an explicit monthly value.
func (b BudgetAmounts) EffectiveMonthly(daysInMonth, daysInYear int) float64 {
	switch {
	case b.Monthly > 0:
		return b.Monthly
	case b.Daily > 0:
		return ToMonthly(b.Daily, Daily, daysInMonth, daysInYear)
	case b.Yearly > 0:
		return ToMonthly(b.Yearly, Yearly, daysInMonth, daysInYear)
	}
	return 0
}

// EffectiveYearly returns the yearly budget implied by whichever cadence is
// set, preferring an explicit yearly value.
func (b BudgetAmounts) EffectiveYearly(daysInMonth, daysInYear int) float64 {
	switch {
	case b.Yearly > 0:
		return b.Yearly
	case b.Monthly > 0:
		return ToYearly(b.Monthly, Monthly, daysInMonth, daysInYear)
	case b.Daily > 0:
		return ToYearly(b.Daily, Daily, daysInMonth, daysInYear)
	}
	return 0
}

// IsZero reports whether no cadence is set.
func (b BudgetAmounts) IsZero() bool {
	return b.Daily == 0 && b.Monthly == 0 && b.Yearly == 0
}

// Rows expands the triple into budget rows for the given user and section,
// one row per set cadence.
func (b BudgetAmounts) Rows(userID int64, section string) []Budget {
	var rows []Budget
	if b.Daily > 0 {
		rows = append(rows, Budget{UserID: userID, Section: section, Amount: b.Daily, Period: Daily})
	}
	if b.Monthly > 0 {
		rows = append(rows, Budget{UserID: userID, Section: section, Amount: b.Monthly, Period: Monthly})
	}
	if b.Yearly > 0 {
		rows = append(rows, Budget{UserID: userID, Section: section, Amount: b.Yearly, Period: Yearly})
	}
	return rows
}

// AmountsFromRows collapses budget rows for one section back into a triple.
func AmountsFromRows(rows []Budget, section string) BudgetAmounts {
	var b BudgetAmounts
	for _, row := range rows {
		if row.Section != section {
			continue
		}
		switch row.Period {
		case Daily:
			b.Daily = row.Amount
		case Monthly:
			b.Monthly = row.Amount
		case Yearly:
			b.Yearly = row.Amount
		}
	}
	return b
}
