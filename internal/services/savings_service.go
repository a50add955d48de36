package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pennywise/internal/core"
	"pennywise/internal/log"
	"pennywise/internal/storage"
)

// SavingsService computes and stores derived daily savings and answers
// savings analytics queries. All derived values live in the database and are
// written only here, by recompute, never edited directly.
type SavingsService struct {
	storage *storage.SQLiteRepository
}

func NewSavingsService(storage *storage.SQLiteRepository) *SavingsService {
	return &SavingsService{storage: storage}
}

// RecomputeDay rebuilds the savings record for one user and day from the
// current overall budget and the day's month of spending. Days that end with
// zero savings get no record; the second return value reports whether a
// record was written.
func (s *SavingsService) RecomputeDay(ctx context.Context, userID int64, day core.Date) (core.DailySavings, bool, error) {
	budgets, err := s.storage.ListBudgets(ctx, userID)
	if err != nil {
		return core.DailySavings{}, false, fmt.Errorf("list budgets: %w", err)
	}

	year, month := day.Year(), int(day.Month())
	daysInMonth := core.DaysInMonth(year, month)
	daysInYear := core.DaysInYear(year)

	amounts := core.AmountsFromRows(budgets, core.TotalSection)
	dailyBudget := amounts.EffectiveDaily(daysInMonth, daysInYear)
	if dailyBudget <= 0 {
		slog.DebugContext(ctx, "No overall budget, skipping savings recompute",
			log.FieldUserID, userID, log.FieldDate, day.Key())
		return core.DailySavings{}, false, nil
	}

	start, end := monthRange(year, month)
	expenses, err := s.storage.ListExpensesBetween(ctx, userID, start, end)
	if err != nil {
		return core.DailySavings{}, false, fmt.Errorf("list month expenses: %w", err)
	}

	var monthTotal float64
	for _, e := range expenses {
		monthTotal += e.Amount
	}
	dailySpent := monthTotal / float64(daysInMonth)

	record := core.DailySavings{
		UserID:      userID,
		Date:        day,
		Amount:      core.ComputeDailySavings(dailyBudget, dailySpent),
		DailyBudget: dailyBudget,
		ActualSpent: dailySpent,
	}

	if record.Amount <= 0 {
		return record, false, nil
	}

	if err := s.storage.UpsertDailySavings(ctx, record); err != nil {
		return core.DailySavings{}, false, fmt.Errorf("upsert daily savings: %w", err)
	}
	return record, true, nil
}

// Summary returns the month-to-date savings summary.
func (s *SavingsService) Summary(ctx context.Context, userID int64) (core.SavingsSummary, error) {
	now := time.Now().UTC()
	from := core.NewDate(now.Year(), int(now.Month()), 1)
	to := core.DateOf(now)

	records, err := s.storage.ListDailySavingsBetween(ctx, userID, from, to)
	if err != nil {
		return core.SavingsSummary{}, fmt.Errorf("list daily savings: %w", err)
	}
	return core.SummarizeSavings(records), nil
}

// Monthly builds the savings report for one month, with the trend against
// the previous month.
func (s *SavingsService) Monthly(ctx context.Context, userID int64, year, month int) (core.MonthlySavingsReport, error) {
	daysInMonth := core.DaysInMonth(year, month)

	from := core.NewDate(year, month, 1)
	to := core.NewDate(year, month, daysInMonth)
	records, err := s.storage.ListDailySavingsBetween(ctx, userID, from, to)
	if err != nil {
		return core.MonthlySavingsReport{}, fmt.Errorf("list daily savings: %w", err)
	}

	prevYear, prevMonth := previousMonth(year, month)
	prevFrom := core.NewDate(prevYear, prevMonth, 1)
	prevTo := core.NewDate(prevYear, prevMonth, core.DaysInMonth(prevYear, prevMonth))
	prevRecords, err := s.storage.ListDailySavingsBetween(ctx, userID, prevFrom, prevTo)
	if err != nil {
		return core.MonthlySavingsReport{}, fmt.Errorf("list previous daily savings: %w", err)
	}

	now := time.Now().UTC()
	isCurrent := now.Year() == year && int(now.Month()) == month

	daysInPeriod := daysInMonth
	if isCurrent {
		daysInPeriod = core.CalendarDaysElapsed(from, core.DateOf(now))
	}

	return core.MonthlySavings(records, prevRecords, isCurrent, daysInMonth, daysInPeriod), nil
}

// SetTarget creates or replaces the user's savings target.
func (s *SavingsService) SetTarget(ctx context.Context, target core.SavingsTarget) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if err := s.storage.UpsertSavingsTarget(ctx, target); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Savings target set",
		log.FieldUserID, target.UserID,
		log.FieldAmount, target.Amount,
		log.FieldPeriod, string(target.Period))
	return nil
}

// Target returns the user's savings target.
func (s *SavingsService) Target(ctx context.Context, userID int64) (core.SavingsTarget, error) {
	return s.storage.GetSavingsTarget(ctx, userID)
}

// TargetInsights relates the savings target to this month's savings and
// spending. Returns core.ErrNoSavingsTarget when none is set.
func (s *SavingsService) TargetInsights(ctx context.Context, userID int64) (core.TargetInsights, error) {
	target, err := s.storage.GetSavingsTarget(ctx, userID)
	if err != nil {
		return core.TargetInsights{}, err
	}

	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())
	daysInMonth := core.DaysInMonth(year, month)
	daysInYear := core.DaysInYear(year)

	from := core.NewDate(year, month, 1)
	records, err := s.storage.ListDailySavingsBetween(ctx, userID, from, core.DateOf(now))
	if err != nil {
		return core.TargetInsights{}, fmt.Errorf("list daily savings: %w", err)
	}
	savings := core.SummarizeSavings(records).TotalSavings

	start, end := monthRange(year, month)
	expenses, err := s.storage.ListExpensesBetween(ctx, userID, start, end)
	if err != nil {
		return core.TargetInsights{}, fmt.Errorf("list month expenses: %w", err)
	}
	var spending float64
	for _, e := range expenses {
		spending += e.Amount
	}

	return core.ComputeTargetInsights(target.Amount, target.Period, savings, spending, daysInMonth, daysInYear), nil
}
