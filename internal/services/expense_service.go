package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pennywise/internal/amqp"
	"pennywise/internal/cache"
	"pennywise/internal/core"
	"pennywise/internal/log"
	"pennywise/internal/storage"
)

// MonthlyReport is the spending analytics view for one month.
type MonthlyReport struct {
	Year           int
	Month          int
	Summary        core.SpendSummary
	Trend          float64
	DaysElapsed    int
	DaysInMonth    int
	IsCurrentMonth bool
}

// SectionReport lists one section's expenses with their total and the
// per-unique-day average.
type SectionReport struct {
	Section       string
	Total         float64
	Count         int
	UniqueDays    int
	AveragePerDay float64
	Expenses      []core.Expense
}

// ExpenseService orchestrates expense and section operations across SQLite
// and AMQP. Writes invalidate the affected month's cached report and publish
// a recompute request; a publish failure never fails the write, the periodic
// worker pass catches up.
type ExpenseService struct {
	storage     *storage.SQLiteRepository
	amqpClient  *amqp.Client
	reportCache *cache.LRUCache[MonthlyReport]
}

func NewExpenseService(storage *storage.SQLiteRepository, amqpClient *amqp.Client, reportCache *cache.LRUCache[MonthlyReport]) *ExpenseService {
	return &ExpenseService{
		storage:     storage,
		amqpClient:  amqpClient,
		reportCache: reportCache,
	}
}

// CreateExpense saves an expense and requests a savings recompute for its day.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	saved, err := s.storage.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.invalidateMonth(saved.UserID, saved.CreatedAt)
	s.publishRecompute(ctx, saved.UserID, saved.CreatedAt)

	return saved, nil
}

// GetExpense returns one expense owned by the user.
func (s *ExpenseService) GetExpense(ctx context.Context, userID, id int64) (core.Expense, error) {
	return s.storage.GetExpense(ctx, userID, id)
}

// UpdateExpense changes an expense's amount and section.
func (s *ExpenseService) UpdateExpense(ctx context.Context, userID, id int64, amount float64, section string) error {
	if amount <= 0 {
		return core.ErrInvalidAmount
	}

	existing, err := s.storage.GetExpense(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.storage.UpdateExpense(ctx, userID, id, amount, section); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}

	s.invalidateMonth(userID, existing.CreatedAt)
	s.publishRecompute(ctx, userID, existing.CreatedAt)

	return nil
}

// DeleteExpense removes an expense and requests a recompute for its day.
func (s *ExpenseService) DeleteExpense(ctx context.Context, userID, id int64) error {
	existing, err := s.storage.GetExpense(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteExpense(ctx, userID, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	s.invalidateMonth(userID, existing.CreatedAt)
	s.publishRecompute(ctx, userID, existing.CreatedAt)

	return nil
}

// ListExpenses returns all of a user's expenses, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	return s.storage.ListExpenses(ctx, userID)
}

// CreateSection adds a section for the user.
func (s *ExpenseService) CreateSection(ctx context.Context, section core.Section) (core.Section, error) {
	if err := section.Validate(); err != nil {
		return core.Section{}, err
	}
	return s.storage.CreateSection(ctx, section)
}

// ListSections returns all of a user's sections.
func (s *ExpenseService) ListSections(ctx context.Context, userID int64) ([]core.Section, error) {
	return s.storage.ListSections(ctx, userID)
}

// DeleteSection removes a section. Its expenses survive as uncategorized.
func (s *ExpenseService) DeleteSection(ctx context.Context, userID int64, name string) error {
	if err := s.storage.DeleteSection(ctx, userID, name); err != nil {
		return err
	}

	// Relabelling shifts the category breakdown in every month the section
	// appears in. Drop the current month eagerly; older entries age out
	// through the cache TTL.
	s.invalidateMonth(userID, time.Now().UTC())
	return nil
}

// MonthlyReport aggregates one month's spending and compares it against the
// previous month. The current month's trend is projected from the days
// elapsed so far.
func (s *ExpenseService) MonthlyReport(ctx context.Context, userID int64, year, month int) (MonthlyReport, error) {
	key := reportCacheKey(userID, year, month)
	if s.reportCache != nil {
		if cached, ok := s.reportCache.Get(key); ok {
			return cached, nil
		}
	}

	start, end := monthRange(year, month)
	expenses, err := s.storage.ListExpensesBetween(ctx, userID, start, end)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("list month expenses: %w", err)
	}

	prevYear, prevMonth := previousMonth(year, month)
	prevStart, prevEnd := monthRange(prevYear, prevMonth)
	prevExpenses, err := s.storage.ListExpensesBetween(ctx, userID, prevStart, prevEnd)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("list previous month expenses: %w", err)
	}

	now := time.Now().UTC()
	isCurrent := now.Year() == year && int(now.Month()) == month
	daysInMonth := core.DaysInMonth(year, month)

	daysElapsed := daysInMonth
	if isCurrent {
		daysElapsed = core.CalendarDaysElapsed(core.DateOf(start), core.DateOf(now))
	}

	summary := core.AggregateSpend(expenses)
	prevSummary := core.AggregateSpend(prevExpenses)

	report := MonthlyReport{
		Year:           year,
		Month:          month,
		Summary:        summary,
		Trend:          core.Trend(summary.Total, prevSummary.Total, isCurrent, daysElapsed, daysInMonth),
		DaysElapsed:    daysElapsed,
		DaysInMonth:    daysInMonth,
		IsCurrentMonth: isCurrent,
	}

	if s.reportCache != nil {
		s.reportCache.Set(key, report)
	}
	return report, nil
}

// SectionReport lists a section's expenses and their total. Pass an empty
// section name for uncategorized expenses.
func (s *ExpenseService) SectionReport(ctx context.Context, userID int64, section string) (SectionReport, error) {
	expenses, err := s.storage.ListExpensesBySection(ctx, userID, section)
	if err != nil {
		return SectionReport{}, fmt.Errorf("list section expenses: %w", err)
	}

	summary := core.AggregateSpend(expenses)
	return SectionReport{
		Section:       section,
		Total:         summary.Total,
		Count:         summary.Count,
		UniqueDays:    summary.UniqueDays,
		AveragePerDay: summary.AveragePerDay,
		Expenses:      expenses,
	}, nil
}

func (s *ExpenseService) invalidateMonth(userID int64, at time.Time) {
	if s.reportCache != nil {
		s.reportCache.Delete(reportCacheKey(userID, at.Year(), int(at.Month())))
	}
}

func (s *ExpenseService) publishRecompute(ctx context.Context, userID int64, at time.Time) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping recompute message")
		return
	}
	if err := s.amqpClient.PublishRecompute(ctx, userID, core.DateOf(at).Key()); err != nil {
		slog.ErrorContext(ctx, "Failed to publish recompute message",
			log.FieldUserID, userID, log.FieldError, err)
	}
}

// Close closes both storage and AMQP connections
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}

	return nil
}

func reportCacheKey(userID int64, year, month int) string {
	return fmt.Sprintf("%d-%04d-%02d", userID, year, month)
}

// monthRange returns the inclusive timestamp bounds of a calendar month in UTC.
func monthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

func previousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}
