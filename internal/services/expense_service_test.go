package services

import (
	"context"
	"testing"
	"time"

	"pennywise/internal/cache"
	"pennywise/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExpenseService(t *testing.T) *ExpenseService {
	t.Helper()
	repo := newTestRepo(t)
	reportCache := cache.NewLRUCache[MonthlyReport](16, time.Minute)
	return NewExpenseService(repo, nil, reportCache)
}

func TestExpenseService_CreateExpense(t *testing.T) {
	svc := newExpenseService(t)
	ctx := context.Background()

	_, err := svc.CreateExpense(ctx, core.Expense{UserID: 1, Amount: 0})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	created, err := svc.CreateExpense(ctx, core.Expense{UserID: 1, Amount: 9.99, Section: "food"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	uncategorized, err := svc.CreateExpense(ctx, core.Expense{UserID: 1, Amount: 5})
	require.NoError(t, err)
	assert.Equal(t, "", uncategorized.Section)
}

func TestExpenseService_MonthlyReport(t *testing.T) {
	svc := newExpenseService(t)
	ctx := context.Background()

	mustCreate := func(amount float64, section string, year, month, day int) {
		_, err := svc.CreateExpense(ctx, core.Expense{
			UserID:    1,
			Amount:    amount,
			Section:   section,
			CreatedAt: time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	// February 2025: 200 total
	mustCreate(200, "food", 2025, 2, 10)
	// March 2025: 100 + 50 on day one, 30 on day two
	mustCreate(100, "food", 2025, 3, 1)
	mustCreate(50, "transport", 2025, 3, 1)
	mustCreate(30, "food", 2025, 3, 2)

	report, err := svc.MonthlyReport(ctx, 1, 2025, 3)
	require.NoError(t, err)

	assert.Equal(t, 180.0, report.Summary.Total)
	assert.Equal(t, 2, report.Summary.UniqueDays)
	assert.Equal(t, 90.0, report.Summary.AveragePerDay)
	assert.Equal(t, 31, report.DaysInMonth)
	assert.False(t, report.IsCurrentMonth)
	// (180 - 200) / 200 * 100
	assert.InDelta(t, -10.0, report.Trend, 1e-9)

	require.Len(t, report.Summary.Categories, 2)
	assert.Equal(t, "food", report.Summary.Categories[0].Name)
	assert.Equal(t, 130.0, report.Summary.Categories[0].Total)
}

func TestExpenseService_MonthlyReportCacheInvalidation(t *testing.T) {
	svc := newExpenseService(t)
	ctx := context.Background()

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err := svc.CreateExpense(ctx, core.Expense{UserID: 1, Amount: 100, CreatedAt: at})
	require.NoError(t, err)

	first, err := svc.MonthlyReport(ctx, 1, 2025, 3)
	require.NoError(t, err)
	assert.Equal(t, 100.0, first.Summary.Total)

	// A write in the same month must be visible in the next report
	_, err = svc.CreateExpense(ctx, core.Expense{UserID: 1, Amount: 40, CreatedAt: at})
	require.NoError(t, err)

	second, err := svc.MonthlyReport(ctx, 1, 2025, 3)
	require.NoError(t, err)
	assert.Equal(t, 140.0, second.Summary.Total)
}

func TestExpenseService_SectionReport(t *testing.T) {
	svc := newExpenseService(t)
	ctx := context.Background()

	_, err := svc.CreateExpense(ctx, core.Expense{UserID: 1, Amount: 10, Section: "food"})
	require.NoError(t, err)
	_, err = svc.CreateExpense(ctx, core.Expense{UserID: 1, Amount: 20, Section: "food"})
	require.NoError(t, err)
	_, err = svc.CreateExpense(ctx, core.Expense{UserID: 1, Amount: 99, Section: "rent"})
	require.NoError(t, err)

	report, err := svc.SectionReport(ctx, 1, "food")
	require.NoError(t, err)
	assert.Equal(t, 30.0, report.Total)
	assert.Equal(t, 2, report.Count)
	assert.Len(t, report.Expenses, 2)
}

func TestExpenseService_Sections(t *testing.T) {
	svc := newExpenseService(t)
	ctx := context.Background()

	_, err := svc.CreateSection(ctx, core.Section{UserID: 1, Name: core.TotalSection})
	assert.Error(t, err, "reserved name must be rejected")

	_, err = svc.CreateSection(ctx, core.Section{UserID: 1, Name: "food"})
	require.NoError(t, err)

	created, err := svc.CreateExpense(ctx, core.Expense{UserID: 1, Amount: 10, Section: "food"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSection(ctx, 1, "food"))

	got, err := svc.GetExpense(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "", got.Section)

	sections, err := svc.ListSections(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, sections)
}
