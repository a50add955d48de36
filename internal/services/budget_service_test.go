package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"pennywise/internal/core"
	"pennywise/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestBudgetService_SetBudget(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewBudgetService(repo, nil)
	ctx := context.Background()

	t.Run("monthly edit derives the other cadences", func(t *testing.T) {
		got, err := svc.SetBudget(ctx, 1, core.TotalSection, core.Monthly, 3000)
		require.NoError(t, err)

		assert.Equal(t, 3000.0, got.Monthly)
		assert.Equal(t, 36000.0, got.Yearly)
		assert.Greater(t, got.Daily, 0.0)

		rows, err := repo.ListBudgets(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, rows, 3, "all three cadences stored")
	})

	t.Run("monthly edit conflicting with yearly is rejected", func(t *testing.T) {
		_, err := svc.SetBudget(ctx, 2, "food", core.Yearly, 12000)
		require.NoError(t, err)

		_, err = svc.SetBudget(ctx, 2, "food", core.Monthly, 1500)
		assert.ErrorIs(t, err, core.ErrMonthlyExceedsYearly)
	})

	t.Run("other sections survive an edit", func(t *testing.T) {
		_, err := svc.SetBudget(ctx, 3, "food", core.Monthly, 500)
		require.NoError(t, err)
		_, err = svc.SetBudget(ctx, 3, "transport", core.Monthly, 100)
		require.NoError(t, err)

		budgets, err := svc.Budgets(ctx, 3)
		require.NoError(t, err)
		assert.Contains(t, budgets, "food")
		assert.Contains(t, budgets, "transport")
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := svc.SetBudget(ctx, 4, "", core.Monthly, 100)
		assert.ErrorIs(t, err, core.ErrEmptySection)
		_, err = svc.SetBudget(ctx, 4, "food", core.Monthly, 0)
		assert.ErrorIs(t, err, core.ErrInvalidAmount)
		_, err = svc.SetBudget(ctx, 4, "food", core.Period("weekly"), 100)
		assert.ErrorIs(t, err, core.ErrInvalidPeriod)
	})
}

func TestBudgetService_UtilizationReport(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewBudgetService(repo, nil)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceBudgets(ctx, 1, []core.Budget{
		{UserID: 1, Section: core.TotalSection, Amount: 1000, Period: core.Monthly},
		{UserID: 1, Section: "food", Amount: 200, Period: core.Monthly},
		{UserID: 1, Section: "transport", Amount: 100, Period: core.Monthly},
	}))

	mustCreateExpense := func(amount float64, section string, day int) {
		_, err := repo.CreateExpense(ctx, core.Expense{
			UserID:    1,
			Amount:    amount,
			Section:   section,
			CreatedAt: time.Date(2025, 3, day, 12, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}
	mustCreateExpense(190, "food", 5)
	mustCreateExpense(60, "transport", 6)
	mustCreateExpense(700, "rent", 7)

	report, err := svc.UtilizationReport(ctx, 1, 2025, 3)
	require.NoError(t, err)

	assert.Equal(t, 950.0, report.Overall.Spent)
	assert.Equal(t, 95.0, report.Overall.Percent)
	assert.Equal(t, core.SeverityCritical, report.Overall.Severity)
	assert.Equal(t, "#ef4444", report.Overall.Color)

	bySection := make(map[string]SectionUtilization)
	for _, row := range report.Sections {
		bySection[row.Section] = row
	}

	food := bySection["food"]
	assert.Equal(t, 95.0, food.Percent)
	assert.Equal(t, core.SeverityCritical, food.Severity)

	transport := bySection["transport"]
	assert.Equal(t, 60.0, transport.Percent)
	assert.Equal(t, core.SeverityOK, transport.Severity)

	// rent has no budget row, so it appears only in the overall numbers
	assert.NotContains(t, bySection, "rent")
}

func TestBudgetService_FixedCosts(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewBudgetService(repo, nil)
	ctx := context.Background()

	_, err := svc.AddFixedCost(ctx, core.FixedCost{UserID: 1, Name: "", Amount: 10})
	assert.ErrorIs(t, err, core.ErrEmptyName)

	rent, err := svc.AddFixedCost(ctx, core.FixedCost{UserID: 1, Name: "rent", Amount: 800})
	require.NoError(t, err)
	_, err = svc.AddFixedCost(ctx, core.FixedCost{UserID: 1, Name: "internet", Amount: 40})
	require.NoError(t, err)

	total, err := svc.FixedCostTotal(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 840.0, total)

	require.NoError(t, svc.DeleteFixedCost(ctx, 1, rent.ID))
	total, err = svc.FixedCostTotal(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 40.0, total)
}
