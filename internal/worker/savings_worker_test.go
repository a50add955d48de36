package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"pennywise/internal/amqp"
	"pennywise/internal/core"
	"pennywise/internal/services"
	"pennywise/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorker(t *testing.T) (*SavingsWorker, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	savings := services.NewSavingsService(repo)
	return NewSavingsWorker(repo, savings, 2), repo
}

func TestSavingsWorker_HandleRecompute(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects malformed dates", func(t *testing.T) {
		w, _ := newTestWorker(t)
		err := w.HandleRecompute(ctx, &amqp.RecomputeMessage{UserID: 1, Date: "03/10/2025"})
		assert.Error(t, err)
	})

	t.Run("writes the day's savings record", func(t *testing.T) {
		w, repo := newTestWorker(t)

		require.NoError(t, repo.ReplaceBudgets(ctx, 1, []core.Budget{
			{UserID: 1, Section: core.TotalSection, Amount: 3100, Period: core.Monthly},
		}))

		err := w.HandleRecompute(ctx, &amqp.RecomputeMessage{UserID: 1, Date: "2025-03-10"})
		require.NoError(t, err)

		day := core.NewDate(2025, 3, 10)
		records, err := repo.ListDailySavingsBetween(ctx, 1, day, day)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.InDelta(t, 100.0, records[0].Amount, 1e-9)
	})

	t.Run("no budget means no record and no error", func(t *testing.T) {
		w, repo := newTestWorker(t)

		err := w.HandleRecompute(ctx, &amqp.RecomputeMessage{UserID: 1, Date: "2025-03-10"})
		require.NoError(t, err)

		day := core.NewDate(2025, 3, 10)
		records, err := repo.ListDailySavingsBetween(ctx, 1, day, day)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestSavingsWorker_RecomputeAll(t *testing.T) {
	ctx := context.Background()

	t.Run("no users is a no-op", func(t *testing.T) {
		w, _ := newTestWorker(t)
		assert.NoError(t, w.RecomputeAll(ctx))
	})

	t.Run("covers every user with budgeting data", func(t *testing.T) {
		w, repo := newTestWorker(t)

		for _, userID := range []int64{1, 2, 3} {
			require.NoError(t, repo.ReplaceBudgets(ctx, userID, []core.Budget{
				{UserID: userID, Section: core.TotalSection, Amount: 3000, Period: core.Monthly},
			}))
		}

		require.NoError(t, w.RecomputeAll(ctx))

		today := core.DateOf(time.Now().UTC())
		for _, userID := range []int64{1, 2, 3} {
			records, err := repo.ListDailySavingsBetween(ctx, userID, today, today)
			require.NoError(t, err)
			assert.Len(t, records, 1, "user %d missing today's record", userID)
		}
	})
}
