package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"pennywise/internal/amqp"
	"pennywise/internal/core"
	"pennywise/internal/log"
	"pennywise/internal/services"
	"pennywise/internal/storage"
)

// SavingsWorker keeps derived daily savings in sync with budgets and
// expenses. It reacts to recompute messages from AMQP and additionally runs
// a periodic full pass over all users, which recovers from lost messages.
type SavingsWorker struct {
	storage     *storage.SQLiteRepository
	savings     *services.SavingsService
	concurrency int
}

func NewSavingsWorker(storage *storage.SQLiteRepository, savings *services.SavingsService, concurrency int) *SavingsWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &SavingsWorker{
		storage:     storage,
		savings:     savings,
		concurrency: concurrency,
	}
}

// HandleRecompute processes a single recompute message from AMQP.
func (w *SavingsWorker) HandleRecompute(ctx context.Context, msg *amqp.RecomputeMessage) error {
	slog.InfoContext(ctx, "Processing recompute message",
		log.FieldUserID, msg.UserID,
		log.FieldDate, msg.Date)

	day, err := time.Parse("2006-01-02", msg.Date)
	if err != nil {
		return fmt.Errorf("parse recompute date %q: %w", msg.Date, err)
	}

	record, written, err := w.savings.RecomputeDay(ctx, msg.UserID, core.DateOf(day))
	if err != nil {
		return fmt.Errorf("recompute savings: %w", err)
	}

	if !written {
		slog.InfoContext(ctx, "No savings recorded for day",
			log.FieldUserID, msg.UserID,
			log.FieldDate, msg.Date)
		return nil
	}

	slog.InfoContext(ctx, "Savings recomputed",
		log.FieldUserID, msg.UserID,
		log.FieldDate, msg.Date,
		log.FieldAmount, record.Amount,
		"daily_budget", record.DailyBudget)
	return nil
}

// RecomputeAll recomputes today's savings for every user with budgeting
// data, a bounded number of users at a time. Per-user failures are logged
// and do not stop the pass.
func (w *SavingsWorker) RecomputeAll(ctx context.Context) error {
	userIDs, err := w.storage.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list user ids: %w", err)
	}

	if len(userIDs) == 0 {
		return nil
	}

	today := core.DateOf(time.Now().UTC())
	slog.InfoContext(ctx, "Starting savings recompute pass",
		"users", len(userIDs),
		log.FieldDate, today.Key())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			if _, _, err := w.savings.RecomputeDay(ctx, userID, today); err != nil {
				slog.ErrorContext(ctx, "Failed to recompute user savings",
					log.FieldUserID, userID, log.FieldError, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("recompute pass: %w", err)
	}

	slog.InfoContext(ctx, "Savings recompute pass completed", "users", len(userIDs))
	return nil
}
