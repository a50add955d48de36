package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pennywise/internal/amqp"
	"pennywise/internal/cache"
	"pennywise/internal/config"
	"pennywise/internal/log"
	"pennywise/internal/services"
	"pennywise/internal/storage"
	"pennywise/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentWorker})
	log.SetDefault(logger)

	logger.Info("Starting pennywise-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}

	// AMQP is optional (set AMQP_URL to the empty string to disable it).
	// Without it the worker still runs the periodic recompute pass; it just
	// cannot react to writes immediately.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
	} else {
		logger.Info("AMQP disabled - empty AMQP_URL")
	}

	reportCache := cache.NewLRUCache[services.MonthlyReport](cfg.CacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(reportCache)
	cacheManager.StartCleanup(cfg.CacheTTL)
	defer cacheManager.Stop()

	// The expense service owns the storage and AMQP lifecycles; embedding
	// callers share it with the worker over the same database.
	expenseService := services.NewExpenseService(sqliteRepo, amqpClient, reportCache)
	defer expenseService.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	savingsService := services.NewSavingsService(sqliteRepo)
	savingsWorker := worker.NewSavingsWorker(sqliteRepo, savingsService, cfg.RecomputeConcurrency)

	// Catch up on anything missed while the worker was down.
	logger.Info("Performing startup recompute pass...")
	if err := savingsWorker.RecomputeAll(ctx); err != nil {
		logger.Error("Startup recompute pass failed", log.FieldError, err)
		// Don't exit - the periodic pass will retry
	}

	if amqpClient != nil {
		go func() {
			err := amqpClient.ConsumeRecompute(ctx, func(msg *amqp.RecomputeMessage) error {
				return savingsWorker.HandleRecompute(ctx, msg)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", log.FieldError, err)
				cancel()
			}
		}()
	}

	ticker := time.NewTicker(cfg.RecomputeInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := savingsWorker.RecomputeAll(ctx); err != nil {
					logger.Error("Periodic recompute pass failed", log.FieldError, err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()

	// Give in-flight recomputes a moment to finish.
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}
