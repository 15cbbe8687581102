package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"finanzas/internal/amqp"
	"finanzas/internal/config"
	"finanzas/internal/services"
	"finanzas/internal/storage"
)

// One-shot monthly rollover, meant to run from cron on the first of the month.
// The per-period run marker makes an accidental second invocation a no-op.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting rollover")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var publisher services.PeriodPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without period-closed events", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
		}
	}

	processor := services.NewRolloverProcessor(repo, publisher)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := processor.Run(ctx, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrNotFirstDay) {
			logger.Error("Rollover refused: today is not the first day of the month")
			os.Exit(2)
		}
		logger.Error("Rollover failed", "error", err)
		os.Exit(1)
	}

	if result.AlreadyRun {
		logger.Info("Rollover already ran this period, nothing to do", "period", result.Period)
		return
	}
	logger.Info("Rollover complete",
		"period", result.Period,
		"advanced", result.Advanced,
		"archived", result.Archived)
}
