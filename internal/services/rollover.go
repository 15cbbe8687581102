package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finanzas/internal/storage"
)

// ErrNotFirstDay is the fail-closed precondition signal: the rollover only
// runs on the first day of a month, anything else performs zero mutations.
var ErrNotFirstDay = errors.New("rollover can only run on the first day of the month")

// RolloverResult reports what one invocation did.
type RolloverResult struct {
	Period     string
	Advanced   int64
	Archived   int64
	AlreadyRun bool
}

// PeriodPublisher is notified after a period has been closed successfully.
type PeriodPublisher interface {
	PublishPeriodClosed(ctx context.Context, period string, advanced, archived int64) error
}

// RolloverProcessor runs the monthly rollover: advance every active
// installment plan by one step (Operation A), then archive and clear the
// variable-expense ledger (Operation B). A commits before B starts; if A
// fails, B never runs. The per-period run marker makes the job at-most-once
// per calendar month even though the trigger itself is just date-based.
type RolloverProcessor struct {
	storage   *storage.SQLiteRepository
	publisher PeriodPublisher
}

// NewRolloverProcessor creates a processor. The publisher is optional; without
// it the period-closed event is skipped.
func NewRolloverProcessor(repo *storage.SQLiteRepository, publisher PeriodPublisher) *RolloverProcessor {
	return &RolloverProcessor{storage: repo, publisher: publisher}
}

func (p *RolloverProcessor) Run(ctx context.Context, now time.Time) (RolloverResult, error) {
	if p.storage == nil {
		return RolloverResult{}, fmt.Errorf("processor not properly initialized")
	}
	if now.Day() != 1 {
		return RolloverResult{}, ErrNotFirstDay
	}

	// The period being closed is the month that just ended; the run marker is
	// keyed by the month we are rolling into.
	runPeriod := now.Format("2006-01")
	closedPeriod := now.AddDate(0, 0, -1).Format("2006-01")
	result := RolloverResult{Period: closedPeriod}

	advanced, err := p.storage.AdvanceInstallments(ctx, runPeriod)
	if errors.Is(err, storage.ErrRolloverAlreadyRun) {
		slog.InfoContext(ctx, "Rollover already ran this period, skipping", "period", runPeriod)
		result.AlreadyRun = true
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("operation A (advance installments): %w", err)
	}
	result.Advanced = advanced

	archived, err := p.storage.ArchiveVariableExpenses(ctx, closedPeriod)
	if err != nil {
		// A is already committed at this point. The caller must know the
		// ledger is in the advanced-but-not-reset window.
		return result, fmt.Errorf("operation B (reset variable expenses, installments already advanced): %w", err)
	}
	result.Archived = archived

	slog.InfoContext(ctx, "Monthly rollover complete",
		"period", closedPeriod,
		"advanced", advanced,
		"archived", archived)

	if p.publisher != nil {
		if err := p.publisher.PublishPeriodClosed(ctx, closedPeriod, advanced, archived); err != nil {
			// The rollover itself succeeded; the export is best-effort.
			slog.ErrorContext(ctx, "Failed to publish period-closed event",
				"period", closedPeriod, "error", err)
		}
	}

	return result, nil
}
