package worker

import (
	"context"
	"fmt"
	"log/slog"

	"finanzas/internal/amqp"
	"finanzas/internal/sheets"
	"finanzas/internal/storage"
)

// ExportWorker backs up closed-period archives to the report destination. It
// reacts to period-closed AMQP messages and can re-export the latest period
// on startup in case a message was lost.
type ExportWorker struct {
	storage *storage.SQLiteRepository
	report  sheets.ReportWriter
}

func NewExportWorker(repo *storage.SQLiteRepository, report sheets.ReportWriter) *ExportWorker {
	return &ExportWorker{storage: repo, report: report}
}

// HandlePeriodClosed processes a single period-closed message from AMQP.
func (w *ExportWorker) HandlePeriodClosed(ctx context.Context, msg *amqp.PeriodClosedMessage) error {
	slog.InfoContext(ctx, "Exporting closed period",
		"period", msg.Period,
		"archived", msg.Archived)

	return w.exportPeriod(ctx, msg.Period)
}

// StartupExportCheck re-exports the most recently closed period. The export
// destination replaces or appends per period, so repeating it is safe.
func (w *ExportWorker) StartupExportCheck(ctx context.Context) error {
	runPeriod, err := w.storage.LastRolloverPeriod(ctx)
	if err != nil {
		return fmt.Errorf("last rollover period: %w", err)
	}
	if runPeriod == "" {
		slog.InfoContext(ctx, "No rollover has run yet, nothing to export")
		return nil
	}

	closedPeriod, err := previousPeriod(runPeriod)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Startup export check", "period", closedPeriod)
	return w.exportPeriod(ctx, closedPeriod)
}

func (w *ExportWorker) exportPeriod(ctx context.Context, period string) error {
	rows, err := w.storage.ListArchivedExpenses(ctx, period)
	if err != nil {
		return fmt.Errorf("load archived ledger: %w", err)
	}
	if len(rows) == 0 {
		slog.InfoContext(ctx, "Closed period has no archived expenses, skipping export", "period", period)
		return nil
	}

	if err := w.report.AppendArchive(ctx, period, rows); err != nil {
		return fmt.Errorf("export period %s: %w", period, err)
	}

	slog.InfoContext(ctx, "Period export complete", "period", period, "rows", len(rows))
	return nil
}

// previousPeriod maps a run marker ("2006-01") to the period it closed.
func previousPeriod(runPeriod string) (string, error) {
	var year, month int
	if _, err := fmt.Sscanf(runPeriod, "%d-%d", &year, &month); err != nil {
		return "", fmt.Errorf("parse period %q: %w", runPeriod, err)
	}
	month--
	if month == 0 {
		month = 12
		year--
	}
	return fmt.Sprintf("%04d-%02d", year, month), nil
}
