package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finanzas/internal/core"
)

// AdvanceInstallments is Operation A of the monthly rollover. The period run
// marker and the advancement commit in one transaction: a failed advance does
// not burn the period, and a recorded period can never be advanced twice.
// Plans already on their final installment are left untouched.
func (r *SQLiteRepository) AdvanceInstallments(ctx context.Context, period string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin advance installments: %w", err)
	}
	defer tx.Rollback()

	var ran bool
	err = tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM rollover_runs WHERE period = ?)", period,
	).Scan(&ran)
	if err != nil {
		return 0, fmt.Errorf("check rollover run: %w", err)
	}
	if ran {
		return 0, ErrRolloverAlreadyRun
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO rollover_runs (period, ran_at) VALUES (?, ?)", period, time.Now(),
	); err != nil {
		return 0, fmt.Errorf("record rollover run: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE credit_card_payments SET current_installment = current_installment + 1 WHERE current_installment < total_installments")
	if err != nil {
		return 0, fmt.Errorf("advance installments: %w", err)
	}
	advanced, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("advanced rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit advance installments: %w", err)
	}

	slog.InfoContext(ctx, "Installment plans advanced", "period", period, "advanced", advanced)
	return advanced, nil
}

// ArchiveVariableExpenses is Operation B of the monthly rollover: snapshot all
// non-fixed expenses into expense_archive under the closed period, then clear
// them so the new month starts with an empty variable ledger. Single
// transaction; fixed expenses are untouched.
func (r *SQLiteRepository) ArchiveVariableExpenses(ctx context.Context, period string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin archive expenses: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO expense_archive (expense_id, user_id, description, amount_cents, category_id, period, archived_at)
		SELECT id, user_id, description, amount_cents, category_id, ?, ?
		FROM expenses WHERE is_fixed = 0`,
		period, time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("archive variable expenses: %w", err)
	}
	archived, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("archived rows affected: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE is_fixed = 0"); err != nil {
		return 0, fmt.Errorf("clear variable expenses: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit archive expenses: %w", err)
	}

	slog.InfoContext(ctx, "Variable expenses archived", "period", period, "archived", archived)
	return archived, nil
}

// ListArchivedExpenses returns the archived ledger for one closed period,
// oldest entry first. Used by the export worker.
func (r *SQLiteRepository) ListArchivedExpenses(ctx context.Context, period string) ([]core.ArchivedExpense, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, expense_id, user_id, description, amount_cents, category_id, period, archived_at FROM expense_archive WHERE period = ? ORDER BY id",
		period,
	)
	if err != nil {
		return nil, fmt.Errorf("list archived expenses: %w", err)
	}
	defer rows.Close()

	var out []core.ArchivedExpense
	for rows.Next() {
		var a core.ArchivedExpense
		if err := rows.Scan(&a.ID, &a.ExpenseID, &a.UserID, &a.Description, &a.Amount.Cents, &a.CategoryID, &a.Period, &a.ArchivedAt); err != nil {
			return nil, fmt.Errorf("scan archived expense: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// LastRolloverPeriod returns the most recent period marker, or "" when the
// rollover never ran.
func (r *SQLiteRepository) LastRolloverPeriod(ctx context.Context) (string, error) {
	var period string
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(period), '') FROM rollover_runs").Scan(&period)
	if err != nil {
		return "", fmt.Errorf("last rollover period: %w", err)
	}
	return period, nil
}
