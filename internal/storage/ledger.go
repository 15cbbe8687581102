package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finanzas/internal/core"
)

// Every query in this file is scoped by owner: a row belonging to another user
// behaves exactly like a missing row (ErrNotFound).

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO expenses (user_id, description, amount_cents, category_id, is_fixed, date) VALUES (?, ?, ?, ?, ?, ?)",
		e.UserID, e.Description, e.Amount.Cents, e.CategoryID, e.IsFixed, e.Date,
	)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"user_id", e.UserID,
		"amount_cents", e.Amount.Cents,
		"is_fixed", e.IsFixed)

	return e, nil
}

// ListExpenses returns the user's expenses, newest first. When fixed is
// non-nil the result is filtered by the fixed/variable flag.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID int64, fixed *bool) ([]core.Expense, error) {
	query := "SELECT id, user_id, description, amount_cents, category_id, is_fixed, date FROM expenses WHERE user_id = ?"
	args := []any{userID}
	if fixed != nil {
		query += " AND is_fixed = ?"
		args = append(args, *fixed)
	}
	query += " ORDER BY date DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var e core.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.Description, &e.Amount.Cents, &e.CategoryID, &e.IsFixed, &e.Date); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE expenses SET description = ?, amount_cents = ?, category_id = ? WHERE id = ? AND user_id = ?",
		e.Description, e.Amount.Cents, e.CategoryID, e.ID, e.UserID,
	)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireRow(res, "update expense")
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM expenses WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res, "delete expense")
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO expense_categories (user_id, name, value, color, is_fixed) VALUES (?, ?, ?, ?, ?)",
		c.UserID, c.Name, c.Value, c.Color, c.IsFixed,
	)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category insert id: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID int64, fixed *bool) ([]core.Category, error) {
	query := "SELECT id, user_id, name, value, color, is_fixed FROM expense_categories WHERE user_id = ?"
	args := []any{userID}
	if fixed != nil {
		query += " AND is_fixed = ?"
		args = append(args, *fixed)
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Value, &c.Color, &c.IsFixed); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE expense_categories SET name = ?, value = ?, color = ?, is_fixed = ? WHERE id = ? AND user_id = ?",
		c.Name, c.Value, c.Color, c.IsFixed, c.ID, c.UserID,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res, "update category")
}

// DeleteCategory blocks deletion while expense rows still reference the
// category, so the ledger never ends up with orphan references.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id, userID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete category: %w", err)
	}
	defer tx.Rollback()

	var refs int64
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM expenses WHERE category_id = ? AND user_id = ?", id, userID,
	).Scan(&refs)
	if err != nil {
		return fmt.Errorf("count category references: %w", err)
	}
	if refs > 0 {
		return ErrCategoryInUse
	}

	res, err := tx.ExecContext(ctx,
		"DELETE FROM expense_categories WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if err := requireRow(res, "delete category"); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepository) CreateCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO credit_cards (user_id, name, color, last_numbers, limit_cents, closing_day, due_day) VALUES (?, ?, ?, ?, ?, ?, ?)",
		c.UserID, c.Name, c.Color, c.LastNumbers, c.Limit.Cents, c.ClosingDay, c.DueDay,
	)
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("create card: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("card insert id: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCards(ctx context.Context, userID int64) ([]core.CreditCard, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, name, color, last_numbers, limit_cents, closing_day, due_day FROM credit_cards WHERE user_id = ? ORDER BY name",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var out []core.CreditCard
	for rows.Next() {
		var c core.CreditCard
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.LastNumbers, &c.Limit.Cents, &c.ClosingDay, &c.DueDay); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateCard(ctx context.Context, c core.CreditCard) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE credit_cards SET name = ?, color = ?, last_numbers = ?, limit_cents = ?, closing_day = ?, due_day = ? WHERE id = ? AND user_id = ?",
		c.Name, c.Color, c.LastNumbers, c.Limit.Cents, c.ClosingDay, c.DueDay, c.ID, c.UserID,
	)
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	return requireRow(res, "update card")
}

func (r *SQLiteRepository) DeleteCard(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM credit_cards WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	return requireRow(res, "delete card")
}

func (r *SQLiteRepository) CreatePayment(ctx context.Context, p core.CardPayment) (core.CardPayment, error) {
	if p.Date.IsZero() {
		p.Date = time.Now()
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO credit_card_payments (user_id, description, amount_cents, card_id, current_installment, total_installments, date) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.UserID, p.Description, p.Amount.Cents, p.CardID, p.CurrentInstallment, p.TotalInstallments, p.Date,
	)
	if err != nil {
		return core.CardPayment{}, fmt.Errorf("create payment: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return core.CardPayment{}, fmt.Errorf("payment insert id: %w", err)
	}

	slog.InfoContext(ctx, "Installment plan saved",
		"id", p.ID,
		"user_id", p.UserID,
		"installments", p.TotalInstallments,
		"amount_cents", p.Amount.Cents)

	return p, nil
}

func (r *SQLiteRepository) ListPayments(ctx context.Context, userID int64) ([]core.CardPayment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, description, amount_cents, card_id, current_installment, total_installments, date FROM credit_card_payments WHERE user_id = ? ORDER BY date DESC, id DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []core.CardPayment
	for rows.Next() {
		var p core.CardPayment
		if err := rows.Scan(&p.ID, &p.UserID, &p.Description, &p.Amount.Cents, &p.CardID, &p.CurrentInstallment, &p.TotalInstallments, &p.Date); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdatePayment(ctx context.Context, p core.CardPayment) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE credit_card_payments SET description = ?, amount_cents = ?, card_id = ?, current_installment = ?, total_installments = ? WHERE id = ? AND user_id = ?",
		p.Description, p.Amount.Cents, p.CardID, p.CurrentInstallment, p.TotalInstallments, p.ID, p.UserID,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return requireRow(res, "update payment")
}

func (r *SQLiteRepository) DeletePayment(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM credit_card_payments WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return requireRow(res, "delete payment")
}

// GetSettings returns the user's settings row, or a zero-income default when
// the user never saved one.
func (r *SQLiteRepository) GetSettings(ctx context.Context, userID int64) (core.Settings, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, monthly_income_cents, name, currency, language, theme FROM user_settings WHERE user_id = ?",
		userID,
	)
	var s core.Settings
	err := row.Scan(&s.ID, &s.UserID, &s.MonthlyIncome.Cents, &s.Name, &s.Currency, &s.Language, &s.Theme)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Settings{UserID: userID}, nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("scan settings: %w", err)
	}
	return s, nil
}

// UpsertMonthlyIncome creates the settings row on first use; repeated calls
// for the same owner update the single existing row.
func (r *SQLiteRepository) UpsertMonthlyIncome(ctx context.Context, userID, incomeCents int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, monthly_income_cents) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET monthly_income_cents = excluded.monthly_income_cents`,
		userID, incomeCents,
	)
	if err != nil {
		return fmt.Errorf("upsert monthly income: %w", err)
	}
	return nil
}

// UpsertProfile updates the descriptive settings fields with the same
// upsert-by-owner semantics as the income.
func (r *SQLiteRepository) UpsertProfile(ctx context.Context, s core.Settings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, name, currency, language, theme) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			name = excluded.name,
			currency = excluded.currency,
			language = excluded.language,
			theme = excluded.theme`,
		s.UserID, s.Name, s.Currency, s.Language, s.Theme,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
