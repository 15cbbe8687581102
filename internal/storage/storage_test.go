package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestUser(t *testing.T, repo *SQLiteRepository, username string) User {
	t.Helper()
	user, err := repo.CreateUser(context.Background(), username, "hash")
	require.NoError(t, err)
	return user
}

func newTestCategory(t *testing.T, repo *SQLiteRepository, userID int64, name string) core.Category {
	t.Helper()
	c := core.Category{UserID: userID, Name: name}
	c.Normalize()
	saved, err := repo.CreateCategory(context.Background(), c)
	require.NoError(t, err)
	return saved
}

func TestUsersAndSessions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := newTestUser(t, repo, "alice")
	assert.Equal(t, "alice", user.Username)
	assert.NotZero(t, user.ID)

	got, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = repo.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.CreateSession(ctx, "tok-1", user.ID, time.Now().Add(time.Hour)))
	session, err := repo.GetSession(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)

	// Expired sessions behave like missing ones.
	require.NoError(t, repo.CreateSession(ctx, "tok-old", user.ID, time.Now().Add(-time.Hour)))
	_, err = repo.GetSession(ctx, "tok-old")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := repo.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, repo.DeleteSession(ctx, "tok-1"))
	_, err = repo.GetSession(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpenseCRUDAndOwnerScoping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	alice := newTestUser(t, repo, "alice")
	bob := newTestUser(t, repo, "bob")
	category := newTestCategory(t, repo, alice.ID, "Groceries")

	saved, err := repo.CreateExpense(ctx, core.Expense{
		UserID:      alice.ID,
		Description: "market",
		Amount:      core.Money{Cents: 2500},
		CategoryID:  category.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.False(t, saved.Date.IsZero())

	list, err := repo.ListExpenses(ctx, alice.ID, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "market", list[0].Description)

	// Bob sees nothing and cannot touch Alice's rows.
	list, err = repo.ListExpenses(ctx, bob.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, list)

	stolen := saved
	stolen.UserID = bob.ID
	stolen.Description = "hijacked"
	assert.ErrorIs(t, repo.UpdateExpense(ctx, stolen), ErrNotFound)
	assert.ErrorIs(t, repo.DeleteExpense(ctx, saved.ID, bob.ID), ErrNotFound)

	saved.Description = "supermarket"
	saved.Amount.Cents = 3000
	require.NoError(t, repo.UpdateExpense(ctx, saved))

	list, err = repo.ListExpenses(ctx, alice.ID, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "supermarket", list[0].Description)
	assert.EqualValues(t, 3000, list[0].Amount.Cents)

	require.NoError(t, repo.DeleteExpense(ctx, saved.ID, alice.ID))
	assert.ErrorIs(t, repo.DeleteExpense(ctx, saved.ID, alice.ID), ErrNotFound)
}

func TestListExpensesFixedFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := newTestUser(t, repo, "alice")
	category := newTestCategory(t, repo, user.ID, "Misc")

	for _, e := range []core.Expense{
		{UserID: user.ID, Description: "coffee", Amount: core.Money{Cents: 400}, CategoryID: category.ID},
		{UserID: user.ID, Description: "rent", Amount: core.Money{Cents: 90000}, CategoryID: category.ID, IsFixed: true},
	} {
		_, err := repo.CreateExpense(ctx, e)
		require.NoError(t, err)
	}

	fixed := true
	list, err := repo.ListExpenses(ctx, user.ID, &fixed)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "rent", list[0].Description)

	fixed = false
	list, err = repo.ListExpenses(ctx, user.ID, &fixed)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "coffee", list[0].Description)
}

func TestDeleteCategoryInUse(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := newTestUser(t, repo, "alice")
	category := newTestCategory(t, repo, user.ID, "Groceries")

	expense, err := repo.CreateExpense(ctx, core.Expense{
		UserID:      user.ID,
		Description: "market",
		Amount:      core.Money{Cents: 2500},
		CategoryID:  category.ID,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, repo.DeleteCategory(ctx, category.ID, user.ID), ErrCategoryInUse)

	// Category survives the refused delete.
	list, err := repo.ListCategories(ctx, user.ID, nil)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.DeleteExpense(ctx, expense.ID, user.ID))
	require.NoError(t, repo.DeleteCategory(ctx, category.ID, user.ID))
}

func TestCardAndPaymentCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := newTestUser(t, repo, "alice")

	card, err := repo.CreateCard(ctx, core.CreditCard{
		UserID:      user.ID,
		Name:        "Visa",
		LastNumbers: "1234",
		Limit:       core.Money{Cents: 500000},
		ClosingDay:  28,
		DueDay:      10,
	})
	require.NoError(t, err)

	payment, err := repo.CreatePayment(ctx, core.CardPayment{
		UserID:             user.ID,
		Description:        "laptop",
		Amount:             core.Money{Cents: 50000},
		CardID:             card.ID,
		CurrentInstallment: 1,
		TotalInstallments:  12,
	})
	require.NoError(t, err)

	payments, err := repo.ListPayments(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, 1, payments[0].CurrentInstallment)
	assert.Equal(t, 12, payments[0].TotalInstallments)

	payment.CurrentInstallment = 3
	require.NoError(t, repo.UpdatePayment(ctx, payment))

	require.NoError(t, repo.DeletePayment(ctx, payment.ID, user.ID))
	require.NoError(t, repo.DeleteCard(ctx, card.ID, user.ID))
	assert.ErrorIs(t, repo.DeleteCard(ctx, card.ID, user.ID), ErrNotFound)
}

func TestSettingsUpsertByOwner(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := newTestUser(t, repo, "alice")

	// Missing row reads as zero-income defaults, not an error.
	settings, err := repo.GetSettings(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, settings.MonthlyIncome.Cents)

	require.NoError(t, repo.UpsertMonthlyIncome(ctx, user.ID, 100000))
	require.NoError(t, repo.UpsertMonthlyIncome(ctx, user.ID, 120000))

	settings, err = repo.GetSettings(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 120000, settings.MonthlyIncome.Cents)

	// Repeated upserts keep a single row per owner.
	var count int
	require.NoError(t, repo.db.QueryRow(
		"SELECT COUNT(*) FROM user_settings WHERE user_id = ?", user.ID).Scan(&count))
	assert.Equal(t, 1, count)

	require.NoError(t, repo.UpsertProfile(ctx, core.Settings{
		UserID:   user.ID,
		Name:     "Alice",
		Currency: "EUR",
		Language: "es",
		Theme:    "dark",
	}))

	settings, err = repo.GetSettings(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", settings.Name)
	assert.Equal(t, "EUR", settings.Currency)
	assert.EqualValues(t, 120000, settings.MonthlyIncome.Cents)
}

func TestAdvanceInstallments(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := newTestUser(t, repo, "alice")
	card, err := repo.CreateCard(ctx, core.CreditCard{UserID: user.ID, Name: "Visa"})
	require.NoError(t, err)

	active, err := repo.CreatePayment(ctx, core.CardPayment{
		UserID: user.ID, Description: "laptop", Amount: core.Money{Cents: 50000},
		CardID: card.ID, CurrentInstallment: 2, TotalInstallments: 5,
	})
	require.NoError(t, err)

	terminal, err := repo.CreatePayment(ctx, core.CardPayment{
		UserID: user.ID, Description: "phone", Amount: core.Money{Cents: 30000},
		CardID: card.ID, CurrentInstallment: 3, TotalInstallments: 3,
	})
	require.NoError(t, err)

	advanced, err := repo.AdvanceInstallments(ctx, "2026-02")
	require.NoError(t, err)
	assert.EqualValues(t, 1, advanced)

	payments, err := repo.ListPayments(ctx, user.ID)
	require.NoError(t, err)
	byID := map[int64]core.CardPayment{}
	for _, p := range payments {
		byID[p.ID] = p
	}
	assert.Equal(t, 3, byID[active.ID].CurrentInstallment, "2/5 advances to 3/5")
	assert.Equal(t, 3, byID[terminal.ID].CurrentInstallment, "terminal 3/3 stays put")
}

func TestAdvanceInstallmentsGuard(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := newTestUser(t, repo, "alice")
	card, err := repo.CreateCard(ctx, core.CreditCard{UserID: user.ID, Name: "Visa"})
	require.NoError(t, err)

	_, err = repo.CreatePayment(ctx, core.CardPayment{
		UserID: user.ID, Description: "laptop", Amount: core.Money{Cents: 50000},
		CardID: card.ID, CurrentInstallment: 1, TotalInstallments: 12,
	})
	require.NoError(t, err)

	_, err = repo.AdvanceInstallments(ctx, "2026-02")
	require.NoError(t, err)

	// Same period again: guard fires, nothing moves.
	_, err = repo.AdvanceInstallments(ctx, "2026-02")
	assert.ErrorIs(t, err, ErrRolloverAlreadyRun)

	payments, err := repo.ListPayments(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, 2, payments[0].CurrentInstallment)

	// A new period advances again.
	advanced, err := repo.AdvanceInstallments(ctx, "2026-03")
	require.NoError(t, err)
	assert.EqualValues(t, 1, advanced)

	payments, err = repo.ListPayments(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, payments[0].CurrentInstallment)

	period, err := repo.LastRolloverPeriod(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-03", period)
}

func TestArchiveVariableExpenses(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := newTestUser(t, repo, "alice")
	category := newTestCategory(t, repo, user.ID, "Misc")

	variable, err := repo.CreateExpense(ctx, core.Expense{
		UserID: user.ID, Description: "coffee", Amount: core.Money{Cents: 400}, CategoryID: category.ID,
	})
	require.NoError(t, err)

	_, err = repo.CreateExpense(ctx, core.Expense{
		UserID: user.ID, Description: "rent", Amount: core.Money{Cents: 90000}, CategoryID: category.ID, IsFixed: true,
	})
	require.NoError(t, err)

	archived, err := repo.ArchiveVariableExpenses(ctx, "2026-01")
	require.NoError(t, err)
	assert.EqualValues(t, 1, archived)

	// Only the fixed expense survives.
	list, err := repo.ListExpenses(ctx, user.ID, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "rent", list[0].Description)

	rows, err := repo.ListArchivedExpenses(ctx, "2026-01")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "coffee", rows[0].Description)
	assert.Equal(t, variable.ID, rows[0].ExpenseID)
	assert.Equal(t, "2026-01", rows[0].Period)
	assert.EqualValues(t, 400, rows[0].Amount.Cents)
}
