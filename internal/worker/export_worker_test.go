package worker

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	mem "finanzas/internal/sheets/memory"
	"finanzas/internal/storage"
)

func newWorkerFixture(t *testing.T) (*ExportWorker, *storage.SQLiteRepository, *mem.Store) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	store := mem.New()
	return NewExportWorker(repo, store), repo, store
}

func seedClosedPeriod(t *testing.T, repo *storage.SQLiteRepository) {
	t.Helper()
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)

	category := core.Category{UserID: user.ID, Name: "Misc"}
	category.Normalize()
	savedCategory, err := repo.CreateCategory(ctx, category)
	require.NoError(t, err)

	_, err = repo.CreateExpense(ctx, core.Expense{
		UserID: user.ID, Description: "coffee", Amount: core.Money{Cents: 400}, CategoryID: savedCategory.ID,
	})
	require.NoError(t, err)

	_, err = repo.AdvanceInstallments(ctx, "2026-02")
	require.NoError(t, err)
	_, err = repo.ArchiveVariableExpenses(ctx, "2026-01")
	require.NoError(t, err)
}

func TestHandlePeriodClosed(t *testing.T) {
	worker, repo, store := newWorkerFixture(t)
	seedClosedPeriod(t, repo)

	msg := amqp.NewPeriodClosedMessage("2026-01", 0, 1)
	require.NoError(t, worker.HandlePeriodClosed(context.Background(), msg))

	rows := store.Archive("2026-01")
	require.Len(t, rows, 1)
	assert.Equal(t, "coffee", rows[0].Description)
	assert.EqualValues(t, 400, rows[0].Amount.Cents)
}

func TestHandlePeriodClosedRedelivery(t *testing.T) {
	worker, repo, store := newWorkerFixture(t)
	seedClosedPeriod(t, repo)

	msg := amqp.NewPeriodClosedMessage("2026-01", 0, 1)
	require.NoError(t, worker.HandlePeriodClosed(context.Background(), msg))
	require.NoError(t, worker.HandlePeriodClosed(context.Background(), msg))

	assert.Len(t, store.Archive("2026-01"), 1, "redelivery must not duplicate rows")
}

func TestStartupExportCheck(t *testing.T) {
	worker, repo, store := newWorkerFixture(t)
	seedClosedPeriod(t, repo)

	require.NoError(t, worker.StartupExportCheck(context.Background()))
	assert.Len(t, store.Archive("2026-01"), 1)
}

func TestStartupExportCheckBeforeFirstRollover(t *testing.T) {
	worker, _, store := newWorkerFixture(t)

	require.NoError(t, worker.StartupExportCheck(context.Background()))
	assert.Empty(t, store.Archive("2026-01"))
}

func TestStartupExportCheckEmptyPeriod(t *testing.T) {
	worker, repo, store := newWorkerFixture(t)

	// Rollover ran but the closed period had no variable expenses.
	ctx := context.Background()
	_, err := repo.AdvanceInstallments(ctx, "2026-02")
	require.NoError(t, err)

	require.NoError(t, worker.StartupExportCheck(ctx))
	assert.Empty(t, store.Archive("2026-01"))
}

func TestPreviousPeriod(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-02", "2026-01"},
		{"2026-01", "2025-12"},
		{"2025-07", "2025-06"},
	}
	for _, tt := range tests {
		got, err := previousPeriod(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := previousPeriod("garbage")
	assert.Error(t, err)
}
