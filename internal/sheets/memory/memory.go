package memory

import (
	"context"
	"sync"

	"finanzas/internal/core"
	"finanzas/internal/sheets"
)

// Store is an in-memory ReportWriter. Re-exporting a period replaces the
// previous snapshot, which makes redelivered messages harmless.
type Store struct {
	mu      sync.Mutex
	periods map[string][]core.ArchivedExpense
}

var _ sheets.ReportWriter = (*Store)(nil)

func New() *Store {
	return &Store{periods: make(map[string][]core.ArchivedExpense)}
}

func (s *Store) AppendArchive(_ context.Context, period string, rows []core.ArchivedExpense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]core.ArchivedExpense, len(rows))
	copy(copied, rows)
	s.periods[period] = copied
	return nil
}

// Archive returns the last exported snapshot for a period.
func (s *Store) Archive(period string) []core.ArchivedExpense {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.periods[period]
	out := make([]core.ArchivedExpense, len(rows))
	copy(out, rows)
	return out
}
