package services

import (
	"context"
	"fmt"

	"finanzas/internal/core"
	"finanzas/internal/storage"
)

// SummaryService assembles the financial summary for one user from the store.
type SummaryService struct {
	storage *storage.SQLiteRepository
}

func NewSummaryService(repo *storage.SQLiteRepository) *SummaryService {
	return &SummaryService{storage: repo}
}

func (s *SummaryService) Summarize(ctx context.Context, userID int64) (core.Summary, error) {
	settings, err := s.storage.GetSettings(ctx, userID)
	if err != nil {
		return core.Summary{}, fmt.Errorf("get settings: %w", err)
	}

	variableFlag := false
	variable, err := s.storage.ListExpenses(ctx, userID, &variableFlag)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list variable expenses: %w", err)
	}

	fixedFlag := true
	fixed, err := s.storage.ListExpenses(ctx, userID, &fixedFlag)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list fixed expenses: %w", err)
	}

	payments, err := s.storage.ListPayments(ctx, userID)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list payments: %w", err)
	}

	lookup, err := NewLookup(ctx, s.storage, userID)
	if err != nil {
		return core.Summary{}, err
	}

	return core.ComputeSummary(settings.MonthlyIncome, variable, fixed, payments, lookup.Categories, lookup.Cards), nil
}
