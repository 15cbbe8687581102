package services

import (
	"context"
	"fmt"

	"finanzas/internal/core"
	"finanzas/internal/storage"
)

// Lookup resolves category and card ids to their records for one user. It is
// built once per request so a summary or table render does one pair of store
// reads instead of a query per row.
type Lookup struct {
	Categories map[int64]core.Category
	Cards      map[int64]core.CreditCard
}

func NewLookup(ctx context.Context, repo *storage.SQLiteRepository, userID int64) (*Lookup, error) {
	categories, err := repo.ListCategories(ctx, userID, nil)
	if err != nil {
		return nil, fmt.Errorf("lookup categories: %w", err)
	}
	cards, err := repo.ListCards(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup cards: %w", err)
	}

	l := &Lookup{
		Categories: make(map[int64]core.Category, len(categories)),
		Cards:      make(map[int64]core.CreditCard, len(cards)),
	}
	for _, c := range categories {
		l.Categories[c.ID] = c
	}
	for _, c := range cards {
		l.Cards[c.ID] = c
	}
	return l, nil
}

// Category returns the category for id, ok=false when the id is unknown or
// belongs to another user.
func (l *Lookup) Category(id int64) (core.Category, bool) {
	c, ok := l.Categories[id]
	return c, ok
}

// Card returns the card for id.
func (l *Lookup) Card(id int64) (core.CreditCard, bool) {
	c, ok := l.Cards[id]
	return c, ok
}
