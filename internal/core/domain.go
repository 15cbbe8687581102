package core

import (
	"errors"
	"strings"
	"time"
)

type (
	Money struct {
		Cents int64
	}

	// Expense is a single ledger entry. Variable expenses (IsFixed=false) are
	// archived and cleared by the monthly rollover; fixed expenses survive it.
	Expense struct {
		ID          int64
		UserID      int64
		Description string
		Amount      Money
		CategoryID  int64
		IsFixed     bool
		Date        time.Time
	}

	// Category classifies expenses. IsFixed mirrors the flag on the expenses
	// it is meant for; Value is the lowercased name used as a stable key.
	Category struct {
		ID      int64
		UserID  int64
		Name    string
		Value   string
		Color   string
		IsFixed bool
	}

	// CreditCard is purely descriptive; payments reference it by ID.
	CreditCard struct {
		ID          int64
		UserID      int64
		Name        string
		Color       string
		LastNumbers string
		Limit       Money
		ClosingDay  int
		DueDay      int
	}

	// CardPayment is one purchase split across TotalInstallments monthly
	// charges of Amount each. CurrentInstallment advances once per rollover
	// until it reaches TotalInstallments.
	CardPayment struct {
		ID                 int64
		UserID             int64
		Description        string
		Amount             Money
		CardID             int64
		CurrentInstallment int
		TotalInstallments  int
		Date               time.Time
	}

	// Settings is the per-user singleton row, upserted by owner.
	Settings struct {
		ID            int64
		UserID        int64
		MonthlyIncome Money
		Name          string
		Currency      string
		Language      string
		Theme         string
	}

	// ArchivedExpense is a variable expense snapshot taken by the rollover,
	// tagged with the period ("2006-01") it belonged to.
	ArchivedExpense struct {
		ID          int64
		ExpenseID   int64
		UserID      int64
		Description string
		Amount      Money
		CategoryID  int64
		Period      string
		ArchivedAt  time.Time
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrEmptyDescription    = errors.New("empty description")
	ErrEmptyName           = errors.New("empty name")
	ErrMissingCategory     = errors.New("missing category")
	ErrMissingCard         = errors.New("missing card")
	ErrInvalidInstallments = errors.New("invalid installments")
	ErrInvalidDay          = errors.New("invalid day")
)

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.CategoryID <= 0 {
		return ErrMissingCategory
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	return nil
}

func (c CreditCard) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if c.ClosingDay != 0 && (c.ClosingDay < 1 || c.ClosingDay > 31) {
		return ErrInvalidDay
	}
	if c.DueDay != 0 && (c.DueDay < 1 || c.DueDay > 31) {
		return ErrInvalidDay
	}
	return nil
}

func (p CardPayment) Validate() error {
	if len(strings.TrimSpace(p.Description)) == 0 {
		return ErrEmptyDescription
	}
	if err := p.Amount.Validate(); err != nil {
		return err
	}
	if p.CardID <= 0 {
		return ErrMissingCard
	}
	if p.TotalInstallments < 1 {
		return ErrInvalidInstallments
	}
	if p.CurrentInstallment < 1 || p.CurrentInstallment > p.TotalInstallments {
		return ErrInvalidInstallments
	}
	return nil
}

// Terminal reports whether the payment plan has reached its last installment.
// Terminal plans are never advanced again and are kept as historical records.
func (p CardPayment) Terminal() bool {
	return p.CurrentInstallment == p.TotalInstallments
}

func (s Settings) Validate() error {
	if s.MonthlyIncome.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Normalize derives the stable Value key from the display name.
func (c *Category) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Value = strings.ToLower(c.Name)
}
