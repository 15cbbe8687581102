package core

import (
	"errors"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		Description: "groceries",
		Amount:      Money{Cents: 2500},
		CategoryID:  1,
	}

	tests := []struct {
		name    string
		mutate  func(e *Expense)
		wantErr error
	}{
		{"valid", func(e *Expense) {}, nil},
		{"empty description", func(e *Expense) { e.Description = "" }, ErrEmptyDescription},
		{"blank description", func(e *Expense) { e.Description = "   " }, ErrEmptyDescription},
		{"zero amount", func(e *Expense) { e.Amount.Cents = 0 }, ErrInvalidAmount},
		{"negative amount", func(e *Expense) { e.Amount.Cents = -100 }, ErrInvalidAmount},
		{"missing category", func(e *Expense) { e.CategoryID = 0 }, ErrMissingCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("description too long", func(t *testing.T) {
		e := valid
		e.Description = strings.Repeat("x", 201)
		if e.Validate() == nil {
			t.Error("expected error for 201-character description")
		}
	})
}

func TestCardPaymentValidate(t *testing.T) {
	valid := CardPayment{
		Description:        "new laptop",
		Amount:             Money{Cents: 50000},
		CardID:             1,
		CurrentInstallment: 1,
		TotalInstallments:  12,
	}

	tests := []struct {
		name    string
		mutate  func(p *CardPayment)
		wantErr error
	}{
		{"valid", func(p *CardPayment) {}, nil},
		{"single installment", func(p *CardPayment) { p.CurrentInstallment, p.TotalInstallments = 1, 1 }, nil},
		{"last installment", func(p *CardPayment) { p.CurrentInstallment = 12 }, nil},
		{"empty description", func(p *CardPayment) { p.Description = "" }, ErrEmptyDescription},
		{"zero amount", func(p *CardPayment) { p.Amount.Cents = 0 }, ErrInvalidAmount},
		{"missing card", func(p *CardPayment) { p.CardID = 0 }, ErrMissingCard},
		{"zero total", func(p *CardPayment) { p.TotalInstallments = 0 }, ErrInvalidInstallments},
		{"zero current", func(p *CardPayment) { p.CurrentInstallment = 0 }, ErrInvalidInstallments},
		{"current past total", func(p *CardPayment) { p.CurrentInstallment = 13 }, ErrInvalidInstallments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCardPaymentTerminal(t *testing.T) {
	p := CardPayment{CurrentInstallment: 3, TotalInstallments: 3}
	if !p.Terminal() {
		t.Error("3/3 should be terminal")
	}
	p.CurrentInstallment = 2
	if p.Terminal() {
		t.Error("2/3 should not be terminal")
	}
}

// Any number of monthly advances must keep a valid plan valid, never step past
// the total, and once terminal the plan must stay terminal forever.
func TestCardPaymentAdvanceKeepsInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		total := rapid.IntRange(1, 60).Draw(t, "total")
		current := rapid.IntRange(1, total).Draw(t, "current")
		ticks := rapid.IntRange(0, 120).Draw(t, "ticks")

		p := CardPayment{
			Description:        "plan",
			Amount:             Money{Cents: rapid.Int64Range(1, 1_000_000).Draw(t, "cents")},
			CardID:             1,
			CurrentInstallment: current,
			TotalInstallments:  total,
		}
		if err := p.Validate(); err != nil {
			t.Fatalf("starting plan invalid: %v", err)
		}

		wasTerminal := p.Terminal()
		for i := 0; i < ticks; i++ {
			if !p.Terminal() {
				p.CurrentInstallment++
			}
			if err := p.Validate(); err != nil {
				t.Fatalf("plan invalid after %d ticks: %v", i+1, err)
			}
			if p.CurrentInstallment > p.TotalInstallments {
				t.Fatalf("advanced past total: %d/%d", p.CurrentInstallment, p.TotalInstallments)
			}
			if wasTerminal && p.CurrentInstallment != total {
				t.Fatal("terminal plan moved")
			}
			wasTerminal = p.Terminal()
		}
	})
}

func TestCreditCardValidate(t *testing.T) {
	tests := []struct {
		name    string
		card    CreditCard
		wantErr bool
	}{
		{"valid", CreditCard{Name: "Visa", ClosingDay: 28, DueDay: 10}, false},
		{"days optional", CreditCard{Name: "Visa"}, false},
		{"empty name", CreditCard{}, true},
		{"closing day out of range", CreditCard{Name: "Visa", ClosingDay: 32}, true},
		{"due day out of range", CreditCard{Name: "Visa", DueDay: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.card.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCategoryNormalize(t *testing.T) {
	c := Category{Name: "  Dining Out  "}
	c.Normalize()
	if c.Name != "Dining Out" {
		t.Errorf("Name = %q, want trimmed", c.Name)
	}
	if c.Value != "dining out" {
		t.Errorf("Value = %q, want lowercased name", c.Value)
	}
}

func TestSettingsValidate(t *testing.T) {
	if err := (Settings{MonthlyIncome: Money{Cents: 0}}).Validate(); err != nil {
		t.Errorf("zero income should be valid, got %v", err)
	}
	if err := (Settings{MonthlyIncome: Money{Cents: -1}}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative income error = %v, want ErrInvalidAmount", err)
	}
}
