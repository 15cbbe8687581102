package core

import "sort"

// NamedAmount is an amount aggregated under a display name (category or card).
type NamedAmount struct {
	Name   string
	Amount Money
}

// Summary aggregates a user's ledger against the monthly income figure.
type Summary struct {
	Income          Money
	Variable        Money
	Fixed           Money
	CardPayments    Money
	TotalSpent      Money
	Remaining       Money
	SpentPercent    float64
	ByCategory      []NamedAmount
	ByCard          []NamedAmount
	ByFixedCategory []NamedAmount
}

// ComputeSummary derives the financial summary for one user. Per-installment
// amounts count once per month regardless of how many installments remain.
// Name resolution for the breakdowns goes through the supplied lookup maps;
// an unknown id falls back to the "Unknown" bucket.
func ComputeSummary(income Money, variable, fixed []Expense, payments []CardPayment, categories map[int64]Category, cards map[int64]CreditCard) Summary {
	s := Summary{Income: income}

	byCategory := map[string]int64{}
	for _, e := range variable {
		s.Variable.Cents += e.Amount.Cents
		byCategory[categoryName(categories, e.CategoryID)] += e.Amount.Cents
	}

	byFixed := map[string]int64{}
	for _, e := range fixed {
		s.Fixed.Cents += e.Amount.Cents
		byFixed[categoryName(categories, e.CategoryID)] += e.Amount.Cents
	}

	byCard := map[string]int64{}
	for _, p := range payments {
		s.CardPayments.Cents += p.Amount.Cents
		byCard[cardName(cards, p.CardID)] += p.Amount.Cents
	}

	s.TotalSpent.Cents = s.Variable.Cents + s.Fixed.Cents + s.CardPayments.Cents
	s.Remaining.Cents = s.Income.Cents - s.TotalSpent.Cents
	if s.Income.Cents > 0 {
		s.SpentPercent = float64(s.TotalSpent.Cents) / float64(s.Income.Cents) * 100
	}

	s.ByCategory = sortedAmounts(byCategory)
	s.ByFixedCategory = sortedAmounts(byFixed)
	s.ByCard = sortedAmounts(byCard)
	return s
}

func categoryName(categories map[int64]Category, id int64) string {
	if c, ok := categories[id]; ok {
		return c.Name
	}
	return "Unknown"
}

func cardName(cards map[int64]CreditCard, id int64) string {
	if c, ok := cards[id]; ok {
		return c.Name
	}
	return "Unknown"
}

func sortedAmounts(m map[string]int64) []NamedAmount {
	out := make([]NamedAmount, 0, len(m))
	for name, cents := range m {
		out = append(out, NamedAmount{Name: name, Amount: Money{Cents: cents}})
	}
	// Largest first, name as tiebreaker so output is stable.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}
