package http

import (
	"log/slog"
	"net/http"

	"finanzas/internal/core"
)

type namedAmountResponse struct {
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
}

type summaryResponse struct {
	IncomeCents       int64                 `json:"income_cents"`
	VariableCents     int64                 `json:"variable_cents"`
	FixedCents        int64                 `json:"fixed_cents"`
	CardPaymentsCents int64                 `json:"card_payments_cents"`
	TotalSpentCents   int64                 `json:"total_spent_cents"`
	RemainingCents    int64                 `json:"remaining_cents"`
	SpentPercent      float64               `json:"spent_percent"`
	ByCategory        []namedAmountResponse `json:"by_category"`
	ByFixedCategory   []namedAmountResponse `json:"by_fixed_category"`
	ByCard            []namedAmountResponse `json:"by_card"`
}

func toNamedAmounts(in []core.NamedAmount) []namedAmountResponse {
	out := make([]namedAmountResponse, 0, len(in))
	for _, a := range in {
		out = append(out, namedAmountResponse{Name: a.Name, AmountCents: a.Amount.Cents})
	}
	return out
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.summary.Summarize(r.Context(), UserID(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute summary", "error", err)
		writeError(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		IncomeCents:       summary.Income.Cents,
		VariableCents:     summary.Variable.Cents,
		FixedCents:        summary.Fixed.Cents,
		CardPaymentsCents: summary.CardPayments.Cents,
		TotalSpentCents:   summary.TotalSpent.Cents,
		RemainingCents:    summary.Remaining.Cents,
		SpentPercent:      summary.SpentPercent,
		ByCategory:        toNamedAmounts(summary.ByCategory),
		ByFixedCategory:   toNamedAmounts(summary.ByFixedCategory),
		ByCard:            toNamedAmounts(summary.ByCard),
	})
}
