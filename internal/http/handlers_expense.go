package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/storage"
)

type expenseRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	CategoryID  int64  `json:"category_id"`
	IsFixed     bool   `json:"is_fixed"`
	Date        string `json:"date,omitempty"`
}

type expenseResponse struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	CategoryID  int64  `json:"category_id"`
	IsFixed     bool   `json:"is_fixed"`
	Date        string `json:"date"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Description: e.Description,
		AmountCents: e.Amount.Cents,
		CategoryID:  e.CategoryID,
		IsFixed:     e.IsFixed,
		Date:        e.Date.Format(time.RFC3339),
	}
}

// parseExpenseRequest validates the payload before anything touches the store.
func parseExpenseRequest(req expenseRequest, userID int64) (core.Expense, error) {
	amount, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Expense{}, err
	}

	e := core.Expense{
		UserID:      userID,
		Description: sanitizeInput(req.Description),
		Amount:      core.Money{Cents: amount},
		CategoryID:  req.CategoryID,
		IsFixed:     req.IsFixed,
	}
	if req.Date != "" {
		d, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			return core.Expense{}, errors.New("invalid date, expected RFC 3339")
		}
		e.Date = d
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	fixed, err := fixedFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	expenses, err := s.repo.ListExpenses(r.Context(), UserID(r), fixed)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list expenses", "error", err)
		writeError(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}

	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	expense, err := parseExpenseRequest(req, UserID(r))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	saved, err := s.repo.CreateExpense(r.Context(), expense)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create expense", "error", err)
		writeError(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(saved))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	expense, err := parseExpenseRequest(req, UserID(r))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	expense.ID = id

	if err := s.repo.UpdateExpense(r.Context(), expense); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to update expense", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(expense))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.repo.DeleteExpense(r.Context(), id, UserID(r)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete expense", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
