package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/storage"
)

type paymentRequest struct {
	Description        string `json:"description"`
	Amount             string `json:"amount"`
	CardID             int64  `json:"card_id"`
	CurrentInstallment int    `json:"current_installment"`
	TotalInstallments  int    `json:"total_installments"`
	Date               string `json:"date,omitempty"`
}

type paymentResponse struct {
	ID                 int64  `json:"id"`
	Description        string `json:"description"`
	AmountCents        int64  `json:"amount_cents"`
	CardID             int64  `json:"card_id"`
	CurrentInstallment int    `json:"current_installment"`
	TotalInstallments  int    `json:"total_installments"`
	Date               string `json:"date"`
}

func toPaymentResponse(p core.CardPayment) paymentResponse {
	return paymentResponse{
		ID:                 p.ID,
		Description:        p.Description,
		AmountCents:        p.Amount.Cents,
		CardID:             p.CardID,
		CurrentInstallment: p.CurrentInstallment,
		TotalInstallments:  p.TotalInstallments,
		Date:               p.Date.Format(time.RFC3339),
	}
}

func parsePaymentRequest(req paymentRequest, userID int64) (core.CardPayment, error) {
	amount, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.CardPayment{}, err
	}

	p := core.CardPayment{
		UserID:             userID,
		Description:        sanitizeInput(req.Description),
		Amount:             core.Money{Cents: amount},
		CardID:             req.CardID,
		CurrentInstallment: req.CurrentInstallment,
		TotalInstallments:  req.TotalInstallments,
	}
	// A new plan starts at its first installment unless stated otherwise.
	if p.CurrentInstallment == 0 {
		p.CurrentInstallment = 1
	}
	if req.Date != "" {
		d, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			return core.CardPayment{}, errors.New("invalid date, expected RFC 3339")
		}
		p.Date = d
	}
	if err := p.Validate(); err != nil {
		return core.CardPayment{}, err
	}
	return p, nil
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.repo.ListPayments(r.Context(), UserID(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list payments", "error", err)
		writeError(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}

	out := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	payment, err := parsePaymentRequest(req, UserID(r))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	saved, err := s.repo.CreatePayment(r.Context(), payment)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create payment", "error", err)
		writeError(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentResponse(saved))
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	payment, err := parsePaymentRequest(req, UserID(r))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	payment.ID = id

	if err := s.repo.UpdatePayment(r.Context(), payment); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "payment not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to update payment", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(payment))
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.repo.DeletePayment(r.Context(), id, UserID(r)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "payment not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete payment", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
