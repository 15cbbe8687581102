package http

import (
	"errors"
	"log/slog"
	"net/http"

	"finanzas/internal/core"
	"finanzas/internal/storage"
)

type cardRequest struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	LastNumbers string `json:"last_numbers"`
	Limit       string `json:"limit,omitempty"`
	ClosingDay  int    `json:"closing_day,omitempty"`
	DueDay      int    `json:"due_day,omitempty"`
}

type cardResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	LastNumbers string `json:"last_numbers"`
	LimitCents  int64  `json:"limit_cents"`
	ClosingDay  int    `json:"closing_day"`
	DueDay      int    `json:"due_day"`
}

func toCardResponse(c core.CreditCard) cardResponse {
	return cardResponse{
		ID:          c.ID,
		Name:        c.Name,
		Color:       c.Color,
		LastNumbers: c.LastNumbers,
		LimitCents:  c.Limit.Cents,
		ClosingDay:  c.ClosingDay,
		DueDay:      c.DueDay,
	}
}

func parseCardRequest(req cardRequest, userID int64) (core.CreditCard, error) {
	c := core.CreditCard{
		UserID:      userID,
		Name:        sanitizeInput(req.Name),
		Color:       sanitizeInput(req.Color),
		LastNumbers: sanitizeInput(req.LastNumbers),
		ClosingDay:  req.ClosingDay,
		DueDay:      req.DueDay,
	}
	if req.Limit != "" {
		cents, err := core.ParseDecimalToCents(req.Limit)
		if err != nil {
			return core.CreditCard{}, err
		}
		c.Limit = core.Money{Cents: cents}
	}
	if err := c.Validate(); err != nil {
		return core.CreditCard{}, err
	}
	return c, nil
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.repo.ListCards(r.Context(), UserID(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list cards", "error", err)
		writeError(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}

	out := make([]cardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, toCardResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	card, err := parseCardRequest(req, UserID(r))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	saved, err := s.repo.CreateCard(r.Context(), card)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create card", "error", err)
		writeError(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}
	writeJSON(w, http.StatusCreated, toCardResponse(saved))
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	card, err := parseCardRequest(req, UserID(r))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	card.ID = id

	if err := s.repo.UpdateCard(r.Context(), card); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "card not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to update card", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}
	writeJSON(w, http.StatusOK, toCardResponse(card))
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.repo.DeleteCard(r.Context(), id, UserID(r)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "card not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete card", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
