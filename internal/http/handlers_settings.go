package http

import (
	"log/slog"
	"net/http"

	"finanzas/internal/core"
)

type settingsResponse struct {
	MonthlyIncomeCents int64  `json:"monthly_income_cents"`
	Name               string `json:"name"`
	Currency           string `json:"currency"`
	Language           string `json:"language"`
	Theme              string `json:"theme"`
}

type incomeRequest struct {
	MonthlyIncome string `json:"monthly_income"`
}

type profileRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Language string `json:"language"`
	Theme    string `json:"theme"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.repo.GetSettings(r.Context(), UserID(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load settings", "error", err)
		writeError(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}

	writeJSON(w, http.StatusOK, settingsResponse{
		MonthlyIncomeCents: settings.MonthlyIncome.Cents,
		Name:               settings.Name,
		Currency:           settings.Currency,
		Language:           settings.Language,
		Theme:              settings.Theme,
	})
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cents, err := core.ParseDecimalToCents(req.MonthlyIncome)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.repo.UpsertMonthlyIncome(r.Context(), UserID(r), cents); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save monthly income", "error", err)
		writeError(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings := core.Settings{
		UserID:   UserID(r),
		Name:     sanitizeInput(req.Name),
		Currency: sanitizeInput(req.Currency),
		Language: sanitizeInput(req.Language),
		Theme:    sanitizeInput(req.Theme),
	}

	if err := s.repo.UpsertProfile(r.Context(), settings); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save profile", "error", err)
		writeError(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
