package http

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"finanzas/internal/services"
)

type rolloverResponse struct {
	Period     string `json:"period"`
	Advanced   int64  `json:"advanced"`
	Archived   int64  `json:"archived"`
	AlreadyRun bool   `json:"already_run"`
}

// handleRollover triggers the monthly rollover. It is keyed by the admin API
// key rather than a user session because it mutates every user's ledger.
func (s *Server) handleRollover(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("X-Admin-Key")
	if s.adminAPIKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.adminAPIKey)) != 1 {
		writeError(w, http.StatusUnauthorized, "invalid admin key")
		return
	}

	result, err := s.rollover.Run(r.Context(), s.now())
	if err != nil {
		if errors.Is(err, services.ErrNotFirstDay) {
			writeError(w, http.StatusForbidden, "rollover can only run on the first day of the month")
			return
		}
		slog.ErrorContext(r.Context(), "Rollover failed", "error", err)
		writeError(w, http.StatusInternalServerError, "rollover failed")
		return
	}

	writeJSON(w, http.StatusOK, rolloverResponse{
		Period:     result.Period,
		Advanced:   result.Advanced,
		Archived:   result.Archived,
		AlreadyRun: result.AlreadyRun,
	})
}
