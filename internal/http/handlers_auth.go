package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"finanzas/internal/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username string `json:"username"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := s.repo.GetUserByUsername(r.Context(), req.Username)
	if err != nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		// Same response for unknown user and bad password.
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to generate session token", "error", err)
		writeError(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}

	expiresAt := time.Now().Add(SessionDuration)
	if err := s.repo.CreateSession(r.Context(), token, user.ID, expiresAt); err != nil {
		slog.ErrorContext(r.Context(), "Failed to create session", "error", err)
		writeError(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}

	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, loginResponse{Username: user.Username})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := s.repo.DeleteSession(r.Context(), cookie.Value); err != nil {
			slog.ErrorContext(r.Context(), "Failed to delete session", "error", err)
		}
	}
	s.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
