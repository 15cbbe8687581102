package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finanzas/internal/services"
	"finanzas/internal/storage"
)

// SessionCookieName is the name of the session cookie.
const SessionCookieName = "session"

// SessionDuration is how long sessions last. Sessions roll: activity in the
// second half of the lifetime renews them.
const SessionDuration = 30 * 24 * time.Hour

type Server struct {
	http.Server
	repo     *storage.SQLiteRepository
	summary  *services.SummaryService
	rollover *services.RolloverProcessor

	adminAPIKey  string
	secureCookie bool

	// now is swappable so date-gated handlers can be tested on any day.
	now func() time.Time

	rateLimiter *rateLimiter

	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// startCleanup runs periodic cleanup to remove stale client entries
func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, repo *storage.SQLiteRepository, summary *services.SummaryService, rollover *services.RolloverProcessor, adminAPIKey string, secureCookie bool) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		repo:         repo,
		summary:      summary,
		rollover:     rollover,
		adminAPIKey:  adminAPIKey,
		secureCookie: secureCookie,
		now:          time.Now,
		rateLimiter:  newRateLimiter(),
		stopCleanup:  make(chan struct{}),
	}

	// Drop expired session rows in the background.
	go s.startSessionCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /login", s.withSecurityHeaders(s.handleLogin))
	mux.HandleFunc("POST /logout", s.withSecurityHeaders(s.handleLogout))

	mux.HandleFunc("GET /api/expenses", s.api(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.api(s.handleCreateExpense))
	mux.HandleFunc("PUT /api/expenses/{id}", s.api(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.api(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/categories", s.api(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.api(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.api(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.api(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/cards", s.api(s.handleListCards))
	mux.HandleFunc("POST /api/cards", s.api(s.handleCreateCard))
	mux.HandleFunc("PUT /api/cards/{id}", s.api(s.handleUpdateCard))
	mux.HandleFunc("DELETE /api/cards/{id}", s.api(s.handleDeleteCard))

	mux.HandleFunc("GET /api/payments", s.api(s.handleListPayments))
	mux.HandleFunc("POST /api/payments", s.api(s.handleCreatePayment))
	mux.HandleFunc("PUT /api/payments/{id}", s.api(s.handleUpdatePayment))
	mux.HandleFunc("DELETE /api/payments/{id}", s.api(s.handleDeletePayment))

	mux.HandleFunc("GET /api/settings", s.api(s.handleGetSettings))
	mux.HandleFunc("PUT /api/settings/income", s.api(s.handleUpdateIncome))
	mux.HandleFunc("PUT /api/settings/profile", s.api(s.handleUpdateProfile))

	mux.HandleFunc("GET /api/summary", s.api(s.handleSummary))

	// Privileged trigger surface, keyed by ADMIN_API_KEY rather than session.
	mux.HandleFunc("POST /admin/rollover", s.withSecurityHeaders(s.handleRollover))

	return s
}

// api chains the common middleware with session authentication.
func (s *Server) api(next http.HandlerFunc) http.HandlerFunc {
	return s.withSecurityHeaders(s.withSession(next))
}

// startSessionCleanup deletes expired session rows every hour.
func (s *Server) startSessionCleanup() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if n, err := s.repo.DeleteExpiredSessions(ctx); err != nil {
				slog.Error("Session cleanup failed", "error", err)
			} else if n > 0 {
				slog.Debug("Expired sessions removed", "count", n)
			}
			cancel()
		case <-s.stopCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCleanup != nil {
			close(s.stopCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
