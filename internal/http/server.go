// Package http exposes the ledger over a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"bilancio/internal/ledger"
	"bilancio/internal/log"
)

type Server struct {
	http.Server
	store        *ledger.Store
	logger       *log.Logger
	rateLimiter  *rateLimiter
	aiLimiter    *rateLimiter
	shutdownOnce sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	limit        int
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter(limit int) *rateLimiter {
	rl := &rateLimiter{
		limit:       limit,
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

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
		rl.clients[clientIP] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}

	// Counter resets after a minute of quiet.
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	client.requests++
	client.lastRequest = now
	return client.requests <= rl.limit
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. AI generation routes get a much tighter rate limit than the
// rest of the API since each call fans out to a paid upstream.
func NewServer(addr string, store *ledger.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:       store,
		logger:      logger,
		rateLimiter: newRateLimiter(60),
		aiLimiter:   newRateLimiter(10),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/transactions", s.wrap(s.rateLimiter, s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.wrap(s.rateLimiter, s.handleCreateTransaction))

	mux.HandleFunc("GET /api/goals", s.wrap(s.rateLimiter, s.handleListGoals))
	mux.HandleFunc("POST /api/goals", s.wrap(s.rateLimiter, s.handleCreateGoal))

	mux.HandleFunc("GET /api/challenges", s.wrap(s.rateLimiter, s.handleListChallenges))
	mux.HandleFunc("POST /api/challenges", s.wrap(s.rateLimiter, s.handleCreateChallenge))
	mux.HandleFunc("PATCH /api/challenges/{id}/progress", s.wrap(s.rateLimiter, s.handleChallengeProgress))
	mux.HandleFunc("POST /api/challenges/{id}/complete", s.wrap(s.rateLimiter, s.handleChallengeComplete))
	mux.HandleFunc("DELETE /api/challenges/{id}", s.wrap(s.rateLimiter, s.handleChallengeDelete))

	mux.HandleFunc("GET /api/summary", s.wrap(s.rateLimiter, s.handleSummary))
	mux.HandleFunc("POST /api/settings/balance-visibility", s.wrap(s.rateLimiter, s.handleToggleBalanceVisibility))

	mux.HandleFunc("GET /api/reports/categories", s.wrap(s.rateLimiter, s.handleCategoryReport))
	mux.HandleFunc("GET /api/reports/statement.pdf", s.wrap(s.rateLimiter, s.handleStatementPDF))

	mux.HandleFunc("POST /api/ai/challenges", s.wrap(s.aiLimiter, s.handleSuggestChallenges))
	mux.HandleFunc("POST /api/ai/lessons", s.wrap(s.aiLimiter, s.handleGenerateLessons))
	mux.HandleFunc("GET /api/ai/tip", s.wrap(s.aiLimiter, s.handleAdvisoryTip))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		s.aiLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// wrap adds security headers, rate limiting, request IDs, and request
// logging.
func (s *Server) wrap(rl *rateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		if !rl.allow(clientIP) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldRequestID, requestID,
				log.FieldClientIP, clientIP,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logger.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !s.store.Hydrated() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("hydrating"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
