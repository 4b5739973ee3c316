// Package http exposes the REST API. Routing uses Go 1.22 method patterns
// on the standard mux; every /api route is scoped to the user identified by
// the X-User-ID header set by the auth proxy in front of this service.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/services"
	"fintrack/internal/stats"
	"fintrack/internal/store"
)

// Options carries the server's tunables.
type Options struct {
	Addr           string
	CacheSize      int
	CacheTTL       time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

type Server struct {
	http.Server

	transactions  *services.TransactionService
	budgets       *services.BudgetService
	goals         *services.GoalService
	alertFeed     *services.AlertService
	statsEngine   *stats.Engine
	categories    store.CategoryStore
	notifications store.NotificationStore

	rateLimiter *rateLimiter

	// Stats responses are cached per user and invalidated on any of the
	// user's transaction writes.
	summaryCache *cache.LRUCache[*stats.Summary]
	monthlyCache *cache.LRUCache[*stats.YearBreakdown]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(opts Options,
	transactions *services.TransactionService,
	budgets *services.BudgetService,
	goals *services.GoalService,
	alertFeed *services.AlertService,
	statsEngine *stats.Engine,
	categories store.CategoryStore,
	notifications store.NotificationStore,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		transactions:  transactions,
		budgets:       budgets,
		goals:         goals,
		alertFeed:     alertFeed,
		statsEngine:   statsEngine,
		categories:    categories,
		notifications: notifications,
		rateLimiter:   newRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		summaryCache:  cache.NewLRUCache[*stats.Summary](opts.CacheSize, opts.CacheTTL),
		monthlyCache:  cache.NewLRUCache[*stats.YearBreakdown](opts.CacheSize, opts.CacheTTL),
		cacheManager:  cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.monthlyCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	api := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, s.withMiddleware(s.withUser(h)))
	}

	api("POST /api/transactions", s.handleCreateTransaction)
	api("GET /api/transactions", s.handleListTransactions)
	api("GET /api/transactions/{id}", s.handleGetTransaction)
	api("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	api("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	api("POST /api/budgets", s.handleUpsertBudget)
	api("GET /api/budgets", s.handleListBudgets)
	api("GET /api/budgets/progress", s.handleBudgetProgress)
	api("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	api("POST /api/goals", s.handleCreateGoal)
	api("GET /api/goals", s.handleListGoals)
	api("GET /api/goals/{id}", s.handleGetGoal)
	api("PUT /api/goals/{id}", s.handleUpdateGoal)
	api("DELETE /api/goals/{id}", s.handleDeleteGoal)
	api("POST /api/goals/{id}/contribute", s.handleContributeGoal)
	api("POST /api/goals/{id}/withdraw", s.handleWithdrawGoal)

	api("POST /api/categories", s.handleCreateCategory)
	api("GET /api/categories", s.handleListCategories)
	api("PUT /api/categories/{id}", s.handleUpdateCategory)
	api("DELETE /api/categories/{id}", s.handleDeleteCategory)

	api("GET /api/stats/summary", s.handleStatsSummary)
	api("GET /api/stats/by-category", s.handleStatsByCategory)
	api("GET /api/stats/monthly", s.handleStatsMonthly)
	api("GET /api/stats/category-usage", s.handleStatsCategoryUsage)

	api("GET /api/alerts", s.handleAlertFeed)

	api("GET /api/notifications", s.handleListNotifications)
	api("POST /api/notifications/{id}/read", s.handleMarkNotificationRead)

	return s
}

// withMiddleware adds security headers, rate limiting, request IDs and
// request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
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
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		if !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Request-ID", requestID)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

// withUser requires the X-User-ID header and scopes the request to it.
// Authentication itself happens upstream; an absent header is a proxy
// misconfiguration, not an anonymous user.
func (s *Server) withUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
		if err != nil || id <= 0 {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing or invalid X-User-ID header"})
			return
		}
		next(w, r.WithContext(withUserID(r.Context(), id)))
	}
}

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

// Shutdown stops background cleanup goroutines and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// statsCacheKey builds a per-user key; the user prefix lets writes evict
// everything the user could see with one DeletePrefix.
func statsCacheKey(userID int64, parts ...int) string {
	key := strconv.FormatInt(userID, 10)
	for _, p := range parts {
		key += ":" + strconv.Itoa(p)
	}
	return key
}

func (s *Server) invalidateStats(userID int64) {
	prefix := strconv.FormatInt(userID, 10) + ":"
	s.summaryCache.DeletePrefix(prefix)
	s.monthlyCache.DeletePrefix(prefix)
}
