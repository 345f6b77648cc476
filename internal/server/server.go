// Package server provides the HTTP REST API for the interview planner.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jonathan/interview-planner/internal/config"
	"github.com/jonathan/interview-planner/internal/db"
	"github.com/jonathan/interview-planner/internal/interview"
	"github.com/jonathan/interview-planner/internal/logger"
	"github.com/jonathan/interview-planner/internal/planner"
	"github.com/jonathan/interview-planner/internal/server/middleware"
	"github.com/jonathan/interview-planner/internal/server/ratelimit"
	"github.com/jonathan/interview-planner/internal/store"
	"golang.org/x/sync/errgroup"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	cfg         *config.Config
	service     *interview.Service
	sessions    store.Store
	database    *db.DB
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	log         *logger.Logger
}

// New wires the session store, optional report database, and optional JWT auth
// described by cfg.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	jwtConfig, err := config.OptionalJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	var jwtService *JWTService
	if jwtConfig != nil {
		jwtService = NewJWTService(jwtConfig)
	}

	sessions, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []interview.Option{interview.WithLogger(log.With("component", "interview"))}

	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			_ = sessions.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			_ = sessions.Close()
			return nil, err
		}
		opts = append(opts, interview.WithReports(database))
	}

	svc := interview.NewService(planner.NewEngine(), sessions, opts...)
	s := newServer(cfg, svc, ratelimit.NewLimiter(ratelimit.LoadConfig()), jwtService, log)
	s.sessions = sessions
	s.database = database
	return s, nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if !cfg.UsesRedis() {
		return store.NewMemoryStore(), nil
	}
	sessions, err := store.NewRedisStore(ctx, store.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.SessionTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open redis session store: %w", err)
	}
	return sessions, nil
}

// newServer builds the router and middleware chain around an existing service.
func newServer(cfg *config.Config, svc *interview.Service, limiter *ratelimit.Limiter, jwtService *JWTService, log *logger.Logger) *Server {
	s := &Server{
		cfg:         cfg,
		service:     svc,
		rateLimiter: limiter,
		jwtService:  jwtService,
		log:         log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/interview/start", s.handleStart)
	mux.HandleFunc("POST /api/interview/message", s.handleMessage)
	mux.HandleFunc("POST /api/interview/finalize", s.handleFinalize)
	mux.HandleFunc("GET /api/interview/reports", s.handleListReports)
	mux.HandleFunc("GET /api/interview/reports/{id}", s.handleGetReport)
	mux.HandleFunc("DELETE /api/interview/reports/{id}", s.handleDeleteReport)
	mux.HandleFunc("GET /api/interview/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /api/interview/{id}", s.handleTerminate)

	var handler http.Handler = withCandidate(mux)
	if jwtService != nil {
		handler = middleware.AuthMiddleware(jwtService.AsTokenValidator(),
			middleware.WithPublicPaths(ratelimit.HealthPath))(handler)
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(handler))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, sweeping idle sessions
// in the background, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("server starting", "addr", s.httpServer.Addr, "session_store", s.cfg.SessionStore)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.sweepLoop(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	s.Close()
	s.log.Info("server stopped")
	return err
}

// sweepLoop expires idle sessions until ctx is done.
func (s *Server) sweepLoop(ctx context.Context) {
	if s.cfg.SessionTTL <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.service.SweepIdle(ctx, s.cfg.SessionTTL)
		}
	}
}

// Close releases the limiter, session store, and database.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.sessions != nil {
		if err := s.sessions.Close(); err != nil {
			s.log.Warn("failed to close session store", "error", err)
		}
	}
	if s.database != nil {
		s.database.Close()
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]bool, len(s.cfg.CORSOrigins))
	for _, origin := range s.cfg.CORSOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case allowAll:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withCandidate scopes the service calls of a request to its authenticated candidate.
func withCandidate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, err := middleware.GetCandidateID(r); err == nil {
			r = r.WithContext(interview.WithCandidate(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote", r.RemoteAddr,
		)
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status and writes it. Internal errors are logged and
// hidden from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		s.errorResponse(w, status, "internal server error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// extractClientID uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Round(time.Second).Seconds())
		if seconds < 1 {
			seconds = 1
		}
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.log.Warn("rate limit exceeded", "path", r.URL.Path, "client", s.extractClientID(r), "limit", info.Limit)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
