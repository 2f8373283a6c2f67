// Package api is the HTTP boundary of the reservation service. Handlers
// validate request schemas once, resolve the caller's actor from the
// session cookie, and hand explicit values to the engines; no engine reads
// ambient session state.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"labreserve/internal/booking"
	"labreserve/internal/database"
	"labreserve/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// SessionCookie is the cookie carrying the opaque session token.
const SessionCookie = "lab_session"

// Deps collects everything the server needs.
type Deps struct {
	DB         *database.DB
	Registry   *booking.Registry
	BSC        *booking.BSC
	IHC        *booking.IHC
	Freezer    *booking.Freezer
	Sessions   session.Store
	SessionTTL time.Duration
	RateRPS    float64
	RateBurst  int
	Logger     *zerolog.Logger
}

// Server is the reservation HTTP server.
type Server struct {
	srv        *http.Server
	db         *database.DB
	registry   *booking.Registry
	bsc        *booking.BSC
	ihc        *booking.IHC
	freezer    *booking.Freezer
	sessions   session.Store
	sessionTTL time.Duration
	validate   *validator.Validate
	limiter    *ipLimiter
	logger     *zerolog.Logger
}

// New builds the server and its route table.
func New(addr string, deps Deps) *Server {
	if deps.SessionTTL <= 0 {
		deps.SessionTTL = session.DefaultTTL
	}

	s := &Server{
		db:         deps.DB,
		registry:   deps.Registry,
		bsc:        deps.BSC,
		ihc:        deps.IHC,
		freezer:    deps.Freezer,
		sessions:   deps.Sessions,
		sessionTTL: deps.SessionTTL,
		validate:   validator.New(),
		limiter:    newIPLimiter(deps.RateRPS, deps.RateBurst),
		logger:     deps.Logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/actors", s.handleListActors)
	mux.HandleFunc("POST /api/actors", s.handleAddActor)
	mux.HandleFunc("DELETE /api/actors/{id}", s.handleDeleteActor)
	mux.HandleFunc("POST /api/session", s.handleSetSession)

	mux.HandleFunc("GET /api/bsc", s.handleBSCOccupancy)
	mux.HandleFunc("POST /api/bsc/batch", s.handleBSCBatch)

	mux.HandleFunc("GET /api/ihc", s.handleIHCOccupancy)
	mux.HandleFunc("POST /api/ihc", s.handleIHCAction)
	mux.HandleFunc("POST /api/ihc/batch", s.handleIHCBatch)

	mux.HandleFunc("GET /api/freezer", s.handleFreezerList)
	mux.HandleFunc("POST /api/freezer", s.handleFreezerOp)
	mux.HandleFunc("GET /api/freezer/export", s.handleFreezerExport)

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.rateLimited(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.srv.Addr).Msg("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		http.Error(w, "db not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !s.limiter.allow(host) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// currentActor resolves the caller's actor from the session cookie.
// Returns "" when no session is established.
func (s *Server) currentActor(r *http.Request) (string, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", nil
	}
	actor, err := s.sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		return "", fmt.Errorf("resolve session: %w", err)
	}
	return actor, nil
}

// requireActor is currentActor plus the 401 response when absent. The
// boolean reports whether the handler may proceed.
func (s *Server) requireActor(w http.ResponseWriter, r *http.Request) (string, bool) {
	actor, err := s.currentActor(r)
	if err != nil {
		s.logger.Error().Err(err).Msg("session lookup failed")
		writeError(w, http.StatusInternalServerError, "session lookup failed")
		return "", false
	}
	if actor == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return actor, true
}

// decodeValid decodes the JSON body into dst and validates its schema.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return false
	}
	return true
}

// parseToday reads the optional ?today=YYYY-MM-DD override used by the UI
// and by tests; the wall clock is the default.
func parseToday(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("today")
	if raw == "" {
		return time.Now(), nil
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid today format; expected YYYY-MM-DD")
	}
	return d, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
