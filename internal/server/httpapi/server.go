// Package httpapi is the JSON-over-HTTP surface of the finance tracker.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/fintracker/internal/logging"
	"github.com/dmitrijs2005/fintracker/internal/server/services"
	"github.com/gorilla/mux"
)

// Pinger reports database reachability for the health endpoint.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Options struct {
	Address        string
	Production     bool
	AllowedOrigins []string
	RateLimit      bool
	// DB is nil for storage without a database; health is then always ok.
	DB Pinger
}

type Server struct {
	address        string
	production     bool
	allowedOrigins []string
	rateLimit      bool
	db             Pinger

	logger  logging.Logger
	auth    *services.AuthService
	ws      *services.WorkspaceService
	items   *services.ItemService
	sharing *services.SharingService

	limits *limiters
}

func NewServer(opts Options, l logging.Logger, auth *services.AuthService, ws *services.WorkspaceService,
	items *services.ItemService, sharing *services.SharingService) *Server {
	return &Server{
		address:        opts.Address,
		production:     opts.Production,
		allowedOrigins: opts.AllowedOrigins,
		rateLimit:      opts.RateLimit,
		db:             opts.DB,
		logger:         l.With("module", "http_server"),
		auth:           auth,
		ws:             ws,
		items:          items,
		sharing:        sharing,
		limits:         newLimiters(),
	}
}

// limited wraps h with lim when rate limiting is on.
func (s *Server) limited(lim *ipLimiter, h http.HandlerFunc) http.Handler {
	if !s.rateLimit {
		return h
	}
	return lim.middleware(h)
}

// Handler builds the router with the full middleware chain.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.health).Methods(http.MethodGet)

	authR := api.PathPrefix("/auth").Subrouter()
	authR.Handle("/register", s.limited(s.limits.register, s.register)).Methods(http.MethodPost)
	authR.Handle("/login", s.limited(s.limits.login, s.login)).Methods(http.MethodPost)
	authR.Handle("/forgot-password", s.limited(s.limits.reset, s.forgotPassword)).Methods(http.MethodPost)
	authR.Handle("/reset-password", s.limited(s.limits.reset, s.resetPassword)).Methods(http.MethodPost)
	authR.Handle("/logout", s.requireAuth(http.HandlerFunc(s.logout))).Methods(http.MethodPost)
	authR.Handle("/me", s.requireAuth(http.HandlerFunc(s.me))).Methods(http.MethodGet)

	// everything below needs a session
	priv := api.NewRoute().Subrouter()
	priv.Use(s.requireAuth)

	priv.HandleFunc("/user/me/email", s.getEmail).Methods(http.MethodGet)
	priv.HandleFunc("/user/email", s.updateEmail).Methods(http.MethodPut)
	priv.HandleFunc("/user/password", s.changePassword).Methods(http.MethodPut)

	priv.HandleFunc("/workspace", s.getWorkspace).Methods(http.MethodGet)
	priv.HandleFunc("/workspace/balance", s.setBalance).Methods(http.MethodPut)
	priv.HandleFunc("/workspace/cycles", s.listCycles).Methods(http.MethodGet)
	priv.HandleFunc("/workspace/cycles/{id}", s.deleteCycle).Methods(http.MethodDelete)
	priv.HandleFunc("/workspace/cycles/{id}/export", s.exportCycle).Methods(http.MethodGet)
	priv.HandleFunc("/workspace/reset", s.resetWorkspace).Methods(http.MethodPost)

	priv.HandleFunc("/items", s.createItem).Methods(http.MethodPost)
	priv.HandleFunc("/items/{id}", s.updateItem).Methods(http.MethodPut)
	priv.HandleFunc("/items/{id}", s.deleteItem).Methods(http.MethodDelete)
	priv.HandleFunc("/items/{id}/toggle-paid", s.togglePaid).Methods(http.MethodPatch)

	priv.Handle("/users/search", s.limited(s.limits.search, s.searchUser)).Methods(http.MethodGet)
	priv.HandleFunc("/workspaces/shared", s.listShared).Methods(http.MethodGet)
	priv.HandleFunc("/workspace/{id}/members", s.listMembers).Methods(http.MethodGet)
	priv.HandleFunc("/workspace/{id}/members", s.addMember).Methods(http.MethodPost)
	priv.HandleFunc("/workspace/{id}/members/{userId}", s.removeMember).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fail(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Wrapped outside the router so that unmatched requests and CORS
	// preflights pass through the chain too.
	var h http.Handler = r
	for _, mw := range []func(http.Handler) http.Handler{
		s.csrf, s.cors, securityHeaders, s.accessLog, s.recoverer, requestID,
	} {
		h = mw(h)
	}
	return h
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	healthy := true
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			requestLogger(r, s.logger).Warn(r.Context(), "health check failed", "error", err)
			healthy = false
		}
	}

	status, text := http.StatusOK, "ok"
	if !healthy {
		status, text = http.StatusServiceUnavailable, "unhealthy"
	}
	writeJSON(w, status, struct {
		Success bool   `json:"success"`
		Status  string `json:"status"`
	}{healthy, text})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
