// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

// Package web serves the SolHub site: the project catalog, registration,
// login, and the per-user login history.
package web

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/oops"

	"github.com/solhub/solhub/internal/auth"
	"github.com/solhub/solhub/internal/catalog"
	"github.com/solhub/solhub/internal/observability"
)

// Authenticator is the subset of auth.Service the site uses.
type Authenticator interface {
	Register(ctx context.Context, req auth.RegisterRequest) error
	Authenticate(ctx context.Context, identifier, password, agentLabel string) (*auth.User, error)
}

// Catalog is the subset of catalog.Service the site uses.
type Catalog interface {
	ListProjects(ctx context.Context) ([]catalog.Project, error)
	GetProject(ctx context.Context, id int) (*catalog.Project, error)
	ListProjectsBySector(ctx context.Context, name string) ([]catalog.Project, error)
	ListProjectsBySectorID(ctx context.Context, sectorID int) ([]catalog.Project, error)
	AddProject(ctx context.Context, p catalog.Project) (*catalog.Project, error)
	EditProject(ctx context.Context, id int, p catalog.Project) error
	DeleteProject(ctx context.Context, id int) error
	ListSectors(ctx context.Context) ([]catalog.Sector, error)
}

// DefaultProtectedPaths are the glob patterns that require a login. They
// are matched against chi route patterns, so "*" also matches "{id}".
var DefaultProtectedPaths = []string{
	"/solutions/addProject",
	"/solutions/editProject",
	"/solutions/editProject/*",
	"/solutions/deleteProject/*",
	"/userHistory",
}

// Options configures a Server.
type Options struct {
	Addr           string
	SessionSecret  string
	SessionMaxAge  time.Duration
	SessionRefresh time.Duration
	SecureCookie   bool
	// TLSConfig, when set, makes Start serve HTTPS.
	TLSConfig *tls.Config
	// ProtectedPaths defaults to DefaultProtectedPaths.
	ProtectedPaths []string
	Metrics        *observability.Metrics
	Logger         *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Server is the public web server.
type Server struct {
	addr     string
	auth     Authenticator
	catalog  Catalog
	sessions *sessionManager
	gate     *LoginGate
	views    *views
	metrics  *observability.Metrics
	logger   *slog.Logger
	secure   bool
	tls      *tls.Config

	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
	bound      atomic.Bool
}

// NewServer creates a Server. It fails when templates do not parse, a
// protected path pattern is malformed, or the session secret is empty.
func NewServer(authn Authenticator, cat Catalog, opts Options) (*Server, error) {
	if authn == nil {
		return nil, oops.Code("WEB_INVALID_SERVER").Errorf("authenticator is required")
	}
	if cat == nil {
		return nil, oops.Code("WEB_INVALID_SERVER").Errorf("catalog is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ProtectedPaths == nil {
		opts.ProtectedPaths = DefaultProtectedPaths
	}

	sessions, err := newSessionManager(opts.SessionSecret, opts.SessionMaxAge, opts.SessionRefresh, opts.SecureCookie, opts.Now)
	if err != nil {
		return nil, err
	}

	gate, err := NewLoginGate(opts.ProtectedPaths)
	if err != nil {
		return nil, err
	}

	v, err := loadViews()
	if err != nil {
		return nil, err
	}

	return &Server{
		addr:     opts.Addr,
		auth:     authn,
		catalog:  cat,
		sessions: sessions,
		gate:     gate,
		views:    v,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		secure:   opts.SecureCookie,
		tls:      opts.TLSConfig,
	}, nil
}

// Handler returns the site router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.instrument)
	r.Use(s.recoverer)
	r.Use(s.sessions.load(s.logger))
	r.Use(s.csrf)

	// requireLogin runs after routing so it sees the matched route pattern.
	r.Group(func(r chi.Router) {
		r.Use(s.requireLogin)

		r.Get("/", s.handleHome)
		r.Get("/about", s.handleAbout)

		r.Get("/solutions/projects", s.handleProjects)
		r.Get("/solutions/projects/{id}", s.handleProject)
		r.Get("/solutions/addProject", s.handleAddProjectForm)
		r.Post("/solutions/addProject", s.handleAddProject)
		r.Get("/solutions/editProject/{id}", s.handleEditProjectForm)
		r.Post("/solutions/editProject", s.handleEditProject)
		r.Get("/solutions/deleteProject/{id}", s.handleDeleteProject)

		r.Get("/login", s.handleLoginForm)
		r.Post("/login", s.handleLogin)
		r.Get("/register", s.handleRegisterForm)
		r.Post("/register", s.handleRegister)
		r.Get("/logout", s.handleLogout)
		r.Get("/userHistory", s.handleUserHistory)
	})

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFiles()))))

	r.NotFound(s.handleNotFound)

	return r
}

// Start begins serving. The returned channel receives a serve error, or
// is closed after a clean Stop.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("web server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.Code("WEB_LISTEN_FAILED").With("addr", s.addr).Wrap(err)
	}
	if s.tls != nil {
		listener = tls.NewListener(listener, s.tls.Clone())
	}
	s.listener = listener
	s.bound.Store(true)

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.logger.Error("web server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("web server started", "addr", listener.Addr().String(), "tls", s.tls != nil)
	return errCh, nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	s.bound.Store(false)

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_web_server").Wrap(err)
		}
	}

	s.logger.Info("web server stopped")
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// Listening reports whether the listener is bound. Safe to call from a
// readiness probe.
func (s *Server) Listening() bool {
	return s.bound.Load()
}
