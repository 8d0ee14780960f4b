package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	apperrors "github.com/catppuccin/api/internal/errors"
	"github.com/catppuccin/api/internal/gateway"
	"github.com/catppuccin/api/internal/observability"
	"github.com/catppuccin/api/internal/ratelimit"
	"github.com/catppuccin/api/internal/server/handlers"
	servermw "github.com/catppuccin/api/internal/server/middleware"
)

// Options configures the HTTP server. Limiter and Gateway are required.
type Options struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TrustProxy   bool
	StaticDir    string
	AdminToken   string
	CacheTTL     time.Duration
	Version      string
	Limiter      *ratelimit.Limiter
	Gateway      *gateway.Gateway
	Health       *handlers.HealthManager
	Stats        *servermw.RequestStats
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	opts   Options
	stats  *servermw.RequestStats
	health *handlers.HealthManager
}

// New creates a new HTTP server instance
func New(opts Options) *Server {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 5 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 30 * time.Second
	}

	s := &Server{
		router: chi.NewRouter(),
		opts:   opts,
		stats:  opts.Stats,
		health: opts.Health,
	}
	if s.stats == nil {
		s.stats = servermw.NewRequestStats(nil)
	}
	if s.health == nil {
		s.health = handlers.NewHealthManager(opts.Version)
	}

	r := s.router
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestMetrics)
	r.Use(s.stats.Middleware)
	r.Use(servermw.Recovery)
	r.Use(servermw.CORS)
	r.Use(servermw.RateLimit(opts.Limiter))

	r.NotFound(s.notFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource"))
	})

	handlers.SetHTTPErrorResponder(HandleError)
	s.registerRoutes()

	return s
}

// notFound serves static files for the index page and dotted paths, and the
// standard 404 envelope for everything else.
func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	if s.serveStatic(w, r) {
		return
	}
	HandleError(w, r, apperrors.NewNotFoundError("The requested resource was not found"))
}

func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) bool {
	if s.opts.StaticDir == "" || r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	path := r.URL.Path
	if path != "/" && !strings.Contains(path, ".") {
		return false
	}

	name := path
	if name == "/" {
		name = "/index.html"
	}
	full := filepath.Join(s.opts.StaticDir, filepath.FromSlash(filepath.Clean("/"+name)))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return false
	}
	http.ServeFile(w, r, full)
	return true
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.opts.Host, fmt.Sprint(s.opts.Port))

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}

	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Starting HTTP server",
			zap.String("host", s.opts.Host),
			zap.Int("port", s.opts.Port),
			zap.String("addr", addr),
			zap.Bool("trust_proxy", s.opts.TrustProxy))
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Shutting down HTTP server")
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for testing and instrumentation
func (s *Server) Handler() http.Handler {
	return s.router
}

// Health returns the manager backing the /health routes.
func (s *Server) Health() *handlers.HealthManager {
	return s.health
}
