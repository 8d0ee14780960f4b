package server

import (
	"github.com/fulmenhq/gofulmen/signals"
	"go.uber.org/zap"

	"github.com/catppuccin/api/internal/observability"
	"github.com/catppuccin/api/internal/server/handlers"
)

func (s *Server) registerRoutes() {
	r := s.router
	catalog := handlers.NewCatalogHandler(s.opts.Gateway)

	r.Get("/ports", catalog.Ports)
	r.Get("/ports/{identifier}", catalog.Port)
	r.Get("/collaborators", catalog.Collaborators)
	r.Get("/collaborators/{identifier}", catalog.Collaborator)
	r.Get("/categories", catalog.Categories)
	r.Get("/categories/{identifier}", catalog.Category)
	r.Get("/showcases", catalog.Showcases)
	r.Get("/userstyles", catalog.Userstyles)
	r.Get("/userstyles/{identifier}", catalog.Userstyle)
	r.Get("/palette", catalog.Palette)
	r.Get("/palette/{flavor}", catalog.Flavor)

	r.Get("/rate-limit-status", handlers.RateLimitStatusHandler(s.opts.Limiter))
	r.Get("/stats", handlers.StatsHandler(s.stats, s.opts.Limiter, s.opts.Gateway, s.opts.CacheTTL))

	r.Get("/health", s.health.HealthHandler)
	r.Get("/health/live", s.health.LivenessHandler)
	r.Get("/health/ready", s.health.ReadinessHandler)
	r.Get("/health/startup", s.health.StartupHandler)

	r.Get("/version", handlers.VersionHandler)
	r.Get("/metrics", MetricsHandler)

	s.registerAdminEndpoints()
}

// registerAdminEndpoints mounts the admin routes when an admin token is
// configured.
func (s *Server) registerAdminEndpoints() {
	logger := observability.ServerLogger
	token := s.opts.AdminToken

	if token == "" {
		if logger != nil {
			logger.Debug("Admin endpoints disabled (no admin token set)")
		}
		return
	}

	s.router.Post("/admin/cache/invalidate", handlers.CacheInvalidateHandler(s.opts.Gateway, token))

	signalHandler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: token,
		RateLimit: 10,
		RateBurst: 5,
		Manager:   nil,
	})
	s.router.Post("/admin/signal", signalHandler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin endpoints enabled",
			zap.Strings("paths", []string{"/admin/cache/invalidate", "/admin/signal"}),
			zap.String("auth", "bearer token"))
		logger.Warn("Admin endpoints enabled - ensure this server is not exposed to public internet")
	}
}
