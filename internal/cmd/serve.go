package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/catppuccin/api/internal/appid"
	errwrap "github.com/catppuccin/api/internal/errors"
	"github.com/catppuccin/api/internal/metrics"
	"github.com/catppuccin/api/internal/observability"
	"github.com/catppuccin/api/internal/server"
	"github.com/catppuccin/api/internal/server/handlers"
	servermw "github.com/catppuccin/api/internal/server/middleware"
)

const uptimeInterval = 15 * time.Second

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server with graceful shutdown support.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Drop cached datasets; the next request refetches them`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		identity := GetAppIdentity()

		cfg, err := loadConfig()
		if err != nil {
			return errwrap.WrapConfigInvalid(ctx, err, "invalid configuration")
		}

		observability.InitServerLogger(observability.ServerLoggerOptions{
			Service:   identity.BinaryName,
			Level:     cfg.Logging.Level,
			Namespace: appid.Namespace,
		})
		logger := observability.ServerLogger

		if cfg.Metrics.Enabled {
			if err := observability.InitMetrics(appid.Namespace, cfg.Metrics.Port); err != nil {
				logger.Error("Failed to initialize metrics", zap.Error(err))
				return errwrap.WrapInternal(ctx, err, "metrics initialization failed")
			}
		}

		logger.Info("Initializing server",
			zap.String("service", identity.BinaryName),
			zap.String("version", versionInfo.Version),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.Int("rate_limit", cfg.RateLimit.Requests),
			zap.Duration("rate_window", cfg.RateLimit.Window),
			zap.Duration("cache_ttl", cfg.Cache.TTL),
			zap.String("datasets_base_url", cfg.Datasets.BaseURL),
			zap.Bool("metrics_enabled", cfg.Metrics.Enabled),
			zap.Int("metrics_port", observability.GetMetricsPort()))

		limiter := newLimiter(cfg, logger, cfg.Metrics.Enabled)
		gw := newGateway(cfg, logger, cfg.Metrics.Enabled)

		hm := handlers.NewHealthManager(versionInfo.Version)
		if cfg.Metrics.Enabled {
			hm.RegisterChecker("telemetry", telemetryHealthChecker{})
		}
		if cfg.Datasets.Prefetch {
			prefetch(ctx, gw, logger)
			hm.RegisterChecker("datasets", handlers.DatasetsChecker(gw, gw.Registry().Datasets()))
		}

		handlers.SetVersionInfo(versionInfo.Version, versionInfo.Commit, versionInfo.BuildDate)
		handlers.SetAppIdentity(identity)
		handlers.SetDataSources(gw.Registry(), cfg.Datasets.BaseURL)

		started := time.Now()
		srv := server.New(server.Options{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
			TrustProxy:   cfg.Server.TrustProxy,
			StaticDir:    cfg.Server.StaticDir,
			AdminToken:   cfg.Admin.Token,
			CacheTTL:     cfg.Cache.TTL,
			Version:      versionInfo.Version,
			Limiter:      limiter,
			Gateway:      gw,
			Health:       hm,
			Stats:        servermw.NewRequestStats(nil),
		})

		uptimeCtx, stopUptime := context.WithCancel(context.Background())
		if cfg.Metrics.Enabled {
			metrics.SetServerStartTime(started.Unix())
			go reportUptime(uptimeCtx, started)
		}

		// Shutdown handlers run LIFO: the server stops first, the logger flushes last.
		signals.OnShutdown(func(ctx context.Context) error {
			logger.Info("Flushing logger...")
			if err := logger.Sync(); err != nil {
				// Sync errors are often benign (stdout/stderr already closed)
				logger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
			}
			return nil
		})

		signals.OnShutdown(func(ctx context.Context) error {
			logger.Info("Shutting down HTTP server...")
			stopUptime()

			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errwrap.WrapInternal(ctx, err, "server shutdown failed")
			}
			limiter.Wait()

			logger.Info("HTTP server stopped gracefully")
			return nil
		})

		signals.OnReload(func(ctx context.Context) error {
			logger.Info("Received SIGHUP: invalidating dataset cache")
			gw.InvalidateAll()
			metrics.RecordCacheInvalidation("signal")

			if err := viper.ReadInConfig(); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if !errors.As(err, &notFound) {
					logger.Warn("Config file reload failed; settings unchanged until restart",
						zap.String("file", viper.ConfigFileUsed()),
						zap.Error(err))
				}
			}
			return nil
		})

		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
		}

		errChan := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		go func() {
			if err := signals.Listen(ctx); err != nil {
				logger.Error("Signal handler error", zap.Error(err))
				errChan <- err
			}
		}()

		if err := <-errChan; err != nil {
			stopUptime()
			return errwrap.WrapInternal(ctx, err, "server error")
		}

		return nil
	},
}

// reportUptime refreshes the uptime gauge until ctx ends.
func reportUptime(ctx context.Context, started time.Time) {
	ticker := time.NewTicker(uptimeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			metrics.SetServerUptime(int64(now.Sub(started) / time.Second))
		}
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "0.0.0.0", "server host")
	serveCmd.Flags().IntP("port", "p", 3000, "server port")
	serveCmd.Flags().String("static-dir", "./public", "directory served for / and file paths")
	serveCmd.Flags().Bool("prefetch", false, "load every dataset before accepting requests")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.static_dir", serveCmd.Flags().Lookup("static-dir"))
	_ = viper.BindPFlag("datasets.prefetch", serveCmd.Flags().Lookup("prefetch"))
}
