package cmd

import (
	"context"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/catppuccin/api/internal/config"
	"github.com/catppuccin/api/internal/dataset"
	"github.com/catppuccin/api/internal/fetch"
	"github.com/catppuccin/api/internal/gateway"
	"github.com/catppuccin/api/internal/metrics"
	"github.com/catppuccin/api/internal/ratelimit"
)

// newLimiter builds the request limiter. When instrument is set every
// decision is counted and the tracked-client gauge kept current.
func newLimiter(cfg *config.Config, logger *logging.Logger, instrument bool) *ratelimit.Limiter {
	var limiter *ratelimit.Limiter
	rlCfg := ratelimit.Config{
		Requests:        cfg.RateLimit.Requests,
		Window:          cfg.RateLimit.Window,
		CleanupInterval: cfg.RateLimit.CleanupInterval,
		Trusted:         cfg.RateLimit.Trusted,
		Logger:          logger,
	}
	if instrument {
		rlCfg.Observer = func(d ratelimit.Decision) {
			metrics.RecordRateLimitDecision(d.Allowed, d.Bypassed)
			if !d.Bypassed {
				metrics.SetRateLimitClients(limiter.Clients())
			}
		}
	}
	limiter = ratelimit.New(rlCfg)
	return limiter
}

// newGateway builds the dataset gateway over the HTTP transport.
func newGateway(cfg *config.Config, logger *logging.Logger, instrument bool) *gateway.Gateway {
	gwCfg := gateway.Config{
		Registry:  dataset.DefaultRegistry(),
		Transport: fetch.NewHTTPTransport(cfg.Datasets.Timeout),
		BaseURL:   cfg.Datasets.BaseURL,
		Logger:    logger,
	}
	if cfg.Datasets.ValidateSchema {
		gwCfg.Validator = fetch.NewSchemaValidator()
	}
	if instrument {
		gwCfg.Observer = func(e gateway.FetchEvent) {
			metrics.RecordDatasetFetch(e.Dataset.String(), string(e.Source), e.Err == nil, e.Duration)
		}
	}
	return gateway.New(gwCfg)
}

// fetchResult is the outcome of loading one dataset.
type fetchResult struct {
	Dataset  dataset.Dataset
	Err      error
	Duration time.Duration
}

// prefetch loads every registered dataset in order and reports each outcome.
// It keeps going after failures.
func prefetch(ctx context.Context, gw *gateway.Gateway, logger *logging.Logger) []fetchResult {
	datasets := gw.Registry().Datasets()
	results := make([]fetchResult, 0, len(datasets))
	for _, ds := range datasets {
		start := time.Now()
		err := gw.EnsureFresh(ctx, ds)
		results = append(results, fetchResult{Dataset: ds, Err: err, Duration: time.Since(start)})

		if logger == nil {
			continue
		}
		if err != nil {
			logger.Warn("Dataset prefetch failed", zap.String("dataset", ds.String()), zap.Error(err))
		} else {
			logger.Debug("Dataset prefetched", zap.String("dataset", ds.String()))
		}
	}
	return results
}
