package handlers

import (
	"net/http"
	"time"

	"github.com/catppuccin/api/internal/gateway"
	"github.com/catppuccin/api/internal/server/middleware"
)

// StatsResponse is the /stats body.
type StatsResponse struct {
	middleware.StatsSnapshot
	CacheTTLSeconds int64                 `json:"cache_ttl_seconds"`
	RateLimit       RateLimitSummary      `json:"rate_limit"`
	Cache           []gateway.EntryStatus `json:"cache"`
}

// RateLimitSummary describes the limiter configuration and load.
type RateLimitSummary struct {
	Limit          int   `json:"limit"`
	WindowSeconds  int64 `json:"window_seconds"`
	TrackedClients int   `json:"tracked_clients"`
}

// LimiterStats is the part of *ratelimit.Limiter reported by /stats.
type LimiterStats interface {
	Limit() int
	Window() time.Duration
	Clients() int
}

// CacheStatus reports per-dataset cache entries.
type CacheStatus interface {
	Status() []gateway.EntryStatus
}

// StatsHandler serves request counters, limiter load and cache entries.
func StatsHandler(stats *middleware.RequestStats, limiter LimiterStats, cache CacheStatus, cacheTTL time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StatsResponse{
			StatsSnapshot:   stats.Snapshot(),
			CacheTTLSeconds: int64(cacheTTL / time.Second),
			Cache:           cache.Status(),
		}
		if limiter != nil {
			resp.RateLimit = RateLimitSummary{
				Limit:          limiter.Limit(),
				WindowSeconds:  int64(limiter.Window() / time.Second),
				TrackedClients: limiter.Clients(),
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
