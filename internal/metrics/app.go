package metrics

import (
	"time"

	"github.com/catppuccin/api/internal/observability"
)

// Metric names follow Prometheus conventions; the exporter adds the
// catppuccin_api namespace.
const (
	DatasetFetchTotal       = "dataset_fetch_total"
	DatasetFetchDuration    = "dataset_fetch_duration_ms"
	DatasetInvalidatedTotal = "dataset_cache_invalidations_total"
	DatasetReady            = "dataset_ready"

	RateLimitDecisionsTotal = "rate_limit_decisions_total"
	RateLimitClients        = "rate_limit_tracked_clients"

	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"

	ServerStartTime = "app_server_start_time_seconds"
	ServerUptime    = "app_server_uptime_seconds"
)

// RecordDatasetFetch records one fetch attempt against a primary or
// fallback source.
func RecordDatasetFetch(dataset, source string, success bool, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	labels := map[string]string{
		"dataset": dataset,
		"source":  source,
		"status":  status,
	}
	_ = observability.TelemetrySystem.Counter(DatasetFetchTotal, 1, labels)
	_ = observability.TelemetrySystem.Histogram(DatasetFetchDuration, duration, labels)
}

// SetDatasetReady publishes 1 when a dataset holds a valid entry, else 0.
func SetDatasetReady(dataset string, ready bool) {
	if observability.TelemetrySystem == nil {
		return
	}
	value := 0.0
	if ready {
		value = 1
	}
	_ = observability.TelemetrySystem.Gauge(DatasetReady, value, map[string]string{"dataset": dataset})
}

// RecordCacheInvalidation records an invalidate-all with its trigger
// (signal, admin, cli).
func RecordCacheInvalidation(trigger string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(DatasetInvalidatedTotal, 1, map[string]string{"trigger": trigger})
}

// RecordRateLimitDecision counts admitted, denied and bypassed requests.
func RecordRateLimitDecision(allowed, bypassed bool) {
	if observability.TelemetrySystem == nil {
		return
	}
	outcome := "allowed"
	switch {
	case bypassed:
		outcome = "bypassed"
	case !allowed:
		outcome = "denied"
	}
	_ = observability.TelemetrySystem.Counter(RateLimitDecisionsTotal, 1, map[string]string{"outcome": outcome})
}

// SetRateLimitClients publishes the number of tracked client windows.
func SetRateLimitClients(count int) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Gauge(RateLimitClients, float64(count), nil)
}

// RecordHealthCheck records a health check execution.
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	_ = observability.TelemetrySystem.Counter(HealthCheckTotal, 1, map[string]string{
		"check":  checkName,
		"status": status,
	})
	_ = observability.TelemetrySystem.Histogram(HealthCheckDuration, duration, map[string]string{
		"check": checkName,
	})
}

// SetServerStartTime records the server start time (Unix timestamp).
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(ServerStartTime, float64(timestamp), nil)
	}
}

// SetServerUptime records the server uptime in seconds.
func SetServerUptime(seconds int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(ServerUptime, float64(seconds), nil)
	}
}
