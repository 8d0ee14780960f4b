package middleware

import (
	"net/http"
	"sync/atomic"
	"time"
)

// RequestStats counts served requests and server errors since start.
type RequestStats struct {
	started  time.Time
	now      func() time.Time
	requests atomic.Int64
	errors   atomic.Int64
}

// StatsSnapshot is a point-in-time view of RequestStats.
type StatsSnapshot struct {
	UptimeSeconds     int64   `json:"uptime_seconds"`
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	ErrorRate         float64 `json:"error_rate"`
}

// NewRequestStats starts counting at now(). A nil now uses time.Now.
func NewRequestStats(now func() time.Time) *RequestStats {
	if now == nil {
		now = time.Now
	}
	return &RequestStats{started: now(), now: now}
}

// Middleware counts every request; responses with status >= 500 also count
// as errors.
func (s *RequestStats) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := newResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		s.requests.Add(1)
		if wrapped.statusCode >= http.StatusInternalServerError {
			s.errors.Add(1)
		}
	})
}

// Snapshot computes uptime and rates. Rates are 0 until there is uptime or
// traffic to divide by.
func (s *RequestStats) Snapshot() StatsSnapshot {
	uptime := int64(s.now().Sub(s.started) / time.Second)
	requests := s.requests.Load()
	errs := s.errors.Load()

	snap := StatsSnapshot{
		UptimeSeconds: uptime,
		TotalRequests: requests,
		TotalErrors:   errs,
	}
	if uptime > 0 {
		snap.RequestsPerSecond = float64(requests) / float64(uptime)
	}
	if requests > 0 {
		snap.ErrorRate = float64(errs) / float64(requests)
	}
	return snap
}
