package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/catppuccin/api/internal/ratelimit"
)

// Rate limit response headers.
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRateLimitUsed      = "X-RateLimit-Used"
)

// RateLimiter is the part of *ratelimit.Limiter the middleware uses.
type RateLimiter interface {
	AllowStatus(key string) (bool, ratelimit.Info)
}

// RateLimitExceeded is the 429 response body.
type RateLimitExceeded struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// RateLimit admits or rejects API requests per client and reports the
// client's window in X-RateLimit-* headers. Exempt requests pass untouched.
func RateLimit(limiter RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RateLimitExempt(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := ClientKey(r)
			allowed, info := limiter.AllowStatus(key)
			SetRateLimitHeaders(w.Header(), info)

			if !allowed {
				writeRateLimitExceeded(w, info)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitExempt reports whether r skips rate limiting: preflights, the
// index page, static files and health probes.
func RateLimitExempt(r *http.Request) bool {
	path := r.URL.Path
	return r.Method == http.MethodOptions ||
		path == "/" ||
		strings.Contains(path, ".") ||
		path == "/health" ||
		strings.HasPrefix(path, "/health/")
}

// ClientKey identifies the caller by the host part of RemoteAddr. Behind a
// trusted proxy, chi's RealIP has already rewritten RemoteAddr.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SetRateLimitHeaders writes info as X-RateLimit-* headers.
func SetRateLimitHeaders(h http.Header, info ratelimit.Info) {
	h.Set(HeaderRateLimitLimit, strconv.Itoa(info.Limit))
	h.Set(HeaderRateLimitRemaining, strconv.Itoa(info.Remaining))
	h.Set(HeaderRateLimitReset, strconv.FormatInt(info.ResetSeconds(), 10))
	h.Set(HeaderRateLimitUsed, strconv.Itoa(info.Used))
}

func writeRateLimitExceeded(w http.ResponseWriter, info ratelimit.Info) {
	retryAfter := info.ResetSeconds()
	if retryAfter < 1 {
		retryAfter = 1
	}

	w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(RateLimitExceeded{
		Error:   "Rate limit exceeded",
		Message: "Too many requests. Please try again later.",
		Status:  http.StatusTooManyRequests,
	})
}
