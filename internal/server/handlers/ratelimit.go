package handlers

import (
	"net/http"

	"github.com/catppuccin/api/internal/ratelimit"
	"github.com/catppuccin/api/internal/server/middleware"
)

// RateLimitStatusResponse reports the caller's current window.
type RateLimitStatusResponse struct {
	Limit          int    `json:"limit"`
	Used           int    `json:"used"`
	Remaining      int    `json:"remaining"`
	ResetInSeconds int64  `json:"reset_in_seconds"`
	ClientIP       string `json:"client_ip"`
}

// RateLimitStatus is the part of *ratelimit.Limiter the status route reads.
type RateLimitStatus interface {
	Status(key string) ratelimit.Info
}

// RateLimitStatusHandler reports the calling client's budget without
// consuming it.
func RateLimitStatusHandler(limiter RateLimitStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := middleware.ClientKey(r)
		info := limiter.Status(key)
		writeJSON(w, http.StatusOK, RateLimitStatusResponse{
			Limit:          info.Limit,
			Used:           info.Used,
			Remaining:      info.Remaining,
			ResetInSeconds: info.ResetSeconds(),
			ClientIP:       key,
		})
	}
}
