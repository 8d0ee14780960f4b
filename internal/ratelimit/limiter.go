// Package ratelimit implements a per-client fixed window request limiter.
//
// Each client key gets a counter and a window start. A request is admitted while
// the counter is below the configured maximum; the counter resets once a full
// window has elapsed since the window start. Loopback clients bypass the limit.
package ratelimit

import (
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"
)

const (
	// DefaultCleanupInterval is how often Allow schedules a sweep of stale clients.
	DefaultCleanupInterval = 5 * time.Minute

	// DefaultSweepBatch bounds how many clients a sweep removes per lock hold.
	DefaultSweepBatch = 1024

	// bypassMultiplier scales the advertised remaining budget for loopback clients.
	bypassMultiplier = 10
)

var loopbackKeys = []string{"127.0.0.1", "::1", "localhost"}

// Config configures a Limiter.
type Config struct {
	// Requests is the maximum number of admitted requests per window.
	Requests int
	// Window is the fixed window length.
	Window time.Duration
	// CleanupInterval is the minimum time between background sweeps.
	CleanupInterval time.Duration
	// SweepBatch caps deletions per lock acquisition during a sweep.
	SweepBatch int
	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
	// Trusted lists additional client keys that are never limited.
	Trusted []string
	// Observer, when set, is called after every Allow decision.
	Observer func(Decision)
	// Logger receives sweep diagnostics. Optional.
	Logger *logging.Logger
}

// Info reports a client's budget within the current window.
type Info struct {
	Limit     int           `json:"limit"`
	Used      int           `json:"used"`
	Remaining int           `json:"remaining"`
	Reset     time.Duration `json:"reset"`
}

// ResetSeconds returns Reset rounded down to whole seconds.
func (i Info) ResetSeconds() int64 {
	return int64(i.Reset / time.Second)
}

// Decision describes the outcome of one Allow call.
type Decision struct {
	Key      string
	Allowed  bool
	Bypassed bool
}

type clientState struct {
	count       int
	windowStart time.Time
}

// Limiter is a fixed window limiter keyed by client identity.
// It is safe for concurrent use.
type Limiter struct {
	max             int
	window          time.Duration
	cleanupInterval time.Duration
	sweepBatch      int
	clock           func() time.Time
	trusted         map[string]struct{}
	observer        func(Decision)
	logger          *logging.Logger

	mu        sync.RWMutex
	clients   map[string]*clientState
	lastSweep time.Time

	sweeping atomic.Bool
	sweeps   sync.WaitGroup
}

// New builds a Limiter from cfg. Non-positive intervals and batch sizes fall
// back to their defaults.
func New(cfg Config) *Limiter {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	batch := cfg.SweepBatch
	if batch <= 0 {
		batch = DefaultSweepBatch
	}

	trusted := make(map[string]struct{}, len(loopbackKeys)+len(cfg.Trusted))
	for _, key := range loopbackKeys {
		trusted[key] = struct{}{}
	}
	for _, key := range cfg.Trusted {
		if key = strings.TrimSpace(key); key != "" {
			trusted[key] = struct{}{}
		}
	}

	return &Limiter{
		max:             cfg.Requests,
		window:          cfg.Window,
		cleanupInterval: interval,
		sweepBatch:      batch,
		clock:           clock,
		trusted:         trusted,
		observer:        cfg.Observer,
		logger:          cfg.Logger,
		clients:         make(map[string]*clientState),
		lastSweep:       clock(),
	}
}

// Limit returns the maximum number of requests per window.
func (l *Limiter) Limit() int { return l.max }

// Window returns the window length.
func (l *Limiter) Window() time.Duration { return l.window }

// Allow records a request from key and reports whether it is admitted.
// Denied requests do not consume budget.
func (l *Limiter) Allow(key string) bool {
	allowed, _ := l.AllowStatus(key)
	return allowed
}

// AllowStatus is Allow that also returns key's budget as left by this
// request, read in the same critical section as the decision.
func (l *Limiter) AllowStatus(key string) (bool, Info) {
	if l.bypassed(key) {
		l.observe(Decision{Key: key, Allowed: true, Bypassed: true})
		return true, l.bypassInfo()
	}

	now := l.clock()

	l.mu.Lock()
	state, ok := l.clients[key]
	if !ok {
		state = &clientState{windowStart: now}
		l.clients[key] = state
	}
	if now.Sub(state.windowStart) >= l.window {
		state.count = 0
		state.windowStart = now
	}
	allowed := state.count < l.max
	if allowed {
		state.count++
	}
	count, start := state.count, state.windowStart
	sweepDue := now.Sub(l.lastSweep) >= l.cleanupInterval
	if sweepDue {
		l.lastSweep = now
	}
	l.mu.Unlock()

	if sweepDue {
		l.scheduleSweep()
	}
	l.observe(Decision{Key: key, Allowed: allowed})
	return allowed, l.info(now, count, start)
}

// Status reports the budget for key without changing any state.
func (l *Limiter) Status(key string) Info {
	if l.bypassed(key) {
		return l.bypassInfo()
	}

	now := l.clock()

	l.mu.RLock()
	state, ok := l.clients[key]
	var count int
	var start time.Time
	if ok {
		count, start = state.count, state.windowStart
	}
	l.mu.RUnlock()

	if !ok {
		return Info{Limit: l.max, Used: 0, Remaining: l.max, Reset: l.window}
	}
	return l.info(now, count, start)
}

func (l *Limiter) bypassInfo() Info {
	return Info{Limit: l.max, Used: 0, Remaining: l.max * bypassMultiplier, Reset: 0}
}

func (l *Limiter) info(now time.Time, count int, start time.Time) Info {
	used := min(max(count, 0), l.max)
	return Info{
		Limit:     l.max,
		Used:      used,
		Remaining: l.max - used,
		Reset:     max(l.window-now.Sub(start), 0),
	}
}

// Clients returns the number of tracked client keys.
func (l *Limiter) Clients() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.clients)
}

// Cleanup removes clients whose window started more than two windows ago and
// returns how many were removed. It runs synchronously on the caller.
func (l *Limiter) Cleanup() int {
	cutoff := l.clock().Add(-2 * l.window)

	l.mu.RLock()
	candidates := make([]string, 0, len(l.clients))
	for key, state := range l.clients {
		if state.windowStart.Before(cutoff) {
			candidates = append(candidates, key)
		}
	}
	l.mu.RUnlock()

	removed := 0
	for start := 0; start < len(candidates); start += l.sweepBatch {
		end := min(start+l.sweepBatch, len(candidates))

		l.mu.Lock()
		for _, key := range candidates[start:end] {
			// A client may have started a fresh window since the snapshot.
			if state, ok := l.clients[key]; ok && state.windowStart.Before(cutoff) {
				delete(l.clients, key)
				removed++
			}
		}
		l.mu.Unlock()
	}

	return removed
}

// Wait blocks until any in-flight background sweep has finished.
func (l *Limiter) Wait() {
	l.sweeps.Wait()
}

func (l *Limiter) scheduleSweep() {
	if !l.sweeping.CompareAndSwap(false, true) {
		return
	}
	l.sweeps.Add(1)
	go func() {
		defer l.sweeps.Done()
		defer l.sweeping.Store(false)

		removed := l.Cleanup()
		if l.logger != nil && removed > 0 {
			l.logger.Debug("Rate limiter sweep removed stale clients",
				zap.Int("removed", removed),
				zap.Int("remaining", l.Clients()))
		}
	}()
}

func (l *Limiter) bypassed(key string) bool {
	if _, ok := l.trusted[key]; ok {
		return true
	}
	ip := net.ParseIP(key)
	return ip != nil && ip.IsLoopback()
}

func (l *Limiter) observe(d Decision) {
	if l.observer != nil {
		l.observer(d)
	}
}
