package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 7, 3, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(requests int, window time.Duration, clock *fakeClock) *Limiter {
	return New(Config{
		Requests: requests,
		Window:   window,
		Clock:    clock.Now,
		// Keep background sweeps out of the way unless a test asks for them.
		CleanupInterval: 24 * time.Hour,
	})
}

func TestAllowAdmitsUpToLimitThenDenies(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(3, time.Hour, clock)

	for i := 0; i < 3; i++ {
		require.True(t, l.Allow("10.0.0.1"), "request %d should be admitted", i+1)
	}
	require.False(t, l.Allow("10.0.0.1"))
	require.False(t, l.Allow("10.0.0.1"))

	info := l.Status("10.0.0.1")
	assert.Equal(t, 3, info.Used, "denied requests must not consume budget")
	assert.Equal(t, 0, info.Remaining)
}

func TestAllowResetsAfterWindow(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(2, time.Hour, clock)

	require.True(t, l.Allow("10.0.0.1"))
	require.True(t, l.Allow("10.0.0.1"))
	require.False(t, l.Allow("10.0.0.1"))

	clock.Advance(time.Hour)
	require.True(t, l.Allow("10.0.0.1"))

	info := l.Status("10.0.0.1")
	assert.Equal(t, 1, info.Used)
	assert.Equal(t, time.Hour, info.Reset)
}

func TestWindowRolloverScenario(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(2, 60*time.Second, clock)

	require.True(t, l.Allow("A"))
	clock.Advance(time.Second)
	require.True(t, l.Allow("A"))
	clock.Advance(time.Second)
	require.False(t, l.Allow("A"))

	clock.Advance(58 * time.Second)
	require.True(t, l.Allow("A"), "window rolls over at exactly one window")
}

func TestBoundaryBurstAdmitsTwoWindowsWorth(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(5, time.Minute, clock)

	require.True(t, l.Allow("burst"))
	clock.Advance(time.Minute - time.Millisecond)
	for i := 0; i < 4; i++ {
		require.True(t, l.Allow("burst"))
	}
	clock.Advance(time.Millisecond)
	for i := 0; i < 5; i++ {
		require.True(t, l.Allow("burst"))
	}
	require.False(t, l.Allow("burst"))
}

func TestLoopbackBypass(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(1, time.Minute, clock)

	for _, key := range []string{"127.0.0.1", "::1", "localhost", "127.0.0.5"} {
		for i := 0; i < 5; i++ {
			require.True(t, l.Allow(key), "loopback %s should never be limited", key)
		}
		info := l.Status(key)
		assert.Equal(t, Info{Limit: 1, Used: 0, Remaining: 10, Reset: 0}, info)
	}
	assert.Equal(t, 0, l.Clients(), "bypassed keys must not create state")
}

func TestTrustedKeysBypass(t *testing.T) {
	clock := newFakeClock()
	l := New(Config{Requests: 1, Window: time.Minute, Clock: clock.Now, Trusted: []string{" 10.1.1.1 ", ""}})

	require.True(t, l.Allow("10.1.1.1"))
	require.True(t, l.Allow("10.1.1.1"))
	require.True(t, l.Allow("10.9.9.9"))
	require.False(t, l.Allow("10.9.9.9"))
}

func TestStatusForUnknownClient(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(100, time.Hour, clock)

	info := l.Status("203.0.113.9")
	assert.Equal(t, Info{Limit: 100, Used: 0, Remaining: 100, Reset: time.Hour}, info)
	assert.Equal(t, 0, l.Clients(), "status must not create state")
}

func TestStatusDoesNotMutate(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(3, time.Minute, clock)

	require.True(t, l.Allow("c"))
	clock.Advance(10 * time.Second)

	first := l.Status("c")
	second := l.Status("c")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, first.Used)
	assert.Equal(t, 2, first.Remaining)
	assert.Equal(t, 50*time.Second, first.Reset)
	assert.Equal(t, int64(50), first.ResetSeconds())
}

func TestStatusAfterWindowExpiredWithoutRollover(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(3, time.Minute, clock)

	require.True(t, l.Allow("c"))
	require.True(t, l.Allow("c"))
	clock.Advance(2 * time.Minute)

	info := l.Status("c")
	assert.Equal(t, 2, info.Used)
	assert.Equal(t, 1, info.Remaining)
	assert.Equal(t, time.Duration(0), info.Reset, "reset clamps at zero")
	assert.Equal(t, info.Limit, info.Used+info.Remaining)
}

func TestUsedPlusRemainingEqualsLimit(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(4, time.Minute, clock)

	for i := 0; i < 7; i++ {
		l.Allow("k")
		info := l.Status("k")
		assert.Equal(t, 4, info.Used+info.Remaining, "after request %d", i+1)
		clock.Advance(5 * time.Second)
	}
}

func TestCleanupRemovesOnlyStaleClients(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(10, time.Minute, clock)

	require.True(t, l.Allow("old"))
	clock.Advance(90 * time.Second)
	require.True(t, l.Allow("recent"))
	clock.Advance(31 * time.Second)

	// "old" started 121s ago (> 2 windows), "recent" 31s ago.
	removed := l.Cleanup()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, l.Clients())

	info := l.Status("old")
	assert.Equal(t, Info{Limit: 10, Used: 0, Remaining: 10, Reset: time.Minute}, info)
}

func TestCleanupKeepsClientAtExactlyTwoWindows(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(10, time.Minute, clock)

	require.True(t, l.Allow("edge"))
	clock.Advance(2 * time.Minute)

	assert.Equal(t, 0, l.Cleanup())
	assert.Equal(t, 1, l.Clients())
}

func TestCleanupInBatches(t *testing.T) {
	clock := newFakeClock()
	l := New(Config{
		Requests:        1,
		Window:          time.Second,
		Clock:           clock.Now,
		CleanupInterval: 24 * time.Hour,
		SweepBatch:      7,
	})

	for i := 0; i < 50; i++ {
		l.Allow(fmt.Sprintf("10.0.0.%d", i))
	}
	clock.Advance(3 * time.Second)

	assert.Equal(t, 50, l.Cleanup())
	assert.Equal(t, 0, l.Clients())
}

func TestAllowSchedulesBackgroundSweep(t *testing.T) {
	clock := newFakeClock()
	l := New(Config{
		Requests:        5,
		Window:          time.Minute,
		Clock:           clock.Now,
		CleanupInterval: 5 * time.Minute,
	})

	require.True(t, l.Allow("stale"))
	clock.Advance(5 * time.Minute)

	// This call crosses the cleanup interval and triggers an async sweep.
	require.True(t, l.Allow("fresh"))
	l.Wait()

	assert.Equal(t, 1, l.Clients())
	assert.Equal(t, 1, l.Status("fresh").Used)
}

func TestObserverSeesDecisions(t *testing.T) {
	clock := newFakeClock()
	var allowed, denied, bypassed atomic.Int32
	l := New(Config{
		Requests: 1,
		Window:   time.Minute,
		Clock:    clock.Now,
		Observer: func(d Decision) {
			switch {
			case d.Bypassed:
				bypassed.Add(1)
			case d.Allowed:
				allowed.Add(1)
			default:
				denied.Add(1)
			}
		},
	})

	l.Allow("a")
	l.Allow("a")
	l.Allow("::1")

	assert.Equal(t, int32(1), allowed.Load())
	assert.Equal(t, int32(1), denied.Load())
	assert.Equal(t, int32(1), bypassed.Load())
}

func TestConcurrentAllowNeverExceedsLimit(t *testing.T) {
	l := New(Config{Requests: 100, Window: time.Hour})

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if l.Allow("shared") {
					admitted.Add(1)
				}
			}
		}()
	}
	wg.Wait()
	l.Wait()

	assert.Equal(t, int32(100), admitted.Load())
	info := l.Status("shared")
	assert.Equal(t, 100, info.Used)
	assert.Equal(t, 0, info.Remaining)
}

func TestAllowStatusReportsThisRequest(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(2, time.Minute, clock)

	allowed, info := l.AllowStatus("203.0.113.7")
	assert.True(t, allowed)
	assert.Equal(t, Info{Limit: 2, Used: 1, Remaining: 1, Reset: time.Minute}, info)

	clock.Advance(10 * time.Second)
	allowed, info = l.AllowStatus("203.0.113.7")
	assert.True(t, allowed)
	assert.Equal(t, Info{Limit: 2, Used: 2, Remaining: 0, Reset: 50 * time.Second}, info)

	allowed, info = l.AllowStatus("203.0.113.7")
	assert.False(t, allowed)
	assert.Equal(t, 2, info.Used)

	allowed, info = l.AllowStatus("127.0.0.1")
	assert.True(t, allowed)
	assert.Equal(t, 20, info.Remaining)
}

func TestConcurrentAllowStatusGivesDistinctCounts(t *testing.T) {
	l := New(Config{Requests: 200, Window: time.Hour})

	var mu sync.Mutex
	seen := make(map[int]int)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				allowed, info := l.AllowStatus("shared")
				if !allowed {
					continue
				}
				mu.Lock()
				seen[info.Used]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	l.Wait()

	require.Len(t, seen, 200)
	for used := 1; used <= 200; used++ {
		assert.Equal(t, 1, seen[used], "used=%d", used)
	}
}
