package ratelimit

import (
	"sync"
	"time"
)

// window tracks request usage for a single client key.
type window struct {
	// count is the number of requests seen in the current window.
	count int
	// resetAt is when the current window expires.
	resetAt time.Time
}

// FixedWindowLimiter is an in-memory fixed-window rate limiter keyed by client.
// Bursts across a window boundary are accepted: a client can spend a full
// window budget at the end of one window and another at the start of the next.
// State is process-local, so a horizontally scaled deployment needs a shared
// store instead.
type FixedWindowLimiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	max      int
	duration time.Duration
	// now is replaceable for tests.
	now func() time.Time
}

// NewFixedWindowLimiter creates a limiter allowing max requests per duration.
func NewFixedWindowLimiter(max int, duration time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		windows:  make(map[string]*window),
		max:      max,
		duration: duration,
		now:      time.Now,
	}
}

// Allow reports whether the client identified by key may proceed.
// It consumes one request from the window on success and consumes nothing
// when the client is already over the limit.
func (l *FixedWindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		l.windows[key] = &window{
			count:   1,
			resetAt: now.Add(l.duration),
		}
		return true
	}

	if w.count >= l.max {
		return false
	}

	w.count++
	return true
}
