// Package ratelimitpkg provides an in-process fixed-window rate limiter.
package ratelimitpkg

import (
	"sync"
	"time"
)

type entry struct {
	mu    sync.Mutex
	start time.Time
	count int64
}

// Limiter counts requests per key in fixed windows. It is safe for
// concurrent use; contention is per key, not global.
type Limiter struct {
	limit  int64
	window time.Duration

	now func() time.Time

	entries sync.Map
}

// New returns a Limiter allowing limit requests per key per window.
func New(limit int64, window time.Duration) *Limiter {
	return &Limiter{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow reports whether the key may proceed and counts the request against
// its current window. A window that has elapsed is reset, not slid.
func (l *Limiter) Allow(key string) bool {
	v, _ := l.entries.LoadOrStore(key, &entry{})
	e := v.(*entry)

	e.mu.Lock()
	defer e.mu.Unlock()

	now := l.now()

	if e.start.IsZero() || now.Sub(e.start) >= l.window {
		e.start = now
		e.count = 0
	}

	if e.count >= l.limit {
		return false
	}

	e.count++

	return true
}
