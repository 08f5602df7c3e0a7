package http

import (
	"sync"
	"time"
)

// rateLimiter allows up to limit events per fixed window. A zero limit
// disables it.
type rateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	started time.Time
	count   int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &rateLimiter{limit: limit, window: window, now: time.Now}
}

func (r *rateLimiter) allow() bool {
	if r == nil || r.limit <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if t := r.now(); t.Sub(r.started) >= r.window {
		r.started = t
		r.count = 0
	}
	r.count++
	return r.count <= r.limit
}
