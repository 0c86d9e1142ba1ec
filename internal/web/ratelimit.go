package web

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// errRateLimited is mapped to RATE001 by core.MapError.
var errRateLimited = errors.New("rate limit exceeded")

// rateLimiter counts requests per client IP in fixed windows.
type rateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*clientWindow

	done     chan struct{}
	stopOnce sync.Once
}

// clientWindow is the current window of one client.
type clientWindow struct {
	start time.Time
	used  int
}

// newRateLimiter creates a per-minute limiter owned by s; it is stopped by
// Server.Shutdown.
func (s *Server) newRateLimiter(perMinute int) *rateLimiter {
	rl := newRateLimiter(perMinute, time.Minute)
	s.limiters = append(s.limiters, rl)
	return rl
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		clients: make(map[string]*clientWindow),
		done:    make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

func (rl *rateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// sweep forgets clients idle for more than two windows.
func (rl *rateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-2 * rl.window)
	for ip, cw := range rl.clients {
		if cw.start.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// allow records a request from ip. When the window is used up it returns
// false and the time left until the window resets.
func (rl *rateLimiter) allow(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cw, ok := rl.clients[ip]
	if !ok || now.Sub(cw.start) > rl.window {
		rl.clients[ip] = &clientWindow{start: now, used: 1}
		return true, 0
	}
	if cw.used >= rl.limit {
		return false, cw.start.Add(rl.window).Sub(now)
	}
	cw.used++
	return true, 0
}

// middleware rejects requests over the limit with 429 and Retry-After.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rl.allow(clientIP(r))
		if !ok {
			w.Header().Set("Retry-After", retryAfterSeconds(wait))
			respondError(w, r, errRateLimited, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// retryAfterSeconds rounds d up to whole seconds, at least 1.
func retryAfterSeconds(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
