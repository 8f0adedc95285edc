package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter bounds requests per client IP with a fixed window. Save
// and load hit the SQLite store, so they get a budget.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*clientWindow
	limit   int
	period  time.Duration
}

type clientWindow struct {
	remaining int
	openedAt  time.Time
}

// NewRateLimiter allows limit requests per period for each client.
func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*clientWindow),
		limit:   limit,
		period:  period,
	}
	go rl.sweep()
	return rl
}

// Allow consumes one request from the client's window, opening a fresh
// one when the previous has expired.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[ip]
	if !ok || now.Sub(w.openedAt) >= rl.period {
		rl.windows[ip] = &clientWindow{remaining: rl.limit - 1, openedAt: now}
		return true
	}
	if w.remaining > 0 {
		w.remaining--
		return true
	}
	return false
}

// RetryAfter reports the seconds until the client's window resets.
func (rl *RateLimiter) RetryAfter(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[ip]
	if !ok {
		return 0
	}
	left := rl.period - time.Since(w.openedAt)
	if left < 0 {
		return 0
	}
	return int(left.Seconds()) + 1
}

// sweep drops windows idle for two full periods.
func (rl *RateLimiter) sweep() {
	for range time.Tick(time.Hour) {
		rl.mu.Lock()
		now := time.Now()
		for ip, w := range rl.windows {
			if now.Sub(w.openedAt) > 2*rl.period {
				delete(rl.windows, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// clientIP resolves the requester's address, honoring the first entry
// of X-Forwarded-For when a proxy sits in front.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimitMiddleware rejects over-budget requests with 429 and a
// Retry-After header.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.Allow(ip) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter(ip)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
