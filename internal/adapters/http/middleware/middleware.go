package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/csrf"
)

// idleTTL is how long an idle client keeps its bucket.
const idleTTL = 5 * time.Minute

// RateLimiter is a per-client token bucket. Idle buckets are swept inside
// Allow; no goroutine is started.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	burst     int           // tokens added per interval, and the cap
	interval  time.Duration // refill period
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	tokens int
	refill time.Time // start of the current refill period
}

// NewRateLimiter allows burst requests per interval for each client.
func NewRateLimiter(burst int, interval time.Duration) *RateLimiter {
	return &RateLimiter{buckets: map[string]*bucket{}, burst: burst, interval: interval, now: time.Now}
}

// Allow takes a token for client.
// PRE: client is non-empty
// POST: false when the client's bucket is empty
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweepLocked(now)

	b, ok := rl.buckets[client]
	if !ok {
		rl.buckets[client] = &bucket{tokens: rl.burst - 1, refill: now}
		return true
	}
	// whole periods only; the remainder carries over
	if n := int(now.Sub(b.refill) / rl.interval); n > 0 {
		b.tokens = min(rl.burst, b.tokens+n*rl.burst)
		b.refill = b.refill.Add(time.Duration(n) * rl.interval)
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(rl.lastSweep) < time.Minute {
		return
	}
	for k, b := range rl.buckets {
		if now.Sub(b.refill) > idleTTL {
			delete(rl.buckets, k)
		}
	}
	rl.lastSweep = now
}

// RateLimit rejects clients over their budget with 429 and a Retry-After hint.
func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	retry := strconv.Itoa(max(1, int(limiter.interval.Round(time.Second)/time.Second)))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !limiter.Allow(ip) {
				slog.Warn("rate_limit_exceeded", "ip", ip, "path", r.URL.Path)
				w.Header().Set("Retry-After", retry)
				writeError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// SecurityHeaders adds OWASP recommended headers for a JSON API.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; frame-ancestors 'none'")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// CSRF returns a handler that protects against CSRF attacks.
// authKey must be 32 bytes. JSON requests (Content-Type: application/json)
// are exempt: browsers cannot send them cross-site without a CORS preflight.
func CSRF(authKey []byte, secure bool) func(http.Handler) http.Handler {
	csrfProtect := csrf.Protect(
		authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slog.Warn("csrf_rejected", "path", r.URL.Path, "reason", csrf.FailureReason(r))
			writeError(w, http.StatusForbidden, "Forbidden")
		})),
	)

	return func(next http.Handler) http.Handler {
		protected := csrfProtect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isJSON(r) {
				next.ServeHTTP(w, r)
				return
			}
			if !secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

func isJSON(r *http.Request) bool {
	mt, _, _ := strings.Cut(r.Header.Get("Content-Type"), ";")
	return strings.EqualFold(strings.TrimSpace(mt), "application/json")
}

// Chain applies middlewares in order; the last one listed is outermost.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}
