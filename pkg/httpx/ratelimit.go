package httpx

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cobrax/tenauth/pkg/slogx"
)

// WindowConfig defines a fixed-window rate limit: at most Max requests per
// Window per key.
type WindowConfig struct {
	Max    int
	Window time.Duration
}

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed bool
	// Remaining is how many requests are left in the current window.
	Remaining int
	// RetryAfter is how long until the current window resets. Only
	// meaningful when Allowed is false.
	RetryAfter time.Duration
}

// Limiter is the admission interface handlers depend on. The in-memory
// fixed-window implementation below is the default; a shared store (e.g. a
// counting cache with TTL) can be swapped in for multi-instance deployments
// without touching callers.
type Limiter interface {
	Allow(key string) Decision
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

// FixedWindowLimiter counts requests per key in fixed windows. When a window
// lapses the counter resets to a fresh window rather than decaying, so bursts
// straddling a window boundary can briefly exceed Max. That imprecision is
// accepted; this limiter is a defense-in-depth layer, not the sole admission
// control.
//
// State is process-local. Under horizontal scaling each instance enforces its
// own window, so the effective global limit is Max multiplied by the number
// of instances.
type FixedWindowLimiter struct {
	cfg WindowConfig

	mu      sync.Mutex
	entries map[string]*windowEntry
	now     func() time.Time
}

// NewFixedWindowLimiter returns a limiter enforcing cfg.
func NewFixedWindowLimiter(cfg WindowConfig) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		cfg:     cfg,
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

// WithClock overrides the limiter's time source. Tests only.
func (l *FixedWindowLimiter) WithClock(now func() time.Time) *FixedWindowLimiter {
	l.now = now
	return l
}

// Allow records one request for key and reports whether it fits in the
// current window.
func (l *FixedWindowLimiter) Allow(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	e, ok := l.entries[key]
	if !ok || now.After(e.resetAt) {
		// Fresh window: this request is the first of Max.
		l.entries[key] = &windowEntry{count: 1, resetAt: now.Add(l.cfg.Window)}
		return Decision{Allowed: true, Remaining: l.cfg.Max - 1}
	}

	e.count++
	if e.count > l.cfg.Max {
		return Decision{Allowed: false, RetryAfter: e.resetAt.Sub(now)}
	}
	return Decision{Allowed: true, Remaining: l.cfg.Max - e.count}
}

// Sweep drops entries whose window has passed and returns how many were
// removed. Called periodically by housekeeping so idle keys don't accumulate.
func (l *FixedWindowLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, e := range l.entries {
		if now.After(e.resetAt) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// KeyExtractor derives the rate-limit key from a request.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor extracts the client IP address from the request.
// It handles X-Forwarded-For and X-Real-IP headers for proxied requests.
func IPKeyExtractor(r *http.Request) string {
	// Check X-Forwarded-For header (comma-separated list)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fallback to RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// OperationKeyExtractor scopes another extractor's key to an operation name,
// so separate endpoints get independent windows for the same client.
func OperationKeyExtractor(op string, inner KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		key := inner(r)
		if key == "" {
			return ""
		}
		return op + ":" + key
	}
}

// RateLimitMiddleware rejects requests once the limiter's window is
// exhausted. onReject, if set, runs before the 429 is written; the router
// uses it to record a security event.
func RateLimitMiddleware(l Limiter, keyFn KeyExtractor, onReject func(r *http.Request, key string, d Decision)) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			key := keyFn(r)
			if key == "" {
				// If we can't extract a key, allow the request but log it
				log.Warn("rate limit: unable to extract key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			d := l.Allow(key)
			if d.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := max(int(d.RetryAfter.Seconds()), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

			log.Warn("rate limit exceeded",
				"key", key,
				"endpoint", r.URL.Path,
				"retry_after", retryAfter,
			)

			if onReject != nil {
				onReject(r, key, d)
			}

			WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":             "rate_limit_exceeded",
				"error_description": "Too many requests. Please try again later.",
			})
		})
	}
}
