package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cobrax/tenauth/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"

		ip := httpx.IPKeyExtractor(req)
		require.Equal(t, "192.168.1.1", ip)
	})

	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")

		ip := httpx.IPKeyExtractor(req)
		require.Equal(t, "203.0.113.1", ip)
	})

	t.Run("uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Real-IP", "203.0.113.2")

		ip := httpx.IPKeyExtractor(req)
		require.Equal(t, "203.0.113.2", ip)
	})
}

func TestOperationKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	key := httpx.OperationKeyExtractor("exchange", httpx.IPKeyExtractor)(req)
	require.Equal(t, "exchange:192.168.1.1", key)
}

func TestFixedWindowLimiter(t *testing.T) {
	t.Run("allows up to max then rejects", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		l := httpx.NewFixedWindowLimiter(httpx.WindowConfig{Max: 3, Window: time.Minute}).
			WithClock(func() time.Time { return now })

		for i := range 3 {
			d := l.Allow("ip")
			require.True(t, d.Allowed, "request %d should pass", i+1)
			require.Equal(t, 2-i, d.Remaining)
		}

		d := l.Allow("ip")
		require.False(t, d.Allowed)
		require.Equal(t, time.Minute, d.RetryAfter)
	})

	t.Run("window expiry resets the counter to a fresh window", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		l := httpx.NewFixedWindowLimiter(httpx.WindowConfig{Max: 2, Window: time.Minute}).
			WithClock(func() time.Time { return now })

		require.True(t, l.Allow("ip").Allowed)
		require.True(t, l.Allow("ip").Allowed)
		require.False(t, l.Allow("ip").Allowed)

		now = now.Add(time.Minute + time.Second)

		d := l.Allow("ip")
		require.True(t, d.Allowed)
		require.Equal(t, 1, d.Remaining, "counter resets to 1, not decayed")
	})

	t.Run("keys are independent", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		l := httpx.NewFixedWindowLimiter(httpx.WindowConfig{Max: 1, Window: time.Minute}).
			WithClock(func() time.Time { return now })

		require.True(t, l.Allow("a").Allowed)
		require.False(t, l.Allow("a").Allowed)
		require.True(t, l.Allow("b").Allowed)
	})

	t.Run("sweep drops only expired windows", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		l := httpx.NewFixedWindowLimiter(httpx.WindowConfig{Max: 5, Window: time.Minute}).
			WithClock(func() time.Time { return now })

		l.Allow("old")
		now = now.Add(2 * time.Minute)
		l.Allow("fresh")

		require.Equal(t, 1, l.Sweep())
		require.Equal(t, 0, l.Sweep())
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("rejects over-limit requests with Retry-After", func(t *testing.T) {
		l := httpx.NewFixedWindowLimiter(httpx.WindowConfig{Max: 2, Window: time.Minute})

		var rejectedKey string
		handler := httpx.Chain(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}),
			httpx.RateLimitMiddleware(l, httpx.IPKeyExtractor, func(r *http.Request, key string, d httpx.Decision) {
				rejectedKey = key
			}),
		)

		for range 2 {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.RemoteAddr = "10.0.0.1:1111"
			handler.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:1111"
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "10.0.0.1", rejectedKey)
	})

	t.Run("missing key falls open", func(t *testing.T) {
		l := httpx.NewFixedWindowLimiter(httpx.WindowConfig{Max: 1, Window: time.Minute})
		handler := httpx.Chain(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}),
			httpx.RateLimitMiddleware(l, func(*http.Request) string { return "" }, nil),
		)

		for range 5 {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}
