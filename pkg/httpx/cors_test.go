package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cobrax/tenauth/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func corsHandler(cfg httpx.CORSConfig) http.Handler {
	return httpx.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
		httpx.CORSMiddleware(cfg),
	)
}

func TestCORSMiddleware(t *testing.T) {
	cfg := httpx.CORSConfig{AllowedOrigins: []string{"https://app.cobrax.io"}}

	t.Run("allowed origin gets CORS headers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Origin", "https://app.cobrax.io")

		corsHandler(cfg).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "https://app.cobrax.io", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight short-circuits with 204", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://app.cobrax.io")

		corsHandler(cfg).ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("unknown origin gets no allow header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Origin", "https://evil.example")

		corsHandler(cfg).ServeHTTP(rec, req)

		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("localhost only allowed outside production", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Origin", "http://localhost:5173")

		corsHandler(cfg).ServeHTTP(rec, req)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

		dev := httpx.CORSConfig{AllowedOrigins: cfg.AllowedOrigins, AllowLocalhost: true}
		rec = httptest.NewRecorder()
		corsHandler(dev).ServeHTTP(rec, req)
		require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
