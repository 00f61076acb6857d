package http

import (
	"net/http"
	"time"

	"github.com/cobrax/tenauth/internal/auth/store"
	"github.com/cobrax/tenauth/pkg/httpx"
	"github.com/cobrax/tenauth/pkg/jwtx"
	"github.com/cobrax/tenauth/pkg/slogx"
	"github.com/cobrax/tenauth/pkg/tenantsdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check
//	@Description	Returns 200 once the database answers pings and a signing key is loaded.
//	@Description	Returns 503 with per-check detail otherwise.
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	tenantsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	tenantsdk.HealthResponse	"status, uptime, version, checks"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store, keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := slogx.FromContext(r.Context())

		checks := tenantsdk.HealthChecks{Database: "ok", Signer: "ok"}
		status := "ok"
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			log.Warn("readiness database ping failed", "err", err)
			checks.Database = "unreachable"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		if !keys.IsReady() {
			checks.Signer = "no signing key"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.NoCache(w)
		httpx.WriteJSON(w, code, tenantsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  &checks,
		})
	}
}
