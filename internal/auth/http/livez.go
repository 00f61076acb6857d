package http

import (
	"net/http"
	"time"

	"github.com/cobrax/tenauth/pkg/httpx"
	"github.com/cobrax/tenauth/pkg/tenantsdk"
)

// LivezHandler godoc
//
//	@Summary		Liveness Check
//	@Description	Returns 200 while the process is up. Carries no dependency checks;
//	@Description	use /readyz for those.
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	tenantsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.NoCache(w)
		httpx.WriteJSON(w, http.StatusOK, tenantsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
		})
	}
}
