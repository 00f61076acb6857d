package http

import (
	"net/http"

	"github.com/cobrax/tenauth/internal/auth/metrics"
	"github.com/cobrax/tenauth/internal/auth/store"
	"github.com/cobrax/tenauth/pkg/httpx"
	"github.com/cobrax/tenauth/pkg/slogx"
)

// statsResponse extends the counter snapshot with a breakdown of recorded
// security events, so operators can tell an expired-token wave apart from a
// credential-stuffing run without leaving the endpoint.
type statsResponse struct {
	metrics.Snapshot
	FailuresByKind map[string]int64 `json:"failures_by_kind"`
}

// StatsHandler godoc
//
//	@Summary		Service Stats
//	@Description	Returns a JSON snapshot of the operation counters (exchanges, validations,
//	@Description	refreshes, rate limit hits) plus per-kind security event totals.
//	@Description	Prometheus scraping should use /metrics instead.
//	@Tags			Admin
//	@Produce		json
//	@Param			X-Admin-Key	header		string	true	"Admin API key"
//	@Success		200			{object}	http.statsResponse
//	@Failure		401			{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/internal/stats [get].
func StatsHandler(m *metrics.Metrics, events store.SecurityEvents) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := statsResponse{
			Snapshot:       m.Snapshot(),
			FailuresByKind: map[string]int64{},
		}

		kinds, err := events.CountSecurityEventsByKind(r.Context())
		if err != nil {
			slogx.FromContext(r.Context()).Error("failed to count security events", "error", err)
		} else {
			for kind, n := range kinds {
				resp.FailuresByKind[string(kind)] = n
			}
		}

		httpx.NoCache(w)
		httpx.WriteJSON(w, http.StatusOK, resp)
	}
}
