package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cobrax/tenauth/internal/auth/service"
	"github.com/cobrax/tenauth/pkg/httpx"
	"github.com/cobrax/tenauth/pkg/slogx"
	"github.com/cobrax/tenauth/pkg/tenantsdk"
)

// RefreshHandler serves POST /v1/refresh-tenant-token/{slug}.
type RefreshHandler struct {
	TokenService  *service.TokenService
	SecureCookies bool
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ServeHTTP godoc
//
//	@Summary		Refresh Tenant Token
//	@Description	Rotates a refresh token and issues a new access + refresh pair. The refresh
//	@Description	token is read from the rt_{slug} cookie, falling back to the JSON body for
//	@Description	non-browser clients. The spent token is revoked; reusing it revokes the
//	@Description	whole token family.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			slug	path		string					true	"Tenant slug"
//	@Param			request	body		refreshRequest			false	"Refresh token when not using the cookie"
//	@Success		200		{object}	tenantsdk.TokenResponse	"access_token, token_type, expires_in, tenant_id, tenant_slug"
//	@Failure		400		{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		429		{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/refresh-tenant-token/{slug} [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	slug := r.PathValue("slug")

	// Cookie first, body as fallback.
	var refresh string
	if c, err := r.Cookie(refreshCookieName(slug)); err == nil {
		refresh = c.Value
	}
	if refresh == "" && r.Body != nil {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			refresh = strings.TrimSpace(req.RefreshToken)
		}
	}
	if refresh == "" {
		tenantsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.TokenService.RefreshAccessToken(ctx, slug, refresh, httpx.IPKeyExtractor(r))
	if err != nil {
		if apiErr := mapServiceError(err); apiErr != nil {
			// A dead refresh token means the cookie is useless; clear it.
			setRefreshCookie(w, slug, "", -1, h.SecureCookies)
			apiErr.WriteError(w)
			return
		}
		log.Error("token refresh failed", "err", err)
		tenantsdk.ErrServerError.WriteError(w)
		return
	}

	setRefreshCookie(w, slug, pair.RefreshToken,
		int(h.TokenService.RefreshTTL.Seconds()), h.SecureCookies)

	httpx.WriteJSON(w, http.StatusOK, tenantsdk.TokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   pair.TokenType,
		ExpiresIn:   int(pair.ExpiresIn.Seconds()),
		TenantID:    pair.TenantID,
		TenantSlug:  pair.TenantSlug,
	})
}
