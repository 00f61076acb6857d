package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/cobrax/tenauth/internal/auth/service"
	"github.com/cobrax/tenauth/pkg/httpx"
	"github.com/cobrax/tenauth/pkg/slogx"
	"github.com/cobrax/tenauth/pkg/tenantsdk"
)

// refreshCookieName returns the slug-scoped refresh cookie name. One cookie
// per tenant, so a browser holding sessions in two tenants doesn't clobber
// itself.
func refreshCookieName(slug string) string {
	return "rt_" + slug
}

// setRefreshCookie attaches the rotated refresh token. HttpOnly always.
func setRefreshCookie(w http.ResponseWriter, slug, token string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName(slug),
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// mapServiceError translates service sentinels into the API error envelope.
func mapServiceError(err error) *tenantsdk.APIError {
	switch {
	case errors.Is(err, service.ErrInvalidCode):
		return tenantsdk.ErrInvalidCode
	case errors.Is(err, service.ErrUsedCode):
		return tenantsdk.ErrUsedCode
	case errors.Is(err, service.ErrExpiredCode):
		return tenantsdk.ErrExpiredCode
	case errors.Is(err, service.ErrTenantNotFound):
		return tenantsdk.ErrTenantNotFound
	case errors.Is(err, service.ErrTenantInactive):
		return tenantsdk.ErrTenantInactive
	case errors.Is(err, service.ErrSlugMismatch):
		return tenantsdk.ErrSlugMismatch
	case errors.Is(err, service.ErrNoMembership):
		return tenantsdk.ErrNoMembership
	case errors.Is(err, service.ErrMembershipInactive):
		return tenantsdk.ErrInactiveMembership
	case errors.Is(err, service.ErrInvalidToken):
		return tenantsdk.ErrInvalidToken
	case errors.Is(err, service.ErrTokenExpired):
		return tenantsdk.ErrTokenExpired
	case errors.Is(err, service.ErrTokenRevoked):
		return tenantsdk.ErrTokenRevoked
	case errors.Is(err, service.ErrInvalidRefresh):
		return tenantsdk.ErrInvalidRefresh
	default:
		return nil
	}
}

// ExchangeHandler serves POST /v1/exchange-tenant-code/{slug}.
type ExchangeHandler struct {
	TokenService  *service.TokenService
	SecureCookies bool
}

type exchangeRequest struct {
	Code string `json:"code"`
}

// ServeHTTP godoc
//
//	@Summary		Exchange Access Code
//	@Description	Redeems a one-time access code for a tenant-scoped access token and refresh token.
//	@Description	The refresh token is also set as an HttpOnly rt_{slug} cookie.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			slug	path		string					true	"Tenant slug"
//	@Param			request	body		exchangeRequest			true	"One-time access code"
//	@Success		200		{object}	tenantsdk.TokenResponse	"access_token, token_type, expires_in, tenant_id, tenant_slug"
//	@Failure		400		{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		429		{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/exchange-tenant-code/{slug} [post].
func (h *ExchangeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	slug := r.PathValue("slug")

	var req exchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		tenantsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		tenantsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.TokenService.ExchangeAccessCode(ctx, slug, req.Code, httpx.IPKeyExtractor(r))
	if err != nil {
		if apiErr := mapServiceError(err); apiErr != nil {
			apiErr.WriteError(w)
			return
		}
		log.Error("access code exchange failed", "err", err)
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
