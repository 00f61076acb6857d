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

// ValidateHandler serves POST /v1/validate-tenant-token.
type ValidateHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Validate Tenant Token
//	@Description	Verifies a tenant access token: signature, expiry, and the live state of the
//	@Description	tenant and membership. A revoked membership fails here immediately even if the
//	@Description	token signature is still valid.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tenantsdk.ValidateRequest	true	"Token to validate, optionally pinned to a tenant slug"
//	@Success		200		{object}	tenantsdk.Session			"validated identity"
//	@Failure		400		{object}	tenantsdk.ErrorResponse		"valid, error, error_description"
//	@Failure		401		{object}	tenantsdk.ErrorResponse		"valid, error, error_description"
//	@Failure		403		{object}	tenantsdk.ErrorResponse		"valid, error, error_description"
//	@Failure		429		{object}	tenantsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/validate-tenant-token [post].
func (h *ValidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req tenantsdk.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		tenantsdk.ErrInvalidRequest.WriteValidationError(w)
		return
	}

	token := strings.TrimSpace(req.Token)
	if token == "" {
		// Fall back to the Authorization header for callers that already
		// carry the token there.
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		}
	}
	if token == "" {
		tenantsdk.ErrInvalidRequest.WriteValidationError(w)
		return
	}

	ident, err := h.TokenService.ValidateToken(ctx, token, req.TenantSlug, httpx.IPKeyExtractor(r))
	if err != nil {
		if apiErr := mapServiceError(err); apiErr != nil {
			apiErr.WriteValidationError(w)
			return
		}
		log.Error("token validation failed", "err", err)
		tenantsdk.ErrServerError.WriteValidationError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tenantsdk.Session{
		Valid:        true,
		UserID:       ident.UserID,
		TenantID:     ident.TenantID,
		TenantSlug:   ident.TenantSlug,
		Roles:        ident.Roles,
		TokenVersion: ident.TokenVersion,
		ExpiresAt:    ident.ExpiresAt.Unix(),
	})
}
