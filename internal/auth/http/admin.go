package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cobrax/tenauth/internal/auth/service"
	"github.com/cobrax/tenauth/pkg/cryptox"
	"github.com/cobrax/tenauth/pkg/httpx"
	"github.com/cobrax/tenauth/pkg/slogx"
	"github.com/cobrax/tenauth/pkg/tenantsdk"
)

// AdminKeyMiddleware gates a handler behind the X-Admin-Key header. The
// configured value is an argon2id hash, so a leaked config file does not
// leak the key itself.
func AdminKeyMiddleware(adminKeyHash string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-Admin-Key")
			if key == "" {
				tenantsdk.ErrInvalidToken.WriteError(w)
				return
			}
			if err := cryptox.VerifyAdminKey(key, adminKeyHash); err != nil {
				slogx.FromContext(r.Context()).Warn("admin key rejected",
					"path", r.URL.Path, "remote_ip", httpx.IPKeyExtractor(r))
				tenantsdk.ErrInvalidToken.WriteError(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminRevokeHandler serves POST /v1/admin/revoke.
type AdminRevokeHandler struct {
	MembershipService *service.MembershipService
}

type adminRevokeRequest struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
}

type adminRevokeResponse struct {
	TokenVersion int64 `json:"token_version"`
}

// ServeHTTP godoc
//
//	@Summary		Revoke Membership Tokens
//	@Description	Bumps the membership token version and revokes all of its refresh tokens.
//	@Description	Outstanding access tokens fail validation from the next request on.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			X-Admin-Key	header		string				true	"Admin API key"
//	@Param			request		body		adminRevokeRequest	true	"Membership to revoke"
//	@Success		200			{object}	adminRevokeResponse	"new token_version"
//	@Failure		400			{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		401			{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		404			{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/admin/revoke [post].
func (h *AdminRevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminRevokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" || req.TenantID == "" {
		tenantsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	version, err := h.MembershipService.RevokeMembershipTokens(ctx, req.UserID, req.TenantID)
	if err != nil {
		if errors.Is(err, service.ErrNoMembership) {
			tenantsdk.ErrNoMembership.WriteError(w)
			return
		}
		log.Error("membership revocation failed", "err", err)
		tenantsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminRevokeResponse{TokenVersion: version})
}

// AdminMembershipActiveHandler serves POST /v1/admin/memberships/active.
type AdminMembershipActiveHandler struct {
	MembershipService *service.MembershipService
}

type adminMembershipActiveRequest struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Active   bool   `json:"active"`
}

// ServeHTTP godoc
//
//	@Summary		Set Membership Active
//	@Description	Activates or deactivates a tenant membership. Deactivation is recorded in
//	@Description	the security event log.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			X-Admin-Key	header	string							true	"Admin API key"
//	@Param			request		body	adminMembershipActiveRequest	true	"Membership and target state"
//	@Success		204			"membership updated"
//	@Failure		400			{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		401			{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		404			{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/admin/memberships/active [post].
func (h *AdminMembershipActiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminMembershipActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" || req.TenantID == "" {
		tenantsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.MembershipService.SetMembershipActive(ctx, req.UserID, req.TenantID, req.Active); err != nil {
		if errors.Is(err, service.ErrNoMembership) {
			tenantsdk.ErrNoMembership.WriteError(w)
			return
		}
		log.Error("membership state change failed", "err", err)
		tenantsdk.ErrServerError.WriteError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
