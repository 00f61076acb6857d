package tenantsdk

import "github.com/cobrax/tenauth/pkg/jwtx"

// ErrorResponse is the JSON error envelope, used when parsing HTTP error
// responses. Client code should use APIError instead.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// TokenResponse is returned by the exchange and refresh endpoints. The
// refresh token never appears here; it travels only in the HttpOnly
// rt_<slug> cookie, out of reach of client-side script.
type TokenResponse struct {
	// AccessToken is the tenant-scoped JWT used to authenticate API requests
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`

	// TenantID is the tenant the tokens are scoped to
	TenantID string `json:"tenant_id"`

	// TenantSlug is the URL-safe identifier of that tenant
	TenantSlug string `json:"tenant_slug"`
}

// ValidateRequest is the body of the validate endpoint.
type ValidateRequest struct {
	// Token is the tenant access token to check
	Token string `json:"token"`

	// TenantSlug optionally pins the expected tenant
	TenantSlug string `json:"tenant_slug,omitempty"`
}

// Session is the validated identity a resource service works with. It is
// the validate endpoint's success payload.
type Session struct {
	Valid        bool     `json:"valid"`
	UserID       string   `json:"user_id"`
	TenantID     string   `json:"tenant_id"`
	TenantSlug   string   `json:"tenant_slug"`
	Roles        []string `json:"roles,omitempty"`
	TokenVersion int64    `json:"token_version"`
	ExpiresAt    int64    `json:"expires_at"` // unix seconds
}

// HasRole reports whether the session carries the given role.
func (s *Session) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HealthResponse is returned by the livez and readyz endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency readiness.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// JWKSResponse is the JSON Web Key Set served for token verification.
type JWKSResponse = jwtx.JWKS
