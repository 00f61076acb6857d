package domain

import "time"

// TokenPair is what the exchange endpoint returns: the short-lived tenant
// access token (JWT) and the opaque refresh token.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresIn    time.Duration `json:"expires_in"`           // seconds until expiry
	TenantID     string        `json:"tenant_id"`
	TenantSlug   string        `json:"tenant_slug"`
}

// RefreshToken models the stored refresh token record in the DB. One record
// per issuance; rotation revokes the old record and creates a new one.
type RefreshToken struct {
	ID           string
	UserID       string
	TenantID     string
	MembershipID string
	TokenHash    string // deterministic fingerprint (base64url SHA-256)
	ExpiresAt    time.Time
	Revoked      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Expired reports whether the refresh token is past its expiry.
func (t RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// TenantIdentity is the resolved, live identity a valid token represents.
// It reflects the membership as stored right now, not just the claims.
type TenantIdentity struct {
	UserID       string    `json:"user_id"`
	TenantID     string    `json:"tenant_id"`
	TenantSlug   string    `json:"tenant_slug"`
	Roles        []string  `json:"roles,omitempty"`
	TokenVersion int64     `json:"token_version"`
	ExpiresAt    time.Time `json:"expires_at"`
}
