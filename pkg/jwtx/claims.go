package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultAccessTokenTTL is the default lifetime for tenant access tokens.
	DefaultAccessTokenTTL = time.Hour

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour

	// DefaultLeeway is the clock-skew grace applied to exp/nbf checks.
	DefaultLeeway = 60 * time.Second
)

// TenantClaims are the access-token claims issued per tenant membership.
// Keep changes additive so already-issued tokens stay parseable.
type TenantClaims struct {
	jwt.RegisteredClaims

	// TenantID is the tenant the token is scoped to.
	TenantID string `json:"tid"`

	// TenantSlug mirrors the slug the token was issued under. Resource
	// services compare it against the slug in the request path.
	TenantSlug string `json:"slug"`

	// Roles the user holds in this tenant, e.g. ["admin", "billing"].
	Roles []string `json:"roles,omitempty"`

	// TokenVersion is the membership's token_version at issue time. A
	// bumped version on the membership invalidates every token carrying
	// the old value.
	TokenVersion int64 `json:"ver"`
}

// NewTenantClaims builds minimally-correct claims for one membership.
func NewTenantClaims(
	userID, tenantID, slug string,
	roles []string,
	tokenVersion int64,
	ttl time.Duration,
	issuer string,
	now time.Time,
) TenantClaims {
	return TenantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		TenantID:     tenantID,
		TenantSlug:   slug,
		Roles:        roles,
		TokenVersion: tokenVersion,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *TenantClaims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateExpiryWithLeeway ensures the token hasn't expired (exp) and isn't
// used before it is valid (nbf), with a grace period for clock skew.
func (c *TenantClaims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}
