package domain

import "time"

// EventKind is the closed set of security event categories. New kinds are
// added here and nowhere else; free-form strings don't enter the event log.
type EventKind string

const (
	// Exchange outcomes.
	EventCodeConsumed      EventKind = "code_consumed"
	EventInvalidAccessCode EventKind = "invalid_access_code"
	EventUsedAccessCode    EventKind = "used_access_code"
	EventExpiredAccessCode EventKind = "expired_access_code"

	// Tenant resolution failures.
	EventTenantNotFound       EventKind = "tenant_not_found"
	EventInactiveTenantAccess EventKind = "inactive_tenant_access"
	EventSlugMismatch         EventKind = "slug_mismatch"

	// Membership failures.
	EventNoTenantMembership EventKind = "no_tenant_membership"
	EventInactiveMembership EventKind = "inactive_membership"

	// Token validation outcomes.
	EventValidationSuccess EventKind = "validation_success"
	EventInvalidSignature  EventKind = "invalid_signature"
	EventTokenExpired      EventKind = "token_expired"
	EventTokenRevoked      EventKind = "token_revoked"

	// Refresh outcomes.
	EventTokenRefreshed      EventKind = "token_refreshed"
	EventInvalidRefreshToken EventKind = "invalid_refresh_token"

	// Administrative and throttling.
	EventMembershipRevoked EventKind = "membership_revoked"
	EventRateLimitExceeded EventKind = "rate_limit_exceeded"
)

// Valid reports whether k is one of the defined kinds.
func (k EventKind) Valid() bool {
	switch k {
	case EventCodeConsumed, EventInvalidAccessCode, EventUsedAccessCode,
		EventExpiredAccessCode, EventTenantNotFound, EventInactiveTenantAccess,
		EventSlugMismatch, EventNoTenantMembership, EventInactiveMembership,
		EventValidationSuccess, EventInvalidSignature, EventTokenExpired,
		EventTokenRevoked, EventTokenRefreshed, EventInvalidRefreshToken,
		EventMembershipRevoked, EventRateLimitExceeded:
		return true
	}
	return false
}

// SecurityEvent is one append-only audit record. UserID and TenantID are
// empty when the failure happened before they could be resolved. Detail
// carries a short operator-facing note; it must never contain a full code
// or token, only truncated prefixes.
type SecurityEvent struct {
	ID        string
	Kind      EventKind
	UserID    string
	TenantID  string
	RemoteIP  string
	Detail    string
	CreatedAt time.Time
}
