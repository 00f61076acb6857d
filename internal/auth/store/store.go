package store

import (
	"context"
	"errors"
	"time"

	"github.com/cobrax/tenauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, and
// later postgres) implement this. It exposes sub-repositories to keep
// concerns tidy and testable, and to actively stop people from accidentally
// doing transactions within transactions.
type Store interface {
	AccessCodes() AccessCodes
	Tenants() Tenants
	Memberships() Memberships
	RefreshTokens() RefreshTokens
	SecurityEvents() SecurityEvents

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., code
	// exchange or refresh rotation).
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// This is the recommended way to handle transactions as it automatically
	// handles commit/rollback logic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type AccessCodes interface {
	// CreateAccessCode stores a freshly minted one-time code (fingerprint only).
	CreateAccessCode(ctx context.Context, code domain.AccessCode) error

	// GetAccessCodeByHash fetches a code by its fingerprint when redeeming.
	GetAccessCodeByHash(ctx context.Context, hash string) (domain.AccessCode, error)

	// ConsumeAccessCode atomically marks a code used. It only succeeds when
	// the code is still unused; a concurrent redeemer loses the race and
	// gets ErrNotFound.
	ConsumeAccessCode(ctx context.Context, id string) error
}

type Tenants interface {
	// GetTenantByID fetches a tenant by its ID.
	GetTenantByID(ctx context.Context, id string) (domain.Tenant, error)

	// GetTenantBySlug fetches a tenant by its URL slug.
	GetTenantBySlug(ctx context.Context, slug string) (domain.Tenant, error)

	// CreateTenant inserts a new tenant (id is provided by app via ULID).
	CreateTenant(ctx context.Context, t domain.Tenant) error

	// SetTenantActive toggles the active flag and bumps updated_at.
	SetTenantActive(ctx context.Context, id string, active bool) error
}

type Memberships interface {
	// GetMembership returns the membership for a user within a tenant.
	GetMembership(ctx context.Context, userID, tenantID string) (domain.Membership, error)

	// GetMembershipByID fetches a membership by its own ID.
	GetMembershipByID(ctx context.Context, id string) (domain.Membership, error)

	// CreateMembership inserts a new membership (id is ULID).
	CreateMembership(ctx context.Context, m domain.Membership) error

	// BumpTokenVersion increments token_version, invalidating every token
	// issued under the previous value. Returns the new version.
	BumpTokenVersion(ctx context.Context, userID, tenantID string) (int64, error)

	// SetMembershipActive toggles the active flag and bumps updated_at.
	SetMembershipActive(ctx context.Context, userID, tenantID string, active bool) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token by its fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked=1, sets updated_at.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// RevokeAllMembershipRefreshTokens bulk revocation for a membership
	// (e.g., after an admin revoke).
	RevokeAllMembershipRefreshTokens(ctx context.Context, membershipID string) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}

type SecurityEvents interface {
	// AppendSecurityEvent writes one audit record. The table is append-only;
	// there is deliberately no update or single-row delete.
	AppendSecurityEvent(ctx context.Context, ev domain.SecurityEvent) error

	// ListSecurityEventsByTenant returns the newest events for a tenant,
	// up to limit.
	ListSecurityEventsByTenant(ctx context.Context, tenantID string, limit int) ([]domain.SecurityEvent, error)

	// CountSecurityEventsByKind returns per-kind totals for the stats endpoint.
	CountSecurityEventsByKind(ctx context.Context) (map[domain.EventKind]int64, error)

	// DeleteSecurityEventsBefore prunes records older than the cutoff.
	DeleteSecurityEventsBefore(ctx context.Context, cutoff time.Time) error
}
