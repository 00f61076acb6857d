package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/cobrax/tenauth/internal/auth/audit"
	"github.com/cobrax/tenauth/internal/auth/domain"
	"github.com/cobrax/tenauth/internal/auth/metrics"
	"github.com/cobrax/tenauth/internal/auth/store"
	"github.com/cobrax/tenauth/pkg/idx"
	"github.com/cobrax/tenauth/pkg/jwtx"
)

// DefaultSuccessSampleEvery records one validation_success event per N
// successful validations. Failures are always recorded.
const DefaultSuccessSampleEvery = 10

var (
	ErrInvalidCode        = errors.New("invalid_access_code")
	ErrUsedCode           = errors.New("used_access_code")
	ErrExpiredCode        = errors.New("expired_access_code")
	ErrTenantNotFound     = errors.New("tenant_not_found")
	ErrTenantInactive     = errors.New("inactive_tenant")
	ErrSlugMismatch       = errors.New("slug_mismatch")
	ErrNoMembership       = errors.New("no_tenant_membership")
	ErrMembershipInactive = errors.New("inactive_membership")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrTokenExpired       = errors.New("token_expired")
	ErrTokenRevoked       = errors.New("token_revoked")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
)

// TokenService issues and validates tenant-scoped tokens.
type TokenService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Store    store.Store
	Audit    *audit.Recorder
	Metrics  *metrics.Metrics
	Issuer   string

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// SampleEvery controls success-event sampling; zero means the default.
	SampleEvery int64
	successSeen atomic.Int64
}

// signAccess mints the tenant JWT for a membership snapshot.
func (s *TokenService) signAccess(m domain.Membership, slug string, now time.Time) (string, error) {
	claims := jwtx.NewTenantClaims(
		m.UserID, m.TenantID, slug,
		m.Roles, m.TokenVersion,
		s.AccessTTL, s.Issuer, now,
	)
	return s.Signer.Sign(claims)
}

// record writes a security event through the recorder, if one is wired.
func (s *TokenService) record(ctx context.Context, ev domain.SecurityEvent) {
	if s.Audit != nil {
		s.Audit.Record(ctx, ev)
	}
}

// recordSampledSuccess records roughly one in SampleEvery successes.
func (s *TokenService) recordSampledSuccess(ctx context.Context, ev domain.SecurityEvent) {
	every := s.SampleEvery
	if every <= 0 {
		every = DefaultSuccessSampleEvery
	}
	if s.successSeen.Add(1)%every != 1 && every != 1 {
		return
	}
	s.record(ctx, ev)
}

// newRefreshRecord builds a refresh token row for a membership.
func newRefreshRecord(m domain.Membership, tokenHash string, expiresAt time.Time) domain.RefreshToken {
	return domain.RefreshToken{
		ID:           idx.New().String(),
		UserID:       m.UserID,
		TenantID:     m.TenantID,
		MembershipID: m.ID,
		TokenHash:    tokenHash,
		ExpiresAt:    expiresAt,
		Revoked:      false,
	}
}
