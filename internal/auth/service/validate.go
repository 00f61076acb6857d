package service

import (
	"context"
	"errors"
	"time"

	"github.com/cobrax/tenauth/internal/auth/domain"
	"github.com/cobrax/tenauth/internal/auth/store"
	"github.com/cobrax/tenauth/pkg/jwtx"
)

// ValidateToken checks a tenant access token end to end: signature and time
// via the verifier, then the live tenant and membership state. A token with
// a stale token_version is reported revoked even though its signature is
// fine; that is what makes admin revocation instant.
//
// expectedSlug is optional. When set, the token must have been issued for
// that tenant.
func (s *TokenService) ValidateToken(
	ctx context.Context,
	token, expectedSlug, remoteIP string,
) (*domain.TenantIdentity, error) {
	start := time.Now()
	ident, err := s.validateToken(ctx, token, expectedSlug, remoteIP)
	if s.Metrics != nil {
		s.Metrics.ObserveValidation(err == nil, time.Since(start))
	}
	return ident, err
}

func (s *TokenService) validateToken(
	ctx context.Context,
	token, expectedSlug, remoteIP string,
) (*domain.TenantIdentity, error) {
	// 1. Signature, expiry, issuer. The verifier applies clock-skew leeway.
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		switch {
		case errors.Is(err, jwtx.ErrExpired):
			s.record(ctx, domain.SecurityEvent{
				Kind:     domain.EventTokenExpired,
				RemoteIP: remoteIP,
			})
			return nil, ErrTokenExpired
		default:
			s.record(ctx, domain.SecurityEvent{
				Kind:     domain.EventInvalidSignature,
				RemoteIP: remoteIP,
			})
			return nil, ErrInvalidToken
		}
	}

	// 2. The caller may pin the tenant; a token for another tenant is a
	// cross-tenant access attempt, not a malformed request.
	if expectedSlug != "" && claims.TenantSlug != expectedSlug {
		s.record(ctx, domain.SecurityEvent{
			Kind:     domain.EventSlugMismatch,
			UserID:   claims.Subject,
			TenantID: claims.TenantID,
			RemoteIP: remoteIP,
			Detail:   "expected=" + expectedSlug + " got=" + claims.TenantSlug,
		})
		return nil, ErrSlugMismatch
	}

	// 3. Tenant must still exist and be active.
	tenant, err := s.Store.Tenants().GetTenantByID(ctx, claims.TenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.record(ctx, domain.SecurityEvent{
				Kind:     domain.EventTenantNotFound,
				UserID:   claims.Subject,
				TenantID: claims.TenantID,
				RemoteIP: remoteIP,
			})
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	if !tenant.Active {
		s.record(ctx, domain.SecurityEvent{
			Kind:     domain.EventInactiveTenantAccess,
			UserID:   claims.Subject,
			TenantID: tenant.ID,
			RemoteIP: remoteIP,
		})
		return nil, ErrTenantInactive
	}

	// 4. Membership must be live and the token's version current.
	m, err := s.Store.Memberships().GetMembership(ctx, claims.Subject, claims.TenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.record(ctx, domain.SecurityEvent{
				Kind:     domain.EventNoTenantMembership,
				UserID:   claims.Subject,
				TenantID: tenant.ID,
				RemoteIP: remoteIP,
			})
			return nil, ErrNoMembership
		}
		return nil, err
	}
	if !m.Active {
		s.record(ctx, domain.SecurityEvent{
			Kind:     domain.EventInactiveMembership,
			UserID:   claims.Subject,
			TenantID: tenant.ID,
			RemoteIP: remoteIP,
		})
		return nil, ErrMembershipInactive
	}
	if m.TokenVersion != claims.TokenVersion {
		s.record(ctx, domain.SecurityEvent{
			Kind:     domain.EventTokenRevoked,
			UserID:   claims.Subject,
			TenantID: tenant.ID,
			RemoteIP: remoteIP,
		})
		return nil, ErrTokenRevoked
	}

	// 5. Success. Roles come from the live membership, not the claims, so
	// a role change shows up without re-issuing the token.
	s.recordSampledSuccess(ctx, domain.SecurityEvent{
		Kind:     domain.EventValidationSuccess,
		UserID:   claims.Subject,
		TenantID: tenant.ID,
		RemoteIP: remoteIP,
	})

	return &domain.TenantIdentity{
		UserID:       claims.Subject,
		TenantID:     tenant.ID,
		TenantSlug:   tenant.Slug,
		Roles:        m.Roles,
		TokenVersion: m.TokenVersion,
		ExpiresAt:    claims.ExpiresAt.Time,
	}, nil
}
