package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/cobrax/tenauth/internal/auth/domain"
	"github.com/cobrax/tenauth/internal/auth/store"
	"github.com/cobrax/tenauth/pkg/cryptox"
	"github.com/cobrax/tenauth/pkg/idx"
	"github.com/cobrax/tenauth/pkg/slogx"
)

// codePrefixLen is how many leading characters of a code end up in audit
// records. Enough to correlate, never enough to redeem.
const codePrefixLen = 8

// ExchangeAccessCode redeems a one-time code for a tenant token pair.
//
// It resolves the tenant slug, verifies the code, checks the membership is
// live, atomically consumes the code, and issues the access + refresh pair.
// Every rejection writes exactly one security event.
func (s *TokenService) ExchangeAccessCode(
	ctx context.Context,
	slug, code, remoteIP string,
) (*domain.TokenPair, error) {
	start := time.Now()
	pair, err := s.exchangeAccessCode(ctx, slug, code, remoteIP, start)
	if s.Metrics != nil {
		s.Metrics.ObserveExchange(err == nil, time.Since(start))
	}
	return pair, err
}

func (s *TokenService) exchangeAccessCode(
	ctx context.Context,
	slug, code, remoteIP string,
	now time.Time,
) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	code = strings.TrimSpace(code)
	if code == "" || !domain.ValidSlug(slug) {
		s.record(ctx, domain.SecurityEvent{
			Kind:     domain.EventInvalidAccessCode,
			RemoteIP: remoteIP,
			Detail:   "empty code or malformed slug",
		})
		return nil, ErrInvalidCode
	}

	// 1. Resolve the tenant before touching the code so a scanner can't tell
	// a bad slug apart from a bad code combination by timing alone.
	tenant, err := s.Store.Tenants().GetTenantBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.record(ctx, domain.SecurityEvent{
				Kind:     domain.EventTenantNotFound,
				RemoteIP: remoteIP,
				Detail:   "slug=" + slug,
			})
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	if !tenant.Active {
		s.record(ctx, domain.SecurityEvent{
			Kind:     domain.EventInactiveTenantAccess,
			TenantID: tenant.ID,
			RemoteIP: remoteIP,
		})
		return nil, ErrTenantInactive
	}

	codeHash := cryptox.FingerprintToken(code)
	codePrefix := cryptox.TokenPrefix(code, codePrefixLen)

	var result *domain.TokenPair

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 2. Look up the code by fingerprint.
		ac, err := tx.AccessCodes().GetAccessCodeByHash(ctx, codeHash)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				s.record(ctx, domain.SecurityEvent{
					Kind:     domain.EventInvalidAccessCode,
					TenantID: tenant.ID,
					RemoteIP: remoteIP,
					Detail:   "prefix=" + codePrefix,
				})
				return ErrInvalidCode
			}
			return err
		}

		// 3. Reject used and expired codes first. A dead code reports its
		// own state even when presented under the wrong slug.
		if ac.Used() {
			s.record(ctx, domain.SecurityEvent{
				Kind:     domain.EventUsedAccessCode,
				UserID:   ac.UserID,
				TenantID: tenant.ID,
				RemoteIP: remoteIP,
				Detail:   "prefix=" + codePrefix,
			})
			return ErrUsedCode
		}
		if ac.Expired(now) {
			s.record(ctx, domain.SecurityEvent{
				Kind:     domain.EventExpiredAccessCode,
				UserID:   ac.UserID,
				TenantID: tenant.ID,
				RemoteIP: remoteIP,
				Detail:   "prefix=" + codePrefix,
			})
			return ErrExpiredCode
		}

		// 4. The code must belong to the tenant named in the URL.
		if ac.TenantID != tenant.ID {
			s.record(ctx, domain.SecurityEvent{
				Kind:     domain.EventSlugMismatch,
				UserID:   ac.UserID,
				TenantID: tenant.ID,
				RemoteIP: remoteIP,
				Detail:   "prefix=" + codePrefix,
			})
			return ErrSlugMismatch
		}

		// 5. The membership must exist and be live right now.
		m, err := tx.Memberships().GetMembership(ctx, ac.UserID, tenant.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				s.record(ctx, domain.SecurityEvent{
					Kind:     domain.EventNoTenantMembership,
					UserID:   ac.UserID,
					TenantID: tenant.ID,
					RemoteIP: remoteIP,
				})
				return ErrNoMembership
			}
			return err
		}
		if !m.Active {
			s.record(ctx, domain.SecurityEvent{
				Kind:     domain.EventInactiveMembership,
				UserID:   ac.UserID,
				TenantID: tenant.ID,
				RemoteIP: remoteIP,
			})
			return ErrMembershipInactive
		}

		// 6. Consume the code. The conditional UPDATE is the single point
		// of truth under concurrency: a parallel redeemer that lost the
		// race sees ErrNotFound here and is reported as a re-use.
		if err := tx.AccessCodes().ConsumeAccessCode(ctx, ac.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				s.record(ctx, domain.SecurityEvent{
					Kind:     domain.EventUsedAccessCode,
					UserID:   ac.UserID,
					TenantID: tenant.ID,
					RemoteIP: remoteIP,
					Detail:   "prefix=" + codePrefix + " lost consume race",
				})
				return ErrUsedCode
			}
			return err
		}

		// 7. Mint the pair against the membership snapshot.
		accessToken, err := s.signAccess(m, tenant.Slug, now)
		if err != nil {
			return err
		}

		refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return err
		}
		refresh := newRefreshRecord(m, cryptox.FingerprintToken(refreshOpaque), now.Add(s.RefreshTTL))
		if err := tx.RefreshTokens().CreateRefreshToken(ctx, refresh); err != nil {
			return err
		}

		s.record(ctx, domain.SecurityEvent{
			Kind:     domain.EventCodeConsumed,
			UserID:   ac.UserID,
			TenantID: tenant.ID,
			RemoteIP: remoteIP,
			Detail:   "prefix=" + codePrefix,
		})
		l.Info("access code exchanged",
			slog.String("tenant", tenant.Slug),
			slog.String("user_id", ac.UserID),
		)

		result = &domain.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshOpaque,
			TokenType:    "Bearer",
			ExpiresIn:    s.AccessTTL,
			TenantID:     tenant.ID,
			TenantSlug:   tenant.Slug,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// MintAccessCode creates a one-time code for a user's membership in a
// tenant. The plaintext is returned once and only its fingerprint stored.
func (s *TokenService) MintAccessCode(
	ctx context.Context,
	userID, tenantID string,
	ttl time.Duration,
) (string, error) {
	if _, err := s.Store.Memberships().GetMembership(ctx, userID, tenantID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrNoMembership
		}
		return "", err
	}

	code, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", err
	}

	ac := domain.AccessCode{
		ID:        idx.New().String(),
		UserID:    userID,
		TenantID:  tenantID,
		CodeHash:  cryptox.FingerprintToken(code),
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	if err := s.Store.AccessCodes().CreateAccessCode(ctx, ac); err != nil {
		return "", err
	}
	return code, nil
}
