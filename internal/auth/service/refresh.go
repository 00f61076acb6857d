package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cobrax/tenauth/internal/auth/domain"
	"github.com/cobrax/tenauth/internal/auth/store"
	"github.com/cobrax/tenauth/pkg/cryptox"
	"github.com/cobrax/tenauth/pkg/slogx"
)

// RefreshAccessToken rotates a refresh token and issues a fresh pair.
//
// The old token is revoked and a new one created in one transaction. The
// membership is re-read so the new access token carries the current roles
// and token_version; a revoked membership can't be kept alive by refreshing.
func (s *TokenService) RefreshAccessToken(
	ctx context.Context,
	slug, refreshOpaque, remoteIP string,
) (*domain.TokenPair, error) {
	pair, err := s.refreshAccessToken(ctx, slug, refreshOpaque, remoteIP)
	if s.Metrics != nil {
		s.Metrics.ObserveRefresh(err == nil)
	}
	return pair, err
}

func (s *TokenService) refreshAccessToken(
	ctx context.Context,
	slug, refreshOpaque, remoteIP string,
) (*domain.TokenPair, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	// 1. Lookup the persisted refresh row by token fingerprint.
	fp := cryptox.FingerprintToken(refreshOpaque)
	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.record(ctx, domain.SecurityEvent{
				Kind:     domain.EventInvalidRefreshToken,
				RemoteIP: remoteIP,
			})
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	// 2. A revoked token showing up again means the opaque value leaked or
	// a rotated token was replayed. Kill the whole family.
	if rt.Revoked {
		if err := s.Store.RefreshTokens().RevokeAllMembershipRefreshTokens(ctx, rt.MembershipID); err != nil {
			l.Error("failed to revoke token family after reuse", slog.Any("error", err))
		}
		s.record(ctx, domain.SecurityEvent{
			Kind:     domain.EventInvalidRefreshToken,
			UserID:   rt.UserID,
			TenantID: rt.TenantID,
			RemoteIP: remoteIP,
			Detail:   "revoked token reused, family revoked",
		})
		return nil, ErrInvalidRefresh
	}
	if rt.Expired(now) {
		s.record(ctx, domain.SecurityEvent{
			Kind:     domain.EventInvalidRefreshToken,
			UserID:   rt.UserID,
			TenantID: rt.TenantID,
			RemoteIP: remoteIP,
			Detail:   "expired",
		})
		return nil, ErrInvalidRefresh
	}

	// 3. The slug in the URL must match the tenant the token was issued for.
	tenant, err := s.Store.Tenants().GetTenantByID(ctx, rt.TenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	if tenant.Slug != slug {
		s.record(ctx, domain.SecurityEvent{
			Kind:     domain.EventSlugMismatch,
			UserID:   rt.UserID,
			TenantID: rt.TenantID,
			RemoteIP: remoteIP,
		})
		return nil, ErrSlugMismatch
	}
	if !tenant.Active {
		s.record(ctx, domain.SecurityEvent{
			Kind:     domain.EventInactiveTenantAccess,
			UserID:   rt.UserID,
			TenantID: tenant.ID,
			RemoteIP: remoteIP,
		})
		return nil, ErrTenantInactive
	}

	// 4. Re-read the membership so the new token reflects current state.
	m, err := s.Store.Memberships().GetMembership(ctx, rt.UserID, rt.TenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoMembership
		}
		return nil, err
	}
	if !m.Active {
		s.record(ctx, domain.SecurityEvent{
			Kind:     domain.EventInactiveMembership,
			UserID:   rt.UserID,
			TenantID: tenant.ID,
			RemoteIP: remoteIP,
		})
		return nil, ErrMembershipInactive
	}

	// 5. Mint the new pair.
	accessToken, err := s.signAccess(m, tenant.Slug, now)
	if err != nil {
		return nil, err
	}

	newOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}
	newRT := newRefreshRecord(m, cryptox.FingerprintToken(newOpaque), now.Add(s.RefreshTTL))

	// 6. Atomically: revoke old token and create new one.
	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, newRT)
	}); err != nil {
		return nil, err
	}

	s.record(ctx, domain.SecurityEvent{
		Kind:     domain.EventTokenRefreshed,
		UserID:   rt.UserID,
		TenantID: tenant.ID,
		RemoteIP: remoteIP,
	})

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newOpaque,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
		TenantID:     tenant.ID,
		TenantSlug:   tenant.Slug,
	}, nil
}
