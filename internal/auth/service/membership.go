package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cobrax/tenauth/internal/auth/audit"
	"github.com/cobrax/tenauth/internal/auth/domain"
	"github.com/cobrax/tenauth/internal/auth/store"
	"github.com/cobrax/tenauth/pkg/slogx"
)

// MembershipService covers the administrative operations on memberships:
// revocation and activation toggles.
type MembershipService struct {
	Store store.Store
	Audit *audit.Recorder
}

// RevokeMembershipTokens bumps the membership's token_version and revokes
// all of its refresh tokens. Every outstanding access token for the
// membership fails validation from this moment on.
func (s *MembershipService) RevokeMembershipTokens(ctx context.Context, userID, tenantID string) (int64, error) {
	l := slogx.FromContext(ctx)

	var newVersion int64
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		m, err := tx.Memberships().GetMembership(ctx, userID, tenantID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNoMembership
			}
			return err
		}

		newVersion, err = tx.Memberships().BumpTokenVersion(ctx, userID, tenantID)
		if err != nil {
			return err
		}

		return tx.RefreshTokens().RevokeAllMembershipRefreshTokens(ctx, m.ID)
	})
	if err != nil {
		return 0, err
	}

	if s.Audit != nil {
		s.Audit.Record(ctx, domain.SecurityEvent{
			Kind:     domain.EventMembershipRevoked,
			UserID:   userID,
			TenantID: tenantID,
		})
	}
	l.Info("membership tokens revoked",
		slog.String("user_id", userID),
		slog.String("tenant_id", tenantID),
		slog.Int64("token_version", newVersion),
	)
	return newVersion, nil
}

// SetMembershipActive toggles a membership. Deactivation alone already
// fails validation; callers who also want outstanding refresh tokens gone
// should call RevokeMembershipTokens as well.
func (s *MembershipService) SetMembershipActive(ctx context.Context, userID, tenantID string, active bool) error {
	err := s.Store.Memberships().SetMembershipActive(ctx, userID, tenantID, active)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNoMembership
	}
	if err == nil && !active && s.Audit != nil {
		s.Audit.Record(ctx, domain.SecurityEvent{
			Kind:     domain.EventMembershipRevoked,
			UserID:   userID,
			TenantID: tenantID,
			Detail:   "membership deactivated",
		})
	}
	return err
}
