package service

import (
	"context"
	"testing"

	"github.com/cobrax/tenauth/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestRefreshAccessTokenRotation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	tenant := env.seedTenant(t, "acme", true)
	env.seedMembership(t, "usr_alice", tenant.ID, []string{"viewer"}, true)
	pair := issuePair(t, env, "acme", "usr_alice", tenant.ID)

	rotated, err := env.svc.RefreshAccessToken(ctx, "acme", pair.RefreshToken, "")
	require.NoError(t, err)
	require.NotEmpty(t, rotated.AccessToken)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken, "refresh token must rotate")

	_, err = env.svc.ValidateToken(ctx, rotated.AccessToken, "acme", "")
	require.NoError(t, err)

	// The spent token is dead, and replaying it kills the new one too.
	_, err = env.svc.RefreshAccessToken(ctx, "acme", pair.RefreshToken, "")
	require.ErrorIs(t, err, ErrInvalidRefresh)

	_, err = env.svc.RefreshAccessToken(ctx, "acme", rotated.RefreshToken, "")
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefreshAccessTokenRejections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	tenant := env.seedTenant(t, "acme", true)
	env.seedMembership(t, "usr_alice", tenant.ID, nil, true)

	t.Run("unknown opaque value", func(t *testing.T) {
		_, err := env.svc.RefreshAccessToken(ctx, "acme", "bogus-refresh-token", "")
		require.ErrorIs(t, err, ErrInvalidRefresh)
		require.Contains(t, env.eventKinds(t, ""), domain.EventInvalidRefreshToken)
	})

	t.Run("wrong tenant slug", func(t *testing.T) {
		env.seedTenant(t, "globex", true)
		pair := issuePair(t, env, "acme", "usr_alice", tenant.ID)

		_, err := env.svc.RefreshAccessToken(ctx, "globex", pair.RefreshToken, "")
		require.ErrorIs(t, err, ErrSlugMismatch)
	})

	t.Run("deactivated membership", func(t *testing.T) {
		pair := issuePair(t, env, "acme", "usr_alice", tenant.ID)

		admin := &MembershipService{Store: env.store}
		require.NoError(t, admin.SetMembershipActive(ctx, "usr_alice", tenant.ID, false))
		t.Cleanup(func() {
			require.NoError(t, admin.SetMembershipActive(ctx, "usr_alice", tenant.ID, true))
		})

		_, err := env.svc.RefreshAccessToken(ctx, "acme", pair.RefreshToken, "")
		require.ErrorIs(t, err, ErrMembershipInactive)
	})
}

func TestRefreshCarriesCurrentTokenVersion(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	tenant := env.seedTenant(t, "acme", true)
	env.seedMembership(t, "usr_alice", tenant.ID, nil, true)
	pair := issuePair(t, env, "acme", "usr_alice", tenant.ID)

	// Bump the version directly (no refresh revocation) to simulate a
	// role change that only invalidates access tokens.
	_, err := env.store.Memberships().BumpTokenVersion(ctx, "usr_alice", tenant.ID)
	require.NoError(t, err)

	// Old access token is stale.
	_, err = env.svc.ValidateToken(ctx, pair.AccessToken, "acme", "")
	require.ErrorIs(t, err, ErrTokenRevoked)

	// Refresh issues a token at the new version, which validates cleanly.
	rotated, err := env.svc.RefreshAccessToken(ctx, "acme", pair.RefreshToken, "")
	require.NoError(t, err)

	ident, err := env.svc.ValidateToken(ctx, rotated.AccessToken, "acme", "")
	require.NoError(t, err)
	require.EqualValues(t, 2, ident.TokenVersion)
}
