package service

import (
	"context"
	"testing"
	"time"

	"github.com/cobrax/tenauth/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func issuePair(t *testing.T, env *testEnv, slug, userID, tenantID string) *domain.TokenPair {
	t.Helper()
	code := env.seedCode(t, userID, tenantID, time.Minute)
	pair, err := env.svc.ExchangeAccessCode(context.Background(), slug, code, "")
	require.NoError(t, err)
	return pair
}

func TestValidateToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	tenant := env.seedTenant(t, "acme", true)
	env.seedMembership(t, "usr_alice", tenant.ID, []string{"admin", "billing"}, true)
	pair := issuePair(t, env, "acme", "usr_alice", tenant.ID)

	ident, err := env.svc.ValidateToken(ctx, pair.AccessToken, "acme", "10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, "usr_alice", ident.UserID)
	require.Equal(t, tenant.ID, ident.TenantID)
	require.Equal(t, "acme", ident.TenantSlug)
	require.Equal(t, []string{"admin", "billing"}, ident.Roles)
	require.EqualValues(t, 1, ident.TokenVersion)
	require.True(t, ident.ExpiresAt.After(time.Now()))

	// Slug pinning is optional.
	_, err = env.svc.ValidateToken(ctx, pair.AccessToken, "", "")
	require.NoError(t, err)
}

func TestValidateTokenSlugPinning(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	tenant := env.seedTenant(t, "acme", true)
	env.seedMembership(t, "usr_alice", tenant.ID, nil, true)
	pair := issuePair(t, env, "acme", "usr_alice", tenant.ID)

	_, err := env.svc.ValidateToken(ctx, pair.AccessToken, "globex", "")
	require.ErrorIs(t, err, ErrSlugMismatch)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedTenant(t, "acme", true)

	_, err := env.svc.ValidateToken(ctx, "not.a.jwt", "", "10.0.0.9")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	tenant := env.seedTenant(t, "acme", true)
	env.seedMembership(t, "usr_alice", tenant.ID, nil, true)
	pair := issuePair(t, env, "acme", "usr_alice", tenant.ID)

	tampered := pair.AccessToken[:len(pair.AccessToken)-4] + "AAAA"
	_, err := env.svc.ValidateToken(ctx, tampered, "acme", "")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenAfterAdminRevocation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	tenant := env.seedTenant(t, "acme", true)
	env.seedMembership(t, "usr_alice", tenant.ID, nil, true)
	pair := issuePair(t, env, "acme", "usr_alice", tenant.ID)

	// Token is good before the revoke.
	_, err := env.svc.ValidateToken(ctx, pair.AccessToken, "acme", "")
	require.NoError(t, err)

	admin := &MembershipService{Store: env.store, Audit: env.svc.Audit}
	newVersion, err := admin.RevokeMembershipTokens(ctx, "usr_alice", tenant.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, newVersion)

	// Same token, still cryptographically valid, now rejected.
	_, err = env.svc.ValidateToken(ctx, pair.AccessToken, "acme", "")
	require.ErrorIs(t, err, ErrTokenRevoked)
	require.Contains(t, env.eventKinds(t, tenant.ID), domain.EventTokenRevoked)

	// The refresh token died with it.
	_, err = env.svc.RefreshAccessToken(ctx, "acme", pair.RefreshToken, "")
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestValidateTokenMembershipDeactivated(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	tenant := env.seedTenant(t, "acme", true)
	env.seedMembership(t, "usr_alice", tenant.ID, nil, true)
	pair := issuePair(t, env, "acme", "usr_alice", tenant.ID)

	admin := &MembershipService{Store: env.store, Audit: env.svc.Audit}
	require.NoError(t, admin.SetMembershipActive(ctx, "usr_alice", tenant.ID, false))

	_, err := env.svc.ValidateToken(ctx, pair.AccessToken, "acme", "")
	require.ErrorIs(t, err, ErrMembershipInactive)

	// Reactivation restores access without new tokens.
	require.NoError(t, admin.SetMembershipActive(ctx, "usr_alice", tenant.ID, true))
	_, err = env.svc.ValidateToken(ctx, pair.AccessToken, "acme", "")
	require.NoError(t, err)
}

func TestValidateTokenTenantDeactivated(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	tenant := env.seedTenant(t, "acme", true)
	env.seedMembership(t, "usr_alice", tenant.ID, nil, true)
	pair := issuePair(t, env, "acme", "usr_alice", tenant.ID)

	require.NoError(t, env.store.Tenants().SetTenantActive(ctx, tenant.ID, false))

	_, err := env.svc.ValidateToken(ctx, pair.AccessToken, "acme", "")
	require.ErrorIs(t, err, ErrTenantInactive)
}

func TestValidateTokenSuccessSampling(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.svc.SampleEvery = 5

	tenant := env.seedTenant(t, "acme", true)
	env.seedMembership(t, "usr_alice", tenant.ID, nil, true)
	pair := issuePair(t, env, "acme", "usr_alice", tenant.ID)

	for range 10 {
		_, err := env.svc.ValidateToken(ctx, pair.AccessToken, "acme", "")
		require.NoError(t, err)
	}

	var successes int
	for _, kind := range env.eventKinds(t, tenant.ID) {
		if kind == domain.EventValidationSuccess {
			successes++
		}
	}
	require.Equal(t, 2, successes, "1-in-5 sampling over 10 validations")
}
