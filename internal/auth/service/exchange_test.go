package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cobrax/tenauth/internal/auth/audit"
	"github.com/cobrax/tenauth/internal/auth/domain"
	"github.com/cobrax/tenauth/internal/auth/store/drivers/sqlite"
	"github.com/cobrax/tenauth/pkg/cryptox"
	"github.com/cobrax/tenauth/pkg/idx"
	"github.com/cobrax/tenauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	svc   *TokenService
	store *sqlite.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "tenauth_test.db") + "?_pragma=busy_timeout(5000)"
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test-key", pemKey)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	svc := &TokenService{
		Signer:     signer,
		Verifier:   jwtx.NewCommonEdDSA(keys, "test-issuer"),
		Store:      st,
		Audit:      audit.NewRecorder(st.SecurityEvents()),
		Issuer:     "test-issuer",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
	return &testEnv{svc: svc, store: st}
}

func (e *testEnv) seedTenant(t *testing.T, slug string, active bool) domain.Tenant {
	t.Helper()
	tenant := domain.Tenant{
		ID:     idx.New().String(),
		Slug:   slug,
		Name:   slug,
		Active: active,
	}
	require.NoError(t, e.store.Tenants().CreateTenant(context.Background(), tenant))
	return tenant
}

func (e *testEnv) seedMembership(t *testing.T, userID, tenantID string, roles []string, active bool) domain.Membership {
	t.Helper()
	m := domain.Membership{
		ID:           idx.New().String(),
		UserID:       userID,
		TenantID:     tenantID,
		Roles:        roles,
		Active:       active,
		TokenVersion: 1,
	}
	require.NoError(t, e.store.Memberships().CreateMembership(context.Background(), m))
	return m
}

func (e *testEnv) seedCode(t *testing.T, userID, tenantID string, ttl time.Duration) string {
	t.Helper()
	code := cryptox.MustGenerateToken(cryptox.TokenSize128)
	require.NoError(t, e.store.AccessCodes().CreateAccessCode(context.Background(), domain.AccessCode{
		ID:        idx.New().String(),
		UserID:    userID,
		TenantID:  tenantID,
		CodeHash:  cryptox.FingerprintToken(code),
		ExpiresAt: time.Now().UTC().Add(ttl),
	}))
	return code
}

func (e *testEnv) eventKinds(t *testing.T, tenantID string) []domain.EventKind {
	t.Helper()
	events, err := e.store.SecurityEvents().ListSecurityEventsByTenant(context.Background(), tenantID, 100)
	require.NoError(t, err)
	kinds := make([]domain.EventKind, len(events))
	for i, ev := range events {
		kinds[i] = ev.Kind
	}
	return kinds
}

func TestExchangeAccessCode(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	tenant := env.seedTenant(t, "acme", true)
	env.seedMembership(t, "usr_alice", tenant.ID, []string{"admin"}, true)
	code := env.seedCode(t, "usr_alice", tenant.ID, 5*time.Minute)

	pair, err := env.svc.ExchangeAccessCode(ctx, "acme", code, "10.0.0.1")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "Bearer", pair.TokenType)

	claims, err := env.svc.Verifier.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "usr_alice", claims.Subject)
	require.Equal(t, tenant.ID, claims.TenantID)
	require.Equal(t, "acme", claims.TenantSlug)
	require.Equal(t, []string{"admin"}, claims.Roles)
	require.EqualValues(t, 1, claims.TokenVersion)

	require.Contains(t, env.eventKinds(t, tenant.ID), domain.EventCodeConsumed)
}

func TestExchangeAccessCodeSingleUse(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	tenant := env.seedTenant(t, "acme", true)
	env.seedMembership(t, "usr_alice", tenant.ID, nil, true)
	code := env.seedCode(t, "usr_alice", tenant.ID, 5*time.Minute)

	_, err := env.svc.ExchangeAccessCode(ctx, "acme", code, "")
	require.NoError(t, err)

	_, err = env.svc.ExchangeAccessCode(ctx, "acme", code, "")
	require.ErrorIs(t, err, ErrUsedCode)
	require.Contains(t, env.eventKinds(t, tenant.ID), domain.EventUsedAccessCode)
}

func TestExchangeAccessCodeRejections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	tenant := env.seedTenant(t, "acme", true)
	env.seedMembership(t, "usr_alice", tenant.ID, nil, true)

	t.Run("unknown slug", func(t *testing.T) {
		code := env.seedCode(t, "usr_alice", tenant.ID, time.Minute)
		_, err := env.svc.ExchangeAccessCode(ctx, "nobody", code, "")
		require.ErrorIs(t, err, ErrTenantNotFound)
	})

	t.Run("garbage code", func(t *testing.T) {
		_, err := env.svc.ExchangeAccessCode(ctx, "acme", "not-a-real-code", "")
		require.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("empty code", func(t *testing.T) {
		_, err := env.svc.ExchangeAccessCode(ctx, "acme", "  ", "")
		require.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("expired code", func(t *testing.T) {
		code := env.seedCode(t, "usr_alice", tenant.ID, -time.Minute)
		_, err := env.svc.ExchangeAccessCode(ctx, "acme", code, "")
		require.ErrorIs(t, err, ErrExpiredCode)
		require.Contains(t, env.eventKinds(t, tenant.ID), domain.EventExpiredAccessCode)
	})

	t.Run("code minted for another tenant", func(t *testing.T) {
		other := env.seedTenant(t, "globex", true)
		env.seedMembership(t, "usr_bob", other.ID, nil, true)
		code := env.seedCode(t, "usr_bob", other.ID, time.Minute)

		_, err := env.svc.ExchangeAccessCode(ctx, "acme", code, "")
		require.ErrorIs(t, err, ErrSlugMismatch)
		require.Contains(t, env.eventKinds(t, tenant.ID), domain.EventSlugMismatch)
	})

	t.Run("expired code under the wrong slug", func(t *testing.T) {
		other := env.seedTenant(t, "initech", true)
		env.seedMembership(t, "usr_eve", other.ID, nil, true)
		code := env.seedCode(t, "usr_eve", other.ID, -time.Minute)

		// A dead code reports its own state before the slug match.
		_, err := env.svc.ExchangeAccessCode(ctx, "acme", code, "")
		require.ErrorIs(t, err, ErrExpiredCode)
	})

	t.Run("inactive tenant", func(t *testing.T) {
		dormant := env.seedTenant(t, "dormant", false)
		env.seedMembership(t, "usr_carol", dormant.ID, nil, true)
		code := env.seedCode(t, "usr_carol", dormant.ID, time.Minute)

		_, err := env.svc.ExchangeAccessCode(ctx, "dormant", code, "")
		require.ErrorIs(t, err, ErrTenantInactive)
	})

	t.Run("inactive membership", func(t *testing.T) {
		env.seedMembership(t, "usr_dave", tenant.ID, nil, false)
		code := env.seedCode(t, "usr_dave", tenant.ID, time.Minute)

		_, err := env.svc.ExchangeAccessCode(ctx, "acme", code, "")
		require.ErrorIs(t, err, ErrMembershipInactive)
	})

	t.Run("no membership at all", func(t *testing.T) {
		code := env.seedCode(t, "usr_stranger", tenant.ID, time.Minute)
		_, err := env.svc.ExchangeAccessCode(ctx, "acme", code, "")
		require.ErrorIs(t, err, ErrNoMembership)
	})
}

func TestMintAccessCodeRoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	tenant := env.seedTenant(t, "acme", true)
	env.seedMembership(t, "usr_alice", tenant.ID, []string{"billing"}, true)

	code, err := env.svc.MintAccessCode(ctx, "usr_alice", tenant.ID, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, code)

	pair, err := env.svc.ExchangeAccessCode(ctx, "acme", code, "")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)

	_, err = env.svc.MintAccessCode(ctx, "usr_nobody", tenant.ID, time.Minute)
	require.ErrorIs(t, err, ErrNoMembership)
}
