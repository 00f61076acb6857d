package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cobrax/tenauth/internal/auth/domain"
	"github.com/cobrax/tenauth/internal/auth/store"
	"github.com/cobrax/tenauth/internal/auth/store/drivers/sqlite"
	"github.com/cobrax/tenauth/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "store_test.db") + "?_pragma=busy_timeout(5000)"
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedTenant(t *testing.T, st *sqlite.Store, slug string) domain.Tenant {
	t.Helper()
	tenant := domain.Tenant{ID: idx.New().String(), Slug: slug, Name: slug, Active: true}
	require.NoError(t, st.Tenants().CreateTenant(context.Background(), tenant))
	return tenant
}

func TestConsumeAccessCodeIsSingleWinner(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	tenant := seedTenant(t, st, "acme")

	code := domain.AccessCode{
		ID:        idx.New().String(),
		UserID:    "usr_1",
		TenantID:  tenant.ID,
		CodeHash:  "fingerprint-1",
		ExpiresAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, st.AccessCodes().CreateAccessCode(ctx, code))

	const racers = 8
	var wg sync.WaitGroup
	results := make(chan error, racers)
	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- st.AccessCodes().ConsumeAccessCode(ctx, code.ID)
		}()
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, store.ErrNotFound):
			losses++
		default:
			t.Fatalf("unexpected consume error: %v", err)
		}
	}
	require.Equal(t, 1, wins, "exactly one concurrent consumer may win")
	require.Equal(t, racers-1, losses)

	got, err := st.AccessCodes().GetAccessCodeByHash(ctx, "fingerprint-1")
	require.NoError(t, err)
	require.NotNil(t, got.UsedAt)
}

func TestMembershipRoundTripAndVersionBump(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	tenant := seedTenant(t, st, "acme")

	m := domain.Membership{
		ID:           idx.New().String(),
		UserID:       "usr_1",
		TenantID:     tenant.ID,
		Roles:        []string{"admin", "billing"},
		Active:       true,
		TokenVersion: 1,
	}
	require.NoError(t, st.Memberships().CreateMembership(ctx, m))

	got, err := st.Memberships().GetMembership(ctx, "usr_1", tenant.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"admin", "billing"}, got.Roles)
	require.True(t, got.Active)

	v, err := st.Memberships().BumpTokenVersion(ctx, "usr_1", tenant.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, v)

	_, err = st.Memberships().BumpTokenVersion(ctx, "usr_none", tenant.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRefreshTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	tenant := seedTenant(t, st, "acme")

	m := domain.Membership{ID: idx.New().String(), UserID: "usr_1", TenantID: tenant.ID, Active: true, TokenVersion: 1}
	require.NoError(t, st.Memberships().CreateMembership(ctx, m))

	rt := domain.RefreshToken{
		ID:           idx.New().String(),
		UserID:       "usr_1",
		TenantID:     tenant.ID,
		MembershipID: m.ID,
		TokenHash:    "hash-1",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, rt))

	got, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-1")
	require.NoError(t, err)
	require.False(t, got.Revoked)

	require.NoError(t, st.RefreshTokens().RevokeAllMembershipRefreshTokens(ctx, m.ID))
	got, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-1")
	require.NoError(t, err)
	require.True(t, got.Revoked)

	// Expired rows disappear on housekeeping.
	stale := domain.RefreshToken{
		ID:           idx.New().String(),
		UserID:       "usr_1",
		TenantID:     tenant.ID,
		MembershipID: m.ID,
		TokenHash:    "hash-stale",
		ExpiresAt:    time.Now().Add(-time.Hour),
	}
	require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, stale))
	require.NoError(t, st.RefreshTokens().DeleteExpiredRefreshTokens(ctx))

	_, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-stale")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSecurityEventsAppendAndCount(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	tenant := seedTenant(t, st, "acme")

	for i, kind := range []domain.EventKind{
		domain.EventCodeConsumed,
		domain.EventInvalidAccessCode,
		domain.EventInvalidAccessCode,
	} {
		require.NoError(t, st.SecurityEvents().AppendSecurityEvent(ctx, domain.SecurityEvent{
			ID:        idx.New().String(),
			Kind:      kind,
			TenantID:  tenant.ID,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Millisecond),
		}))
	}

	events, err := st.SecurityEvents().ListSecurityEventsByTenant(ctx, tenant.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)

	counts, err := st.SecurityEvents().CountSecurityEventsByKind(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, counts[domain.EventInvalidAccessCode])
	require.EqualValues(t, 1, counts[domain.EventCodeConsumed])

	require.NoError(t, st.SecurityEvents().DeleteSecurityEventsBefore(ctx, time.Now().Add(time.Second)))
	events, err = st.SecurityEvents().ListSecurityEventsByTenant(ctx, tenant.ID, 10)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	tenant := seedTenant(t, st, "acme")

	sentinel := errors.New("boom")
	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Memberships().CreateMembership(ctx, domain.Membership{
			ID: idx.New().String(), UserID: "usr_tx", TenantID: tenant.ID, Active: true, TokenVersion: 1,
		}); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, err = st.Memberships().GetMembership(ctx, "usr_tx", tenant.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}
