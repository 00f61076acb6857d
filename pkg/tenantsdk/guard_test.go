package tenantsdk_test

import (
	"testing"

	"github.com/cobrax/tenauth/pkg/tenantsdk"
	"github.com/stretchr/testify/require"
)

func session(slug string, roles ...string) *tenantsdk.Session {
	return &tenantsdk.Session{
		UserID:     "usr_1",
		TenantID:   "ten_1",
		TenantSlug: slug,
		Roles:      roles,
	}
}

func requireAPIErr(t *testing.T, err error, want *tenantsdk.APIError) {
	t.Helper()
	var apiErr *tenantsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, want.Code, apiErr.Code)
}

func TestGuardRequireTenant(t *testing.T) {
	g := tenantsdk.Guard{}

	t.Run("matching slug passes", func(t *testing.T) {
		require.NoError(t, g.RequireTenant(session("acme"), "acme"))
	})

	t.Run("missing slug is rejected", func(t *testing.T) {
		err := g.RequireTenant(session("acme"), "")
		requireAPIErr(t, err, tenantsdk.ErrTenantNotFound)
		require.Contains(t, err.Error(), "Tenant não definido")
	})

	t.Run("cross-tenant access is rejected", func(t *testing.T) {
		err := g.RequireTenant(session("acme"), "globex")
		requireAPIErr(t, err, tenantsdk.ErrSlugMismatch)
		require.Contains(t, err.Error(), "Permissão insuficiente")
	})

	t.Run("nil session is rejected", func(t *testing.T) {
		requireAPIErr(t, g.RequireTenant(nil, "acme"), tenantsdk.ErrInvalidToken)
	})

	t.Run("platform admin bypasses tenant pinning", func(t *testing.T) {
		require.NoError(t, g.RequireTenant(session("acme", tenantsdk.AdminRole), "globex"))
	})
}

func TestGuardRequireRole(t *testing.T) {
	g := tenantsdk.Guard{}

	t.Run("present role passes", func(t *testing.T) {
		require.NoError(t, g.RequireRole(session("acme", "billing"), "billing"))
	})

	t.Run("absent role is rejected", func(t *testing.T) {
		err := g.RequireRole(session("acme", "viewer"), "billing")
		requireAPIErr(t, err, tenantsdk.ErrInsufficientPermission)
	})

	t.Run("platform admin bypasses role checks", func(t *testing.T) {
		require.NoError(t, g.RequireRole(session("acme", tenantsdk.AdminRole), "billing"))
	})

	t.Run("custom admin role is honoured", func(t *testing.T) {
		custom := tenantsdk.Guard{AdminRole: "superuser"}
		require.NoError(t, custom.RequireRole(session("acme", "superuser"), "billing"))
		err := custom.RequireRole(session("acme", tenantsdk.AdminRole), "billing")
		requireAPIErr(t, err, tenantsdk.ErrInsufficientPermission)
	})
}

func TestGuardRequireTenantRole(t *testing.T) {
	g := tenantsdk.Guard{}

	require.NoError(t, g.RequireTenantRole(session("acme", "billing"), "acme", "billing"))

	err := g.RequireTenantRole(session("acme", "billing"), "globex", "billing")
	requireAPIErr(t, err, tenantsdk.ErrSlugMismatch)
}

func TestGuardCheck(t *testing.T) {
	g := tenantsdk.Guard{}

	t.Run("grants matching tenant and role", func(t *testing.T) {
		d := g.Check(session("acme", "billing"), "billing", "acme", true)
		require.True(t, d.HasAccess)
		require.Empty(t, d.AccessError)
		require.Equal(t, "acme", d.TenantSlug)
	})

	t.Run("missing role is denied with message", func(t *testing.T) {
		d := g.Check(session("acme", "viewer"), "billing", "acme", true)
		require.False(t, d.HasAccess)
		require.Equal(t, "Permissão insuficiente", d.AccessError)
	})

	t.Run("no tenant context is denied", func(t *testing.T) {
		d := g.Check(session("acme", "billing"), "", "", true)
		require.False(t, d.HasAccess)
		require.Equal(t, "Tenant não definido", d.AccessError)
	})

	t.Run("admin bypasses tenant requirement", func(t *testing.T) {
		d := g.Check(session("acme", tenantsdk.AdminRole), "", "", false)
		require.True(t, d.HasAccess)
	})

	t.Run("nil session is denied", func(t *testing.T) {
		d := g.Check(nil, "", "acme", true)
		require.False(t, d.HasAccess)
		require.NotEmpty(t, d.AccessError)
	})
}
