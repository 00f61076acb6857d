package sqlite

import (
	"context"
	"time"

	"github.com/cobrax/tenauth/internal/auth/domain"
)

type tenantsRepo struct {
	db dbtx
}

const tenantCols = `id, slug, name, active, created_at, updated_at`

func (r *tenantsRepo) GetTenantByID(ctx context.Context, id string) (domain.Tenant, error) {
	return r.scanTenant(ctx, `SELECT `+tenantCols+` FROM tenants WHERE id = ?`, id)
}

func (r *tenantsRepo) GetTenantBySlug(ctx context.Context, slug string) (domain.Tenant, error) {
	return r.scanTenant(ctx, `SELECT `+tenantCols+` FROM tenants WHERE slug = ?`, slug)
}

func (r *tenantsRepo) scanTenant(ctx context.Context, query string, arg any) (domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx, query, arg)

	var t domain.Tenant
	err := row.Scan(&t.ID, &t.Slug, &t.Name, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Tenant{}, mapNotFound(err)
	}
	return t, nil
}

func (r *tenantsRepo) CreateTenant(ctx context.Context, t domain.Tenant) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tenants (id, slug, name, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Slug, t.Name, t.Active, now, now,
	)
	return err
}

func (r *tenantsRepo) SetTenantActive(ctx context.Context, id string, active bool) error {
	return requireRowAffected(r.db.ExecContext(ctx,
		`UPDATE tenants SET active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), id,
	))
}
