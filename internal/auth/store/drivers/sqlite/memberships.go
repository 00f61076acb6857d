package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/cobrax/tenauth/internal/auth/domain"
)

type membershipsRepo struct {
	db dbtx
}

const membershipCols = `id, user_id, tenant_id, roles, active, token_version, created_at, updated_at`

func (r *membershipsRepo) GetMembership(ctx context.Context, userID, tenantID string) (domain.Membership, error) {
	return r.scanMembership(ctx,
		`SELECT `+membershipCols+` FROM tenant_memberships WHERE user_id = ? AND tenant_id = ?`,
		userID, tenantID)
}

func (r *membershipsRepo) GetMembershipByID(ctx context.Context, id string) (domain.Membership, error) {
	return r.scanMembership(ctx,
		`SELECT `+membershipCols+` FROM tenant_memberships WHERE id = ?`, id)
}

func (r *membershipsRepo) scanMembership(ctx context.Context, query string, args ...any) (domain.Membership, error) {
	row := r.db.QueryRowContext(ctx, query, args...)

	var m domain.Membership
	var roles string
	err := row.Scan(&m.ID, &m.UserID, &m.TenantID, &roles, &m.Active,
		&m.TokenVersion, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return domain.Membership{}, mapNotFound(err)
	}
	m.Roles = splitRoles(roles)
	return m, nil
}

func (r *membershipsRepo) CreateMembership(ctx context.Context, m domain.Membership) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tenant_memberships (id, user_id, tenant_id, roles, active, token_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.TenantID, strings.Join(m.Roles, " "),
		m.Active, m.TokenVersion, now, now,
	)
	return err
}

func (r *membershipsRepo) BumpTokenVersion(ctx context.Context, userID, tenantID string) (int64, error) {
	err := requireRowAffected(r.db.ExecContext(ctx, `
		UPDATE tenant_memberships
		SET token_version = token_version + 1, updated_at = ?
		WHERE user_id = ? AND tenant_id = ?`,
		time.Now().UTC(), userID, tenantID,
	))
	if err != nil {
		return 0, err
	}

	var version int64
	row := r.db.QueryRowContext(ctx,
		`SELECT token_version FROM tenant_memberships WHERE user_id = ? AND tenant_id = ?`,
		userID, tenantID)
	if err := row.Scan(&version); err != nil {
		return 0, mapNotFound(err)
	}
	return version, nil
}

func (r *membershipsRepo) SetMembershipActive(ctx context.Context, userID, tenantID string, active bool) error {
	return requireRowAffected(r.db.ExecContext(ctx, `
		UPDATE tenant_memberships SET active = ?, updated_at = ?
		WHERE user_id = ? AND tenant_id = ?`,
		active, time.Now().UTC(), userID, tenantID,
	))
}

func splitRoles(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}
