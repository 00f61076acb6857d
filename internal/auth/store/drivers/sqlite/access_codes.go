package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/cobrax/tenauth/internal/auth/domain"
)

type accessCodesRepo struct {
	db dbtx
}

func (r *accessCodesRepo) CreateAccessCode(ctx context.Context, code domain.AccessCode) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO access_codes (id, user_id, tenant_id, code_hash, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		code.ID, code.UserID, code.TenantID, code.CodeHash,
		code.ExpiresAt.UTC(), time.Now().UTC(),
	)
	return err
}

func (r *accessCodesRepo) GetAccessCodeByHash(ctx context.Context, hash string) (domain.AccessCode, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, tenant_id, code_hash, expires_at, used_at, created_at
		FROM access_codes WHERE code_hash = ?`, hash)

	var c domain.AccessCode
	var usedAt sql.NullTime
	err := row.Scan(&c.ID, &c.UserID, &c.TenantID, &c.CodeHash, &c.ExpiresAt, &usedAt, &c.CreatedAt)
	if err != nil {
		return domain.AccessCode{}, mapNotFound(err)
	}
	c.UsedAt = mapNullTimePtr(usedAt)
	return c, nil
}

// ConsumeAccessCode marks the code used only if it is still unused. The
// WHERE guard is what makes concurrent redemption safe: exactly one caller
// sees a row affected, everyone else gets ErrNotFound.
func (r *accessCodesRepo) ConsumeAccessCode(ctx context.Context, id string) error {
	return requireRowAffected(r.db.ExecContext(ctx, `
		UPDATE access_codes SET used_at = ? WHERE id = ? AND used_at IS NULL`,
		time.Now().UTC(), id,
	))
}
