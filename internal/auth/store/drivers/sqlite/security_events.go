package sqlite

import (
	"context"
	"time"

	"github.com/cobrax/tenauth/internal/auth/domain"
)

type securityEventsRepo struct {
	db dbtx
}

func (r *securityEventsRepo) AppendSecurityEvent(ctx context.Context, ev domain.SecurityEvent) error {
	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO security_events (id, kind, user_id, tenant_id, remote_ip, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, string(ev.Kind), ev.UserID, ev.TenantID, ev.RemoteIP, ev.Detail, createdAt.UTC(),
	)
	return err
}

func (r *securityEventsRepo) ListSecurityEventsByTenant(
	ctx context.Context,
	tenantID string,
	limit int,
) ([]domain.SecurityEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, user_id, tenant_id, remote_ip, detail, created_at
		FROM security_events WHERE tenant_id = ?
		ORDER BY created_at DESC LIMIT ?`, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SecurityEvent
	for rows.Next() {
		var ev domain.SecurityEvent
		var kind string
		if err := rows.Scan(&ev.ID, &kind, &ev.UserID, &ev.TenantID,
			&ev.RemoteIP, &ev.Detail, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.Kind = domain.EventKind(kind)
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *securityEventsRepo) CountSecurityEventsByKind(ctx context.Context) (map[domain.EventKind]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT kind, COUNT(*) FROM security_events GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.EventKind]int64)
	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		out[domain.EventKind(kind)] = count
	}
	return out, rows.Err()
}

func (r *securityEventsRepo) DeleteSecurityEventsBefore(ctx context.Context, cutoff time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM security_events WHERE created_at < ?`, cutoff.UTC())
	return err
}
