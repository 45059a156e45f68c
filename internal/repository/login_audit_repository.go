package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LoginAudit is one persisted authentication event.
type LoginAudit struct {
	ID         string
	EventType  string
	Username   string
	Role       string
	Reason     string
	IP         string
	UserAgent  string
	RequestID  string
	OccurredAt time.Time
}

// LoginAuditRepository stores the login audit trail.
type LoginAuditRepository interface {
	Record(ctx context.Context, entry *LoginAudit) error
}

type loginAuditRepository struct {
	pool *pgxpool.Pool
}

// NewLoginAuditRepository constructs the repository. It returns nil when no
// pool is configured.
func NewLoginAuditRepository(pool *pgxpool.Pool) LoginAuditRepository {
	if pool == nil {
		return nil
	}
	return &loginAuditRepository{pool: pool}
}

func (r *loginAuditRepository) Record(ctx context.Context, entry *LoginAudit) error {
	const query = `
        INSERT INTO login_audit (id, event_type, username, role, reason, ip, user_agent, request_id, occurred_at)
        VALUES ($1,$2,$3,NULLIF($4,''),NULLIF($5,''),NULLIF($6,''),NULLIF($7,''),NULLIF($8,''),$9)`
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.EventType,
		entry.Username,
		entry.Role,
		entry.Reason,
		entry.IP,
		entry.UserAgent,
		entry.RequestID,
		entry.OccurredAt,
	)
	return err
}

