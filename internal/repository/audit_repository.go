package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditEntry is one row of the access audit trail.
type AuditEntry struct {
	ID         string
	SessionID  string
	EventType  string
	UserID     string
	Roles      []string
	Subject    string
	OccurredAt time.Time
}

// AuditRepository stores access audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, entry *AuditEntry) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]AuditEntry, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository returns a Postgres-backed implementation.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Insert(ctx context.Context, entry *AuditEntry) error {
	const query = `
        INSERT INTO access_audit (id, session_id, event_type, user_id, roles, subject, occurred_at)
        VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7)`

	roles := entry.Roles
	if roles == nil {
		roles = []string{}
	}
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.SessionID,
		entry.EventType,
		entry.UserID,
		roles,
		entry.Subject,
		entry.OccurredAt,
	)
	return err
}

func (r *auditRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]AuditEntry, error) {
	const query = `
        SELECT id::text, session_id, event_type, COALESCE(user_id, ''), roles, COALESCE(subject, ''), occurred_at
        FROM access_audit
        WHERE session_id=$1
        ORDER BY occurred_at DESC
        LIMIT $2`

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var entry AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.SessionID,
			&entry.EventType,
			&entry.UserID,
			&entry.Roles,
			&entry.Subject,
			&entry.OccurredAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
