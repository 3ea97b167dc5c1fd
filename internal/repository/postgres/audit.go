package postgres

import (
	"context"
	"time"

	"github.com/hpcl-dt/be-procurement/internal/apperror"
	"github.com/hpcl-dt/be-procurement/internal/database"
	"github.com/hpcl-dt/be-procurement/internal/model"
)

// AuditStore appends and reads immutable audit log entries in audit_log.
// Append is the only mutation exposed.
type AuditStore struct {
	db *database.DB
}

// NewAuditStore creates a new AuditStore.
func NewAuditStore(db *database.DB) *AuditStore {
	return &AuditStore{db: db}
}

const auditColumns = `
	id, entity_type, entity_id, action, performed_by, performed_at,
	old_value, new_value, ip_address`

func (s *AuditStore) Append(ctx context.Context, entry *model.AuditLog) error {
	query := `
		INSERT INTO audit_log
		    (entity_type, entity_id, action, performed_by, performed_at,
		     old_value, new_value, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return s.db.QueryRow(ctx, query,
		entry.EntityType, entry.EntityID, entry.Action, entry.PerformedBy,
		entry.PerformedAt, entry.OldValue, entry.NewValue, entry.IPAddress,
	).Scan(&entry.ID)
}

func (s *AuditStore) FindByEntity(ctx context.Context, entityType, entityID string) ([]model.AuditLog, error) {
	return s.list(ctx,
		`SELECT `+auditColumns+` FROM audit_log WHERE entity_type = $1 AND entity_id = $2 ORDER BY performed_at`,
		entityType, entityID)
}

func (s *AuditStore) FindByPerformedBy(ctx context.Context, userID string) ([]model.AuditLog, error) {
	return s.list(ctx,
		`SELECT `+auditColumns+` FROM audit_log WHERE performed_by = $1 ORDER BY performed_at`, userID)
}

func (s *AuditStore) FindByAction(ctx context.Context, action string) ([]model.AuditLog, error) {
	return s.list(ctx,
		`SELECT `+auditColumns+` FROM audit_log WHERE action = $1 ORDER BY performed_at`, action)
}

func (s *AuditStore) FindByDateRange(ctx context.Context, from, to time.Time) ([]model.AuditLog, error) {
	return s.list(ctx,
		`SELECT `+auditColumns+` FROM audit_log WHERE performed_at BETWEEN $1 AND $2 ORDER BY performed_at`,
		from, to)
}

func (s *AuditStore) list(ctx context.Context, query string, args ...any) ([]model.AuditLog, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to list audit log")
	}
	defer rows.Close()

	var entries []model.AuditLog
	for rows.Next() {
		e := model.AuditLog{}
		err := rows.Scan(
			&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.PerformedBy,
			&e.PerformedAt, &e.OldValue, &e.NewValue, &e.IPAddress,
		)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to scan audit entry")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
