package service

import (
	"context"
	"time"

	"github.com/hpcl-dt/be-procurement/internal/logger"
	"github.com/hpcl-dt/be-procurement/internal/model"
)

// Audit entity types.
const (
	AuditEntityPR        = "PR"
	AuditEntityRule      = "RULE"
	AuditEntityApproval  = "APPROVAL"
	AuditEntityException = "EXCEPTION"
)

// Audit actions.
const (
	AuditActionCreate   = "CREATE"
	AuditActionUpdate   = "UPDATE"
	AuditActionDelete   = "DELETE"
	AuditActionApprove  = "APPROVE"
	AuditActionReject   = "REJECT"
	AuditActionResolve  = "RESOLVE"
	AuditActionEscalate = "ESCALATE"
)

// AuditService records state-changing operations. Writes are fire-and-forget:
// an audit failure is logged but never fails the triggering operation.
type AuditService struct {
	store AuditStore
	log   *logger.Logger
	now   func() time.Time
}

// NewAuditService creates a new AuditService.
func NewAuditService(store AuditStore, log *logger.Logger) *AuditService {
	return &AuditService{store: store, log: log, now: time.Now}
}

// LogAction appends one audit entry.
func (s *AuditService) LogAction(ctx context.Context, entityType, entityID, action, performedBy, oldValue, newValue, ipAddress string) {
	entry := &model.AuditLog{
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		PerformedBy: performedBy,
		PerformedAt: s.now(),
		OldValue:    oldValue,
		NewValue:    newValue,
		IPAddress:   ipAddress,
	}
	if err := s.store.Append(ctx, entry); err != nil {
		s.log.Warn().Err(err).
			Str("entity_type", entityType).
			Str("entity_id", entityID).
			Str("action", action).
			Msg("Failed to write audit log entry")
	}
}

// GetAuditTrail returns all entries for one entity.
func (s *AuditService) GetAuditTrail(ctx context.Context, entityType, entityID string) ([]model.AuditLog, error) {
	return s.store.FindByEntity(ctx, entityType, entityID)
}

// GetAuditLogsByUser returns all entries performed by one user.
func (s *AuditService) GetAuditLogsByUser(ctx context.Context, userID string) ([]model.AuditLog, error) {
	return s.store.FindByPerformedBy(ctx, userID)
}

// GetAuditLogsByAction returns all entries with a given action.
func (s *AuditService) GetAuditLogsByAction(ctx context.Context, action string) ([]model.AuditLog, error) {
	return s.store.FindByAction(ctx, action)
}

// GetAuditLogsByDateRange returns all entries performed within [from, to].
func (s *AuditService) GetAuditLogsByDateRange(ctx context.Context, from, to time.Time) ([]model.AuditLog, error) {
	return s.store.FindByDateRange(ctx, from, to)
}
