package service

import (
	"context"
	"time"

	"github.com/hpcl-dt/be-procurement/internal/model"
)

// Store contracts consumed by the services. Postgres implementations live in
// internal/repository/postgres, in-memory ones in internal/repository/memstore.
// Lookups fail with an apperror.NotFound when the entity does not exist.

// RuleStore persists compliance rules.
type RuleStore interface {
	FindAll(ctx context.Context) ([]model.Rule, error)
	// FindActiveByCategory returns active rules whose category equals the
	// given category exactly (no wildcard expansion).
	FindActiveByCategory(ctx context.Context, category string) ([]model.Rule, error)
	FindByID(ctx context.Context, id int64) (*model.Rule, error)
	// Save inserts the rule when ID is zero, updates it otherwise.
	Save(ctx context.Context, rule *model.Rule) error
	DeleteByID(ctx context.Context, id int64) error
}

// PurchaseRequestStore persists purchase requests.
type PurchaseRequestStore interface {
	FindAll(ctx context.Context) ([]model.PurchaseRequest, error)
	FindByBusinessID(ctx context.Context, prID string) (*model.PurchaseRequest, error)
	Save(ctx context.Context, pr *model.PurchaseRequest) error
}

// ApprovalStore persists approval workflow steps.
type ApprovalStore interface {
	// CreateBatch inserts all steps of a workflow instance atomically:
	// either every step is persisted or none is.
	CreateBatch(ctx context.Context, approvals []*model.Approval) error
	Save(ctx context.Context, approval *model.Approval) error
	FindAll(ctx context.Context) ([]model.Approval, error)
	FindByID(ctx context.Context, id int64) (*model.Approval, error)
	FindByPrID(ctx context.Context, prID string) ([]model.Approval, error)
	FindByApproverIDAndStatus(ctx context.Context, approverID, status string) ([]model.Approval, error)
	FindByStatus(ctx context.Context, status string) ([]model.Approval, error)
}

// ExceptionStore persists exception records.
type ExceptionStore interface {
	FindAll(ctx context.Context) ([]model.ExceptionRecord, error)
	FindByExceptionID(ctx context.Context, exceptionID string) (*model.ExceptionRecord, error)
	FindByPrID(ctx context.Context, prID string) ([]model.ExceptionRecord, error)
	FindByStatus(ctx context.Context, status string) ([]model.ExceptionRecord, error)
	FindBySeverity(ctx context.Context, severity string) ([]model.ExceptionRecord, error)
	Save(ctx context.Context, rec *model.ExceptionRecord) error
}

// AuditStore persists append-only audit log entries.
type AuditStore interface {
	Append(ctx context.Context, entry *model.AuditLog) error
	FindByEntity(ctx context.Context, entityType, entityID string) ([]model.AuditLog, error)
	FindByPerformedBy(ctx context.Context, userID string) ([]model.AuditLog, error)
	FindByAction(ctx context.Context, action string) ([]model.AuditLog, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]model.AuditLog, error)
}
