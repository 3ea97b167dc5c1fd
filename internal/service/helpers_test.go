package service

import (
	"context"
	"errors"
	"time"

	"github.com/hpcl-dt/be-procurement/internal/integration"
	"github.com/hpcl-dt/be-procurement/internal/logger"
	"github.com/hpcl-dt/be-procurement/internal/model"
	"github.com/hpcl-dt/be-procurement/internal/repository/memstore"
	"github.com/hpcl-dt/be-procurement/internal/sequence"
	"github.com/hpcl-dt/be-procurement/internal/workflow"
)

// testClock is the frozen "today" used throughout the service tests.
var testClock = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testClock }

// fixture wires all services onto in-memory stores with a frozen clock and a
// disabled event publisher.
type fixture struct {
	ruleStore      *memstore.RuleStore
	prStore        *memstore.PurchaseRequestStore
	approvalStore  *memstore.ApprovalStore
	exceptionStore *memstore.ExceptionStore
	auditStore     *memstore.AuditStore

	audit      *AuditService
	approvals  *ApprovalService
	rules      *RuleService
	exceptions *ExceptionService
	prs        *PurchaseRequestService
}

func newFixture() *fixture {
	f := &fixture{
		ruleStore:      memstore.NewRuleStore(),
		prStore:        memstore.NewPurchaseRequestStore(),
		approvalStore:  memstore.NewApprovalStore(),
		exceptionStore: memstore.NewExceptionStore(),
		auditStore:     memstore.NewAuditStore(),
	}

	log := logger.Nop()
	ids := sequence.NewCounterGenerator(fixedNow)

	f.audit = NewAuditService(f.auditStore, log)
	f.audit.now = fixedNow

	f.approvals = NewApprovalService(f.approvalStore, workflow.NewPolicy(nil), f.audit, nil, log)
	f.approvals.now = fixedNow

	f.rules = NewRuleService(f.ruleStore, f.prStore, f.audit, ids, log)
	f.rules.now = fixedNow

	f.exceptions = NewExceptionService(f.exceptionStore, f.audit, nil, ids, log)
	f.exceptions.now = fixedNow

	f.prs = NewPurchaseRequestService(f.prStore, f.approvals, f.audit, integration.NewSAPAdapter(), nil, ids, log)
	f.prs.now = fixedNow

	return f
}

// failingAuditStore always errors, to exercise the fire-and-forget contract.
type failingAuditStore struct{}

func (failingAuditStore) Append(ctx context.Context, entry *model.AuditLog) error {
	return errors.New("audit store unavailable")
}

func (failingAuditStore) FindByEntity(ctx context.Context, entityType, entityID string) ([]model.AuditLog, error) {
	return nil, nil
}

func (failingAuditStore) FindByPerformedBy(ctx context.Context, userID string) ([]model.AuditLog, error) {
	return nil, nil
}

func (failingAuditStore) FindByAction(ctx context.Context, action string) ([]model.AuditLog, error) {
	return nil, nil
}

func (failingAuditStore) FindByDateRange(ctx context.Context, from, to time.Time) ([]model.AuditLog, error) {
	return nil, nil
}
