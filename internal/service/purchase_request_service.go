package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hpcl-dt/be-procurement/internal/apperror"
	"github.com/hpcl-dt/be-procurement/internal/integration"
	"github.com/hpcl-dt/be-procurement/internal/logger"
	"github.com/hpcl-dt/be-procurement/internal/model"
	"github.com/hpcl-dt/be-procurement/internal/notify"
	"github.com/hpcl-dt/be-procurement/internal/sequence"
)

// CreatePurchaseRequestInput carries the caller-supplied fields of a new
// purchase request. Amounts are INR; RequiredByDate is optional.
type CreatePurchaseRequestInput struct {
	Description       string
	Category          string
	Department        string
	EstimatedValueInr *decimal.Decimal
	RequiredByDate    *time.Time
	Justification     string
	CreatedBy         string
}

// DashboardSummary aggregates request counts for the dashboard endpoint.
type DashboardSummary struct {
	TotalPRs         int             `json:"totalPRs"`
	PendingApprovals int             `json:"pendingApprovals"`
	Approved         int             `json:"approved"`
	Drafts           int             `json:"drafts"`
	TotalValue       decimal.Decimal `json:"totalValue"`
}

// PurchaseRequestService manages the purchase request lifecycle. Creating a
// request also instantiates its approval workflow.
type PurchaseRequestService struct {
	prs       PurchaseRequestStore
	approvals *ApprovalService
	audit     *AuditService
	sap       *integration.SAPAdapter
	events    *notify.Publisher
	ids       sequence.Generator
	log       *logger.Logger
	now       func() time.Time
}

// NewPurchaseRequestService creates a new PurchaseRequestService.
func NewPurchaseRequestService(
	prs PurchaseRequestStore,
	approvals *ApprovalService,
	audit *AuditService,
	sap *integration.SAPAdapter,
	events *notify.Publisher,
	ids sequence.Generator,
	log *logger.Logger,
) *PurchaseRequestService {
	return &PurchaseRequestService{
		prs:       prs,
		approvals: approvals,
		audit:     audit,
		sap:       sap,
		events:    events,
		ids:       ids,
		log:       log,
		now:       time.Now,
	}
}

// ListAll returns every purchase request.
func (s *PurchaseRequestService) ListAll(ctx context.Context) ([]model.PurchaseRequest, error) {
	return s.prs.FindAll(ctx)
}

// FindByBusinessID returns the request with the given business id.
func (s *PurchaseRequestService) FindByBusinessID(ctx context.Context, prID string) (*model.PurchaseRequest, error) {
	return s.prs.FindByBusinessID(ctx, prID)
}

// Create persists a new DRAFT request with a generated business id and
// materializes its approval workflow.
func (s *PurchaseRequestService) Create(ctx context.Context, in CreatePurchaseRequestInput) (*model.PurchaseRequest, error) {
	if in.Category == "" {
		return nil, apperror.InvalidInput("category", "category is required")
	}

	pr := &model.PurchaseRequest{
		PrID:              s.ids.NextPR(),
		Description:       in.Description,
		Category:          in.Category,
		Department:        in.Department,
		EstimatedValueInr: in.EstimatedValueInr,
		Currency:          "INR",
		RequiredByDate:    in.RequiredByDate,
		Status:            model.PRStatusDraft,
		Justification:     in.Justification,
		CreatedAt:         s.now(),
	}
	if err := s.prs.Save(ctx, pr); err != nil {
		return nil, err
	}

	estimated := decimal.Zero
	if pr.EstimatedValueInr != nil {
		estimated = *pr.EstimatedValueInr
	}
	if _, err := s.approvals.CreateApprovalWorkflow(ctx, pr.PrID, pr.Category, estimated); err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, AuditEntityPR, pr.PrID, AuditActionCreate, in.CreatedBy, "", pr.Status, "")
	s.events.Publish(ctx, notify.Event{
		EventType:    "pr_created",
		ResourceType: "pr",
		ResourceID:   pr.PrID,
		ActorID:      in.CreatedBy,
		Payload:      map[string]any{"category": pr.Category},
	})

	s.log.Info().
		Str("pr_id", pr.PrID).
		Str("category", pr.Category).
		Str("department", pr.Department).
		Msg("Purchase request created")

	return pr, nil
}

// Approve flips the request status to APPROVED and syncs it to SAP.
func (s *PurchaseRequestService) Approve(ctx context.Context, prID, comments, approvedBy string) (*model.PurchaseRequest, error) {
	return s.setStatus(ctx, prID, model.PRStatusApproved, AuditActionApprove, "pr_approved", approvedBy)
}

// Reject flips the request status to REJECTED.
func (s *PurchaseRequestService) Reject(ctx context.Context, prID, reason, rejectedBy string) (*model.PurchaseRequest, error) {
	return s.setStatus(ctx, prID, model.PRStatusRejected, AuditActionReject, "pr_rejected", rejectedBy)
}

func (s *PurchaseRequestService) setStatus(ctx context.Context, prID, status, action, eventType, actedBy string) (*model.PurchaseRequest, error) {
	pr, err := s.prs.FindByBusinessID(ctx, prID)
	if err != nil {
		return nil, err
	}

	oldStatus := pr.Status
	pr.Status = status
	if err := s.prs.Save(ctx, pr); err != nil {
		return nil, err
	}

	if status == model.PRStatusApproved {
		// SAP sync is best-effort; the stub never fails but a real adapter
		// might, and its outcome must not undo the approval.
		result := s.sap.SyncPurchaseRequest(pr.PrID, map[string]any{
			"category":   pr.Category,
			"department": pr.Department,
		})
		s.log.Info().
			Str("pr_id", pr.PrID).
			Interface("sap_result", result["sapDocumentNumber"]).
			Msg("Purchase request synced to SAP")
	}

	s.audit.LogAction(ctx, AuditEntityPR, pr.PrID, action, actedBy, oldStatus, status, "")
	s.events.Publish(ctx, notify.Event{
		EventType:    eventType,
		ResourceType: "pr",
		ResourceID:   pr.PrID,
		ActorID:      actedBy,
	})

	return pr, nil
}

// Summary computes the dashboard counters over all requests.
func (s *PurchaseRequestService) Summary(ctx context.Context) (*DashboardSummary, error) {
	all, err := s.prs.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{TotalPRs: len(all), TotalValue: decimal.Zero}
	for _, pr := range all {
		switch pr.Status {
		case model.PRStatusPendingApproval:
			summary.PendingApprovals++
		case model.PRStatusApproved:
			summary.Approved++
		case model.PRStatusDraft:
			summary.Drafts++
		}
		if pr.EstimatedValueInr != nil {
			summary.TotalValue = summary.TotalValue.Add(*pr.EstimatedValueInr)
		}
	}
	return summary, nil
}
