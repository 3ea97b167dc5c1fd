package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hpcl-dt/be-procurement/internal/apperror"
	"github.com/hpcl-dt/be-procurement/internal/logger"
	"github.com/hpcl-dt/be-procurement/internal/model"
	"github.com/hpcl-dt/be-procurement/internal/notify"
	"github.com/hpcl-dt/be-procurement/internal/workflow"
)

// ApprovalService materializes and drives the tiered approval workflow.
// Steps of one workflow instance are created together; afterwards approvers
// act on them independently, with no level-gating between steps.
type ApprovalService struct {
	approvals ApprovalStore
	policy    *workflow.Policy
	audit     *AuditService
	events    *notify.Publisher
	log       *logger.Logger
	now       func() time.Time
}

// NewApprovalService creates a new ApprovalService.
func NewApprovalService(approvals ApprovalStore, policy *workflow.Policy, audit *AuditService, events *notify.Publisher, log *logger.Logger) *ApprovalService {
	return &ApprovalService{
		approvals: approvals,
		policy:    policy,
		audit:     audit,
		events:    events,
		log:       log,
		now:       time.Now,
	}
}

// ── Workflow creation ────────────────────────────────────────────────────────

// CreateApprovalWorkflow materializes the approval steps required for a
// request per the category's chain and value thresholds, and persists them in
// one atomic batch. The returned steps are ordered by level.
func (s *ApprovalService) CreateApprovalWorkflow(ctx context.Context, prID, category string, estimatedValue decimal.Decimal) ([]model.Approval, error) {
	levels := s.policy.StepsFor(category, estimatedValue)

	steps := make([]*model.Approval, 0, len(levels))
	for _, lvl := range levels {
		steps = append(steps, &model.Approval{
			PrID:          prID,
			ApprovalLevel: lvl.Level,
			ApproverID:    lvl.ApproverID,
			ApproverName:  lvl.ApproverName,
			Status:        model.ApprovalStatusPending,
			CreatedAt:     s.now(),
		})
	}

	if err := s.approvals.CreateBatch(ctx, steps); err != nil {
		return nil, err
	}

	created := make([]model.Approval, 0, len(steps))
	for _, step := range steps {
		created = append(created, *step)
	}

	s.audit.LogAction(ctx, AuditEntityApproval, prID, AuditActionCreate, "",
		"", fmt.Sprintf("%d approval step(s)", len(created)), "")
	s.events.Publish(ctx, notify.Event{
		EventType:    "workflow_created",
		ResourceType: "approval",
		ResourceID:   prID,
		Payload:      map[string]any{"total_steps": len(created)},
	})

	s.log.Info().
		Str("pr_id", prID).
		Str("category", category).
		Int("total_steps", len(created)).
		Msg("Approval workflow created")

	return created, nil
}

// ── Transitions ──────────────────────────────────────────────────────────────

// Approve transitions a pending approval step to APPROVED, recording comments,
// the acting approver and the approval timestamp. Terminal steps are immutable:
// approving an already approved or rejected step fails with a conflict.
func (s *ApprovalService) Approve(ctx context.Context, approvalID int64, comments, approverID string) (*model.Approval, error) {
	return s.transition(ctx, approvalID, model.ApprovalStatusApproved, comments, approverID)
}

// Reject transitions a pending approval step to REJECTED. Symmetric to Approve.
func (s *ApprovalService) Reject(ctx context.Context, approvalID int64, comments, approverID string) (*model.Approval, error) {
	return s.transition(ctx, approvalID, model.ApprovalStatusRejected, comments, approverID)
}

func (s *ApprovalService) transition(ctx context.Context, approvalID int64, status, comments, approverID string) (*model.Approval, error) {
	approval, err := s.approvals.FindByID(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	if approval.Status != model.ApprovalStatusPending {
		return nil, apperror.Conflict(
			fmt.Sprintf("approval %d is not pending (status: %s)", approvalID, approval.Status))
	}

	// The acting approver is recorded but not validated against the assigned
	// approver; mismatches are only logged pending product clarification.
	if approverID != "" && approverID != approval.ApproverID {
		s.log.Warn().
			Int64("approval_id", approvalID).
			Str("assigned_to", approval.ApproverID).
			Str("acted_by", approverID).
			Msg("Approval acted on by a user other than the assigned approver")
	}

	oldStatus := approval.Status
	actedAt := s.now()
	approval.Status = status
	approval.Comments = comments
	approval.ActedBy = approverID
	approval.ApprovedAt = &actedAt

	if err := s.approvals.Save(ctx, approval); err != nil {
		return nil, err
	}

	action := AuditActionApprove
	eventType := "approval_approved"
	if status == model.ApprovalStatusRejected {
		action = AuditActionReject
		eventType = "approval_rejected"
	}
	s.audit.LogAction(ctx, AuditEntityApproval, strconv.FormatInt(approvalID, 10),
		action, approverID, oldStatus, status, "")
	s.events.Publish(ctx, notify.Event{
		EventType:    eventType,
		ResourceType: "approval",
		ResourceID:   approval.PrID,
		ActorID:      approverID,
		Payload:      map[string]any{"approval_level": approval.ApprovalLevel},
	})

	s.log.Info().
		Int64("approval_id", approvalID).
		Str("pr_id", approval.PrID).
		Int("level", approval.ApprovalLevel).
		Str("status", status).
		Msg("Approval step transitioned")

	return approval, nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

// GetAllApprovals returns every approval step in the store.
func (s *ApprovalService) GetAllApprovals(ctx context.Context) ([]model.Approval, error) {
	return s.approvals.FindAll(ctx)
}

// GetPendingApprovals returns every step still awaiting action, across all
// approvers and requests.
func (s *ApprovalService) GetPendingApprovals(ctx context.Context) ([]model.Approval, error) {
	return s.approvals.FindByStatus(ctx, model.ApprovalStatusPending)
}

// GetApprovalInbox returns the pending steps assigned to one approver.
func (s *ApprovalService) GetApprovalInbox(ctx context.Context, approverID string) ([]model.Approval, error) {
	return s.approvals.FindByApproverIDAndStatus(ctx, approverID, model.ApprovalStatusPending)
}

// GetApprovalsByPrID returns every step of a request's workflow, any status.
func (s *ApprovalService) GetApprovalsByPrID(ctx context.Context, prID string) ([]model.Approval, error) {
	return s.approvals.FindByPrID(ctx, prID)
}

// CreateApproval stores a single ad-hoc approval step, defaulting its status
// to PENDING.
func (s *ApprovalService) CreateApproval(ctx context.Context, approval *model.Approval) (*model.Approval, error) {
	if approval.Status == "" {
		approval.Status = model.ApprovalStatusPending
	}
	if approval.CreatedAt.IsZero() {
		approval.CreatedAt = s.now()
	}
	if err := s.approvals.Save(ctx, approval); err != nil {
		return nil, err
	}
	s.audit.LogAction(ctx, AuditEntityApproval, approval.PrID, AuditActionCreate, "", "", approval.Status, "")
	return approval, nil
}
