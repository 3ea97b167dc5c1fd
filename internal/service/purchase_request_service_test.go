package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpcl-dt/be-procurement/internal/apperror"
	"github.com/hpcl-dt/be-procurement/internal/model"
)

func TestCreatePurchaseRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	pr, err := f.prs.Create(ctx, CreatePurchaseRequestInput{
		Description:       "Workstation refresh",
		Category:          "IT_HARDWARE",
		Department:        "IT",
		EstimatedValueInr: decPtr("2000000"),
		Justification:     "End of life hardware",
		CreatedBy:         "requester@hpcl.co.in",
	})
	require.NoError(t, err)
	assert.Equal(t, "PR-2026-08-28-001", pr.PrID)
	assert.Equal(t, model.PRStatusDraft, pr.Status)
	assert.Equal(t, "INR", pr.Currency)
	assert.Equal(t, testClock, pr.CreatedAt)

	// The approval workflow is materialized at creation time.
	steps, err := f.approvals.GetApprovalsByPrID(ctx, pr.PrID)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "dept.manager@hpcl.co.in", steps[0].ApproverID)
	assert.Equal(t, "cfo@hpcl.co.in", steps[1].ApproverID)
}

func TestCreatePurchaseRequest_RequiresCategory(t *testing.T) {
	f := newFixture()

	_, err := f.prs.Create(context.Background(), CreatePurchaseRequestInput{Description: "No category"})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInvalidInput, apperror.CodeOf(err))
}

func TestCreatePurchaseRequest_NoEstimateGetsSingleStep(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	pr, err := f.prs.Create(ctx, CreatePurchaseRequestInput{Category: "SERVICES"})
	require.NoError(t, err)

	steps, err := f.approvals.GetApprovalsByPrID(ctx, pr.PrID)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, 1, steps[0].ApprovalLevel)
}

func TestCreatePurchaseRequest_SequentialIDs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.prs.Create(ctx, CreatePurchaseRequestInput{Category: "SERVICES"})
	require.NoError(t, err)
	second, err := f.prs.Create(ctx, CreatePurchaseRequestInput{Category: "SERVICES"})
	require.NoError(t, err)

	assert.Equal(t, "PR-2026-08-28-001", first.PrID)
	assert.Equal(t, "PR-2026-08-28-002", second.PrID)
}

func TestApprovePurchaseRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	pr, err := f.prs.Create(ctx, CreatePurchaseRequestInput{Category: "SERVICES"})
	require.NoError(t, err)

	approved, err := f.prs.Approve(ctx, pr.PrID, "cleared", "dept.manager@hpcl.co.in")
	require.NoError(t, err)
	assert.Equal(t, model.PRStatusApproved, approved.Status)

	entries, err := f.audit.GetAuditTrail(ctx, AuditEntityPR, pr.PrID)
	require.NoError(t, err)
	require.Len(t, entries, 2) // CREATE then APPROVE
	assert.Equal(t, AuditActionApprove, entries[1].Action)
	assert.Equal(t, model.PRStatusDraft, entries[1].OldValue)
}

func TestRejectPurchaseRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	pr, err := f.prs.Create(ctx, CreatePurchaseRequestInput{Category: "SERVICES"})
	require.NoError(t, err)

	rejected, err := f.prs.Reject(ctx, pr.PrID, "budget freeze", "cfo@hpcl.co.in")
	require.NoError(t, err)
	assert.Equal(t, model.PRStatusRejected, rejected.Status)
}

func TestApprovePurchaseRequest_Unknown(t *testing.T) {
	f := newFixture()
	_, err := f.prs.Approve(context.Background(), "PR-404", "", "")
	assert.True(t, apperror.IsNotFound(err))
}

func TestSummary(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.prs.Create(ctx, CreatePurchaseRequestInput{Category: "SERVICES", EstimatedValueInr: decPtr("100000")})
	require.NoError(t, err)
	_, err = f.prs.Create(ctx, CreatePurchaseRequestInput{Category: "SERVICES", EstimatedValueInr: decPtr("250000.50")})
	require.NoError(t, err)
	_, err = f.prs.Create(ctx, CreatePurchaseRequestInput{Category: "SERVICES"})
	require.NoError(t, err)

	_, err = f.prs.Approve(ctx, a.PrID, "", "")
	require.NoError(t, err)

	summary, err := f.prs.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalPRs)
	assert.Equal(t, 1, summary.Approved)
	assert.Equal(t, 2, summary.Drafts)
	assert.Equal(t, 0, summary.PendingApprovals)
	assert.True(t, summary.TotalValue.Equal(decimal.RequireFromString("350000.50")))
}
