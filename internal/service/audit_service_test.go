package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpcl-dt/be-procurement/internal/logger"
)

func TestLogAction_AppendsEntry(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.audit.LogAction(ctx, AuditEntityPR, "PR-2026-08-28-001", AuditActionCreate,
		"requester@hpcl.co.in", "", "DRAFT", "10.20.30.40")

	trail, err := f.audit.GetAuditTrail(ctx, AuditEntityPR, "PR-2026-08-28-001")
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, AuditActionCreate, trail[0].Action)
	assert.Equal(t, "requester@hpcl.co.in", trail[0].PerformedBy)
	assert.Equal(t, "10.20.30.40", trail[0].IPAddress)
	assert.Equal(t, testClock, trail[0].PerformedAt)
}

func TestGetAuditLogsByUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.audit.LogAction(ctx, AuditEntityPR, "PR-1", AuditActionCreate, "alice@hpcl.co.in", "", "", "")
	f.audit.LogAction(ctx, AuditEntityPR, "PR-2", AuditActionCreate, "bob@hpcl.co.in", "", "", "")
	f.audit.LogAction(ctx, AuditEntityRule, "RULE-001", AuditActionDelete, "alice@hpcl.co.in", "", "", "")

	entries, err := f.audit.GetAuditLogsByUser(ctx, "alice@hpcl.co.in")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestGetAuditLogsByDateRange(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.audit.LogAction(ctx, AuditEntityPR, "PR-1", AuditActionCreate, "", "", "", "")

	entries, err := f.audit.GetAuditLogsByDateRange(ctx, testClock.Add(-time.Hour), testClock.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	entries, err = f.audit.GetAuditLogsByDateRange(ctx, testClock.Add(time.Hour), testClock.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLogAction_StoreFailureDoesNotPanic(t *testing.T) {
	audit := NewAuditService(failingAuditStore{}, logger.Nop())

	assert.NotPanics(t, func() {
		audit.LogAction(context.Background(), AuditEntityPR, "PR-1", AuditActionCreate, "", "", "", "")
	})
}
