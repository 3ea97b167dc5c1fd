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

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func seedRule(t *testing.T, f *fixture, r model.Rule) model.Rule {
	t.Helper()
	created, err := f.rules.CreateRule(context.Background(), &r)
	require.NoError(t, err)
	return *created
}

func TestEvaluateRules_CategoryThenWildcard(t *testing.T) {
	f := newFixture()

	seedRule(t, f, model.Rule{
		Category: "IT_HARDWARE", FieldName: "estimatedValueInr", Operator: ">=", RuleValue: "1000000",
		Severity: model.SeverityHigh, Action: "REQUIRE_CFO_REVIEW", Active: true,
	})
	seedRule(t, f, model.Rule{
		Category: model.CategoryAll, FieldName: "estimatedValueInr", Operator: ">", RuleValue: "500000",
		Severity: model.SeverityMedium, Action: "FLAG_FOR_REVIEW", Active: true,
	})
	// A rule for a different category must not apply.
	seedRule(t, f, model.Rule{
		Category: "CIVIL_WORKS", FieldName: "estimatedValueInr", Operator: ">", RuleValue: "0", Active: true,
	})

	pr := model.PurchaseRequest{Category: "IT_HARDWARE", EstimatedValueInr: decPtr("2000000")}
	violations, err := f.rules.EvaluateRules(context.Background(), pr)
	require.NoError(t, err)
	require.Len(t, violations, 2)

	// Category rules come before wildcard rules.
	assert.Equal(t, "IT_HARDWARE", violations[0].Rule.Category)
	assert.Equal(t, model.CategoryAll, violations[1].Rule.Category)
	assert.Equal(t, "Rule violation detected", violations[0].Message)
	assert.Equal(t, model.SeverityHigh, violations[0].Severity)
	assert.Equal(t, "REQUIRE_CFO_REVIEW", violations[0].Action)
}

func TestEvaluateRules_InactiveRulesSkipped(t *testing.T) {
	f := newFixture()
	seedRule(t, f, model.Rule{
		Category: model.CategoryAll, FieldName: "estimatedValueInr", Operator: ">", RuleValue: "0", Active: false,
	})

	pr := model.PurchaseRequest{Category: "SERVICES", EstimatedValueInr: decPtr("100000")}
	violations, err := f.rules.EvaluateRules(context.Background(), pr)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestEvaluateRules_BadRulesAreInert(t *testing.T) {
	f := newFixture()

	seedRule(t, f, model.Rule{
		Category: "SERVICES", FieldName: "estimatedValueInr", Operator: ">", RuleValue: "not a number", Active: true,
	})
	seedRule(t, f, model.Rule{
		Category: "SERVICES", FieldName: "vendorCount", Operator: ">", RuleValue: "3", Active: true,
	})
	good := seedRule(t, f, model.Rule{
		Category: "SERVICES", FieldName: "estimatedValueInr", Operator: ">", RuleValue: "50000", Active: true,
	})

	pr := model.PurchaseRequest{Category: "SERVICES", EstimatedValueInr: decPtr("100000")}
	violations, err := f.rules.EvaluateRules(context.Background(), pr)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, good.RuleID, violations[0].Rule.RuleID)
}

func TestEvaluateRules_DateWindow(t *testing.T) {
	f := newFixture()
	seedRule(t, f, model.Rule{
		Category: model.CategoryAll, FieldName: "requiredByDate", Operator: "<", RuleValue: "CURRENT_DATE+7",
		Severity: model.SeverityMedium, Active: true,
	})

	near := testClock.AddDate(0, 0, 3)
	far := testClock.AddDate(0, 0, 30)

	violations, err := f.rules.EvaluateRules(context.Background(),
		model.PurchaseRequest{Category: "SERVICES", RequiredByDate: &near})
	require.NoError(t, err)
	assert.Len(t, violations, 1)

	violations, err = f.rules.EvaluateRules(context.Background(),
		model.PurchaseRequest{Category: "SERVICES", RequiredByDate: &far})
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestEvaluateRequest_UnknownPR(t *testing.T) {
	f := newFixture()

	_, err := f.rules.EvaluateRequest(context.Background(), "PR-2026-08-28-404")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestEvaluateRequest_LooksUpAndEvaluates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	seedRule(t, f, model.Rule{
		Category: model.CategoryAll, FieldName: "estimatedValueInr", Operator: ">=", RuleValue: "1000000", Active: true,
	})
	pr, err := f.prs.Create(ctx, CreatePurchaseRequestInput{
		Description: "Blade servers", Category: "IT_HARDWARE", EstimatedValueInr: decPtr("1500000"),
	})
	require.NoError(t, err)

	violations, err := f.rules.EvaluateRequest(ctx, pr.PrID)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, pr.PrID, violations[0].Request.PrID)
}

func TestCreateRule_GeneratesBusinessID(t *testing.T) {
	f := newFixture()

	created, err := f.rules.CreateRule(context.Background(), &model.Rule{
		Category: "SERVICES", FieldName: "estimatedValueInr", Operator: ">", RuleValue: "100000", Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "RULE-001", created.RuleID)
	assert.Equal(t, testClock, created.CreatedAt)

	second, err := f.rules.CreateRule(context.Background(), &model.Rule{
		Category: "SERVICES", FieldName: "estimatedValueInr", Operator: ">", RuleValue: "200000", Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "RULE-002", second.RuleID)
}

func TestCreateRule_KeepsProvidedBusinessID(t *testing.T) {
	f := newFixture()

	created, err := f.rules.CreateRule(context.Background(), &model.Rule{
		RuleID: "RULE-HV-001", Category: "SERVICES", FieldName: "estimatedValueInr",
		Operator: ">", RuleValue: "100000", Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "RULE-HV-001", created.RuleID)
}

func TestUpdateRule_ReplacesMutableFields(t *testing.T) {
	f := newFixture()
	created := seedRule(t, f, model.Rule{
		Category: "SERVICES", FieldName: "estimatedValueInr", Operator: ">", RuleValue: "100000", Active: true,
	})

	updated, err := f.rules.UpdateRule(context.Background(), created.ID, &model.Rule{
		Category: "SERVICES", FieldName: "estimatedValueInr", Operator: ">=", RuleValue: "250000", Active: false,
	})
	require.NoError(t, err)
	assert.Equal(t, created.RuleID, updated.RuleID)
	assert.Equal(t, ">=", updated.Operator)
	assert.Equal(t, "250000", updated.RuleValue)
	assert.False(t, updated.Active)
}

func TestUpdateRule_UnknownID(t *testing.T) {
	f := newFixture()
	_, err := f.rules.UpdateRule(context.Background(), 42, &model.Rule{})
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteRule(t *testing.T) {
	f := newFixture()
	created := seedRule(t, f, model.Rule{
		Category: "SERVICES", FieldName: "estimatedValueInr", Operator: ">", RuleValue: "100000", Active: true,
	})

	require.NoError(t, f.rules.DeleteRule(context.Background(), created.ID))

	all, err := f.rules.GetAllRules(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	err = f.rules.DeleteRule(context.Background(), created.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestGetActiveRules(t *testing.T) {
	f := newFixture()
	seedRule(t, f, model.Rule{Category: "A", FieldName: "estimatedValueInr", Operator: ">", RuleValue: "1", Active: true})
	seedRule(t, f, model.Rule{Category: "B", FieldName: "estimatedValueInr", Operator: ">", RuleValue: "1", Active: false})

	active, err := f.rules.GetActiveRules(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "A", active[0].Category)
}
