package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hpcl-dt/be-procurement/internal/logger"
	"github.com/hpcl-dt/be-procurement/internal/model"
	"github.com/hpcl-dt/be-procurement/internal/rule"
	"github.com/hpcl-dt/be-procurement/internal/sequence"
)

// violationMessage is the fixed message attached to every reported violation.
const violationMessage = "Rule violation detected"

// RuleService manages compliance rules and evaluates them against purchase
// requests. Evaluation is a pure read: it never mutates rules or requests and
// its results are never persisted.
type RuleService struct {
	rules RuleStore
	prs   PurchaseRequestStore
	audit *AuditService
	ids   sequence.Generator
	log   *logger.Logger
	now   func() time.Time
}

// NewRuleService creates a new RuleService.
func NewRuleService(rules RuleStore, prs PurchaseRequestStore, audit *AuditService, ids sequence.Generator, log *logger.Logger) *RuleService {
	return &RuleService{
		rules: rules,
		prs:   prs,
		audit: audit,
		ids:   ids,
		log:   log,
		now:   time.Now,
	}
}

// ── CRUD ─────────────────────────────────────────────────────────────────────

// GetAllRules returns every stored rule, active or not.
func (s *RuleService) GetAllRules(ctx context.Context) ([]model.Rule, error) {
	return s.rules.FindAll(ctx)
}

// GetActiveRules returns every active rule.
func (s *RuleService) GetActiveRules(ctx context.Context) ([]model.Rule, error) {
	all, err := s.rules.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]model.Rule, 0, len(all))
	for _, r := range all {
		if r.Active {
			active = append(active, r)
		}
	}
	return active, nil
}

// GetRulesByCategory returns active rules for one category (exact match, no
// wildcard expansion).
func (s *RuleService) GetRulesByCategory(ctx context.Context, category string) ([]model.Rule, error) {
	return s.rules.FindActiveByCategory(ctx, category)
}

// CreateRule stores a new rule, generating its business id when absent.
func (s *RuleService) CreateRule(ctx context.Context, r *model.Rule) (*model.Rule, error) {
	if r.RuleID == "" {
		r.RuleID = s.ids.NextRule()
	}
	r.CreatedAt = s.now()
	if err := s.rules.Save(ctx, r); err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, AuditEntityRule, r.RuleID, AuditActionCreate, r.CreatedBy, "", r.RuleValue, "")
	s.log.Info().Str("rule_id", r.RuleID).Str("category", r.Category).Msg("Rule created")
	return r, nil
}

// UpdateRule replaces the mutable fields of an existing rule.
func (s *RuleService) UpdateRule(ctx context.Context, id int64, updated *model.Rule) (*model.Rule, error) {
	existing, err := s.rules.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldValue := existing.RuleValue
	existing.Category = updated.Category
	existing.FieldName = updated.FieldName
	existing.Operator = updated.Operator
	existing.RuleValue = updated.RuleValue
	existing.Description = updated.Description
	existing.Action = updated.Action
	existing.Severity = updated.Severity
	existing.Automatable = updated.Automatable
	existing.Active = updated.Active

	if err := s.rules.Save(ctx, existing); err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, AuditEntityRule, existing.RuleID, AuditActionUpdate, "", oldValue, existing.RuleValue, "")
	return existing, nil
}

// DeleteRule removes a rule.
func (s *RuleService) DeleteRule(ctx context.Context, id int64) error {
	existing, err := s.rules.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.rules.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.audit.LogAction(ctx, AuditEntityRule, existing.RuleID, AuditActionDelete, "", existing.RuleValue, "", "")
	return nil
}

// ── Evaluation ───────────────────────────────────────────────────────────────

// EvaluateRules evaluates every applicable active rule against the request
// and returns one violation per matching rule. Applicable rules are those for
// the request's category plus the "ALL" wildcard, reported in that order.
// A rule that cannot be evaluated (unknown field, malformed operand, null
// request field) contributes no violation and never aborts the rest.
func (s *RuleService) EvaluateRules(ctx context.Context, pr model.PurchaseRequest) ([]model.RuleViolation, error) {
	categoryRules, err := s.rules.FindActiveByCategory(ctx, pr.Category)
	if err != nil {
		return nil, err
	}
	wildcardRules, err := s.rules.FindActiveByCategory(ctx, model.CategoryAll)
	if err != nil {
		return nil, err
	}

	today := s.now()
	violations := make([]model.RuleViolation, 0)
	for _, r := range append(categoryRules, wildcardRules...) {
		if rule.Matches(r, pr, today) {
			violations = append(violations, model.RuleViolation{
				Rule:     r,
				Request:  pr,
				Message:  violationMessage,
				Severity: r.Severity,
				Action:   r.Action,
			})
		}
	}
	return violations, nil
}

// EvaluateRequest looks up a purchase request by business id and evaluates
// all applicable rules against it.
func (s *RuleService) EvaluateRequest(ctx context.Context, prID string) ([]model.RuleViolation, error) {
	pr, err := s.prs.FindByBusinessID(ctx, prID)
	if err != nil {
		return nil, err
	}

	violations, err := s.EvaluateRules(ctx, *pr)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		s.log.Info().
			Str("pr_id", prID).
			Int("violations", len(violations)).
			Msg(fmt.Sprintf("Rule evaluation flagged %d violation(s)", len(violations)))
	}
	return violations, nil
}
