// Package postgres implements the service store contracts over pgx.
package postgres

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/hpcl-dt/be-procurement/internal/apperror"
	"github.com/hpcl-dt/be-procurement/internal/database"
	"github.com/hpcl-dt/be-procurement/internal/model"
)

// RuleStore persists compliance rules in procurement_rules.
type RuleStore struct {
	db *database.DB
}

// NewRuleStore creates a new RuleStore.
func NewRuleStore(db *database.DB) *RuleStore {
	return &RuleStore{db: db}
}

const ruleColumns = `
	id, rule_id, category, field_name, operator, rule_value,
	description, action, severity, automatable, active,
	created_by, created_at`

func (s *RuleStore) FindAll(ctx context.Context) ([]model.Rule, error) {
	rows, err := s.db.Query(ctx, `SELECT `+ruleColumns+` FROM procurement_rules ORDER BY id`)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to list rules")
	}
	defer rows.Close()
	return scanRules(rows)
}

func (s *RuleStore) FindActiveByCategory(ctx context.Context, category string) ([]model.Rule, error) {
	query := `SELECT ` + ruleColumns + `
		FROM procurement_rules
		WHERE category = $1 AND active = TRUE
		ORDER BY id`

	rows, err := s.db.Query(ctx, query, category)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to list rules by category")
	}
	defer rows.Close()
	return scanRules(rows)
}

func (s *RuleStore) FindByID(ctx context.Context, id int64) (*model.Rule, error) {
	row := s.db.QueryRow(ctx, `SELECT `+ruleColumns+` FROM procurement_rules WHERE id = $1`, id)
	r, err := scanRule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("rule", strconv.FormatInt(id, 10))
	}
	return r, err
}

func (s *RuleStore) Save(ctx context.Context, r *model.Rule) error {
	if r.ID == 0 {
		query := `
			INSERT INTO procurement_rules
			    (rule_id, category, field_name, operator, rule_value,
			     description, action, severity, automatable, active,
			     created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id
		`
		return s.db.QueryRow(ctx, query,
			r.RuleID, r.Category, r.FieldName, r.Operator, r.RuleValue,
			r.Description, r.Action, r.Severity, r.Automatable, r.Active,
			r.CreatedBy, r.CreatedAt,
		).Scan(&r.ID)
	}

	query := `
		UPDATE procurement_rules
		SET category    = $2,
		    field_name  = $3,
		    operator    = $4,
		    rule_value  = $5,
		    description = $6,
		    action      = $7,
		    severity    = $8,
		    automatable = $9,
		    active      = $10
		WHERE id = $1
		RETURNING id
	`
	var returnedID int64
	err := s.db.QueryRow(ctx, query,
		r.ID, r.Category, r.FieldName, r.Operator, r.RuleValue,
		r.Description, r.Action, r.Severity, r.Automatable, r.Active,
	).Scan(&returnedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NotFound("rule", strconv.FormatInt(r.ID, 10))
	}
	return err
}

func (s *RuleStore) DeleteByID(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM procurement_rules WHERE id = $1`, id)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "failed to delete rule")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("rule", strconv.FormatInt(id, 10))
	}
	return nil
}

// ── scan helpers ─────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*model.Rule, error) {
	r := &model.Rule{}
	err := row.Scan(
		&r.ID, &r.RuleID, &r.Category, &r.FieldName, &r.Operator, &r.RuleValue,
		&r.Description, &r.Action, &r.Severity, &r.Automatable, &r.Active,
		&r.CreatedBy, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func scanRules(rows pgx.Rows) ([]model.Rule, error) {
	var rules []model.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to scan rule")
		}
		rules = append(rules, *r)
	}
	return rules, rows.Err()
}
