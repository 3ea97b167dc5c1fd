package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Purchase requests ────────────────────────────────────────────────────────

// Purchase request statuses.
const (
	PRStatusDraft           = "DRAFT"
	PRStatusPendingApproval = "PENDING_APPROVAL"
	PRStatusApproved        = "APPROVED"
	PRStatusRejected        = "REJECTED"
)

// PurchaseRequest is the unit of procurement work tracked by the system.
// Amounts are INR only; EstimatedValueInr is nil when the requester has not
// provided an estimate yet.
type PurchaseRequest struct {
	ID                int64            `json:"id"`
	PrID              string           `json:"prId"`
	Description       string           `json:"description"`
	Category          string           `json:"category"`
	Department        string           `json:"department"`
	EstimatedValueInr *decimal.Decimal `json:"estimatedValueInr"`
	Currency          string           `json:"currency"`
	RequiredByDate    *time.Time       `json:"requiredByDate"`
	Status            string           `json:"status"`
	Justification     string           `json:"justification"`
	CreatedAt         time.Time        `json:"createdAt"`
}

// ── Rules ────────────────────────────────────────────────────────────────────

// CategoryAll is the wildcard category: the rule applies to every request.
const CategoryAll = "ALL"

// Severity levels, lowest to highest.
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// Rule is a stored predicate over a purchase request field. A rule "matches"
// when its condition holds against the request, which flags the request for
// extra scrutiny (the match is reported as a violation).
type Rule struct {
	ID          int64     `json:"id"`
	RuleID      string    `json:"ruleId"`
	Category    string    `json:"category"`
	FieldName   string    `json:"fieldName"`
	Operator    string    `json:"operator"`
	RuleValue   string    `json:"ruleValue"`
	Description string    `json:"description,omitempty"`
	Action      string    `json:"action,omitempty"`
	Severity    string    `json:"severity,omitempty"`
	Automatable bool      `json:"automatable"`
	Active      bool      `json:"active"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RuleViolation pairs a rule with the request it was evaluated against.
// Violations are computed fresh on every evaluation and never persisted.
type RuleViolation struct {
	Rule     Rule            `json:"rule"`
	Request  PurchaseRequest `json:"request"`
	Message  string          `json:"message"`
	Severity string          `json:"severity,omitempty"`
	Action   string          `json:"action,omitempty"`
}

// ── Approvals ────────────────────────────────────────────────────────────────

// Approval step statuses. APPROVED and REJECTED are terminal.
const (
	ApprovalStatusPending  = "PENDING"
	ApprovalStatusApproved = "APPROVED"
	ApprovalStatusRejected = "REJECTED"
)

// Approval is one step of a workflow instance. Steps for a request are created
// together and thereafter transitioned independently by their approvers; no
// level ordering is enforced.
type Approval struct {
	ID            int64      `json:"id"`
	PrID          string     `json:"prId"`
	ApprovalLevel int        `json:"approvalLevel"`
	ApproverID    string     `json:"approverId"`
	ApproverName  string     `json:"approverName"`
	Status        string     `json:"status"`
	Comments      string     `json:"comments,omitempty"`
	ActedBy       string     `json:"actedBy,omitempty"`
	ApprovedAt    *time.Time `json:"approvedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// ── Exceptions ───────────────────────────────────────────────────────────────

// Exception record statuses.
const (
	ExceptionStatusOpen      = "OPEN"
	ExceptionStatusResolved  = "RESOLVED"
	ExceptionStatusEscalated = "ESCALATED"
)

// ExceptionRecord tracks a procurement exception raised against a request.
type ExceptionRecord struct {
	ID          int64      `json:"id"`
	ExceptionID string     `json:"exceptionId"`
	PrID        string     `json:"prId"`
	Description string     `json:"description,omitempty"`
	Severity    string     `json:"severity"`
	Status      string     `json:"status"`
	Resolution  string     `json:"resolution,omitempty"`
	ResolvedBy  string     `json:"resolvedBy,omitempty"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// EscalateSeverity returns the next severity up the ladder. CRITICAL is the
// ceiling; unknown severities escalate straight to CRITICAL.
func EscalateSeverity(severity string) string {
	switch severity {
	case SeverityLow:
		return SeverityMedium
	case SeverityMedium:
		return SeverityHigh
	case SeverityHigh:
		return SeverityCritical
	default:
		return SeverityCritical
	}
}

// ── Audit ────────────────────────────────────────────────────────────────────

// AuditLog is one immutable record of a state-changing operation.
type AuditLog struct {
	ID          int64     `json:"id"`
	EntityType  string    `json:"entityType"`
	EntityID    string    `json:"entityId"`
	Action      string    `json:"action"`
	PerformedBy string    `json:"performedBy"`
	PerformedAt time.Time `json:"performedAt"`
	OldValue    string    `json:"oldValue,omitempty"`
	NewValue    string    `json:"newValue,omitempty"`
	IPAddress   string    `json:"ipAddress,omitempty"`
}
