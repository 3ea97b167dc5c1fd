// Package memstore provides in-memory store implementations. They back local
// runs (store.backend: memory) and the service tests; semantics match the
// Postgres implementations.
package memstore

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/hpcl-dt/be-procurement/internal/apperror"
	"github.com/hpcl-dt/be-procurement/internal/model"
)

// ── Rules ────────────────────────────────────────────────────────────────────

// RuleStore is a thread-safe in-memory rule store.
type RuleStore struct {
	mu     sync.RWMutex
	rules  map[int64]model.Rule
	nextID int64
}

// NewRuleStore creates an empty RuleStore.
func NewRuleStore() *RuleStore {
	return &RuleStore{rules: make(map[int64]model.Rule)}
}

func (s *RuleStore) FindAll(ctx context.Context) ([]model.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r)
	}
	sortByID(out, func(r model.Rule) int64 { return r.ID })
	return out, nil
}

func (s *RuleStore) FindActiveByCategory(ctx context.Context, category string) ([]model.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Rule
	for _, r := range s.rules {
		if r.Active && r.Category == category {
			out = append(out, r)
		}
	}
	sortByID(out, func(r model.Rule) int64 { return r.ID })
	return out, nil
}

func (s *RuleStore) FindByID(ctx context.Context, id int64) (*model.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[id]
	if !ok {
		return nil, apperror.NotFound("rule", strconv.FormatInt(id, 10))
	}
	return &r, nil
}

func (s *RuleStore) Save(ctx context.Context, rule *model.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rule.ID == 0 {
		s.nextID++
		rule.ID = s.nextID
	}
	s.rules[rule.ID] = *rule
	return nil
}

func (s *RuleStore) DeleteByID(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[id]; !ok {
		return apperror.NotFound("rule", strconv.FormatInt(id, 10))
	}
	delete(s.rules, id)
	return nil
}

// ── Purchase requests ────────────────────────────────────────────────────────

// PurchaseRequestStore is a thread-safe in-memory purchase request store.
type PurchaseRequestStore struct {
	mu     sync.RWMutex
	prs    map[string]model.PurchaseRequest // keyed by business id
	nextID int64
}

// NewPurchaseRequestStore creates an empty PurchaseRequestStore.
func NewPurchaseRequestStore() *PurchaseRequestStore {
	return &PurchaseRequestStore{prs: make(map[string]model.PurchaseRequest)}
}

func (s *PurchaseRequestStore) FindAll(ctx context.Context) ([]model.PurchaseRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PurchaseRequest, 0, len(s.prs))
	for _, pr := range s.prs {
		out = append(out, pr)
	}
	sortByID(out, func(pr model.PurchaseRequest) int64 { return pr.ID })
	return out, nil
}

func (s *PurchaseRequestStore) FindByBusinessID(ctx context.Context, prID string) (*model.PurchaseRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pr, ok := s.prs[prID]
	if !ok {
		return nil, apperror.NotFound("purchase request", prID)
	}
	return &pr, nil
}

func (s *PurchaseRequestStore) Save(ctx context.Context, pr *model.PurchaseRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pr.ID == 0 {
		s.nextID++
		pr.ID = s.nextID
	}
	s.prs[pr.PrID] = *pr
	return nil
}

// ── Approvals ────────────────────────────────────────────────────────────────

// ApprovalStore is a thread-safe in-memory approval store.
type ApprovalStore struct {
	mu        sync.RWMutex
	approvals map[int64]model.Approval
	nextID    int64

	// FailAfter, when positive, makes CreateBatch reject any batch larger
	// than that many steps. Used by tests to verify batch atomicity.
	FailAfter int
}

// NewApprovalStore creates an empty ApprovalStore.
func NewApprovalStore() *ApprovalStore {
	return &ApprovalStore{approvals: make(map[int64]model.Approval)}
}

func (s *ApprovalStore) CreateBatch(ctx context.Context, approvals []*model.Approval) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAfter > 0 && len(approvals) > s.FailAfter {
		return apperror.New(apperror.CodeInternal, "simulated batch failure")
	}
	for _, a := range approvals {
		s.nextID++
		a.ID = s.nextID
		s.approvals[a.ID] = *a
	}
	return nil
}

func (s *ApprovalStore) Save(ctx context.Context, approval *model.Approval) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if approval.ID == 0 {
		s.nextID++
		approval.ID = s.nextID
	}
	s.approvals[approval.ID] = *approval
	return nil
}

func (s *ApprovalStore) FindAll(ctx context.Context) ([]model.Approval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Approval, 0, len(s.approvals))
	for _, a := range s.approvals {
		out = append(out, a)
	}
	sortByID(out, func(a model.Approval) int64 { return a.ID })
	return out, nil
}

func (s *ApprovalStore) FindByID(ctx context.Context, id int64) (*model.Approval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.approvals[id]
	if !ok {
		return nil, apperror.NotFound("approval", strconv.FormatInt(id, 10))
	}
	return &a, nil
}

func (s *ApprovalStore) FindByPrID(ctx context.Context, prID string) ([]model.Approval, error) {
	return s.filter(func(a model.Approval) bool { return a.PrID == prID })
}

func (s *ApprovalStore) FindByApproverIDAndStatus(ctx context.Context, approverID, status string) ([]model.Approval, error) {
	return s.filter(func(a model.Approval) bool { return a.ApproverID == approverID && a.Status == status })
}

func (s *ApprovalStore) FindByStatus(ctx context.Context, status string) ([]model.Approval, error) {
	return s.filter(func(a model.Approval) bool { return a.Status == status })
}

func (s *ApprovalStore) filter(keep func(model.Approval) bool) ([]model.Approval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Approval
	for _, a := range s.approvals {
		if keep(a) {
			out = append(out, a)
		}
	}
	sortByID(out, func(a model.Approval) int64 { return a.ID })
	return out, nil
}

// ── Exceptions ───────────────────────────────────────────────────────────────

// ExceptionStore is a thread-safe in-memory exception store.
type ExceptionStore struct {
	mu      sync.RWMutex
	records map[string]model.ExceptionRecord // keyed by exception business id
	nextID  int64
}

// NewExceptionStore creates an empty ExceptionStore.
func NewExceptionStore() *ExceptionStore {
	return &ExceptionStore{records: make(map[string]model.ExceptionRecord)}
}

func (s *ExceptionStore) FindAll(ctx context.Context) ([]model.ExceptionRecord, error) {
	return s.filter(func(model.ExceptionRecord) bool { return true })
}

func (s *ExceptionStore) FindByExceptionID(ctx context.Context, exceptionID string) (*model.ExceptionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[exceptionID]
	if !ok {
		return nil, apperror.NotFound("exception", exceptionID)
	}
	return &rec, nil
}

func (s *ExceptionStore) FindByPrID(ctx context.Context, prID string) ([]model.ExceptionRecord, error) {
	return s.filter(func(r model.ExceptionRecord) bool { return r.PrID == prID })
}

func (s *ExceptionStore) FindByStatus(ctx context.Context, status string) ([]model.ExceptionRecord, error) {
	return s.filter(func(r model.ExceptionRecord) bool { return r.Status == status })
}

func (s *ExceptionStore) FindBySeverity(ctx context.Context, severity string) ([]model.ExceptionRecord, error) {
	return s.filter(func(r model.ExceptionRecord) bool { return r.Severity == severity })
}

func (s *ExceptionStore) Save(ctx context.Context, rec *model.ExceptionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == 0 {
		s.nextID++
		rec.ID = s.nextID
	}
	s.records[rec.ExceptionID] = *rec
	return nil
}

func (s *ExceptionStore) filter(keep func(model.ExceptionRecord) bool) ([]model.ExceptionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ExceptionRecord
	for _, rec := range s.records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sortByID(out, func(r model.ExceptionRecord) int64 { return r.ID })
	return out, nil
}

// ── Audit ────────────────────────────────────────────────────────────────────

// AuditStore is a thread-safe in-memory append-only audit log.
type AuditStore struct {
	mu      sync.RWMutex
	entries []model.AuditLog
	nextID  int64
}

// NewAuditStore creates an empty AuditStore.
func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

func (s *AuditStore) Append(ctx context.Context, entry *model.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	entry.ID = s.nextID
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *AuditStore) FindByEntity(ctx context.Context, entityType, entityID string) ([]model.AuditLog, error) {
	return s.filter(func(e model.AuditLog) bool { return e.EntityType == entityType && e.EntityID == entityID })
}

func (s *AuditStore) FindByPerformedBy(ctx context.Context, userID string) ([]model.AuditLog, error) {
	return s.filter(func(e model.AuditLog) bool { return e.PerformedBy == userID })
}

func (s *AuditStore) FindByAction(ctx context.Context, action string) ([]model.AuditLog, error) {
	return s.filter(func(e model.AuditLog) bool { return e.Action == action })
}

func (s *AuditStore) FindByDateRange(ctx context.Context, from, to time.Time) ([]model.AuditLog, error) {
	return s.filter(func(e model.AuditLog) bool {
		return !e.PerformedAt.Before(from) && !e.PerformedAt.After(to)
	})
}

func (s *AuditStore) filter(keep func(model.AuditLog) bool) ([]model.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.AuditLog
	for _, e := range s.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// sortByID keeps listings in insertion order, matching the ORDER BY id of the
// Postgres implementations.
func sortByID[T any](items []T, id func(T) int64) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}
