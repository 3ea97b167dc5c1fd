// Package handler maps the REST surface onto the services. Field names in
// request and response bodies follow the domain model's JSON tags.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/hpcl-dt/be-procurement/internal/apperror"
	"github.com/hpcl-dt/be-procurement/internal/integration"
	"github.com/hpcl-dt/be-procurement/internal/logger"
	"github.com/hpcl-dt/be-procurement/internal/model"
	"github.com/hpcl-dt/be-procurement/internal/service"
)

// Handler holds the services behind the REST surface.
type Handler struct {
	prs        *service.PurchaseRequestService
	approvals  *service.ApprovalService
	rules      *service.RuleService
	exceptions *service.ExceptionService
	audit      *service.AuditService
	sap        *integration.SAPAdapter
	gem        *integration.GeMAdapter
	cppp       *integration.CPPPAdapter
	log        *logger.Logger
}

// New creates a Handler.
func New(
	prs *service.PurchaseRequestService,
	approvals *service.ApprovalService,
	rules *service.RuleService,
	exceptions *service.ExceptionService,
	audit *service.AuditService,
	sap *integration.SAPAdapter,
	gem *integration.GeMAdapter,
	cppp *integration.CPPPAdapter,
	log *logger.Logger,
) *Handler {
	return &Handler{
		prs:        prs,
		approvals:  approvals,
		rules:      rules,
		exceptions: exceptions,
		audit:      audit,
		sap:        sap,
		gem:        gem,
		cppp:       cppp,
		log:        log,
	}
}

// Routes mounts all endpoints on a router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.Health)

	r.Route("/api/pr", func(r chi.Router) {
		r.Post("/", h.CreatePR)
		r.Get("/", h.ListPRs)
		r.Get("/{prId}", h.GetPR)
		r.Post("/{prId}/approve", h.ApprovePR)
		r.Post("/{prId}/reject", h.RejectPR)
	})

	r.Route("/api/approvals", func(r chi.Router) {
		r.Get("/", h.ListApprovals)
		r.Post("/", h.CreateApproval)
		r.Get("/pending", h.ListPendingApprovals)
		r.Get("/inbox/{approverId}", h.ApprovalInbox)
		r.Get("/pr/{prId}", h.ApprovalsByPR)
		r.Post("/{id}/approve", h.ApproveStep)
		r.Post("/{id}/reject", h.RejectStep)
	})

	r.Route("/api/rules", func(r chi.Router) {
		r.Get("/", h.ListRules)
		r.Post("/", h.CreateRule)
		r.Get("/active", h.ListActiveRules)
		r.Get("/category/{category}", h.RulesByCategory)
		r.Get("/evaluate/{prId}", h.EvaluateRules)
		r.Put("/{id}", h.UpdateRule)
		r.Delete("/{id}", h.DeleteRule)
	})

	r.Route("/api/exceptions", func(r chi.Router) {
		r.Get("/", h.ListExceptions)
		r.Post("/", h.CreateException)
		r.Get("/open", h.ListOpenExceptions)
		r.Get("/pr/{prId}", h.ExceptionsByPR)
		r.Get("/severity/{severity}", h.ExceptionsBySeverity)
		r.Post("/{exceptionId}/resolve", h.ResolveException)
		r.Post("/{exceptionId}/escalate", h.EscalateException)
	})

	r.Get("/api/dashboard/summary", h.DashboardSummary)
	r.Get("/api/audit/{entityType}/{entityId}", h.AuditTrail)

	r.Route("/api/integration", func(r chi.Router) {
		r.Get("/sap/po/{poNumber}", h.SAPPOStatus)
		r.Post("/sap/po", h.SAPCreatePO)
		r.Get("/gem/supplier/{supplierName}", h.GeMSupplier)
		r.Post("/gem/bid/{prId}", h.GeMPublishBid)
		r.Get("/cppp/guidelines/{category}", h.CPPPGuidelines)
		r.Post("/cppp/contract/{prId}", h.CPPPSubmitContract)
		r.Get("/cppp/compliance/{contractId}", h.CPPPCompliance)
	})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ── Purchase requests ────────────────────────────────────────────────────────

type createPRRequest struct {
	Description       string           `json:"description"`
	Category          string           `json:"category"`
	Department        string           `json:"department"`
	EstimatedValueInr *decimal.Decimal `json:"estimatedValueInr"`
	RequiredByDate    string           `json:"requiredByDate"`
	Justification     string           `json:"justification"`
	CreatedBy         string           `json:"createdBy"`
}

func (h *Handler) CreatePR(w http.ResponseWriter, r *http.Request) {
	var req createPRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperror.InvalidInput("body", "invalid request body"))
		return
	}

	var requiredBy *time.Time
	if req.RequiredByDate != "" {
		date, err := time.Parse("2006-01-02", req.RequiredByDate)
		if err != nil {
			h.respondError(w, apperror.InvalidInput("requiredByDate", "invalid date format, expected YYYY-MM-DD"))
			return
		}
		requiredBy = &date
	}

	pr, err := h.prs.Create(r.Context(), service.CreatePurchaseRequestInput{
		Description:       req.Description,
		Category:          req.Category,
		Department:        req.Department,
		EstimatedValueInr: req.EstimatedValueInr,
		RequiredByDate:    requiredBy,
		Justification:     req.Justification,
		CreatedBy:         req.CreatedBy,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, pr)
}

func (h *Handler) ListPRs(w http.ResponseWriter, r *http.Request) {
	prs, err := h.prs.ListAll(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, prs)
}

func (h *Handler) GetPR(w http.ResponseWriter, r *http.Request) {
	pr, err := h.prs.FindByBusinessID(r.Context(), chi.URLParam(r, "prId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, pr)
}

type actionRequest struct {
	Comments   string `json:"comments"`
	ApproverID string `json:"approverId"`
}

func (h *Handler) ApprovePR(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	pr, err := h.prs.Approve(r.Context(), chi.URLParam(r, "prId"), req.Comments, req.ApproverID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, pr)
}

func (h *Handler) RejectPR(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	pr, err := h.prs.Reject(r.Context(), chi.URLParam(r, "prId"), req.Comments, req.ApproverID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, pr)
}

// ── Approvals ────────────────────────────────────────────────────────────────

func (h *Handler) ListApprovals(w http.ResponseWriter, r *http.Request) {
	approvals, err := h.approvals.GetAllApprovals(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, approvals)
}

func (h *Handler) CreateApproval(w http.ResponseWriter, r *http.Request) {
	var approval model.Approval
	if err := json.NewDecoder(r.Body).Decode(&approval); err != nil {
		h.respondError(w, apperror.InvalidInput("body", "invalid request body"))
		return
	}
	created, err := h.approvals.CreateApproval(r.Context(), &approval)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, created)
}

func (h *Handler) ListPendingApprovals(w http.ResponseWriter, r *http.Request) {
	approvals, err := h.approvals.GetPendingApprovals(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, approvals)
}

func (h *Handler) ApprovalInbox(w http.ResponseWriter, r *http.Request) {
	approvals, err := h.approvals.GetApprovalInbox(r.Context(), chi.URLParam(r, "approverId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, approvals)
}

func (h *Handler) ApprovalsByPR(w http.ResponseWriter, r *http.Request) {
	approvals, err := h.approvals.GetApprovalsByPrID(r.Context(), chi.URLParam(r, "prId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, approvals)
}

func (h *Handler) ApproveStep(w http.ResponseWriter, r *http.Request) {
	h.transitionStep(w, r, h.approvals.Approve)
}

func (h *Handler) RejectStep(w http.ResponseWriter, r *http.Request) {
	h.transitionStep(w, r, h.approvals.Reject)
}

func (h *Handler) transitionStep(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, id int64, comments, approverID string) (*model.Approval, error),
) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.respondError(w, apperror.InvalidInput("id", "approval id must be numeric"))
		return
	}

	var req actionRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	approval, err := fn(r.Context(), id, req.Comments, req.ApproverID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, approval)
}

// ── Rules ────────────────────────────────────────────────────────────────────

func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.GetAllRules(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, rules)
}

func (h *Handler) ListActiveRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.GetActiveRules(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, rules)
}

func (h *Handler) RulesByCategory(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.GetRulesByCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, rules)
}

func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var rule model.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		h.respondError(w, apperror.InvalidInput("body", "invalid request body"))
		return
	}
	created, err := h.rules.CreateRule(r.Context(), &rule)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, created)
}

func (h *Handler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.respondError(w, apperror.InvalidInput("id", "rule id must be numeric"))
		return
	}
	var rule model.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		h.respondError(w, apperror.InvalidInput("body", "invalid request body"))
		return
	}
	updated, err := h.rules.UpdateRule(r.Context(), id, &rule)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, updated)
}

func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.respondError(w, apperror.InvalidInput("id", "rule id must be numeric"))
		return
	}
	if err := h.rules.DeleteRule(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) EvaluateRules(w http.ResponseWriter, r *http.Request) {
	violations, err := h.rules.EvaluateRequest(r.Context(), chi.URLParam(r, "prId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, violations)
}

// ── Exceptions ───────────────────────────────────────────────────────────────

func (h *Handler) ListExceptions(w http.ResponseWriter, r *http.Request) {
	records, err := h.exceptions.GetAllExceptions(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, records)
}

func (h *Handler) ListOpenExceptions(w http.ResponseWriter, r *http.Request) {
	records, err := h.exceptions.GetOpenExceptions(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, records)
}

func (h *Handler) ExceptionsByPR(w http.ResponseWriter, r *http.Request) {
	records, err := h.exceptions.GetExceptionsByPrID(r.Context(), chi.URLParam(r, "prId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, records)
}

func (h *Handler) ExceptionsBySeverity(w http.ResponseWriter, r *http.Request) {
	records, err := h.exceptions.GetExceptionsBySeverity(r.Context(), chi.URLParam(r, "severity"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, records)
}

func (h *Handler) CreateException(w http.ResponseWriter, r *http.Request) {
	var rec model.ExceptionRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		h.respondError(w, apperror.InvalidInput("body", "invalid request body"))
		return
	}
	created, err := h.exceptions.CreateException(r.Context(), &rec)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, created)
}

type resolveRequest struct {
	Resolution string `json:"resolution"`
	ResolvedBy string `json:"resolvedBy"`
}

func (h *Handler) ResolveException(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	rec, err := h.exceptions.ResolveException(r.Context(), chi.URLParam(r, "exceptionId"), req.Resolution, req.ResolvedBy)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, rec)
}

func (h *Handler) EscalateException(w http.ResponseWriter, r *http.Request) {
	rec, err := h.exceptions.EscalateException(r.Context(), chi.URLParam(r, "exceptionId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, rec)
}

// ── Dashboard, audit, integrations ───────────────────────────────────────────

func (h *Handler) DashboardSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.prs.Summary(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, summary)
}

func (h *Handler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	trail, err := h.audit.GetAuditTrail(r.Context(), chi.URLParam(r, "entityType"), chi.URLParam(r, "entityId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, trail)
}

func (h *Handler) SAPPOStatus(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, h.sap.GetPOStatus(chi.URLParam(r, "poNumber")))
}

type createPORequest struct {
	PrID       string `json:"prId"`
	VendorCode string `json:"vendorCode"`
}

func (h *Handler) SAPCreatePO(w http.ResponseWriter, r *http.Request) {
	var req createPORequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PrID == "" {
		h.respondError(w, apperror.InvalidInput("prId", "prId is required"))
		return
	}

	// The PR must exist and be approved before a PO can be raised.
	pr, err := h.prs.FindByBusinessID(r.Context(), req.PrID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if pr.Status != model.PRStatusApproved {
		h.respondError(w, apperror.Conflict(
			fmt.Sprintf("purchase request %s is not approved (status: %s)", pr.PrID, pr.Status)))
		return
	}

	h.respond(w, http.StatusCreated, h.sap.CreatePurchaseOrder(req.PrID, req.VendorCode))
}

func (h *Handler) GeMSupplier(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, h.gem.CheckSupplierRegistration(chi.URLParam(r, "supplierName")))
}

func (h *Handler) GeMPublishBid(w http.ResponseWriter, r *http.Request) {
	var details map[string]any
	_ = json.NewDecoder(r.Body).Decode(&details)
	h.respond(w, http.StatusCreated, h.gem.PublishBid(chi.URLParam(r, "prId"), details))
}

func (h *Handler) CPPPGuidelines(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, h.cppp.GetGuidelinesForCategory(chi.URLParam(r, "category")))
}

type submitContractRequest struct {
	ContractDetails string `json:"contractDetails"`
}

func (h *Handler) CPPPSubmitContract(w http.ResponseWriter, r *http.Request) {
	var req submitContractRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	h.respond(w, http.StatusCreated, h.cppp.SubmitContract(chi.URLParam(r, "prId"), req.ContractDetails))
}

func (h *Handler) CPPPCompliance(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, h.cppp.CheckCompliance(chi.URLParam(r, "contractId")))
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (h *Handler) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error().Err(err).Msg("failed to encode response")
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperror.CodeOf(err) {
	case apperror.CodeNotFound:
		status = http.StatusNotFound
	case apperror.CodeInvalidInput:
		status = http.StatusBadRequest
	case apperror.CodeConflict:
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("request failed")
	}
	h.respond(w, status, map[string]string{"error": err.Error()})
}
