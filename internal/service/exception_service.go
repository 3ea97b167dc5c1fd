package service

import (
	"context"
	"time"

	"github.com/hpcl-dt/be-procurement/internal/logger"
	"github.com/hpcl-dt/be-procurement/internal/model"
	"github.com/hpcl-dt/be-procurement/internal/notify"
	"github.com/hpcl-dt/be-procurement/internal/sequence"
)

// ExceptionService manages procurement exception records.
type ExceptionService struct {
	exceptions ExceptionStore
	audit      *AuditService
	events     *notify.Publisher
	ids        sequence.Generator
	log        *logger.Logger
	now        func() time.Time
}

// NewExceptionService creates a new ExceptionService.
func NewExceptionService(exceptions ExceptionStore, audit *AuditService, events *notify.Publisher, ids sequence.Generator, log *logger.Logger) *ExceptionService {
	return &ExceptionService{
		exceptions: exceptions,
		audit:      audit,
		events:     events,
		ids:        ids,
		log:        log,
		now:        time.Now,
	}
}

// GetAllExceptions returns every exception record.
func (s *ExceptionService) GetAllExceptions(ctx context.Context) ([]model.ExceptionRecord, error) {
	return s.exceptions.FindAll(ctx)
}

// GetExceptionsByPrID returns the exceptions raised against one request.
func (s *ExceptionService) GetExceptionsByPrID(ctx context.Context, prID string) ([]model.ExceptionRecord, error) {
	return s.exceptions.FindByPrID(ctx, prID)
}

// GetOpenExceptions returns every exception still OPEN.
func (s *ExceptionService) GetOpenExceptions(ctx context.Context) ([]model.ExceptionRecord, error) {
	return s.exceptions.FindByStatus(ctx, model.ExceptionStatusOpen)
}

// GetExceptionsBySeverity returns exceptions at one severity level.
func (s *ExceptionService) GetExceptionsBySeverity(ctx context.Context, severity string) ([]model.ExceptionRecord, error) {
	return s.exceptions.FindBySeverity(ctx, severity)
}

// CreateException stores a new record, generating its business id and
// defaulting its status to OPEN.
func (s *ExceptionService) CreateException(ctx context.Context, rec *model.ExceptionRecord) (*model.ExceptionRecord, error) {
	if rec.ExceptionID == "" {
		rec.ExceptionID = s.ids.NextException()
	}
	if rec.Status == "" {
		rec.Status = model.ExceptionStatusOpen
	}
	rec.CreatedAt = s.now()
	if err := s.exceptions.Save(ctx, rec); err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, AuditEntityException, rec.ExceptionID, AuditActionCreate, "", "", rec.Severity, "")
	s.events.Publish(ctx, notify.Event{
		EventType:    "exception_raised",
		ResourceType: "exception",
		ResourceID:   rec.ExceptionID,
		Payload:      map[string]any{"pr_id": rec.PrID, "severity": rec.Severity},
	})
	return rec, nil
}

// ResolveException marks an exception RESOLVED with a resolution note.
func (s *ExceptionService) ResolveException(ctx context.Context, exceptionID, resolution, resolvedBy string) (*model.ExceptionRecord, error) {
	rec, err := s.exceptions.FindByExceptionID(ctx, exceptionID)
	if err != nil {
		return nil, err
	}

	resolvedAt := s.now()
	oldStatus := rec.Status
	rec.Status = model.ExceptionStatusResolved
	rec.Resolution = resolution
	rec.ResolvedBy = resolvedBy
	rec.ResolvedAt = &resolvedAt
	if err := s.exceptions.Save(ctx, rec); err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, AuditEntityException, rec.ExceptionID, AuditActionResolve, resolvedBy, oldStatus, rec.Status, "")
	return rec, nil
}

// EscalateException bumps an exception one severity level up and marks it
// ESCALATED. CRITICAL is the ceiling.
func (s *ExceptionService) EscalateException(ctx context.Context, exceptionID string) (*model.ExceptionRecord, error) {
	rec, err := s.exceptions.FindByExceptionID(ctx, exceptionID)
	if err != nil {
		return nil, err
	}

	oldSeverity := rec.Severity
	rec.Status = model.ExceptionStatusEscalated
	rec.Severity = model.EscalateSeverity(rec.Severity)
	if err := s.exceptions.Save(ctx, rec); err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, AuditEntityException, rec.ExceptionID, AuditActionEscalate, "", oldSeverity, rec.Severity, "")
	s.events.Publish(ctx, notify.Event{
		EventType:    "exception_escalated",
		ResourceType: "exception",
		ResourceID:   rec.ExceptionID,
		Payload:      map[string]any{"severity": rec.Severity},
	})

	s.log.Info().
		Str("exception_id", rec.ExceptionID).
		Str("severity", rec.Severity).
		Msg("Exception escalated")
	return rec, nil
}
