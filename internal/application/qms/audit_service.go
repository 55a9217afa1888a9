package qms

import (
	"context"

	"github.com/cultivo/backend/internal/domain/qms"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AuditService schedules and records quality audits
type AuditService struct {
	repo   qms.AuditRepository
	events shared.EventPublisher
}

// NewAuditService creates a new AuditService
func NewAuditService(repo qms.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// SetEventPublisher sets the publisher for audit events
func (s *AuditService) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// List returns a page of audits
func (s *AuditService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[qms.Audit], error) {
	return shared.ListPage[qms.Audit](ctx, s.repo, filter)
}

// GetByID returns an audit
func (s *AuditService) GetByID(ctx context.Context, id uuid.UUID) (*qms.Audit, error) {
	return s.repo.FindByID(ctx, id)
}

// Create schedules an audit
func (s *AuditService) Create(ctx context.Context, actorID uuid.UUID, req CreateAuditRequest) (*qms.Audit, error) {
	a, err := qms.NewAudit(req.Title, qms.AuditType(req.AuditType), req.Scope, req.ScheduledDate, req.LeadAuditor, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Update applies a partial update to an audit
func (s *AuditService) Update(ctx context.Context, id uuid.UUID, req UpdateAuditRequest) (*qms.Audit, error) {
	return s.apply(ctx, id, func(a *qms.Audit) error {
		return a.Update(req.Title, req.Scope, req.LeadAuditor, req.ScheduledDate)
	})
}

// Start begins a scheduled audit
func (s *AuditService) Start(ctx context.Context, id uuid.UUID) (*qms.Audit, error) {
	return s.apply(ctx, id, func(a *qms.Audit) error { return a.Start() })
}

// Complete records findings and an optional score
func (s *AuditService) Complete(ctx context.Context, actorID, id uuid.UUID, req CompleteAuditRequest) (*qms.Audit, error) {
	return s.apply(ctx, id, func(a *qms.Audit) error { return a.Complete(actorID, req.Findings, req.Score) })
}

// Cancel cancels an audit that has not completed
func (s *AuditService) Cancel(ctx context.Context, id uuid.UUID) (*qms.Audit, error) {
	return s.apply(ctx, id, func(a *qms.Audit) error { return a.Cancel() })
}

func (s *AuditService) apply(ctx context.Context, id uuid.UUID, fn func(*qms.Audit) error) (*qms.Audit, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(a); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}
	if err := shared.PublishPending(ctx, s.events, &a.EventSource); err != nil {
		return nil, err
	}
	return a, nil
}
