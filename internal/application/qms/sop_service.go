package qms

import (
	"context"
	"strings"

	"github.com/cultivo/backend/internal/domain/qms"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SopService handles the SOP document lifecycle
type SopService struct {
	repo   qms.SopRepository
	events shared.EventPublisher
}

// NewSopService creates a new SopService
func NewSopService(repo qms.SopRepository) *SopService {
	return &SopService{repo: repo}
}

// SetEventPublisher sets the publisher for SOP events
func (s *SopService) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// List returns a page of SOPs
func (s *SopService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[qms.Sop], error) {
	return shared.ListPage[qms.Sop](ctx, s.repo, filter)
}

// GetByID returns an SOP
func (s *SopService) GetByID(ctx context.Context, id uuid.UUID) (*qms.Sop, error) {
	return s.repo.FindByID(ctx, id)
}

// Create drafts an SOP; document numbers are unique
func (s *SopService) Create(ctx context.Context, actorID uuid.UUID, req CreateSopRequest) (*qms.Sop, error) {
	exists, err := s.repo.ExistsByDocumentNumber(ctx, strings.TrimSpace(req.DocumentNumber))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewAlreadyExistsError("SOP with this document number already exists")
	}
	sop, err := qms.NewSop(req.DocumentNumber, req.Title, req.Version, req.Category, req.Content, req.EffectiveDate, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, sop); err != nil {
		return nil, err
	}
	return sop, nil
}

// Update edits a draft SOP
func (s *SopService) Update(ctx context.Context, id uuid.UUID, req UpdateSopRequest) (*qms.Sop, error) {
	return s.apply(ctx, id, func(sop *qms.Sop) error {
		return sop.Update(req.Title, req.Version, req.Category, req.Content, req.EffectiveDate)
	})
}

// SubmitForReview sends a draft to review
func (s *SopService) SubmitForReview(ctx context.Context, id uuid.UUID) (*qms.Sop, error) {
	return s.apply(ctx, id, func(sop *qms.Sop) error { return sop.SubmitForReview() })
}

// ReturnToDraft sends a reviewed SOP back for edits
func (s *SopService) ReturnToDraft(ctx context.Context, id uuid.UUID) (*qms.Sop, error) {
	return s.apply(ctx, id, func(sop *qms.Sop) error { return sop.ReturnToDraft() })
}

// Approve makes a reviewed SOP effective
func (s *SopService) Approve(ctx context.Context, approverID, id uuid.UUID) (*qms.Sop, error) {
	return s.apply(ctx, id, func(sop *qms.Sop) error { return sop.Approve(approverID) })
}

// Obsolete retires an approved SOP
func (s *SopService) Obsolete(ctx context.Context, id uuid.UUID) (*qms.Sop, error) {
	return s.apply(ctx, id, func(sop *qms.Sop) error { return sop.Obsolete() })
}

func (s *SopService) apply(ctx context.Context, id uuid.UUID, fn func(*qms.Sop) error) (*qms.Sop, error) {
	sop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sop); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, sop); err != nil {
		return nil, err
	}
	if err := shared.PublishPending(ctx, s.events, &sop.EventSource); err != nil {
		return nil, err
	}
	return sop, nil
}
