package qms

import (
	"context"

	"github.com/cultivo/backend/internal/domain/qms"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CapaService handles corrective and preventive actions
type CapaService struct {
	repo          qms.CapaRepository
	deviationRepo qms.DeviationRepository
	events        shared.EventPublisher
}

// NewCapaService creates a new CapaService
func NewCapaService(repo qms.CapaRepository, deviationRepo qms.DeviationRepository) *CapaService {
	return &CapaService{repo: repo, deviationRepo: deviationRepo}
}

// SetEventPublisher sets the publisher for CAPA events
func (s *CapaService) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// List returns a page of CAPAs
func (s *CapaService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[qms.Capa], error) {
	return shared.ListPage[qms.Capa](ctx, s.repo, filter)
}

// GetByID returns a CAPA
func (s *CapaService) GetByID(ctx context.Context, id uuid.UUID) (*qms.Capa, error) {
	return s.repo.FindByID(ctx, id)
}

// Create raises a CAPA; the deviation must exist when given
func (s *CapaService) Create(ctx context.Context, actorID uuid.UUID, req CreateCapaRequest) (*qms.Capa, error) {
	if req.DeviationID != nil {
		if _, err := s.deviationRepo.FindByID(ctx, *req.DeviationID); err != nil {
			return nil, err
		}
	}
	c, err := qms.NewCapa(req.Title, req.Description, qms.ActionType(req.ActionType), req.DeviationID, req.AssignedTo, req.DueDate, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update applies a partial update to a CAPA
func (s *CapaService) Update(ctx context.Context, id uuid.UUID, req UpdateCapaRequest) (*qms.Capa, error) {
	return s.apply(ctx, id, func(c *qms.Capa) error {
		return c.Update(req.Title, req.Description, req.AssignedTo, req.DueDate)
	})
}

// Start begins work on a CAPA
func (s *CapaService) Start(ctx context.Context, id uuid.UUID) (*qms.Capa, error) {
	return s.apply(ctx, id, func(c *qms.Capa) error { return c.Start() })
}

// Complete marks the action done
func (s *CapaService) Complete(ctx context.Context, actorID, id uuid.UUID, req CapaNotesRequest) (*qms.Capa, error) {
	return s.apply(ctx, id, func(c *qms.Capa) error { return c.Complete(actorID, req.Notes) })
}

// Verify confirms the effectiveness of a completed action
func (s *CapaService) Verify(ctx context.Context, actorID, id uuid.UUID, req CapaNotesRequest) (*qms.Capa, error) {
	return s.apply(ctx, id, func(c *qms.Capa) error { return c.Verify(actorID, req.Notes) })
}

// Cancel abandons a CAPA
func (s *CapaService) Cancel(ctx context.Context, id uuid.UUID) (*qms.Capa, error) {
	return s.apply(ctx, id, func(c *qms.Capa) error { return c.Cancel() })
}

func (s *CapaService) apply(ctx context.Context, id uuid.UUID, fn func(*qms.Capa) error) (*qms.Capa, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	if err := shared.PublishPending(ctx, s.events, &c.EventSource); err != nil {
		return nil, err
	}
	return c, nil
}
