package qms

import (
	"context"

	"github.com/cultivo/backend/internal/domain/cultivation"
	"github.com/cultivo/backend/internal/domain/qms"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DeviationService handles deviation reporting and investigation
type DeviationService struct {
	repo      qms.DeviationRepository
	batchRepo cultivation.BatchRepository
	events    shared.EventPublisher
}

// NewDeviationService creates a new DeviationService
func NewDeviationService(repo qms.DeviationRepository, batchRepo cultivation.BatchRepository) *DeviationService {
	return &DeviationService{repo: repo, batchRepo: batchRepo}
}

// SetEventPublisher sets the publisher for deviation events
func (s *DeviationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// List returns a page of deviations
func (s *DeviationService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[qms.Deviation], error) {
	return shared.ListPage[qms.Deviation](ctx, s.repo, filter)
}

// GetByID returns a deviation
func (s *DeviationService) GetByID(ctx context.Context, id uuid.UUID) (*qms.Deviation, error) {
	return s.repo.FindByID(ctx, id)
}

// Create reports a deviation, optionally against a batch
func (s *DeviationService) Create(ctx context.Context, actorID uuid.UUID, req CreateDeviationRequest) (*qms.Deviation, error) {
	if req.BatchID != nil {
		exists, err := s.batchRepo.Exists(ctx, *req.BatchID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, shared.NewNotFoundError("Batch")
		}
	}
	d, err := qms.NewDeviation(req.Title, req.Description, qms.Severity(req.Severity), req.BatchID, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	if err := shared.PublishPending(ctx, s.events, &d.EventSource); err != nil {
		return nil, err
	}
	return d, nil
}

// Update applies a partial update to a deviation
func (s *DeviationService) Update(ctx context.Context, id uuid.UUID, req UpdateDeviationRequest) (*qms.Deviation, error) {
	return s.apply(ctx, id, func(d *qms.Deviation) error {
		var severity *qms.Severity
		if req.Severity != nil {
			v := qms.Severity(*req.Severity)
			severity = &v
		}
		return d.Update(req.Title, req.Description, severity)
	})
}

// StartInvestigation moves an open deviation under investigation
func (s *DeviationService) StartInvestigation(ctx context.Context, id uuid.UUID) (*qms.Deviation, error) {
	return s.apply(ctx, id, func(d *qms.Deviation) error { return d.StartInvestigation() })
}

// Resolve records the root cause and resolution
func (s *DeviationService) Resolve(ctx context.Context, actorID, id uuid.UUID, req ResolveDeviationRequest) (*qms.Deviation, error) {
	return s.apply(ctx, id, func(d *qms.Deviation) error { return d.Resolve(actorID, req.RootCause, req.Resolution) })
}

// Close closes a resolved deviation
func (s *DeviationService) Close(ctx context.Context, actorID, id uuid.UUID) (*qms.Deviation, error) {
	return s.apply(ctx, id, func(d *qms.Deviation) error { return d.Close(actorID) })
}

func (s *DeviationService) apply(ctx context.Context, id uuid.UUID, fn func(*qms.Deviation) error) (*qms.Deviation, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(d); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, d); err != nil {
		return nil, err
	}
	if err := shared.PublishPending(ctx, s.events, &d.EventSource); err != nil {
		return nil, err
	}
	return d, nil
}
