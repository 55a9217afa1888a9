package cultivation

import (
	"context"

	"github.com/cultivo/backend/internal/domain/cultivation"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// GrowthCycleService handles growth cycle planning
type GrowthCycleService struct {
	repo cultivation.GrowthCycleRepository
}

// NewGrowthCycleService creates a new GrowthCycleService
func NewGrowthCycleService(repo cultivation.GrowthCycleRepository) *GrowthCycleService {
	return &GrowthCycleService{repo: repo}
}

// List returns a page of growth cycles
func (s *GrowthCycleService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[cultivation.GrowthCycle], error) {
	return shared.ListPage[cultivation.GrowthCycle](ctx, s.repo, filter)
}

// GetByID returns a growth cycle
func (s *GrowthCycleService) GetByID(ctx context.Context, id uuid.UUID) (*cultivation.GrowthCycle, error) {
	return s.repo.FindByID(ctx, id)
}

// Create plans a new growth cycle
func (s *GrowthCycleService) Create(ctx context.Context, actorID uuid.UUID, req CreateGrowthCycleRequest) (*cultivation.GrowthCycle, error) {
	gc, err := cultivation.NewGrowthCycle(req.Name, req.Room, req.StartDate, req.ExpectedEndDate, req.Notes, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, gc); err != nil {
		return nil, err
	}
	return gc, nil
}

// Update applies a partial update to a growth cycle
func (s *GrowthCycleService) Update(ctx context.Context, id uuid.UUID, req UpdateGrowthCycleRequest) (*cultivation.GrowthCycle, error) {
	gc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := gc.Update(req.Name, req.Room, req.ExpectedEndDate, req.Notes); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, gc); err != nil {
		return nil, err
	}
	return gc, nil
}

// Start activates a planned growth cycle
func (s *GrowthCycleService) Start(ctx context.Context, id uuid.UUID) (*cultivation.GrowthCycle, error) {
	return s.transition(ctx, id, cultivation.GrowthCycleStatusActive)
}

// Complete closes an active growth cycle
func (s *GrowthCycleService) Complete(ctx context.Context, id uuid.UUID) (*cultivation.GrowthCycle, error) {
	return s.transition(ctx, id, cultivation.GrowthCycleStatusCompleted)
}

// Cancel abandons a growth cycle that has not completed
func (s *GrowthCycleService) Cancel(ctx context.Context, id uuid.UUID) (*cultivation.GrowthCycle, error) {
	return s.transition(ctx, id, cultivation.GrowthCycleStatusCancelled)
}

func (s *GrowthCycleService) transition(ctx context.Context, id uuid.UUID, target cultivation.GrowthCycleStatus) (*cultivation.GrowthCycle, error) {
	gc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := gc.TransitionTo(target); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, gc); err != nil {
		return nil, err
	}
	return gc, nil
}
