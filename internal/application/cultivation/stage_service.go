package cultivation

import (
	"context"

	"github.com/cultivo/backend/internal/domain/cultivation"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StageService handles the stage definitions
type StageService struct {
	repo cultivation.StageRepository
}

// NewStageService creates a new StageService
func NewStageService(repo cultivation.StageRepository) *StageService {
	return &StageService{repo: repo}
}

// List returns a page of stage definitions
func (s *StageService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[cultivation.Stage], error) {
	return shared.ListPage[cultivation.Stage](ctx, s.repo, filter)
}

// GetByID returns a stage definition
func (s *StageService) GetByID(ctx context.Context, id uuid.UUID) (*cultivation.Stage, error) {
	return s.repo.FindByID(ctx, id)
}

// Create defines a stage
func (s *StageService) Create(ctx context.Context, req CreateStageRequest) (*cultivation.Stage, error) {
	stage, err := cultivation.NewStage(req.Name, cultivation.GrowthStage(req.StageType), req.Sequence, req.ExpectedDurationDays, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, stage); err != nil {
		return nil, err
	}
	return stage, nil
}

// Update applies a partial update to a stage definition
func (s *StageService) Update(ctx context.Context, id uuid.UUID, req UpdateStageRequest) (*cultivation.Stage, error) {
	stage, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := stage.Update(req.Name, req.Sequence, req.ExpectedDurationDays, req.Description, req.IsActive); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, stage); err != nil {
		return nil, err
	}
	return stage, nil
}
