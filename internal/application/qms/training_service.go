package qms

import (
	"context"

	"github.com/cultivo/backend/internal/domain/identity"
	"github.com/cultivo/backend/internal/domain/qms"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TrainingService assigns and tracks training
type TrainingService struct {
	repo        qms.TrainingRepository
	sopRepo     qms.SopRepository
	profileRepo identity.ProfileRepository
	events      shared.EventPublisher
}

// NewTrainingService creates a new TrainingService
func NewTrainingService(repo qms.TrainingRepository, sopRepo qms.SopRepository, profileRepo identity.ProfileRepository) *TrainingService {
	return &TrainingService{repo: repo, sopRepo: sopRepo, profileRepo: profileRepo}
}

// SetEventPublisher sets the publisher for training events
func (s *TrainingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// List returns a page of training records
func (s *TrainingService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[qms.TrainingRecord], error) {
	return shared.ListPage[qms.TrainingRecord](ctx, s.repo, filter)
}

// GetByID returns a training record
func (s *TrainingService) GetByID(ctx context.Context, id uuid.UUID) (*qms.TrainingRecord, error) {
	return s.repo.FindByID(ctx, id)
}

// Create assigns a training to an existing user, optionally on an SOP
func (s *TrainingService) Create(ctx context.Context, actorID uuid.UUID, req CreateTrainingRequest) (*qms.TrainingRecord, error) {
	if _, err := s.profileRepo.FindByID(ctx, req.UserID); err != nil {
		return nil, err
	}
	if req.SopID != nil {
		if _, err := s.sopRepo.FindByID(ctx, *req.SopID); err != nil {
			return nil, err
		}
	}
	t, err := qms.NewTrainingRecord(req.UserID, req.SopID, req.Title, req.DueDate, req.Notes, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Update applies a partial update to a training record
func (s *TrainingService) Update(ctx context.Context, id uuid.UUID, req UpdateTrainingRequest) (*qms.TrainingRecord, error) {
	return s.apply(ctx, id, func(t *qms.TrainingRecord) error { return t.Update(req.Title, req.Notes, req.DueDate) })
}

// Start marks a training in progress
func (s *TrainingService) Start(ctx context.Context, id uuid.UUID) (*qms.TrainingRecord, error) {
	return s.apply(ctx, id, func(t *qms.TrainingRecord) error { return t.Start() })
}

// MarkCompleted completes a training with an optional score
func (s *TrainingService) MarkCompleted(ctx context.Context, actorID, id uuid.UUID, req CompleteTrainingRequest) (*qms.TrainingRecord, error) {
	return s.apply(ctx, id, func(t *qms.TrainingRecord) error { return t.Complete(actorID, req.Score) })
}

// Expire lapses a training that was not completed
func (s *TrainingService) Expire(ctx context.Context, id uuid.UUID) (*qms.TrainingRecord, error) {
	return s.apply(ctx, id, func(t *qms.TrainingRecord) error { return t.Expire() })
}

func (s *TrainingService) apply(ctx context.Context, id uuid.UUID, fn func(*qms.TrainingRecord) error) (*qms.TrainingRecord, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(t); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, err
	}
	if err := shared.PublishPending(ctx, s.events, &t.EventSource); err != nil {
		return nil, err
	}
	return t, nil
}
