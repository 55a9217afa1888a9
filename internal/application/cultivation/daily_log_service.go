package cultivation

import (
	"context"
	"time"

	"github.com/cultivo/backend/internal/domain/cultivation"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DailyLogService handles daily observation sheets
type DailyLogService struct {
	repo      cultivation.DailyLogRepository
	batchRepo cultivation.BatchRepository
}

// NewDailyLogService creates a new DailyLogService
func NewDailyLogService(repo cultivation.DailyLogRepository, batchRepo cultivation.BatchRepository) *DailyLogService {
	return &DailyLogService{repo: repo, batchRepo: batchRepo}
}

// List returns a page of daily logs; filter by batch_id to scope to one batch
func (s *DailyLogService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[cultivation.DailyLog], error) {
	return shared.ListPage[cultivation.DailyLog](ctx, s.repo, filter)
}

// GetByID returns a daily log
func (s *DailyLogService) GetByID(ctx context.Context, id uuid.UUID) (*cultivation.DailyLog, error) {
	return s.repo.FindByID(ctx, id)
}

// Create records a daily log for an active batch
func (s *DailyLogService) Create(ctx context.Context, actorID uuid.UUID, req CreateDailyLogRequest) (*cultivation.DailyLog, error) {
	batch, err := s.batchRepo.FindByID(ctx, req.BatchID)
	if err != nil {
		return nil, err
	}
	if batch.Status == cultivation.BatchStatusArchived {
		return nil, shared.NewInvalidStateError("Cannot log against an archived batch")
	}

	readings := UpdateDailyLogRequest{
		Temperature:  req.Temperature,
		Humidity:     req.Humidity,
		PH:           req.PH,
		EC:           req.EC,
		WateringML:   req.WateringML,
		Observations: req.Observations,
	}.readings()

	var logDate time.Time
	if req.LogDate != nil {
		logDate = *req.LogDate
	}
	entry, err := cultivation.NewDailyLog(batch.ID, logDate, readings, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Update applies the readings present in the request
func (s *DailyLogService) Update(ctx context.Context, id uuid.UUID, req UpdateDailyLogRequest) (*cultivation.DailyLog, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := entry.Apply(req.readings()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
