package qms

import (
	"context"

	"github.com/cultivo/backend/internal/domain/qms"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EnvironmentService records environmental readings and flags alerts
type EnvironmentService struct {
	repo       qms.EnvironmentRepository
	thresholds qms.AlertThresholds
}

// NewEnvironmentService creates a new EnvironmentService
func NewEnvironmentService(repo qms.EnvironmentRepository, thresholds qms.AlertThresholds) *EnvironmentService {
	return &EnvironmentService{repo: repo, thresholds: thresholds}
}

// List returns a page of readings, newest first
func (s *EnvironmentService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[qms.EnvironmentalReading], error) {
	return shared.ListPage[qms.EnvironmentalReading](ctx, s.repo, filter)
}

// GetByID returns a reading
func (s *EnvironmentService) GetByID(ctx context.Context, id uuid.UUID) (*qms.EnvironmentalReading, error) {
	return s.repo.FindByID(ctx, id)
}

// Create records a reading, flagging it when it leaves the configured ranges
func (s *EnvironmentService) Create(ctx context.Context, actorID uuid.UUID, req CreateReadingRequest) (*qms.EnvironmentalReading, error) {
	reading, err := qms.NewEnvironmentalReading(
		req.Room,
		req.BatchID,
		nullable(req.Temperature),
		nullable(req.Humidity),
		nullable(req.CO2PPM),
		nullable(req.VPD),
		req.RecordedAt,
		actorID,
		s.thresholds,
	)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, reading); err != nil {
		return nil, err
	}
	return reading, nil
}

// Summary returns the latest reading and alert count per room
func (s *EnvironmentService) Summary(ctx context.Context) ([]qms.RoomSummary, error) {
	return s.repo.SummarizeRooms(ctx)
}
