package qms

import (
	"context"

	"github.com/cultivo/backend/internal/domain/qms"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// QualityRecordService keeps general quality records such as inspections and lab results
type QualityRecordService struct {
	repo   qms.QualityRecordRepository
	events shared.EventPublisher
}

// NewQualityRecordService creates a new QualityRecordService
func NewQualityRecordService(repo qms.QualityRecordRepository) *QualityRecordService {
	return &QualityRecordService{repo: repo}
}

// SetEventPublisher sets the publisher for quality record events
func (s *QualityRecordService) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// List returns a page of quality records
func (s *QualityRecordService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[qms.QualityRecord], error) {
	return shared.ListPage[qms.QualityRecord](ctx, s.repo, filter)
}

// GetByID returns a quality record
func (s *QualityRecordService) GetByID(ctx context.Context, id uuid.UUID) (*qms.QualityRecord, error) {
	return s.repo.FindByID(ctx, id)
}

// Create opens a pending quality record
func (s *QualityRecordService) Create(ctx context.Context, actorID uuid.UUID, req CreateQualityRecordRequest) (*qms.QualityRecord, error) {
	r, err := qms.NewQualityRecord(qms.QualityRecordType(req.RecordType), req.Title, req.Description, req.BatchID, req.LotID, req.Attachments, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Update edits a pending quality record
func (s *QualityRecordService) Update(ctx context.Context, id uuid.UUID, req UpdateQualityRecordRequest) (*qms.QualityRecord, error) {
	return s.apply(ctx, id, func(r *qms.QualityRecord) error {
		return r.Update(req.Title, req.Description, req.Attachments)
	})
}

// Conclude records a pass or fail result
func (s *QualityRecordService) Conclude(ctx context.Context, actorID, id uuid.UUID, req ConcludeQualityRecordRequest) (*qms.QualityRecord, error) {
	return s.apply(ctx, id, func(r *qms.QualityRecord) error {
		return r.Conclude(qms.QualityResult(req.Result), actorID, req.Note)
	})
}

func (s *QualityRecordService) apply(ctx context.Context, id uuid.UUID, fn func(*qms.QualityRecord) error) (*qms.QualityRecord, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(r); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}
	if err := shared.PublishPending(ctx, s.events, &r.EventSource); err != nil {
		return nil, err
	}
	return r, nil
}
