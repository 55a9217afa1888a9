package cultivation

import (
	"context"
	"time"

	"github.com/cultivo/backend/internal/domain/cultivation"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BatchService handles batch lifecycle operations
type BatchService struct {
	batchRepo  cultivation.BatchRepository
	stageRepo  cultivation.BatchStageRepository
	strainRepo cultivation.StrainRepository
	cycleRepo  cultivation.GrowthCycleRepository
	tx         shared.Transactor
	events     shared.EventPublisher
}

// NewBatchService creates a new BatchService
func NewBatchService(
	batchRepo cultivation.BatchRepository,
	stageRepo cultivation.BatchStageRepository,
	strainRepo cultivation.StrainRepository,
	cycleRepo cultivation.GrowthCycleRepository,
	tx shared.Transactor,
) *BatchService {
	return &BatchService{
		batchRepo:  batchRepo,
		stageRepo:  stageRepo,
		strainRepo: strainRepo,
		cycleRepo:  cycleRepo,
		tx:         tx,
	}
}

// SetEventPublisher sets the publisher for batch events
func (s *BatchService) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// List returns a page of batches
func (s *BatchService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[BatchResponse], error) {
	page, err := shared.ListPage[cultivation.Batch](ctx, s.batchRepo, filter)
	if err != nil {
		return shared.PageResult[BatchResponse]{}, err
	}
	return shared.MapPage(page, func(b cultivation.Batch) BatchResponse { return ToBatchResponse(&b) }), nil
}

// GetByID returns a batch with its strain name
func (s *BatchService) GetByID(ctx context.Context, id uuid.UUID) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToBatchResponse(batch)
	if strain, err := s.strainRepo.FindByID(ctx, batch.StrainID); err == nil {
		resp.StrainName = strain.Name
	}
	return &resp, nil
}

// Create starts a batch in the cloning stage and opens its first stage record
func (s *BatchService) Create(ctx context.Context, actorID uuid.UUID, req CreateBatchRequest) (*BatchResponse, error) {
	strain, err := s.strainRepo.FindByID(ctx, req.StrainID)
	if err != nil {
		return nil, err
	}
	if _, err := s.cycleRepo.FindByID(ctx, req.GrowthCycleID); err != nil {
		return nil, err
	}

	batch, err := cultivation.NewBatch(req.BatchNumber, req.Name, req.StrainID, req.GrowthCycleID, req.Room, req.PlantCount, req.StartDate, actorID)
	if err != nil {
		return nil, err
	}
	first, err := cultivation.NewBatchStage(batch.ID, batch.CurrentStage, "", actorID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.batchRepo.Create(ctx, batch); err != nil {
			return err
		}
		return s.stageRepo.Create(ctx, first)
	})
	if err != nil {
		return nil, err
	}

	resp := ToBatchResponse(batch)
	resp.StrainName = strain.Name
	return &resp, nil
}

// Update applies a partial update to a batch
func (s *BatchService) Update(ctx context.Context, id uuid.UUID, req UpdateBatchRequest) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := batch.Update(req.Name, req.Room, req.PlantCount, req.Progress); err != nil {
		return nil, err
	}
	if err := s.batchRepo.Save(ctx, batch); err != nil {
		return nil, err
	}
	resp := ToBatchResponse(batch)
	return &resp, nil
}

// AdvanceStage moves the batch to its next growth stage, closing the open
// stage record and opening a new one in the same transaction
func (s *BatchService) AdvanceStage(ctx context.Context, actorID, id uuid.UUID, req AdvanceStageRequest) (*AdvanceStageResponse, error) {
	var (
		batch *cultivation.Batch
		next  *cultivation.BatchStage
		from  cultivation.GrowthStage
		to    cultivation.GrowthStage
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		batch, err = s.batchRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		from, to, err = batch.AdvanceStage(actorID)
		if err != nil {
			return err
		}
		if err := s.batchRepo.Save(ctx, batch); err != nil {
			return err
		}

		open, err := s.stageRepo.FindOpenByBatch(ctx, id)
		switch {
		case err == nil:
			open.Complete(time.Now())
			if err := s.stageRepo.Save(ctx, open); err != nil {
				return err
			}
		case !shared.IsNotFound(err):
			return err
		}

		next, err = cultivation.NewBatchStage(id, to, req.Notes, actorID)
		if err != nil {
			return err
		}
		return s.stageRepo.Create(ctx, next)
	})
	if err != nil {
		return nil, err
	}

	if err := shared.PublishPending(ctx, s.events, &batch.EventSource); err != nil {
		return nil, err
	}
	return &AdvanceStageResponse{
		Batch:     ToBatchResponse(batch),
		FromStage: string(from),
		ToStage:   string(to),
		Stage:     *next,
	}, nil
}

// ChangeStatus moves a batch along its status graph
func (s *BatchService) ChangeStatus(ctx context.Context, actorID, id uuid.UUID, req ChangeBatchStatusRequest) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := batch.ChangeStatus(cultivation.BatchStatus(req.Status), actorID); err != nil {
		return nil, err
	}
	if err := s.batchRepo.Save(ctx, batch); err != nil {
		return nil, err
	}
	if err := shared.PublishPending(ctx, s.events, &batch.EventSource); err != nil {
		return nil, err
	}
	resp := ToBatchResponse(batch)
	return &resp, nil
}

// ListStages returns the stage history of a batch, oldest first
func (s *BatchService) ListStages(ctx context.Context, id uuid.UUID) ([]cultivation.BatchStage, error) {
	if _, err := s.batchRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.stageRepo.FindByBatch(ctx, id)
}
