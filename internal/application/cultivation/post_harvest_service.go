package cultivation

import (
	"context"

	"github.com/cultivo/backend/internal/domain/cultivation"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// activeBatch loads a batch that still accepts records
func activeBatch(ctx context.Context, repo cultivation.BatchRepository, id uuid.UUID) (*cultivation.Batch, error) {
	batch, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch.Status == cultivation.BatchStatusArchived {
		return nil, shared.NewInvalidStateError("Cannot record against an archived batch")
	}
	return batch, nil
}

// PackagingService records packaging runs
type PackagingService struct {
	repo      cultivation.PackagingRecordRepository
	batchRepo cultivation.BatchRepository
}

// NewPackagingService creates a new PackagingService
func NewPackagingService(repo cultivation.PackagingRecordRepository, batchRepo cultivation.BatchRepository) *PackagingService {
	return &PackagingService{repo: repo, batchRepo: batchRepo}
}

// List returns a page of packaging runs
func (s *PackagingService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[cultivation.PackagingRecord], error) {
	return shared.ListPage[cultivation.PackagingRecord](ctx, s.repo, filter)
}

// GetByID returns a packaging run
func (s *PackagingService) GetByID(ctx context.Context, id uuid.UUID) (*cultivation.PackagingRecord, error) {
	return s.repo.FindByID(ctx, id)
}

// Create starts a packaging run for an active batch
func (s *PackagingService) Create(ctx context.Context, actorID uuid.UUID, req CreatePackagingRequest) (*cultivation.PackagingRecord, error) {
	batch, err := activeBatch(ctx, s.batchRepo, req.BatchID)
	if err != nil {
		return nil, err
	}
	in := UpdatePackagingRequest{
		LotID:        req.LotID,
		PackageType:  &req.PackageType,
		PackageCount: req.PackageCount,
		UnitWeight:   req.UnitWeight,
		Unit:         req.Unit,
		LabelCode:    req.LabelCode,
		PackagedAt:   req.PackagedAt,
		Notes:        req.Notes,
	}.input()
	p, err := cultivation.NewPackagingRecord(batch.ID, in, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies a partial update to an open packaging run
func (s *PackagingService) Update(ctx context.Context, id uuid.UUID, req UpdatePackagingRequest) (*cultivation.PackagingRecord, error) {
	return s.apply(ctx, id, func(p *cultivation.PackagingRecord) error { return p.Apply(req.input()) })
}

// Complete closes a packaging run
func (s *PackagingService) Complete(ctx context.Context, id uuid.UUID) (*cultivation.PackagingRecord, error) {
	return s.apply(ctx, id, func(p *cultivation.PackagingRecord) error { return p.Complete() })
}

func (s *PackagingService) apply(ctx context.Context, id uuid.UUID, fn func(*cultivation.PackagingRecord) error) (*cultivation.PackagingRecord, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// FinishedGoodService manages finished goods through quarantine and release
type FinishedGoodService struct {
	repo      cultivation.FinishedGoodRepository
	batchRepo cultivation.BatchRepository
	events    shared.EventPublisher
}

// NewFinishedGoodService creates a new FinishedGoodService
func NewFinishedGoodService(repo cultivation.FinishedGoodRepository, batchRepo cultivation.BatchRepository) *FinishedGoodService {
	return &FinishedGoodService{repo: repo, batchRepo: batchRepo}
}

// SetEventPublisher sets the publisher for release events
func (s *FinishedGoodService) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// List returns a page of finished goods
func (s *FinishedGoodService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[cultivation.FinishedGood], error) {
	return shared.ListPage[cultivation.FinishedGood](ctx, s.repo, filter)
}

// GetByID returns a finished good
func (s *FinishedGoodService) GetByID(ctx context.Context, id uuid.UUID) (*cultivation.FinishedGood, error) {
	return s.repo.FindByID(ctx, id)
}

// Create registers finished product of an active batch in quarantine
func (s *FinishedGoodService) Create(ctx context.Context, actorID uuid.UUID, req CreateFinishedGoodRequest) (*cultivation.FinishedGood, error) {
	batch, err := activeBatch(ctx, s.batchRepo, req.BatchID)
	if err != nil {
		return nil, err
	}
	g, err := cultivation.NewFinishedGood(batch.ID, req.LotID, req.ProductName, req.ProductType, req.Quantity, req.Unit, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Update edits a quarantined finished good
func (s *FinishedGoodService) Update(ctx context.Context, id uuid.UUID, req UpdateFinishedGoodRequest) (*cultivation.FinishedGood, error) {
	return s.apply(ctx, id, func(g *cultivation.FinishedGood) error {
		return g.Update(req.ProductName, req.ProductType, req.Quantity)
	})
}

// ChangeStatus releases, rejects or recalls a finished good
func (s *FinishedGoodService) ChangeStatus(ctx context.Context, actorID, id uuid.UUID, req FinishedGoodStatusRequest) (*cultivation.FinishedGood, error) {
	return s.apply(ctx, id, func(g *cultivation.FinishedGood) error {
		return g.ChangeStatus(cultivation.FinishedGoodStatus(req.Status), req.Reason, actorID)
	})
}

func (s *FinishedGoodService) apply(ctx context.Context, id uuid.UUID, fn func(*cultivation.FinishedGood) error) (*cultivation.FinishedGood, error) {
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(g); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, g); err != nil {
		return nil, err
	}
	if err := shared.PublishPending(ctx, s.events, &g.EventSource); err != nil {
		return nil, err
	}
	return g, nil
}

// WasteService records waste disposal
type WasteService struct {
	repo      cultivation.WasteRecordRepository
	batchRepo cultivation.BatchRepository
}

// NewWasteService creates a new WasteService
func NewWasteService(repo cultivation.WasteRecordRepository, batchRepo cultivation.BatchRepository) *WasteService {
	return &WasteService{repo: repo, batchRepo: batchRepo}
}

// List returns a page of waste records
func (s *WasteService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[cultivation.WasteRecord], error) {
	return shared.ListPage[cultivation.WasteRecord](ctx, s.repo, filter)
}

// GetByID returns a waste record
func (s *WasteService) GetByID(ctx context.Context, id uuid.UUID) (*cultivation.WasteRecord, error) {
	return s.repo.FindByID(ctx, id)
}

// Create records a disposal, optionally against a batch. Archived batches are accepted.
func (s *WasteService) Create(ctx context.Context, actorID uuid.UUID, req CreateWasteRequest) (*cultivation.WasteRecord, error) {
	if req.BatchID != nil {
		if _, err := s.batchRepo.FindByID(ctx, *req.BatchID); err != nil {
			return nil, err
		}
	}
	wasteType := cultivation.WasteType(req.WasteType)
	method := cultivation.DisposalMethod(req.DisposalMethod)
	w, err := cultivation.NewWasteRecord(cultivation.WasteInput{
		BatchID:        req.BatchID,
		WasteType:      &wasteType,
		Quantity:       &req.Quantity,
		Unit:           req.Unit,
		DisposalMethod: &method,
		Reason:         req.Reason,
		DisposedAt:     req.DisposedAt,
		WitnessedBy:    req.WitnessedBy,
	}, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Update applies a partial update to a waste record
func (s *WasteService) Update(ctx context.Context, id uuid.UUID, req UpdateWasteRequest) (*cultivation.WasteRecord, error) {
	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := w.Apply(req.input()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// StageReviewService handles supervisor sign-off on batch stages
type StageReviewService struct {
	repo      cultivation.StageReviewRepository
	batchRepo cultivation.BatchRepository
	events    shared.EventPublisher
}

// NewStageReviewService creates a new StageReviewService
func NewStageReviewService(repo cultivation.StageReviewRepository, batchRepo cultivation.BatchRepository) *StageReviewService {
	return &StageReviewService{repo: repo, batchRepo: batchRepo}
}

// SetEventPublisher sets the publisher for review decisions
func (s *StageReviewService) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// List returns a page of stage reviews
func (s *StageReviewService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[cultivation.StageReview], error) {
	return shared.ListPage[cultivation.StageReview](ctx, s.repo, filter)
}

// GetByID returns a stage review
func (s *StageReviewService) GetByID(ctx context.Context, id uuid.UUID) (*cultivation.StageReview, error) {
	return s.repo.FindByID(ctx, id)
}

// Create opens a review for a stage of an active batch
func (s *StageReviewService) Create(ctx context.Context, actorID uuid.UUID, req CreateStageReviewRequest) (*cultivation.StageReview, error) {
	batch, err := activeBatch(ctx, s.batchRepo, req.BatchID)
	if err != nil {
		return nil, err
	}
	r, err := cultivation.NewStageReview(batch.ID, cultivation.GrowthStage(req.Stage), req.Comments, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Update edits the comments of a pending review
func (s *StageReviewService) Update(ctx context.Context, id uuid.UUID, req UpdateStageReviewRequest) (*cultivation.StageReview, error) {
	return s.apply(ctx, id, func(r *cultivation.StageReview) error { return r.UpdateComments(req.Comments) })
}

// Decide approves or rejects a pending review
func (s *StageReviewService) Decide(ctx context.Context, actorID, id uuid.UUID, req DecideStageReviewRequest) (*cultivation.StageReview, error) {
	return s.apply(ctx, id, func(r *cultivation.StageReview) error {
		return r.Decide(cultivation.StageReviewStatus(req.Decision), actorID, req.Comments)
	})
}

func (s *StageReviewService) apply(ctx context.Context, id uuid.UUID, fn func(*cultivation.StageReview) error) (*cultivation.StageReview, error) {
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
