package inventory

import (
	"context"

	"github.com/cultivo/backend/internal/domain/cultivation"
	"github.com/cultivo/backend/internal/domain/inventory"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Movement reference types
const (
	ReferenceTypeLot        = "lot"
	ReferenceTypeAdjustment = "adjustment"
	ReferenceTypeDispatch   = "dispatch"
)

// LotService handles inventory lots and their stock
type LotService struct {
	lotRepo      inventory.LotRepository
	levelRepo    inventory.StockLevelRepository
	movementRepo inventory.StockMovementRepository
	batchRepo    cultivation.BatchRepository
	tx           shared.Transactor
}

// NewLotService creates a new LotService
func NewLotService(
	lotRepo inventory.LotRepository,
	levelRepo inventory.StockLevelRepository,
	movementRepo inventory.StockMovementRepository,
	batchRepo cultivation.BatchRepository,
	tx shared.Transactor,
) *LotService {
	return &LotService{
		lotRepo:      lotRepo,
		levelRepo:    levelRepo,
		movementRepo: movementRepo,
		batchRepo:    batchRepo,
		tx:           tx,
	}
}

// List returns a page of lots
func (s *LotService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[inventory.Lot], error) {
	return shared.ListPage[inventory.Lot](ctx, s.lotRepo, filter)
}

// GetByID returns a lot with its stock level
func (s *LotService) GetByID(ctx context.Context, id uuid.UUID) (*LotResponse, error) {
	lot, err := s.lotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	level, err := s.levelRepo.FindByLot(ctx, id)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}
	resp := toLotResponse(lot, level)
	return &resp, nil
}

// Create receives a lot: the lot, its stock level and a receipt movement are
// written in one transaction
func (s *LotService) Create(ctx context.Context, actorID uuid.UUID, req CreateLotRequest) (*LotResponse, error) {
	if req.BatchID != nil {
		exists, err := s.batchRepo.Exists(ctx, *req.BatchID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, shared.NewNotFoundError("Batch")
		}
	}
	lot, err := inventory.NewLot(req.LotNumber, req.BatchID, req.ProductName, req.ProductType, req.Unit, req.Quantity, req.ExpiryDate, req.Location, actorID)
	if err != nil {
		return nil, err
	}
	level := inventory.NewStockLevel(lot.ID, req.Quantity)
	receipt := inventory.NewStockMovement(lot.ID, inventory.MovementTypeReceipt, req.Quantity, req.Quantity, ReferenceTypeLot, &lot.ID, "Initial receipt", actorID)

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.lotRepo.Create(ctx, lot); err != nil {
			return err
		}
		if err := s.levelRepo.Create(ctx, level); err != nil {
			return err
		}
		return s.movementRepo.Create(ctx, receipt)
	})
	if err != nil {
		return nil, err
	}
	resp := toLotResponse(lot, level)
	return &resp, nil
}

// Update applies a partial update to a lot
func (s *LotService) Update(ctx context.Context, id uuid.UUID, req UpdateLotRequest) (*inventory.Lot, error) {
	lot, err := s.lotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lot.Update(req.ProductName, req.ProductType, req.Location, req.ExpiryDate); err != nil {
		return nil, err
	}
	if err := s.lotRepo.Save(ctx, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// AdjustStock changes the available quantity of a lot under a row lock.
// The available quantity never goes negative.
func (s *LotService) AdjustStock(ctx context.Context, actorID, id uuid.UUID, req AdjustStockRequest) (*AdjustStockResponse, error) {
	if req.Delta.IsZero() {
		return nil, shared.NewInvalidInputError("Adjustment cannot be zero")
	}
	var resp AdjustStockResponse
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		lot, err := s.lotRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if lot.Status == inventory.LotStatusDepleted && req.Delta.IsPositive() {
			return shared.NewInvalidStateError("Depleted lots cannot be restocked")
		}
		level, err := s.levelRepo.FindByLotForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := level.Adjust(req.Delta); err != nil {
			return err
		}
		if err := s.levelRepo.Save(ctx, level); err != nil {
			return err
		}
		movement := inventory.NewStockMovement(id, inventory.MovementTypeAdjustment, req.Delta, level.AvailableQuantity, ReferenceTypeAdjustment, nil, req.Reason, actorID)
		if err := s.movementRepo.Create(ctx, movement); err != nil {
			return err
		}
		resp = AdjustStockResponse{Level: *level, Movement: *movement}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChangeStatus moves a lot along its status graph
func (s *LotService) ChangeStatus(ctx context.Context, id uuid.UUID, req ChangeLotStatusRequest) (*inventory.Lot, error) {
	lot, err := s.lotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lot.ChangeStatus(inventory.LotStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.lotRepo.Save(ctx, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// ListMovements returns a page of a lot's stock movements, newest first
func (s *LotService) ListMovements(ctx context.Context, id uuid.UUID, filter shared.Filter) (shared.PageResult[inventory.StockMovement], error) {
	if _, err := s.lotRepo.FindByID(ctx, id); err != nil {
		return shared.PageResult[inventory.StockMovement]{}, err
	}
	filter.Normalize()
	movements, total, err := s.movementRepo.FindByLot(ctx, id, filter)
	if err != nil {
		return shared.PageResult[inventory.StockMovement]{}, err
	}
	return shared.NewPageResult(movements, total, filter.Page, filter.PageSize), nil
}

// SummarizeByBatch groups lots by their source batch
func (s *LotService) SummarizeByBatch(ctx context.Context) ([]inventory.BatchLotSummary, error) {
	return s.lotRepo.SummarizeByBatch(ctx)
}

// DispatchStock takes quantity from a lot inside the caller's transaction and
// records the dispatch movement. The stock row is locked first.
func (s *LotService) DispatchStock(ctx context.Context, actorID, lotID uuid.UUID, quantity decimal.Decimal, dispatchID uuid.UUID, note string) (*inventory.StockMovement, error) {
	level, err := s.levelRepo.FindByLotForUpdate(ctx, lotID)
	if err != nil {
		return nil, err
	}
	taken := level.Dispatch(quantity)
	if err := s.levelRepo.Save(ctx, level); err != nil {
		return nil, err
	}
	movement := inventory.NewStockMovement(lotID, inventory.MovementTypeDispatch, taken.Neg(), level.AvailableQuantity, ReferenceTypeDispatch, &dispatchID, note, actorID)
	if err := s.movementRepo.Create(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}
