package inventory

import (
	"context"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LotRepository defines the persistence operations for lots
type LotRepository interface {
	shared.Repository[Lot]
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Lot, error)
	SummarizeByBatch(ctx context.Context) ([]BatchLotSummary, error)
}

// StockLevelRepository defines the persistence operations for stock levels
type StockLevelRepository interface {
	FindByLot(ctx context.Context, lotID uuid.UUID) (*StockLevel, error)
	// FindByLotForUpdate reads the level and locks the row for the current transaction
	FindByLotForUpdate(ctx context.Context, lotID uuid.UUID) (*StockLevel, error)
	Create(ctx context.Context, level *StockLevel) error
	Save(ctx context.Context, level *StockLevel) error
}

// StockMovementRepository defines the persistence operations for the stock ledger
type StockMovementRepository interface {
	Create(ctx context.Context, movement *StockMovement) error
	FindByLot(ctx context.Context, lotID uuid.UUID, filter shared.Filter) ([]StockMovement, int64, error)
}
