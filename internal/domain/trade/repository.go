package trade

import (
	"context"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PurchaseOrderRepository defines the persistence operations for purchase orders.
// Save replaces the item set.
type PurchaseOrderRepository interface {
	shared.Repository[PurchaseOrder]
}

// DispatchRepository defines the persistence operations for dispatches.
// Save replaces the item set.
type DispatchRepository interface {
	shared.Repository[Dispatch]
	// FindByIDForUpdate loads the dispatch and locks its row for the current transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Dispatch, error)
}
