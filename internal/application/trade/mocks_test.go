package trade

import (
	"context"

	"github.com/cultivo/backend/internal/domain/inventory"
	"github.com/cultivo/backend/internal/domain/partner"
	"github.com/cultivo/backend/internal/domain/trade"
	"github.com/cultivo/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockPurchaseOrderRepository struct {
	testutil.MockRepository[trade.PurchaseOrder]
}

type MockSupplierRepository struct {
	testutil.MockRepository[partner.Supplier]
}

type MockClientRepository struct {
	testutil.MockRepository[partner.Client]
}

func (m *MockClientRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type MockDispatchRepository struct {
	testutil.MockRepository[trade.Dispatch]
}

func (m *MockDispatchRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.Dispatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Dispatch), args.Error(1)
}

type MockLotRepository struct {
	testutil.MockRepository[inventory.Lot]
}

func (m *MockLotRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Lot, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Lot), args.Error(1)
}

func (m *MockLotRepository) SummarizeByBatch(ctx context.Context) ([]inventory.BatchLotSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.BatchLotSummary), args.Error(1)
}

type MockStockDispatcher struct {
	mock.Mock
}

func (m *MockStockDispatcher) DispatchStock(ctx context.Context, actorID, lotID uuid.UUID, quantity decimal.Decimal, dispatchID uuid.UUID, note string) (*inventory.StockMovement, error) {
	args := m.Called(ctx, actorID, lotID, quantity, dispatchID, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockMovement), args.Error(1)
}
