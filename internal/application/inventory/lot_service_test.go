package inventory

import (
	"context"
	"testing"

	"github.com/cultivo/backend/internal/domain/cultivation"
	"github.com/cultivo/backend/internal/domain/inventory"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/cultivo/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

type MockStockLevelRepository struct {
	mock.Mock
}

func (m *MockStockLevelRepository) FindByLot(ctx context.Context, lotID uuid.UUID) (*inventory.StockLevel, error) {
	args := m.Called(ctx, lotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockLevel), args.Error(1)
}

func (m *MockStockLevelRepository) FindByLotForUpdate(ctx context.Context, lotID uuid.UUID) (*inventory.StockLevel, error) {
	args := m.Called(ctx, lotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockLevel), args.Error(1)
}

func (m *MockStockLevelRepository) Create(ctx context.Context, level *inventory.StockLevel) error {
	return m.Called(ctx, level).Error(0)
}

func (m *MockStockLevelRepository) Save(ctx context.Context, level *inventory.StockLevel) error {
	return m.Called(ctx, level).Error(0)
}

type MockStockMovementRepository struct {
	mock.Mock
}

func (m *MockStockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	return m.Called(ctx, movement).Error(0)
}

func (m *MockStockMovementRepository) FindByLot(ctx context.Context, lotID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, int64, error) {
	args := m.Called(ctx, lotID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]inventory.StockMovement), args.Get(1).(int64), args.Error(2)
}

type MockBatchRepository struct {
	testutil.MockRepository[cultivation.Batch]
}

func (m *MockBatchRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]cultivation.Batch, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cultivation.Batch), args.Error(1)
}

type lotFixture struct {
	lots      *MockLotRepository
	levels    *MockStockLevelRepository
	movements *MockStockMovementRepository
	batches   *MockBatchRepository
	tx        *testutil.Transactor
	service   *LotService
}

func newLotFixture() *lotFixture {
	f := &lotFixture{
		lots:      new(MockLotRepository),
		levels:    new(MockStockLevelRepository),
		movements: new(MockStockMovementRepository),
		batches:   new(MockBatchRepository),
		tx:        new(testutil.Transactor),
	}
	f.service = NewLotService(f.lots, f.levels, f.movements, f.batches, f.tx)
	return f
}

func TestLotService_Create(t *testing.T) {
	ctx := context.Background()
	f := newLotFixture()
	batchID := uuid.New()
	qty := decimal.NewFromInt(500)

	f.batches.On("Exists", ctx, batchID).Return(true, nil)
	f.lots.On("Create", ctx, mock.AnythingOfType("*inventory.Lot")).Return(nil)
	f.levels.On("Create", ctx, mock.MatchedBy(func(l *inventory.StockLevel) bool {
		return l.AvailableQuantity.Equal(qty) && l.ReservedQuantity.IsZero()
	})).Return(nil)
	f.movements.On("Create", ctx, mock.MatchedBy(func(m *inventory.StockMovement) bool {
		return m.MovementType == inventory.MovementTypeReceipt && m.BalanceAfter.Equal(qty)
	})).Return(nil)

	resp, err := f.service.Create(ctx, uuid.New(), CreateLotRequest{BatchID: &batchID, ProductName: "Dried flower", Quantity: qty})

	require.NoError(t, err)
	assert.True(t, resp.AvailableQuantity.Equal(qty))
	assert.Equal(t, 1, f.tx.Calls)
	f.levels.AssertExpectations(t)
	f.movements.AssertExpectations(t)
}

func TestLotService_AdjustStock(t *testing.T) {
	ctx := context.Background()
	lot, err := inventory.NewLot("LOT-1", nil, "Dried flower", "flower", "g", decimal.NewFromInt(10), nil, "", uuid.New())
	require.NoError(t, err)

	t.Run("records the adjustment", func(t *testing.T) {
		f := newLotFixture()
		level := inventory.NewStockLevel(lot.ID, decimal.NewFromInt(10))
		f.lots.On("FindByID", ctx, lot.ID).Return(lot, nil)
		f.levels.On("FindByLotForUpdate", ctx, lot.ID).Return(level, nil)
		f.levels.On("Save", ctx, level).Return(nil)
		f.movements.On("Create", ctx, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)

		resp, err := f.service.AdjustStock(ctx, uuid.New(), lot.ID, AdjustStockRequest{Delta: decimal.NewFromInt(-4), Reason: "Lab sample"})

		require.NoError(t, err)
		assert.Equal(t, "6", resp.Level.AvailableQuantity.String())
		assert.Equal(t, "6", resp.Movement.BalanceAfter.String())
		assert.Equal(t, "Lab sample", resp.Movement.Notes)
	})

	t.Run("cannot go negative", func(t *testing.T) {
		f := newLotFixture()
		level := inventory.NewStockLevel(lot.ID, decimal.NewFromInt(3))
		f.lots.On("FindByID", ctx, lot.ID).Return(lot, nil)
		f.levels.On("FindByLotForUpdate", ctx, lot.ID).Return(level, nil)

		_, err := f.service.AdjustStock(ctx, uuid.New(), lot.ID, AdjustStockRequest{Delta: decimal.NewFromInt(-4), Reason: "Loss"})

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		f.levels.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.movements.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestLotService_DispatchStock_Clamps(t *testing.T) {
	ctx := context.Background()
	f := newLotFixture()
	lotID := uuid.New()
	dispatchID := uuid.New()
	level := inventory.NewStockLevel(lotID, decimal.NewFromInt(5))
	f.levels.On("FindByLotForUpdate", ctx, lotID).Return(level, nil)
	f.levels.On("Save", ctx, level).Return(nil)
	f.movements.On("Create", ctx, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)

	movement, err := f.service.DispatchStock(ctx, uuid.New(), lotID, decimal.NewFromInt(8), dispatchID, "DSP-1")

	require.NoError(t, err)
	assert.True(t, level.AvailableQuantity.IsZero())
	assert.Equal(t, "8", level.ReservedQuantity.String())
	assert.Equal(t, "-5", movement.Quantity.String())
	assert.Equal(t, dispatchID, *movement.ReferenceID)
}
