package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/cultivo/backend/internal/domain/inventory"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/cultivo/backend/internal/domain/trade"
	"github.com/cultivo/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type dispatchFixture struct {
	dispatches *MockDispatchRepository
	clients    *MockClientRepository
	lots       *MockLotRepository
	stock      *MockStockDispatcher
	tx         *testutil.Transactor
	events     *testutil.RecordingPublisher
	svc        *DispatchService
}

func newDispatchFixture() *dispatchFixture {
	f := &dispatchFixture{
		dispatches: new(MockDispatchRepository),
		clients:    new(MockClientRepository),
		lots:       new(MockLotRepository),
		stock:      new(MockStockDispatcher),
		tx:         &testutil.Transactor{},
		events:     &testutil.RecordingPublisher{},
	}
	f.svc = NewDispatchService(f.dispatches, f.clients, f.lots, f.stock, f.tx)
	f.svc.SetEventPublisher(f.events)
	return f
}

func draftDispatch(t *testing.T, lines ...trade.DispatchLine) *trade.Dispatch {
	t.Helper()
	d, err := trade.NewDispatch(uuid.New(), nil, "", lines, uuid.New())
	require.NoError(t, err)
	return d
}

func TestDispatchService_Create(t *testing.T) {
	ctx := context.Background()
	clientID := uuid.New()
	lotA, lotB := uuid.New(), uuid.New()
	req := CreateDispatchRequest{
		ClientID: clientID,
		Items: []DispatchLineRequest{
			{LotID: lotA, Quantity: decimal.NewFromInt(4)},
			{LotID: lotB, Quantity: decimal.NewFromInt(2)},
		},
	}

	t.Run("all lots known", func(t *testing.T) {
		f := newDispatchFixture()
		f.clients.On("Exists", ctx, clientID).Return(true, nil)
		f.lots.On("FindByIDs", ctx, mock.Anything).Return([]inventory.Lot{{}, {}}, nil)
		f.dispatches.On("Create", ctx, mock.AnythingOfType("*trade.Dispatch")).Return(nil)

		d, err := f.svc.Create(ctx, uuid.New(), req)

		require.NoError(t, err)
		assert.Equal(t, trade.DispatchStatusDraft, d.Status)
		assert.Len(t, d.Items, 2)
	})

	t.Run("missing lot", func(t *testing.T) {
		f := newDispatchFixture()
		f.clients.On("Exists", ctx, clientID).Return(true, nil)
		f.lots.On("FindByIDs", ctx, mock.Anything).Return([]inventory.Lot{{}}, nil)

		_, err := f.svc.Create(ctx, uuid.New(), req)

		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
		f.dispatches.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown client", func(t *testing.T) {
		f := newDispatchFixture()
		f.clients.On("Exists", ctx, clientID).Return(false, nil)

		_, err := f.svc.Create(ctx, uuid.New(), req)

		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestDispatchService_ConfirmDispatch(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()
	lotA, lotB := uuid.New(), uuid.New()

	t.Run("draws every item and publishes once", func(t *testing.T) {
		f := newDispatchFixture()
		d := draftDispatch(t,
			trade.DispatchLine{LotID: lotA, Quantity: decimal.NewFromInt(4)},
			trade.DispatchLine{LotID: lotB, Quantity: decimal.NewFromInt(15)},
		)
		f.dispatches.On("FindByIDForUpdate", ctx, d.ID).Return(d, nil)
		f.dispatches.On("Save", ctx, d).Return(nil)
		f.stock.On("DispatchStock", ctx, actorID, lotA, decimal.NewFromInt(4), d.ID, mock.Anything).
			Return(inventory.NewStockMovement(lotA, inventory.MovementTypeDispatch, decimal.NewFromInt(-4), decimal.NewFromInt(6), "dispatch", &d.ID, "", actorID), nil)
		f.stock.On("DispatchStock", ctx, actorID, lotB, decimal.NewFromInt(15), d.ID, mock.Anything).
			Return(inventory.NewStockMovement(lotB, inventory.MovementTypeDispatch, decimal.NewFromInt(-10), decimal.Zero, "dispatch", &d.ID, "", actorID), nil)

		resp, err := f.svc.ConfirmDispatch(ctx, actorID, d.ID)

		require.NoError(t, err)
		assert.Equal(t, 1, f.tx.Calls)
		assert.Equal(t, trade.DispatchStatusConfirmed, resp.Dispatch.Status)
		assert.Equal(t, &actorID, resp.Dispatch.ConfirmedBy)
		require.Len(t, resp.Movements, 2)
		assert.True(t, resp.Movements[1].BalanceAfter.IsZero())
		assert.Equal(t, []string{trade.EventTypeDispatchStatusChanged}, f.events.Types())
		f.stock.AssertExpectations(t)
	})

	t.Run("failure on a later item aborts before saving", func(t *testing.T) {
		f := newDispatchFixture()
		d := draftDispatch(t,
			trade.DispatchLine{LotID: lotA, Quantity: decimal.NewFromInt(4)},
			trade.DispatchLine{LotID: lotB, Quantity: decimal.NewFromInt(2)},
		)
		f.dispatches.On("FindByIDForUpdate", ctx, d.ID).Return(d, nil)
		f.stock.On("DispatchStock", ctx, actorID, lotA, mock.Anything, d.ID, mock.Anything).
			Return(inventory.NewStockMovement(lotA, inventory.MovementTypeDispatch, decimal.NewFromInt(-4), decimal.NewFromInt(6), "dispatch", &d.ID, "", actorID), nil)
		f.stock.On("DispatchStock", ctx, actorID, lotB, mock.Anything, d.ID, mock.Anything).
			Return(nil, shared.NewNotFoundError("Stock level"))

		_, err := f.svc.ConfirmDispatch(ctx, actorID, d.ID)

		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
		assert.Empty(t, f.events.Events())
		f.dispatches.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("already confirmed draws nothing", func(t *testing.T) {
		f := newDispatchFixture()
		d := draftDispatch(t, trade.DispatchLine{LotID: lotA, Quantity: decimal.NewFromInt(1)})
		require.NoError(t, d.Confirm(actorID))
		d.ClearDomainEvents()
		f.dispatches.On("FindByIDForUpdate", ctx, d.ID).Return(d, nil)

		_, err := f.svc.ConfirmDispatch(ctx, actorID, d.ID)

		require.Error(t, err)
		f.stock.AssertNotCalled(t, "DispatchStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("save failure is returned", func(t *testing.T) {
		f := newDispatchFixture()
		d := draftDispatch(t, trade.DispatchLine{LotID: lotA, Quantity: decimal.NewFromInt(1)})
		f.dispatches.On("FindByIDForUpdate", ctx, d.ID).Return(d, nil)
		f.dispatches.On("Save", ctx, d).Return(errors.New("connection reset"))
		f.stock.On("DispatchStock", ctx, actorID, lotA, mock.Anything, d.ID, mock.Anything).
			Return(inventory.NewStockMovement(lotA, inventory.MovementTypeDispatch, decimal.NewFromInt(-1), decimal.Zero, "dispatch", &d.ID, "", actorID), nil)

		_, err := f.svc.ConfirmDispatch(ctx, actorID, d.ID)

		require.EqualError(t, err, "connection reset")
		assert.Empty(t, f.events.Events())
	})
}

func TestDispatchService_ShipAndDeliver(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()
	f := newDispatchFixture()
	d := draftDispatch(t, trade.DispatchLine{LotID: uuid.New(), Quantity: decimal.NewFromInt(1)})

	f.dispatches.On("FindByID", ctx, d.ID).Return(d, nil)
	f.dispatches.On("Save", ctx, d).Return(nil)

	_, err := f.svc.Ship(ctx, actorID, d.ID)
	require.Error(t, err, "a draft dispatch cannot ship")

	require.NoError(t, d.Confirm(actorID))
	d.ClearDomainEvents()

	_, err = f.svc.Ship(ctx, actorID, d.ID)
	require.NoError(t, err)
	got, err := f.svc.Deliver(ctx, actorID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.DispatchStatusDelivered, got.Status)
	assert.Len(t, f.events.Events(), 2)

	_, err = f.svc.Cancel(ctx, actorID, d.ID)
	require.Error(t, err)
}
