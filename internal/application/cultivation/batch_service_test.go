package cultivation

import (
	"context"
	"testing"
	"time"

	"github.com/cultivo/backend/internal/domain/cultivation"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/cultivo/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type batchFixture struct {
	batches   *MockBatchRepository
	stages    *MockBatchStageRepository
	strains   *MockStrainRepository
	cycles    *MockGrowthCycleRepository
	tx        *testutil.Transactor
	publisher *testutil.RecordingPublisher
	service   *BatchService
}

func newBatchFixture() *batchFixture {
	f := &batchFixture{
		batches:   new(MockBatchRepository),
		stages:    new(MockBatchStageRepository),
		strains:   new(MockStrainRepository),
		cycles:    new(MockGrowthCycleRepository),
		tx:        new(testutil.Transactor),
		publisher: new(testutil.RecordingPublisher),
	}
	f.service = NewBatchService(f.batches, f.stages, f.strains, f.cycles, f.tx)
	f.service.SetEventPublisher(f.publisher)
	return f
}

func newTestBatch(t *testing.T) *cultivation.Batch {
	t.Helper()
	b, err := cultivation.NewBatch("B-1", "Blue Dream #1", uuid.New(), uuid.New(), "Room A", 24, nil, uuid.New())
	require.NoError(t, err)
	return b
}

func TestBatchService_Create(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()

	t.Run("opens the cloning stage with the batch", func(t *testing.T) {
		f := newBatchFixture()
		strain, _ := cultivation.NewStrain("Blue Dream", cultivation.StrainTypeHybrid, decimal.NewFromInt(18), decimal.NewFromInt(1), "", actor)
		cycleID := uuid.New()

		f.strains.On("FindByID", ctx, strain.ID).Return(strain, nil)
		f.cycles.On("FindByID", ctx, cycleID).Return(&cultivation.GrowthCycle{}, nil)
		f.batches.On("Create", ctx, mock.AnythingOfType("*cultivation.Batch")).Return(nil)
		f.stages.On("Create", ctx, mock.MatchedBy(func(s *cultivation.BatchStage) bool {
			return s.Stage == cultivation.GrowthStageCloning && s.IsOpen()
		})).Return(nil)

		resp, err := f.service.Create(ctx, actor, CreateBatchRequest{
			Name:          "Blue Dream #1",
			StrainID:      strain.ID,
			GrowthCycleID: cycleID,
			PlantCount:    24,
		})

		require.NoError(t, err)
		assert.Equal(t, "cloning", resp.CurrentStage)
		assert.Equal(t, "active", resp.Status)
		assert.Equal(t, "Blue Dream", resp.StrainName)
		assert.NotEmpty(t, resp.BatchNumber)
		assert.Equal(t, 1, f.tx.Calls)
		f.batches.AssertExpectations(t)
		f.stages.AssertExpectations(t)
	})

	t.Run("unknown strain", func(t *testing.T) {
		f := newBatchFixture()
		strainID := uuid.New()
		f.strains.On("FindByID", ctx, strainID).Return(nil, shared.NewNotFoundError("Strain"))

		_, err := f.service.Create(ctx, actor, CreateBatchRequest{Name: "x", StrainID: strainID, GrowthCycleID: uuid.New()})

		assert.True(t, shared.IsNotFound(err))
		f.batches.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestBatchService_AdvanceStage(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()

	t.Run("closes the open stage and opens the next", func(t *testing.T) {
		f := newBatchFixture()
		batch := newTestBatch(t)
		open, _ := cultivation.NewBatchStage(batch.ID, cultivation.GrowthStageCloning, "", actor)

		f.batches.On("FindByID", ctx, batch.ID).Return(batch, nil)
		f.batches.On("Save", ctx, batch).Return(nil)
		f.stages.On("FindOpenByBatch", ctx, batch.ID).Return(open, nil)
		f.stages.On("Save", ctx, open).Return(nil)
		f.stages.On("Create", ctx, mock.AnythingOfType("*cultivation.BatchStage")).Return(nil)

		resp, err := f.service.AdvanceStage(ctx, actor, batch.ID, AdvanceStageRequest{Notes: "rooted"})

		require.NoError(t, err)
		assert.Equal(t, "cloning", resp.FromStage)
		assert.Equal(t, "vegetative", resp.ToStage)
		assert.Equal(t, 20, resp.Batch.Progress)
		assert.Equal(t, "rooted", resp.Stage.Notes)
		assert.False(t, open.IsOpen())
		assert.Equal(t, []string{cultivation.EventTypeBatchStageAdvanced}, f.publisher.Types())
	})

	t.Run("refused after packaging", func(t *testing.T) {
		f := newBatchFixture()
		batch := newTestBatch(t)
		batch.CurrentStage = cultivation.GrowthStagePackaging
		f.batches.On("FindByID", ctx, batch.ID).Return(batch, nil)

		_, err := f.service.AdvanceStage(ctx, actor, batch.ID, AdvanceStageRequest{})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		f.batches.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.Events())
	})

	t.Run("missing open stage record is tolerated", func(t *testing.T) {
		f := newBatchFixture()
		batch := newTestBatch(t)
		f.batches.On("FindByID", ctx, batch.ID).Return(batch, nil)
		f.batches.On("Save", ctx, batch).Return(nil)
		f.stages.On("FindOpenByBatch", ctx, batch.ID).Return(nil, shared.NewNotFoundError("Batch stage"))
		f.stages.On("Create", ctx, mock.AnythingOfType("*cultivation.BatchStage")).Return(nil)

		_, err := f.service.AdvanceStage(ctx, actor, batch.ID, AdvanceStageRequest{})

		require.NoError(t, err)
		f.stages.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestBatchService_ChangeStatus(t *testing.T) {
	ctx := context.Background()
	f := newBatchFixture()
	batch := newTestBatch(t)
	f.batches.On("FindByID", ctx, batch.ID).Return(batch, nil)
	f.batches.On("Save", ctx, batch).Return(nil)

	resp, err := f.service.ChangeStatus(ctx, uuid.New(), batch.ID, ChangeBatchStatusRequest{Status: "completed"})

	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 100, resp.Progress)
	assert.Equal(t, []string{cultivation.EventTypeBatchStatusChanged}, f.publisher.Types())

	_, err = f.service.ChangeStatus(ctx, uuid.New(), batch.ID, ChangeBatchStatusRequest{Status: "active"})
	assert.Error(t, err)
}

func TestBatchService_List(t *testing.T) {
	ctx := context.Background()
	f := newBatchFixture()
	batch := newTestBatch(t)
	filter := shared.DefaultFilter().With("status", "active")
	f.batches.On("FindAll", ctx, mock.AnythingOfType("shared.Filter")).Return([]cultivation.Batch{*batch}, nil)
	f.batches.On("Count", ctx, mock.AnythingOfType("shared.Filter")).Return(int64(1), nil)

	page, err := f.service.List(ctx, filter)

	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, batch.BatchNumber, page.Records[0].BatchNumber)
	assert.Equal(t, int64(1), page.Total)
}

func TestStrainService_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := new(MockStrainRepository)
	repo.On("ExistsByName", ctx, "Blue Dream").Return(true, nil)

	_, err := NewStrainService(repo).Create(ctx, uuid.New(), CreateStrainRequest{Name: " Blue Dream ", StrainType: "hybrid"})

	assert.True(t, shared.IsAlreadyExists(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDailyLogService_Create(t *testing.T) {
	ctx := context.Background()
	logs := new(MockDailyLogRepository)
	batches := new(MockBatchRepository)
	svc := NewDailyLogService(logs, batches)
	batch := newTestBatch(t)
	humidity := decimal.NewFromInt(55)

	batches.On("FindByID", ctx, batch.ID).Return(batch, nil)
	logs.On("Create", ctx, mock.AnythingOfType("*cultivation.DailyLog")).Return(nil)

	entry, err := svc.Create(ctx, uuid.New(), CreateDailyLogRequest{BatchID: batch.ID, Humidity: &humidity})
	require.NoError(t, err)
	assert.True(t, entry.Humidity.Valid)
	assert.False(t, entry.LogDate.IsZero())

	batch.Status = cultivation.BatchStatusArchived
	_, err = svc.Create(ctx, uuid.New(), CreateDailyLogRequest{BatchID: batch.ID})
	assert.Error(t, err)
}

func TestGrowthCycleService_Transitions(t *testing.T) {
	ctx := context.Background()
	repo := new(MockGrowthCycleRepository)
	svc := NewGrowthCycleService(repo)
	gc, err := cultivation.NewGrowthCycle("Spring run", "Room A", time.Now(), nil, "", uuid.New())
	require.NoError(t, err)
	repo.On("FindByID", ctx, gc.ID).Return(gc, nil)
	repo.On("Save", ctx, gc).Return(nil)

	_, err = svc.Complete(ctx, gc.ID)
	assert.Error(t, err, "planned cycles cannot complete")

	started, err := svc.Start(ctx, gc.ID)
	require.NoError(t, err)
	assert.Equal(t, cultivation.GrowthCycleStatusActive, started.Status)

	done, err := svc.Complete(ctx, gc.ID)
	require.NoError(t, err)
	assert.Equal(t, cultivation.GrowthCycleStatusCompleted, done.Status)

	_, err = svc.Cancel(ctx, gc.ID)
	assert.Error(t, err)
}
