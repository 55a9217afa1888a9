package cultivation

import (
	"context"

	"github.com/cultivo/backend/internal/domain/cultivation"
	"github.com/cultivo/backend/tests/testutil"
	"github.com/google/uuid"
)

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

type MockBatchStageRepository struct {
	testutil.MockRepository[cultivation.BatchStage]
}

func (m *MockBatchStageRepository) FindOpenByBatch(ctx context.Context, batchID uuid.UUID) (*cultivation.BatchStage, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cultivation.BatchStage), args.Error(1)
}

func (m *MockBatchStageRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]cultivation.BatchStage, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cultivation.BatchStage), args.Error(1)
}

type MockStrainRepository struct {
	testutil.MockRepository[cultivation.Strain]
}

func (m *MockStrainRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

type MockGrowthCycleRepository struct {
	testutil.MockRepository[cultivation.GrowthCycle]
}

type MockDailyLogRepository struct {
	testutil.MockRepository[cultivation.DailyLog]
}

func (m *MockDailyLogRepository) CountByBatch(ctx context.Context, batchID uuid.UUID) (int64, error) {
	args := m.Called(ctx, batchID)
	return args.Get(0).(int64), args.Error(1)
}
