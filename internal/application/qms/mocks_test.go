package qms

import (
	"context"
	"time"

	"github.com/cultivo/backend/internal/domain/cultivation"
	"github.com/cultivo/backend/internal/domain/identity"
	"github.com/cultivo/backend/internal/domain/qms"
	"github.com/cultivo/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockEbrRepository struct {
	testutil.MockRepository[qms.EbrRecord]
}

func (m *MockEbrRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) (*qms.EbrRecord, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*qms.EbrRecord), args.Error(1)
}

func (m *MockEbrRepository) ExistsByBatch(ctx context.Context, batchID uuid.UUID) (bool, error) {
	args := m.Called(ctx, batchID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEbrRepository) ScoreRows(ctx context.Context) ([]qms.EbrScoreRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]qms.EbrScoreRow), args.Error(1)
}

type MockChecklistRepository struct {
	testutil.MockRepository[qms.ChecklistItem]
}

func (m *MockChecklistRepository) FindByEbr(ctx context.Context, ebrID uuid.UUID) ([]qms.ChecklistItem, error) {
	args := m.Called(ctx, ebrID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]qms.ChecklistItem), args.Error(1)
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

type MockStrainRepository struct {
	testutil.MockRepository[cultivation.Strain]
}

func (m *MockStrainRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

type MockDailyLogRepository struct {
	testutil.MockRepository[cultivation.DailyLog]
}

func (m *MockDailyLogRepository) CountByBatch(ctx context.Context, batchID uuid.UUID) (int64, error) {
	args := m.Called(ctx, batchID)
	return args.Get(0).(int64), args.Error(1)
}

type MockDeviationRepository struct {
	testutil.MockRepository[qms.Deviation]
}

func (m *MockDeviationRepository) CountByBatchAndSeverity(ctx context.Context, batchID uuid.UUID, severity qms.Severity) (int64, error) {
	args := m.Called(ctx, batchID, severity)
	return args.Get(0).(int64), args.Error(1)
}

type MockEnvironmentRepository struct {
	testutil.MockRepository[qms.EnvironmentalReading]
}

func (m *MockEnvironmentRepository) CountAlertsByBatch(ctx context.Context, batchID uuid.UUID) (int64, error) {
	args := m.Called(ctx, batchID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEnvironmentRepository) SummarizeRooms(ctx context.Context) ([]qms.RoomSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]qms.RoomSummary), args.Error(1)
}

type MockProfileRepository struct {
	testutil.MockRepository[identity.Profile]
}

func (m *MockProfileRepository) FindByEmail(ctx context.Context, email string) (*identity.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindByVerificationToken(ctx context.Context, token string) (*identity.Profile, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindByResetToken(ctx context.Context, token string) (*identity.Profile, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.Profile, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Profile), args.Error(1)
}

func (m *MockProfileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type MockEvidenceStorage struct {
	mock.Mock
}

func (m *MockEvidenceStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockEvidenceStorage) ObjectURL(storageKey string) string {
	return "https://evidence.example.com/" + storageKey
}
