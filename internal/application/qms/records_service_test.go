package qms

import (
	"context"
	"testing"

	"github.com/cultivo/backend/internal/domain/qms"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/cultivo/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCapaRepository struct {
	testutil.MockRepository[qms.Capa]
}

type MockSopRepository struct {
	testutil.MockRepository[qms.Sop]
}

func (m *MockSopRepository) ExistsByDocumentNumber(ctx context.Context, documentNumber string) (bool, error) {
	args := m.Called(ctx, documentNumber)
	return args.Bool(0), args.Error(1)
}

func TestDeviationService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := new(MockDeviationRepository)
	batches := new(MockBatchRepository)
	publisher := new(testutil.RecordingPublisher)
	svc := NewDeviationService(repo, batches)
	svc.SetEventPublisher(publisher)
	actor := uuid.New()
	batchID := uuid.New()

	batches.On("Exists", ctx, batchID).Return(true, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*qms.Deviation")).Return(nil)

	d, err := svc.Create(ctx, actor, CreateDeviationRequest{Title: "Humidity spike", Severity: "critical", BatchID: &batchID})
	require.NoError(t, err)
	assert.Equal(t, qms.DeviationStatusOpen, d.Status)

	repo.On("FindByID", ctx, d.ID).Return(d, nil)
	repo.On("Save", ctx, d).Return(nil)

	_, err = svc.Close(ctx, actor, d.ID)
	assert.Error(t, err, "open deviations cannot close")

	_, err = svc.StartInvestigation(ctx, d.ID)
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, actor, d.ID, ResolveDeviationRequest{RootCause: "Failed dehumidifier", Resolution: "Replaced unit"})
	require.NoError(t, err)
	closed, err := svc.Close(ctx, actor, d.ID)
	require.NoError(t, err)
	assert.Equal(t, qms.DeviationStatusClosed, closed.Status)

	assert.Equal(t, []string{
		qms.EventTypeDeviationReported,
		qms.EventTypeDeviationResolved,
		qms.EventTypeDeviationClosed,
	}, publisher.Types())
}

func TestDeviationService_CreateUnknownBatch(t *testing.T) {
	ctx := context.Background()
	repo := new(MockDeviationRepository)
	batches := new(MockBatchRepository)
	batchID := uuid.New()
	batches.On("Exists", ctx, batchID).Return(false, nil)

	_, err := NewDeviationService(repo, batches).Create(ctx, uuid.New(), CreateDeviationRequest{Title: "x", Severity: "minor", BatchID: &batchID})

	assert.True(t, shared.IsNotFound(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCapaService_CreateRequiresDeviation(t *testing.T) {
	ctx := context.Background()
	deviations := new(MockDeviationRepository)
	capas := new(MockCapaRepository)
	deviationID := uuid.New()
	deviations.On("FindByID", ctx, deviationID).Return(nil, shared.NewNotFoundError("Deviation"))

	_, err := NewCapaService(capas, deviations).Create(ctx, uuid.New(), CreateCapaRequest{
		Title:       "Replace dehumidifier",
		ActionType:  "corrective",
		DeviationID: &deviationID,
	})

	assert.True(t, shared.IsNotFound(err))
	capas.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSopService_DuplicateDocumentNumber(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSopRepository)
	repo.On("ExistsByDocumentNumber", ctx, "SOP-001").Return(true, nil)

	_, err := NewSopService(repo).Create(ctx, uuid.New(), CreateSopRequest{DocumentNumber: " SOP-001 ", Title: "Cleaning"})

	assert.True(t, shared.IsAlreadyExists(err))
}

func TestEnvironmentService_FlagsAlerts(t *testing.T) {
	ctx := context.Background()
	repo := new(MockEnvironmentRepository)
	repo.On("Create", ctx, mock.AnythingOfType("*qms.EnvironmentalReading")).Return(nil)
	svc := NewEnvironmentService(repo, qms.AlertThresholds{
		MinTemperature: decimal.NewFromInt(18),
		MaxTemperature: decimal.NewFromInt(30),
		MaxHumidity:    decimal.NewFromInt(65),
	})

	normal := decimal.NewFromInt(24)
	hot := decimal.NewFromInt(33)

	ok, err := svc.Create(ctx, uuid.New(), CreateReadingRequest{Room: "Flower 1", Temperature: &normal})
	require.NoError(t, err)
	assert.False(t, ok.IsAlert)

	alert, err := svc.Create(ctx, uuid.New(), CreateReadingRequest{Room: "Flower 1", Temperature: &hot})
	require.NoError(t, err)
	assert.True(t, alert.IsAlert)
	assert.False(t, alert.Humidity.Valid)
}

type MockQualityRecordRepository struct {
	testutil.MockRepository[qms.QualityRecord]
}

func TestQualityRecordService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := new(MockQualityRecordRepository)
	publisher := new(testutil.RecordingPublisher)
	svc := NewQualityRecordService(repo)
	svc.SetEventPublisher(publisher)
	actor := uuid.New()

	repo.On("Create", ctx, mock.AnythingOfType("*qms.QualityRecord")).Return(nil)
	r, err := svc.Create(ctx, actor, CreateQualityRecordRequest{RecordType: "lab_test", Title: "Potency panel"})
	require.NoError(t, err)
	assert.Equal(t, qms.QualityResultPending, r.Result)
	assert.Regexp(t, `^QR-\d{8}-[0-9A-F]{6}$`, r.RecordNumber)
	assert.Empty(t, publisher.Events())

	repo.On("FindByID", ctx, r.ID).Return(r, nil)
	repo.On("Save", ctx, r).Return(nil)

	concluded, err := svc.Conclude(ctx, actor, r.ID, ConcludeQualityRecordRequest{Result: "fail", Note: "THC below label claim"})
	require.NoError(t, err)
	assert.Equal(t, qms.QualityResultFail, concluded.Result)
	require.Len(t, publisher.Events(), 1)
	assert.Equal(t, []string{qms.EventTypeQualityRecordConcluded}, publisher.Types())

	title := "Retest"
	_, err = svc.Update(ctx, r.ID, UpdateQualityRecordRequest{Title: &title})
	assert.ErrorIs(t, err, shared.ErrInvalidState, "concluded records are read-only")
}
