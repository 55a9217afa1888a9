package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	qmsapp "github.com/cultivo/backend/internal/application/qms"
	"github.com/cultivo/backend/internal/domain/cultivation"
	"github.com/cultivo/backend/internal/domain/identity"
	"github.com/cultivo/backend/internal/domain/qms"
	"github.com/cultivo/backend/internal/infrastructure/persistence"
	"github.com/cultivo/backend/internal/interfaces/http/dto"
	"github.com/cultivo/backend/internal/interfaces/http/middleware"
	"github.com/cultivo/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	middleware.SetupValidator()
}

type ebrFixture struct {
	db       *gorm.DB
	engine   *gin.Engine
	reviewer *identity.Profile
}

func newEbrFixture(t *testing.T) *ebrFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)

	reviewer := testutil.NewProfile(identity.RoleQAManager)
	require.NoError(t, db.Create(reviewer).Error)

	ebrs := persistence.NewGormEbrRepository(db)
	service := qmsapp.NewEbrService(qmsapp.EbrRepositories{
		Ebrs:        ebrs,
		Checklists:  persistence.NewGormChecklistRepository(db),
		Batches:     persistence.NewGormBatchRepository(db),
		Strains:     persistence.NewGormStrainRepository(db),
		DailyLogs:   persistence.NewGormDailyLogRepository(db),
		Deviations:  persistence.NewGormDeviationRepository(db),
		Environment: persistence.NewGormEnvironmentRepository(db),
		Profiles:    persistence.NewGormProfileRepository(db),
	}, persistence.NewTransactor(db), nil, qmsapp.EvidencePolicy{})
	h := NewEbrHandler(service, qmsapp.NewEbrDiagnostics(ebrs))

	engine := gin.New()
	engine.Use(middleware.RequestID(), func(c *gin.Context) {
		c.Set(middleware.ProfileKey, reviewer)
		c.Next()
	})
	g := engine.Group("/qms/ebr")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/statistics", h.Statistics)
	g.GET("/batch/:batchId", h.GetByBatch)
	g.POST("/checklist", h.AddChecklistItem)
	g.GET("/:id/checklist", h.Checklist)
	g.POST("/:id/approve", h.Approve)
	g.POST("/:id/reject", h.Reject)
	g.POST("/:id/reopen", h.Reopen)
	engine.GET("/ops/ebr", h.RecentRecords)

	return &ebrFixture{db: db, engine: engine, reviewer: reviewer}
}

func (f *ebrFixture) batch(t *testing.T, name string) *cultivation.Batch {
	t.Helper()
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	b, err := cultivation.NewBatch("", name, uuid.New(), uuid.New(), "Flower Room A", 24, &start, f.reviewer.ID)
	require.NoError(t, err)
	require.NoError(t, f.db.Create(b).Error)
	return b
}

func (f *ebrFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, testutil.ToJSONReader(t, body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func (f *ebrFixture) create(t *testing.T, batchID uuid.UUID) qmsapp.EbrRecordResponse {
	t.Helper()
	w := f.do(t, http.MethodPost, "/qms/ebr", map[string]string{"batch_id": batchID.String()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return testutil.DecodeData[qmsapp.EbrRecordResponse](t, w)
}

func TestEbrHandler_Create(t *testing.T) {
	f := newEbrFixture(t)
	b := f.batch(t, "Blue Dream #4")

	record := f.create(t, b.ID)
	assert.Equal(t, b.ID, record.BatchID)
	assert.Equal(t, "Blue Dream #4", record.BatchName)
	assert.Equal(t, 24, record.TotalPlants)
	assert.Equal(t, qms.ComplianceStatusPending, record.ComplianceStatus)

	w := f.do(t, http.MethodPost, "/qms/ebr", map[string]string{"batch_id": b.ID.String()})
	testutil.AssertError(t, w, http.StatusConflict, dto.ErrCodeAlreadyExists)
}

func TestEbrHandler_CreateMissingBatch(t *testing.T) {
	f := newEbrFixture(t)

	w := f.do(t, http.MethodPost, "/qms/ebr", map[string]string{"batch_id": uuid.NewString()})
	testutil.AssertError(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	assert.Equal(t, "Batch not found", testutil.DecodeEnvelope(t, w).Error)

	var n int64
	require.NoError(t, f.db.Model(&qms.EbrRecord{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestEbrHandler_GetByBatchWithoutRecord(t *testing.T) {
	f := newEbrFixture(t)

	w := f.do(t, http.MethodGet, "/qms/ebr/batch/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":null}`, w.Body.String())
}

func TestEbrHandler_Statistics(t *testing.T) {
	f := newEbrFixture(t)

	w := f.do(t, http.MethodGet, "/qms/ebr/statistics", nil)
	stats := testutil.DecodeData[qms.EbrStatistics](t, w)
	assert.Equal(t, qms.EbrStatistics{}, stats)
}

func TestEbrHandler_RejectRequiresReason(t *testing.T) {
	f := newEbrFixture(t)
	record := f.create(t, f.batch(t, "Gelato").ID)

	w := f.do(t, http.MethodPost, "/qms/ebr/"+record.ID.String()+"/reject", map[string]any{})
	testutil.AssertError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	env := testutil.DecodeEnvelope(t, w)
	require.NotEmpty(t, env.Details)
	assert.Equal(t, "reason", env.Details[0].Field)
}

func TestEbrHandler_DispositionWorkflow(t *testing.T) {
	f := newEbrFixture(t)
	record := f.create(t, f.batch(t, "OG Kush").ID)
	base := "/qms/ebr/" + record.ID.String()

	w := f.do(t, http.MethodPost, base+"/reject", map[string]any{"reason": "Seal broken", "requires_reprocessing": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rejected := testutil.DecodeData[qmsapp.EbrRecordResponse](t, w)
	assert.Equal(t, qms.ComplianceStatusRejected, rejected.ComplianceStatus)
	assert.True(t, rejected.RequiresReprocessing)

	w = f.do(t, http.MethodPost, base+"/approve", nil)
	testutil.AssertError(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)

	w = f.do(t, http.MethodPost, base+"/reopen", map[string]any{"reason": "Resealed and re-inspected"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, base+"/approve", map[string]any{"reason": "All checks pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	approved := testutil.DecodeData[qmsapp.EbrRecordResponse](t, w)
	assert.Equal(t, qms.ComplianceStatusApproved, approved.ComplianceStatus)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, f.reviewer.ID, *approved.ApprovedBy)

	w = f.do(t, http.MethodPost, base+"/approve", nil)
	assert.Equal(t, http.StatusOK, w.Code, "approving twice is idempotent")
}

func TestEbrHandler_Checklist(t *testing.T) {
	f := newEbrFixture(t)
	record := f.create(t, f.batch(t, "Sour Diesel").ID)

	for _, item := range []string{"Batch label verified", "Moisture content logged"} {
		w := f.do(t, http.MethodPost, "/qms/ebr/checklist", map[string]any{
			"ebr_id":         record.ID,
			"checklist_item": item,
			"item_category":  "documentation",
			"is_compliant":   true,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := f.do(t, http.MethodGet, "/qms/ebr/"+record.ID.String()+"/checklist", nil)
	items := testutil.DecodeData[[]qms.ChecklistItem](t, w)
	require.Len(t, items, 2)
	assert.ElementsMatch(t, []string{"Batch label verified", "Moisture content logged"},
		[]string{items[0].ChecklistText, items[1].ChecklistText})

	w = f.do(t, http.MethodPost, "/qms/ebr/checklist", map[string]any{
		"ebr_id":         uuid.New(),
		"checklist_item": "Orphan",
		"item_category":  "quality",
	})
	testutil.AssertError(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	assert.Equal(t, "eBR record not found", testutil.DecodeEnvelope(t, w).Error)
}

func TestEbrHandler_RecentRecords(t *testing.T) {
	f := newEbrFixture(t)
	f.create(t, f.batch(t, "Northern Lights").ID)

	w := f.do(t, http.MethodGet, "/ops/ebr", nil)
	rows := testutil.DecodeData[[]qmsapp.EbrSummary](t, w)
	require.Len(t, rows, 1)
	assert.Equal(t, "Northern Lights", rows[0].BatchName)
}
