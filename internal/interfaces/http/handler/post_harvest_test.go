package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	cultivationapp "github.com/cultivo/backend/internal/application/cultivation"
	"github.com/cultivo/backend/internal/domain/cultivation"
	"github.com/cultivo/backend/internal/domain/identity"
	"github.com/cultivo/backend/internal/infrastructure/persistence"
	"github.com/cultivo/backend/internal/interfaces/http/dto"
	"github.com/cultivo/backend/internal/interfaces/http/middleware"
	"github.com/cultivo/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPackagingEngine(t *testing.T) (*gin.Engine, *cultivation.Batch) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	operator := testutil.NewProfile(identity.RoleOperator)
	require.NoError(t, db.Create(operator).Error)

	batch, err := cultivation.NewBatch("", "Gelato #9", uuid.New(), uuid.New(), "Dry Room", 10, nil, operator.ID)
	require.NoError(t, err)
	require.NoError(t, db.Create(batch).Error)

	batches := persistence.NewGormBatchRepository(db)
	h := NewPostHarvestHandler(
		cultivationapp.NewPackagingService(persistence.NewGormPackagingRecordRepository(db), batches),
		nil, nil, nil,
	)

	engine := gin.New()
	engine.Use(middleware.RequestID(), func(c *gin.Context) {
		c.Set(middleware.ProfileKey, operator)
		c.Next()
	})
	g := engine.Group("/erp/packaging")
	g.POST("", h.CreatePackaging)
	g.GET("/:id", h.GetPackaging)
	g.PUT("/:id", h.UpdatePackaging)
	g.PATCH("/:id", h.UpdatePackaging)
	g.POST("/:id/complete", h.CompletePackaging)
	return engine, batch
}

func servePackaging(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, testutil.ToJSONReader(t, body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestPostHarvestHandler_Packaging(t *testing.T) {
	engine, batch := newPackagingEngine(t)

	w := servePackaging(t, engine, http.MethodPost, "/erp/packaging", map[string]any{
		"batch_id":      batch.ID,
		"package_type":  "jar",
		"package_count": 10,
		"unit_weight":   "3.5",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := testutil.DecodeData[cultivation.PackagingRecord](t, w)
	path := "/erp/packaging/" + created.ID.String()

	for _, method := range []string{http.MethodPatch, http.MethodPut} {
		t.Run(method+" updates the run", func(t *testing.T) {
			w := servePackaging(t, engine, method, path, map[string]any{"package_count": 12})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			updated := testutil.DecodeData[cultivation.PackagingRecord](t, w)
			assert.Equal(t, 12, updated.PackageCount)
			assert.True(t, updated.TotalWeight.Equal(decimal.NewFromInt(42)), "total %s", updated.TotalWeight)
		})
	}

	t.Run("invalid count", func(t *testing.T) {
		w := servePackaging(t, engine, http.MethodPatch, path, map[string]any{"package_count": -1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("completed runs are read-only", func(t *testing.T) {
		w := servePackaging(t, engine, http.MethodPost, path+"/complete", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = servePackaging(t, engine, http.MethodPatch, path, map[string]any{"notes": "late edit"})
		testutil.AssertError(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)
	})
}
