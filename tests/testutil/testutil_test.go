package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cultivo/backend/internal/domain/identity"
	"github.com/cultivo/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	db := NewMockDB(t)
	require.NotNil(t, db.DB)
	db.ExpectationsWereMet(t)
}

func TestNewSQLiteDB(t *testing.T) {
	a := NewSQLiteDB(t)
	b := NewSQLiteDB(t)

	profile := NewProfile(identity.RoleAdmin)
	require.NoError(t, a.Create(profile).Error)

	var inA, inB int64
	require.NoError(t, a.Model(&identity.Profile{}).Count(&inA).Error)
	require.NoError(t, b.Model(&identity.Profile{}).Count(&inB).Error)
	assert.Equal(t, int64(1), inA)
	assert.Equal(t, int64(0), inB, "databases must be isolated")
}

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("batch"), NewTestUUID("batch"))
	assert.NotEqual(t, NewTestUUID("batch"), NewTestUUID("lot"))
}

func TestRunHTTPTestCases(t *testing.T) {
	handler := func(c *gin.Context) {
		if middleware.GetProfile(c) == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "no profile", "code": "UNAUTHORIZED"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"id": c.Param("id")}})
	}

	RunHTTPTestCases(t, http.MethodGet, "/items/:id", handler, []HTTPTestCase{
		{
			Name:           "with profile",
			Path:           "/items/42",
			Profile:        NewProfile(identity.RoleViewer),
			ExpectedStatus: http.StatusOK,
			Validate: func(t *testing.T, w *httptest.ResponseRecorder) {
				data := DecodeData[map[string]string](t, w)
				assert.Equal(t, "42", data["id"])
			},
		},
		{
			Name:           "without profile",
			Path:           "/items/42",
			ExpectedStatus: http.StatusUnauthorized,
			ExpectedCode:   "UNAUTHORIZED",
		},
	})
}
