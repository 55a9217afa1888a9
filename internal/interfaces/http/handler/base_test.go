package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cultivo/backend/internal/domain/identity"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/cultivo/backend/internal/interfaces/http/dto"
	"github.com/cultivo/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func parseFilter(t *testing.T, query string, keys ...string) (shared.Filter, bool, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/items?"+query, nil)

	h := &BaseHandler{}
	filter, ok := h.ParseFilter(c, keys...)
	return filter, ok, w
}

func TestParseFilter_Defaults(t *testing.T) {
	filter, ok, _ := parseFilter(t, "")
	require.True(t, ok)
	assert.Equal(t, 1, filter.Page)
	assert.Equal(t, shared.DefaultPageSize, filter.PageSize)
	assert.Empty(t, filter.OrderBy, "ordering is left to the repository")
	assert.Empty(t, filter.Filters)
	assert.Nil(t, filter.DateFrom)
	assert.Nil(t, filter.DateTo)
}

func TestParseFilter_Values(t *testing.T) {
	filter, ok, _ := parseFilter(t,
		"page=2&limit=5&q=+kush+&order_by=name&order_dir=asc&status=completed&alerts_only=true&ignored=x",
		"status", "alerts_only")
	require.True(t, ok)
	assert.Equal(t, 2, filter.Page)
	assert.Equal(t, 5, filter.PageSize)
	assert.Equal(t, "kush", filter.Search)
	assert.Equal(t, "name", filter.OrderBy)
	assert.Equal(t, "asc", filter.OrderDir)
	assert.Equal(t, map[string]interface{}{"status": "completed", "alerts_only": true}, filter.Filters)
}

func TestParseFilter_ClampsLimit(t *testing.T) {
	filter, ok, _ := parseFilter(t, "limit=1000")
	require.True(t, ok)
	assert.Equal(t, shared.MaxPageSize, filter.PageSize)
}

func TestParseFilter_DateRange(t *testing.T) {
	filter, ok, _ := parseFilter(t, "date_from=2024-03-01&date_to=2024-03-31")
	require.True(t, ok)
	require.NotNil(t, filter.DateFrom)
	require.NotNil(t, filter.DateTo)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *filter.DateFrom)
	assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC), *filter.DateTo)

	filter, ok, _ = parseFilter(t, "date_from=2024-03-01T10:00:00Z")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), *filter.DateFrom)
}

func TestParseFilter_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"page not a number", "page=abc", "page"},
		{"page zero", "page=0", "page"},
		{"negative limit", "limit=-1", "limit"},
		{"bad date", "date_from=yesterday", "date_from"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, w := parseFilter(t, tt.query)
			assert.False(t, ok)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			env := testutil.DecodeEnvelope(t, w)
			assert.Equal(t, dto.ErrCodeValidation, env.Code)
			require.Len(t, env.Details, 1)
			assert.Equal(t, tt.field, env.Details[0].Field)
		})
	}
}

func TestHandleDomainError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found", shared.NewNotFoundError("Batch"), http.StatusNotFound, dto.ErrCodeNotFound, "Batch not found"},
		{"wrapped", errors.Join(errors.New("ctx"), shared.NewInvalidStateError("Record is rejected")), http.StatusUnprocessableEntity, dto.ErrCodeInvalidState, "Record is rejected"},
		{"duplicate", shared.NewAlreadyExistsError("eBR record already exists for this batch"), http.StatusConflict, dto.ErrCodeAlreadyExists, "eBR record already exists for this batch"},
		{"unknown", errors.New("pq: connection reset"), http.StatusInternalServerError, dto.ErrCodeInternal, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			(&BaseHandler{}).HandleDomainError(c, tt.err)

			testutil.AssertError(t, w, tt.status, tt.code)
			assert.Equal(t, tt.message, testutil.DecodeEnvelope(t, w).Error)
		})
	}
}

func TestBindOptionalJSON(t *testing.T) {
	type body struct {
		Reason string `json:"reason" binding:"max=5"`
	}
	tests := []struct {
		name       string
		body       string
		length     int64
		wantOK     bool
		wantReason string
	}{
		{"no body", "", 0, true, ""},
		{"empty chunked body", "", -1, true, ""},
		{"chunked body", `{"reason":"ok"}`, -1, true, "ok"},
		{"sized body", `{"reason":"fine"}`, 17, true, "fine"},
		{"malformed", `{"reason":`, 10, false, ""},
		{"invalid field", `{"reason":"too long"}`, 21, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/approve", strings.NewReader(tt.body))
			c.Request.ContentLength = tt.length

			var req body
			ok := (&BaseHandler{}).BindOptionalJSON(c, &req)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantReason, req.Reason)
			if !tt.wantOK {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	h := &BaseHandler{}
	handler := func(c *gin.Context) {
		id, ok := h.ParseID(c, "id")
		if !ok {
			return
		}
		h.Success(c, id)
	}

	id := uuid.New()
	testutil.RunHTTPTestCases(t, http.MethodGet, "/batches/:id", handler, []testutil.HTTPTestCase{
		{Name: "valid", Path: "/batches/" + id.String(), ExpectedStatus: http.StatusOK},
		{
			Name:           "invalid",
			Path:           "/batches/not-a-uuid",
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   dto.ErrCodeValidation,
			Validate: func(t *testing.T, w *httptest.ResponseRecorder) {
				env := testutil.DecodeEnvelope(t, w)
				require.Len(t, env.Details, 1)
				assert.Equal(t, "id", env.Details[0].Field)
			},
		},
	})
}

type reasonRequest struct {
	Reason string `json:"reason" binding:"required,max=10"`
}

func TestCrudHelpers(t *testing.T) {
	h := &BaseHandler{}
	actor := testutil.NewProfile(identity.RoleQAManager)

	createHandler := func(c *gin.Context) {
		create(h, c, func(_ context.Context, actorID uuid.UUID, req reasonRequest) (map[string]string, error) {
			return map[string]string{"actor": actorID.String(), "reason": req.Reason}, nil
		})
	}
	testutil.RunHTTPTestCases(t, http.MethodPost, "/things", createHandler, []testutil.HTTPTestCase{
		{
			Name:           "created with the caller as actor",
			Path:           "/things",
			Body:           reasonRequest{Reason: "ok"},
			Profile:        actor,
			ExpectedStatus: http.StatusCreated,
			Validate: func(t *testing.T, w *httptest.ResponseRecorder) {
				data := testutil.DecodeData[map[string]string](t, w)
				assert.Equal(t, actor.ID.String(), data["actor"])
			},
		},
		{
			Name:           "missing reason",
			Path:           "/things",
			Body:           map[string]string{},
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   dto.ErrCodeValidation,
		},
		{
			Name:           "reason too long",
			Path:           "/things",
			Body:           reasonRequest{Reason: "far too long a reason"},
			ExpectedStatus: http.StatusBadRequest,
		},
	})

	transition := func(c *gin.Context) {
		byID(h, c, asActor(c, func(_ context.Context, actorID, id uuid.UUID) (string, error) {
			if actorID == uuid.Nil {
				return "", shared.ErrUnauthorized
			}
			return id.String(), nil
		}))
	}
	id := uuid.New()
	testutil.RunHTTPTestCases(t, http.MethodPost, "/things/:id/close", transition, []testutil.HTTPTestCase{
		{Name: "with actor", Path: "/things/" + id.String() + "/close", Profile: actor, ExpectedStatus: http.StatusOK},
		{Name: "domain error", Path: "/things/" + id.String() + "/close", ExpectedStatus: http.StatusUnauthorized, ExpectedCode: dto.ErrCodeUnauthorized},
		{Name: "bad id", Path: "/things/x/close", Profile: actor, ExpectedStatus: http.StatusBadRequest},
	})
}
