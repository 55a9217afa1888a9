package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/cultivo/backend/internal/domain/identity"
	"github.com/cultivo/backend/internal/interfaces/http/dto"
	"github.com/cultivo/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// HTTPTestCase is one request against a single mounted handler.
type HTTPTestCase struct {
	Name           string
	Method         string
	Path           string
	Body           interface{}
	Profile        *identity.Profile
	ExpectedStatus int
	ExpectedCode   string
	Validate       func(t *testing.T, w *httptest.ResponseRecorder)
}

// Envelope is the decoded response envelope.
type Envelope struct {
	Success bool                   `json:"success"`
	Data    json.RawMessage        `json:"data"`
	Message string                 `json:"message"`
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details []dto.ValidationDetail `json:"details"`
}

// RunHTTPTestCases mounts handler on method+route and runs every case.
// Route carries gin path parameters, e.g. "/qms/ebr/:id/reject".
func RunHTTPTestCases(t *testing.T, method, route string, handler gin.HandlerFunc, cases []HTTPTestCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			if tc.Method == "" {
				tc.Method = method
			}
			w := Serve(t, method, route, handler, tc)
			if tc.ExpectedStatus != 0 {
				assert.Equal(t, tc.ExpectedStatus, w.Code, "body: %s", w.Body.String())
			}
			if tc.ExpectedCode != "" {
				assert.Equal(t, tc.ExpectedCode, DecodeEnvelope(t, w).Code)
			}
			if tc.Validate != nil {
				tc.Validate(t, w)
			}
		})
	}
}

// Serve runs a single request through a fresh engine holding only handler.
func Serve(t *testing.T, method, route string, handler gin.HandlerFunc, tc HTTPTestCase) *httptest.ResponseRecorder {
	t.Helper()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	if tc.Profile != nil {
		profile := tc.Profile
		engine.Use(func(c *gin.Context) {
			c.Set(middleware.ProfileKey, profile)
			c.Next()
		})
	}
	engine.Handle(method, route, handler)

	var body io.Reader
	if tc.Body != nil {
		body = ToJSONReader(t, tc.Body)
	}
	reqMethod := tc.Method
	if reqMethod == "" {
		reqMethod = method
	}
	req := httptest.NewRequest(reqMethod, tc.Path, body)
	if tc.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

// DecodeEnvelope parses the response body.
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return env
}

// DecodeData parses the envelope data into T.
func DecodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	env := DecodeEnvelope(t, w)
	require.True(t, env.Success, "error response: %s", env.Error)
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

// AssertError checks the status and error code of a failed response.
func AssertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, w.Code, "body: %s", w.Body.String())
	env := DecodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, code, env.Code)
}

// ToJSONReader converts a value to a JSON io.Reader.
func ToJSONReader(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal to JSON")
	return bytes.NewReader(data)
}
