package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rejectRequest struct {
	Reason     string `json:"reason" binding:"required"`
	Category   string `json:"category" binding:"omitempty,oneof=cultivation processing"`
	ReviewerID string `json:"reviewer_id" binding:"omitempty,uuid"`
}

func bindAndFormat(t *testing.T, body string) (int, []string, []string) {
	t.Helper()
	SetupValidator()

	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var req rejectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, FormatValidationErrors(err, ""))
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	if w.Code == http.StatusOK {
		return w.Code, nil, nil
	}

	resp := decodeError(t, w)
	var fields, messages []string
	for _, d := range resp.Details {
		fields = append(fields, d.Field)
		messages = append(messages, d.Message)
	}
	return w.Code, fields, messages
}

func TestFormatValidationErrors(t *testing.T) {
	t.Run("missing reason", func(t *testing.T) {
		code, fields, messages := bindAndFormat(t, `{}`)
		assert.Equal(t, http.StatusBadRequest, code)
		require.Equal(t, []string{"reason"}, fields)
		assert.Equal(t, "This field is required", messages[0])
	})

	t.Run("several failures", func(t *testing.T) {
		code, fields, _ := bindAndFormat(t, `{"reason":"x","category":"other","reviewer_id":"nope"}`)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.ElementsMatch(t, []string{"category", "reviewer_id"}, fields)
	})

	t.Run("malformed json", func(t *testing.T) {
		code, fields, _ := bindAndFormat(t, `{`)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Empty(t, fields)
	})

	t.Run("valid", func(t *testing.T) {
		code, _, _ := bindAndFormat(t, `{"reason":"out of spec"}`)
		assert.Equal(t, http.StatusOK, code)
	})
}
