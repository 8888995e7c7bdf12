package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-academic-api/internal/models"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestJSONWrapsDataAndPagination(t *testing.T) {
	c, w := newContext()

	JSON(c, http.StatusOK, []string{"a"}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.NotNil(t, body["pagination"])
	assert.Nil(t, body["error"])
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestErrorUsesStatusAndCode(t *testing.T) {
	c, w := newContext()

	Error(c, appErrors.Clone(appErrors.ErrSlotNotFound, "roster slot not found"))

	require.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "SLOT_NOT_FOUND", errBody["code"])
	assert.Empty(t, c.Errors)
}

func TestErrorHidesInternalCause(t *testing.T) {
	c, w := newContext()

	Error(c, errors.New("pq: connection refused"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, appErrors.ErrInternal.Message, errBody["message"])
	assert.Len(t, c.Errors, 1)
}
