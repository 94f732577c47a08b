package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSuccessPageFlattensPageInfo(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/users", func(c *gin.Context) {
		SuccessPage(c, http.StatusOK, []string{"a"}, &PageInfo{Page: 2, Limit: 1, HasMore: true, Status: "approved"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []interface{}{"a"}, body["data"])
	assert.EqualValues(t, 2, body["page"])
	assert.EqualValues(t, 1, body["limit"])
	assert.Equal(t, true, body["hasMore"])
	assert.Equal(t, "approved", body["status"])
	assert.NotContains(t, body, "error")
	assert.Equal(t, w.Header().Get(HeaderRequestID), body["metadata"].(map[string]interface{})["request_id"])
}

func TestFailOmitsPageInfo(t *testing.T) {
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		Fail(c, http.StatusForbidden, ErrPermissionDenied)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotContains(t, body, "page")
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "PERMISSION_DENIED", errBody["code"])
	assert.Equal(t, "Bu işlem için yetkiniz yok.", errBody["message"])
}

func TestRequestIDReusesValidInbound(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "6f1c1d1e-0d5c-4d43-9b7e-2a3f4c5d6e7f")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "6f1c1d1e-0d5c-4d43-9b7e-2a3f4c5d6e7f", w.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Header().Get(HeaderRequestID))
}
