package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admincms/internal/query"
	"admincms/internal/service"
	"admincms/pkg/flash"
	"admincms/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func run(t *testing.T, path string, h gin.HandlerFunc) map[string]interface{} {
	t.Helper()
	r := gin.New()
	r.GET("/items/:id", h)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code float64
	}{
		{service.Invalid("slug", "taken"), 422},
		{fmt.Errorf("wrapped: %w", service.ErrNotFound), 404},
		{service.ErrForbidden, 403},
		{service.ErrInvalidCredentials, 401},
		{service.ErrAccountSuspended, 403},
		{errors.New("boom"), 500},
	}
	for _, tt := range tests {
		body := run(t, "/items/1", func(c *gin.Context) { Error(c, logger.NewNop(), tt.err, "") })
		assert.Equal(t, tt.code, body["code"], tt.err.Error())
	}

	body := run(t, "/items/1", func(c *gin.Context) { Error(c, logger.NewNop(), service.Invalid("slug", "taken"), "") })
	assert.Equal(t, map[string]interface{}{"slug": "taken"}, body["errors"])

	body = run(t, "/items/1", func(c *gin.Context) { Error(c, logger.NewNop(), errors.New("secret detail"), "") })
	assert.NotContains(t, body["msg"], "secret")
}

func TestListEnvelope(t *testing.T) {
	q := &query.Query{Page: 2, PerPage: 10}
	page := query.NewPage([]string{"a"}, 11, q)

	body := run(t, "/items/1", func(c *gin.Context) {
		List(c, page, &flash.Message{Level: flash.LevelSuccess, Text: "saved"})
	})
	assert.Equal(t, float64(200), body["code"])
	assert.Equal(t, []interface{}{"a"}, body["data"])
	assert.Equal(t, map[string]interface{}{"page": float64(2), "page_size": float64(10), "pages": float64(2), "total": float64(11)}, body["pagination"])
	assert.Equal(t, map[string]interface{}{"level": "success", "text": "saved"}, body["flash"])

	body = run(t, "/items/1", func(c *gin.Context) { List(c, page, nil) })
	assert.NotContains(t, body, "flash")
}

func TestWrittenAndID(t *testing.T) {
	body := run(t, "/items/1", func(c *gin.Context) { Written(c, "ok", nil, "/admin/items") })
	assert.Equal(t, "/admin/items", body["redirect"])

	body = run(t, "/items/abc", func(c *gin.Context) {
		if _, ok := ID(c); ok {
			OK(c, "unexpected", nil)
		}
	})
	assert.Equal(t, float64(400), body["code"])

	body = run(t, "/items/7", func(c *gin.Context) {
		if id, ok := ID(c); ok {
			OK(c, "ok", id)
		}
	})
	assert.Equal(t, float64(7), body["data"])
}
