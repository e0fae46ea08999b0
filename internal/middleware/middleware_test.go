package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	testrequire "github.com/stretchr/testify/require"

	"admincms/internal/auth"
	"admincms/internal/model"
	"admincms/internal/repository"
	"admincms/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUsers map[string]*model.User

func (f fakeUsers) GetByToken(_ context.Context, token string) (*model.User, error) {
	if token == "broken" {
		return nil, errors.New("db down")
	}
	if u, ok := f[token]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

var users = fakeUsers{
	"admin-token":  {ID: 1, Username: "admin", Role: model.RoleAdmin, Status: model.UserStatusActive},
	"editor-token": {ID: 2, Username: "editor", Role: model.RoleEditor, Status: model.UserStatusActive},
	"user-token":   {ID: 3, Username: "reader", Role: model.RoleUser, Status: model.UserStatusActive},
	"gone-token":   {ID: 4, Username: "gone", Role: model.RoleEditor, Status: model.UserStatusSuspended},
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(logger.NewNop()))
	handlers = append(handlers, func(c *gin.Context) {
		p := auth.MustGet(c)
		c.JSON(http.StatusOK, gin.H{"code": 200, "user_id": p.UserID})
	})
	r.GET("/", handlers...)
	return r
}

func call(t *testing.T, r http.Handler, token string) map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	testrequire.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	testrequire.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestUserAuth(t *testing.T) {
	r := newRouter(UserAuth(users, logger.NewNop()))

	tests := []struct {
		name  string
		token string
		code  float64
	}{
		{"missing", "", 401},
		{"unknown", "nope", 401},
		{"lookup error", "broken", 500},
		{"suspended", "gone-token", 403},
		{"raw token", "editor-token", 200},
		{"bearer token", "Bearer editor-token", 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := call(t, r, tt.token)
			assert.Equal(t, tt.code, body["code"])
		})
	}

	body := call(t, r, "bearer admin-token")
	assert.Equal(t, float64(1), body["user_id"])
}

func TestRoleGates(t *testing.T) {
	staff := newRouter(UserAuth(users, logger.NewNop()), RequireStaff())
	admin := newRouter(UserAuth(users, logger.NewNop()), RequireAdmin())

	assert.Equal(t, float64(200), call(t, staff, "editor-token")["code"])
	assert.Equal(t, float64(403), call(t, staff, "user-token")["code"])
	assert.Equal(t, float64(200), call(t, admin, "admin-token")["code"])
	assert.Equal(t, float64(403), call(t, admin, "editor-token")["code"])

	noAuth := newRouter(RequireStaff())
	assert.Equal(t, float64(401), call(t, noAuth, "")["code"])
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2, logger.NewNop())
	r := newRouter(UserAuth(users, logger.NewNop()), rl.Handler())

	assert.Equal(t, float64(200), call(t, r, "editor-token")["code"])
	assert.Equal(t, float64(200), call(t, r, "editor-token")["code"])
	assert.Equal(t, float64(429), call(t, r, "editor-token")["code"])

	// 不同用户单独计数
	assert.Equal(t, float64(200), call(t, r, "admin-token")["code"])
}

func TestRecoveryAndCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(), Recovery(logger.NewNop()))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"code":500`)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/panic", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
