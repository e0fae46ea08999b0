package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/posts/:id", func(c *gin.Context) {
		SetCode(c, 404)
		c.JSON(http.StatusOK, gin.H{"code": 404})
	})
	r.GET("/metrics", gin.WrapH(Handler()))

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/posts/:id", "200", "404"))
	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts/"+id, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, before+2, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/posts/:id", "200", "404")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "admincms_http_requests_total")
}

func TestRecordJob(t *testing.T) {
	before := testutil.ToFloat64(jobAffected.WithLabelValues("test_job"))
	RecordJob("test_job", 3, nil)
	RecordJob("test_job", 5, errors.New("failed"))
	assert.Equal(t, before+3, testutil.ToFloat64(jobAffected.WithLabelValues("test_job")))
	assert.Equal(t, float64(1), testutil.ToFloat64(jobRuns.WithLabelValues("test_job", "false")))

	RecordTask("cache", nil)
	assert.GreaterOrEqual(t, testutil.ToFloat64(asyncTasks.WithLabelValues("cache", "true")), float64(1))
}
