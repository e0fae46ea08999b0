// Package metrics Prometheus指标
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "admincms"

var (
	// Registry 应用使用的指标注册表
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "inflight_requests",
		Help:      "Current number of in-flight HTTP requests.",
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests handled.",
	}, []string{"method", "route", "status", "code"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"method", "route"})

	asyncTasks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "async",
		Name:      "tasks_total",
		Help:      "Async tasks by name and outcome.",
	}, []string{"task", "success"})

	jobRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scheduler",
		Name:      "job_runs_total",
		Help:      "Scheduled job runs by job and outcome.",
	}, []string{"job", "success"})

	jobAffected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scheduler",
		Name:      "affected_rows_total",
		Help:      "Rows changed by scheduled jobs.",
	}, []string{"job"})
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		asyncTasks,
		jobRuns,
		jobAffected,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler 暴露指标的HTTP处理器
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware 记录请求数量和耗时，route 使用路由模板避免标签爆炸
//
// 业务结果码来自响应中的 code 字段，由处理器通过 SetCode 写入上下文。
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		code := Code(c)
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), strconv.Itoa(code)).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

const codeKey = "metrics.code"

// SetCode 记录响应中的业务结果码
func SetCode(c *gin.Context, code int) {
	c.Set(codeKey, code)
}

// Code 读取记录的业务结果码，未记录时为0
func Code(c *gin.Context) int {
	return c.GetInt(codeKey)
}

// RecordTask 记录异步任务结果
func RecordTask(name string, err error) {
	asyncTasks.WithLabelValues(name, strconv.FormatBool(err == nil)).Inc()
}

// RecordJob 记录定时任务结果和影响的行数
func RecordJob(name string, affected int64, err error) {
	jobRuns.WithLabelValues(name, strconv.FormatBool(err == nil)).Inc()
	if err == nil && affected > 0 {
		jobAffected.WithLabelValues(name).Add(float64(affected))
	}
}
