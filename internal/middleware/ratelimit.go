package middleware

import (
	"strconv"
	"sync"
	"time"

	"admincms/internal/auth"
	"admincms/internal/constants"
	"admincms/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// maxLimiters 超过该数量时清空限流器
const maxLimiters = 10000

// RateLimiter 按用户或客户端IP限流
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	logger   *logger.Logger
}

// NewRateLimiter 创建限流器
func NewRateLimiter(requestsPerSecond, burst int, log *logger.Logger) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		logger:   log,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

// Handler 限流中间件，已登录用户按用户ID计数，否则按IP
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if p, ok := auth.Get(c); ok {
			key = "user:" + strconv.FormatInt(p.UserID, 10)
		}

		if !rl.getLimiter(key).Allow() {
			rl.logger.Warn("请求过于频繁", "key", key, "path", c.Request.URL.Path, "method", c.Request.Method)
			abort(c, constants.CodeTooManyRequests, constants.ErrOperationTooFrequent)
			return
		}
		c.Next()
	}
}

// Cleanup 限流器过多时全部丢弃
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if len(rl.limiters) > maxLimiters {
		rl.limiters = make(map[string]*rate.Limiter)
	}
}

// StartCleanup 定期清理限流器，stop 关闭后退出
func (rl *RateLimiter) StartCleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				rl.Cleanup()
			}
		}
	}()
}
