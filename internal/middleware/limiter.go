package middleware

import (
	"math"
	"strconv"

	"github.com/haierkeys/site-text-service/internal/metrics"
	"github.com/haierkeys/site-text-service/pkg/code"
	"github.com/haierkeys/site-text-service/pkg/errors"
	"github.com/haierkeys/site-text-service/pkg/limiter"

	"github.com/gin-gonic/gin"
)

// RateLimiter rejects a request with 429 once its bucket is empty. Routes without a rule pass through.
// RateLimiter 令牌桶耗尽时返回 429 并附带 Retry-After；未配置规则的路由直接放行
func RateLimiter(l limiter.Face, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket, ok := l.GetBucket(l.Key(c))
		if !ok || bucket.TakeAvailable(1) > 0 {
			c.Next()
			return
		}

		// 每个令牌的补充时间，向上取整到秒
		if rate := bucket.Rate(); rate > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(1/rate-1e-6))))
		}
		m.ObserveRateLimited(c.FullPath())
		errors.ErrorResponse(c, code.ErrorTooManyRequests)
	}
}
