package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"optimus/backend/pkg/metrics"
)

// unmatchedRoute 未命中任何路由时的 route 标签，避免按原始路径产生无界标签
const unmatchedRoute = "unmatched"

// Metrics 记录请求耗时；route 标签取路由模板（如 /api/v1/datasets/:name）
func Metrics(recorder *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		recorder.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
