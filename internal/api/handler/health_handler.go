package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger 可做存活探测的依赖（数据库、Redis）
type Pinger func(ctx context.Context) error

// healthTimeout 单个依赖的探测超时
const healthTimeout = 2 * time.Second

// Health 健康检查；db 必需，cache 可选（nil 表示未启用）
// GET /health
func Health(db, cache Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		checks := gin.H{}
		status := http.StatusOK

		if db != nil {
			if err := db(ctx); err != nil {
				checks["database"] = "down"
				status = http.StatusServiceUnavailable
			} else {
				checks["database"] = "ok"
			}
		}
		if cache == nil {
			checks["redis"] = "disabled"
		} else if err := cache(ctx); err != nil {
			// Redis 只用于限流，不可用时降级放行，不影响整体状态
			checks["redis"] = "down"
		} else {
			checks["redis"] = "ok"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "unavailable"
		}
		c.JSON(status, gin.H{"status": state, "checks": checks})
	}
}
