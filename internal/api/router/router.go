package router

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"optimus/backend/config"
	"optimus/backend/internal/api/handler"
	"optimus/backend/internal/api/middleware"
	"optimus/backend/pkg/metrics"
	"optimus/backend/pkg/redis"
)

// jsonBodyLimit 非上传接口的请求体上限
const jsonBodyLimit = 1 << 20

// rateWindow 限流窗口
const rateWindow = time.Minute

// Deps 路由依赖；Redis、Recorder 与 Gatherer 均可为 nil
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Recorder *metrics.Recorder
	Gatherer prometheus.Gatherer
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger, "/health", cfg.Metrics.Path))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(deps.Recorder))
	}

	// ── 健康检查 ──
	r.GET("/health", handler.Health(dbPinger(deps.DB), redisPinger(deps.Redis)))

	// ── Prometheus ──
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler(deps.Gatherer)))
	}

	// ── 限流 ──
	var limiter middleware.RateLimiter
	if cfg.RateLimit.Enabled && deps.Redis != nil {
		limiter = deps.Redis
	}
	uploadLimit := middleware.RateLimit(limiter, "upload", cfg.RateLimit.UploadPerMin, rateWindow, logger)
	computeLimit := middleware.RateLimit(limiter, "compute", cfg.RateLimit.ComputePerMin, rateWindow, logger)
	bodyLimit := middleware.BodyLimit(jsonBodyLimit)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 数据集模块（上传大小由 Handler 按 ingest.max_upload_mb 限制）
		datasets := v1.Group("/datasets")
		{
			datasets.POST("", uploadLimit, h.Dataset.ImportDataset)
			datasets.GET("", h.Dataset.ListDatasets)
			datasets.DELETE("", h.Dataset.ClearDatasets)
			datasets.DELETE("/:name", h.Dataset.DeleteDataset)
		}

		// 课程记录浏览
		records := v1.Group("/records")
		{
			records.GET("", h.Record.ListRecords)
			records.GET("/departments", h.Record.ListDepartments)
			records.GET("/related", h.Record.ListRelated)
		}

		// 冲突检测
		v1.GET("/conflicts", computeLimit, h.Conflict.ListConflicts)

		// 共同空闲时间
		availability := v1.Group("/availability")
		availability.Use(bodyLimit)
		{
			availability.POST("", computeLimit, h.Availability.ComputeAvailability)
			availability.GET("/instructors", h.Availability.ListInstructors)
			availability.GET("/groups", h.Availability.ListGroups)
			availability.POST("/groups", h.Availability.CreateGroup)
			availability.PUT("/groups/:id", h.Availability.UpdateGroup)
			availability.DELETE("/groups/:id", h.Availability.DeleteGroup)
		}

		// 统计分析
		analytics := v1.Group("/analytics")
		{
			analytics.GET("/heatmap", h.Analytics.GetHeatmap)
			analytics.GET("/rooms", h.Analytics.ListRooms)
			analytics.GET("/departments", h.Analytics.ListDepartments)
		}

		// 导出
		export := v1.Group("/export")
		export.Use(bodyLimit, computeLimit)
		{
			export.POST("/free-slots.xlsx", h.Export.ExportFreeSlotsXLSX)
			export.POST("/free-slots.ics", h.Export.ExportFreeSlotsICS)
			export.GET("/conflicts.xlsx", h.Export.ExportConflicts)
		}
	}

	return r
}

func dbPinger(db *gorm.DB) handler.Pinger {
	if db == nil {
		return nil
	}
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func redisPinger(rdb *redis.Client) handler.Pinger {
	if rdb == nil {
		return nil
	}
	return rdb.Ping
}
