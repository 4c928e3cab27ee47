package handler

import (
	"github.com/gin-gonic/gin"

	"optimus/backend/internal/dto"
	"optimus/backend/internal/service"
	"optimus/backend/pkg/response"
)

// AnalyticsHandler 统计分析 HTTP 处理器
type AnalyticsHandler struct {
	analyticsSvc service.AnalyticsService
}

// NewAnalyticsHandler 创建 AnalyticsHandler
func NewAnalyticsHandler(analyticsSvc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsSvc: analyticsSvc}
}

// GetHeatmap 课时密度热力图
// GET /api/v1/analytics/heatmap
func (h *AnalyticsHandler) GetHeatmap(c *gin.Context) {
	hm, err := h.analyticsSvc.Heatmap(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, hm)
}

// ListRooms 教室使用排行
// GET /api/v1/analytics/rooms?top=20
func (h *AnalyticsHandler) ListRooms(c *gin.Context) {
	var req dto.RoomUsageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.analyticsSvc.Rooms(c.Request.Context(), req.Top)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// ListDepartments 各院系课程数
// GET /api/v1/analytics/departments
func (h *AnalyticsHandler) ListDepartments(c *gin.Context) {
	list, err := h.analyticsSvc.Departments(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}
