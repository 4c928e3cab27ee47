package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"optimus/backend/internal/dto"
	"optimus/backend/internal/service"
	"optimus/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportFreeSlotsXLSX 导出共同空闲时间（Excel）
// POST /api/v1/export/free-slots.xlsx
func (h *ExportHandler) ExportFreeSlotsXLSX(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	file, err := h.exportSvc.FreeSlotsXLSX(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Buf.Bytes())
}

// ExportFreeSlotsICS 导出共同空闲时间（iCalendar，每周重复）
// POST /api/v1/export/free-slots.ics?week_of=2024-09-02
func (h *ExportHandler) ExportFreeSlotsICS(c *gin.Context) {
	var query dto.ICSExportRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, 25002, "week_of 日期格式应为 YYYY-MM-DD")
		return
	}
	var req dto.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	file, err := h.exportSvc.FreeSlotsICS(c.Request.Context(), &req, query.WeekOf)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Buf.Bytes())
}

// ExportConflicts 导出冲突报告（Excel）
// GET /api/v1/export/conflicts.xlsx
func (h *ExportHandler) ExportConflicts(c *gin.Context) {
	file, err := h.exportSvc.ConflictsXLSX(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoPeople):
		response.BadRequest(c, 25001, "请至少选择一名人员")
	case errors.Is(err, service.ErrExportBadWeek):
		response.BadRequest(c, 25002, "week_of 日期格式应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 23001, "人员组不存在")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
