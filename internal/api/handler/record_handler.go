package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"optimus/backend/internal/dto"
	"optimus/backend/internal/service"
	"optimus/backend/pkg/response"
)

// RecordHandler 课程记录浏览 HTTP 处理器
type RecordHandler struct {
	recordSvc service.RecordService
}

// NewRecordHandler 创建 RecordHandler
func NewRecordHandler(recordSvc service.RecordService) *RecordHandler {
	return &RecordHandler{recordSvc: recordSvc}
}

// ListRecords 课程记录列表（院系 + 关键字过滤，分页）
// GET /api/v1/records?dept=CSE&q=smith&page=1&page_size=50
func (h *RecordHandler) ListRecords(c *gin.Context) {
	var req dto.RecordListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.recordSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// ListDepartments 院系列表
// GET /api/v1/records/departments
func (h *RecordHandler) ListDepartments(c *gin.Context) {
	depts, err := h.recordSvc.Departments(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": depts})
}

// ListRelated 与某课程 / 教师 / 教室关联的记录
// GET /api/v1/records/related?type=instructor&label=Smith
func (h *RecordHandler) ListRelated(c *gin.Context) {
	var req dto.RelatedRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.recordSvc.Related(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrRecordInvalidNodeType) {
			response.BadRequest(c, 21001, "关联类型只能为 course / instructor / room")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}
