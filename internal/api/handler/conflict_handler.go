package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"optimus/backend/internal/dto"
	"optimus/backend/internal/service"
	"optimus/backend/pkg/response"
)

// ConflictHandler 冲突检测 HTTP 处理器
type ConflictHandler struct {
	conflictSvc service.ConflictService
}

// NewConflictHandler 创建 ConflictHandler
func NewConflictHandler(conflictSvc service.ConflictService) *ConflictHandler {
	return &ConflictHandler{conflictSvc: conflictSvc}
}

// ListConflicts 对当前全部课程记录做冲突检测
// GET /api/v1/conflicts?kind=ROOM
func (h *ConflictHandler) ListConflicts(c *gin.Context) {
	var req dto.ConflictListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.conflictSvc.List(c.Request.Context(), req.Kind)
	if err != nil {
		if errors.Is(err, service.ErrConflictInvalidKind) {
			response.BadRequest(c, 22001, "冲突类型只能为 INSTRUCTOR 或 ROOM")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}
