package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"optimus/backend/internal/dto"
	"optimus/backend/internal/service"
	pkgerrors "optimus/backend/pkg/errors"
	"optimus/backend/pkg/response"
)

// AvailabilityHandler 共同空闲时间 HTTP 处理器
type AvailabilityHandler struct {
	availabilitySvc service.AvailabilityService
}

// NewAvailabilityHandler 创建 AvailabilityHandler
func NewAvailabilityHandler(availabilitySvc service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilitySvc: availabilitySvc}
}

// ListInstructors 教师名录（可按关键字检索）
// GET /api/v1/availability/instructors?q=smi
func (h *AvailabilityHandler) ListInstructors(c *gin.Context) {
	var req dto.InstructorSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.availabilitySvc.Instructors(c.Request.Context(), req.Q)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// ComputeAvailability 计算选中人员的共同空闲时间
// POST /api/v1/availability
func (h *AvailabilityHandler) ComputeAvailability(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.availabilitySvc.Compute(c.Request.Context(), &req)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}
	response.OK(c, result)
}

// ListGroups 人员组列表
// GET /api/v1/availability/groups
func (h *AvailabilityHandler) ListGroups(c *gin.Context) {
	list, err := h.availabilitySvc.ListGroups(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// CreateGroup 创建人员组
// POST /api/v1/availability/groups
func (h *AvailabilityHandler) CreateGroup(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	group, err := h.availabilitySvc.CreateGroup(c.Request.Context(), &req)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}
	response.Created(c, group)
}

// UpdateGroup 更新人员组
// PUT /api/v1/availability/groups/:id
func (h *AvailabilityHandler) UpdateGroup(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "人员组ID不能为空")
		return
	}

	var req dto.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	group, err := h.availabilitySvc.UpdateGroup(c.Request.Context(), id, &req)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}
	response.OK(c, group)
}

// DeleteGroup 删除人员组
// DELETE /api/v1/availability/groups/:id
func (h *AvailabilityHandler) DeleteGroup(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "人员组ID不能为空")
		return
	}

	if err := h.availabilitySvc.DeleteGroup(c.Request.Context(), id); err != nil {
		h.handleAvailabilityError(c, err)
		return
	}
	response.OK(c, nil)
}

// handleAvailabilityError 统一处理共同空闲时间模块业务错误
func (h *AvailabilityHandler) handleAvailabilityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 23001, "人员组不存在")
	case errors.Is(err, service.ErrGroupNameTaken):
		response.Conflict(c, 23002, "人员组名称已存在")
	case errors.Is(err, service.ErrGroupTooFewMembers):
		response.BadRequest(c, 23003, "人员组至少需要 2 名成员")
	case errors.Is(err, service.ErrGroupNameRequired):
		response.BadRequest(c, 23004, "人员组名称不能为空")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 23005, "人员组已被修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
