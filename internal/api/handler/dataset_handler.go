package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"optimus/backend/internal/dto"
	"optimus/backend/internal/engine"
	"optimus/backend/internal/service"
	"optimus/backend/pkg/response"
)

// DatasetHandler 数据集模块 HTTP 处理器
type DatasetHandler struct {
	datasetSvc service.DatasetService
	maxUpload  int64
}

// NewDatasetHandler 创建 DatasetHandler
// maxUpload 为上传文件大小上限（字节）
func NewDatasetHandler(datasetSvc service.DatasetService, maxUpload int64) *DatasetHandler {
	return &DatasetHandler{datasetSvc: datasetSvc, maxUpload: maxUpload}
}

// ImportDataset 上传并导入课表文件
// POST /api/v1/datasets  (multipart/form-data, 字段 file)
func (h *DatasetHandler) ImportDataset(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "上传文件过大")
			return
		}
		response.BadRequest(c, 10001, "请上传文件（字段名 file）")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, 20007, "无法读取上传文件")
		return
	}
	defer file.Close()

	result, err := h.datasetSvc.Import(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		h.handleDatasetError(c, err)
		return
	}

	response.Created(c, result)
}

// ListDatasets 已导入数据集列表
// GET /api/v1/datasets
func (h *DatasetHandler) ListDatasets(c *gin.Context) {
	list, err := h.datasetSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// DeleteDataset 删除单个数据集及其课程记录
// DELETE /api/v1/datasets/:name
func (h *DatasetHandler) DeleteDataset(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		response.BadRequest(c, 10001, "文件名不能为空")
		return
	}

	if err := h.datasetSvc.Delete(c.Request.Context(), name); err != nil {
		h.handleDatasetError(c, err)
		return
	}
	response.OK(c, nil)
}

// ClearDatasets 清空全部数据集
// DELETE /api/v1/datasets
func (h *DatasetHandler) ClearDatasets(c *gin.Context) {
	n, err := h.datasetSvc.Clear(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, dto.ClearResponse{Deleted: n})
}

// handleDatasetError 统一处理数据集模块业务错误
func (h *DatasetHandler) handleDatasetError(c *gin.Context, err error) {
	var parseErr *engine.ParseFailure
	switch {
	case errors.Is(err, service.ErrDatasetDuplicate):
		response.Conflict(c, 20001, "同名文件已导入，请先删除后再上传")
	case errors.Is(err, service.ErrDatasetUnsupported):
		response.BadRequest(c, 20002, "不支持的文件格式，仅支持 .csv / .tsv / .xlsx")
	case errors.As(err, &parseErr):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20003, "文件解析失败", parseErr.Cause.Error())
	case errors.Is(err, service.ErrDatasetEmpty):
		response.UnprocessableEntity(c, 20004, "文件中没有有效的课程记录")
	case errors.Is(err, service.ErrDatasetBadName):
		response.BadRequest(c, 20005, "文件名无效")
	case errors.Is(err, service.ErrDatasetNotFound):
		response.NotFound(c, 20006, "数据集不存在")
	default:
		response.InternalError(c)
	}
}
