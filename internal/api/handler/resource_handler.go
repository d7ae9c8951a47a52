package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"semester-manager/backend/internal/dto"
	"semester-manager/backend/internal/service"
	"semester-manager/backend/pkg/response"
)

// ResourceHandler 学习资料模块 HTTP 处理器
type ResourceHandler struct {
	resourceSvc service.ResourceService
}

// NewResourceHandler 创建 ResourceHandler
func NewResourceHandler(resourceSvc service.ResourceService) *ResourceHandler {
	return &ResourceHandler{resourceSvc: resourceSvc}
}

// CreateResource 创建资料
// POST /api/v1/subjects/:id/resources
func (h *ResourceHandler) CreateResource(c *gin.Context) {
	var req dto.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resource, err := h.resourceSvc.Create(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleResourceError(c, err)
		return
	}

	response.Created(c, resource)
}

// ListResources 获取课程资料列表
// GET /api/v1/subjects/:id/resources?type=&completed=&topic_id=
func (h *ResourceHandler) ListResources(c *gin.Context) {
	var req dto.ResourceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resources, err := h.resourceSvc.List(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleResourceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": resources})
}

// GetResource 获取资料详情
// GET /api/v1/resources/:resourceId
func (h *ResourceHandler) GetResource(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resource, err := h.resourceSvc.GetByID(c.Request.Context(), c.Param("resourceId"), callerID)
	if err != nil {
		h.handleResourceError(c, err)
		return
	}

	response.OK(c, resource)
}

// UpdateResource 更新资料
// PUT /api/v1/resources/:resourceId
func (h *ResourceHandler) UpdateResource(c *gin.Context) {
	var req dto.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resource, err := h.resourceSvc.Update(c.Request.Context(), c.Param("resourceId"), &req, callerID)
	if err != nil {
		h.handleResourceError(c, err)
		return
	}

	response.OK(c, resource)
}

// DeleteResource 删除资料（同时删除已上传文件）
// DELETE /api/v1/resources/:resourceId
func (h *ResourceHandler) DeleteResource(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.resourceSvc.Delete(c.Request.Context(), c.Param("resourceId"), callerID); err != nil {
		h.handleResourceError(c, err)
		return
	}

	response.OK(c, nil)
}

// ToggleComplete 切换完成状态
// PATCH /api/v1/resources/:resourceId/complete
func (h *ResourceHandler) ToggleComplete(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resource, err := h.resourceSvc.ToggleComplete(c.Request.Context(), c.Param("resourceId"), callerID)
	if err != nil {
		h.handleResourceError(c, err)
		return
	}

	response.OK(c, resource)
}

// LinkPersonalNotes 关联个人笔记
// POST /api/v1/resources/:resourceId/link-notes
func (h *ResourceHandler) LinkPersonalNotes(c *gin.Context) {
	var req dto.LinkNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resource, err := h.resourceSvc.LinkPersonalNotes(c.Request.Context(), c.Param("resourceId"), &req, callerID)
	if err != nil {
		h.handleResourceError(c, err)
		return
	}

	response.OK(c, resource)
}

// Upload 上传文件到对象存储，返回 url / public_id / resource_type
// POST /api/v1/uploads  (multipart/form-data, 字段名 file)
func (h *ResourceHandler) Upload(c *gin.Context) {
	if _, ok := MustGetUserID(c); !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			response.BadRequest(c, response.CodeBadRequest, "请选择要上传的文件")
			return
		}
		bindFailed(c, err)
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, response.CodeBadRequest, "无法读取上传文件")
		return
	}
	defer f.Close()

	result, err := h.resourceSvc.Upload(c.Request.Context(), f, fh.Filename)
	if err != nil {
		h.handleResourceError(c, err)
		return
	}

	response.Created(c, result)
}

// handleResourceError 统一处理资料模块业务错误
func (h *ResourceHandler) handleResourceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrResourceNotFound):
		response.NotFound(c, 22001, "资料不存在")
	case errors.Is(err, service.ErrResourceTopicMismatch):
		response.BadRequest(c, 22002, "知识点不属于该课程")
	case errors.Is(err, service.ErrTopicNotFound):
		response.NotFound(c, 21001, "知识点不存在")
	case errors.Is(err, service.ErrStorageUnavailable):
		response.Error(c, http.StatusServiceUnavailable, 22003, "文件存储服务未配置")
	case errors.Is(err, service.ErrUploadFailed):
		response.Error(c, http.StatusBadGateway, 22004, "文件上传失败")
	default:
		handleCommonError(c, err)
	}
}
