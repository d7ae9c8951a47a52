package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"semester-manager/backend/internal/dto"
	"semester-manager/backend/internal/service"
	"semester-manager/backend/pkg/response"
)

// DeadlineHandler 截止事项模块 HTTP 处理器
type DeadlineHandler struct {
	deadlineSvc service.DeadlineService
}

// NewDeadlineHandler 创建 DeadlineHandler
func NewDeadlineHandler(deadlineSvc service.DeadlineService) *DeadlineHandler {
	return &DeadlineHandler{deadlineSvc: deadlineSvc}
}

// CreateDeadline 创建截止事项
// POST /api/v1/deadlines
func (h *DeadlineHandler) CreateDeadline(c *gin.Context) {
	var req dto.CreateDeadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	deadline, err := h.deadlineSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleDeadlineError(c, err)
		return
	}

	response.Created(c, deadline)
}

// ListDeadlines 截止事项列表
// GET /api/v1/deadlines?subject_id=&completed=&priority=
func (h *DeadlineHandler) ListDeadlines(c *gin.Context) {
	var req dto.DeadlineListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	deadlines, err := h.deadlineSvc.List(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleDeadlineError(c, err)
		return
	}

	response.OK(c, gin.H{"list": deadlines})
}

// UrgentDeadlines 紧急与已逾期的未完成事项
// GET /api/v1/deadlines/urgent
func (h *DeadlineHandler) UrgentDeadlines(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	deadlines, err := h.deadlineSvc.Urgent(c.Request.Context(), callerID)
	if err != nil {
		h.handleDeadlineError(c, err)
		return
	}

	response.OK(c, gin.H{"list": deadlines})
}

// ExportCalendar 导出未完成事项的 iCalendar 订阅
// GET /api/v1/deadlines/calendar.ics
func (h *DeadlineHandler) ExportCalendar(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	body, err := h.deadlineSvc.ExportCalendar(c.Request.Context(), callerID)
	if err != nil {
		h.handleDeadlineError(c, err)
		return
	}

	response.Attachment(c, "text/calendar; charset=utf-8", "deadlines.ics", body)
}

// UpdateDeadline 更新截止事项
// PUT /api/v1/deadlines/:deadlineId
func (h *DeadlineHandler) UpdateDeadline(c *gin.Context) {
	var req dto.UpdateDeadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	deadline, err := h.deadlineSvc.Update(c.Request.Context(), c.Param("deadlineId"), &req, callerID)
	if err != nil {
		h.handleDeadlineError(c, err)
		return
	}

	response.OK(c, deadline)
}

// ToggleComplete 切换完成状态
// PATCH /api/v1/deadlines/:deadlineId/complete
func (h *DeadlineHandler) ToggleComplete(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	deadline, err := h.deadlineSvc.ToggleComplete(c.Request.Context(), c.Param("deadlineId"), callerID)
	if err != nil {
		h.handleDeadlineError(c, err)
		return
	}

	response.OK(c, deadline)
}

// DeleteDeadline 删除截止事项
// DELETE /api/v1/deadlines/:deadlineId
func (h *DeadlineHandler) DeleteDeadline(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.deadlineSvc.Delete(c.Request.Context(), c.Param("deadlineId"), callerID); err != nil {
		h.handleDeadlineError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleDeadlineError 统一处理截止事项模块业务错误
func (h *DeadlineHandler) handleDeadlineError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrDeadlineNotFound) {
		response.NotFound(c, 25001, "截止事项不存在")
		return
	}
	handleCommonError(c, err)
}
