package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"semester-manager/backend/internal/dto"
	"semester-manager/backend/internal/service"
	"semester-manager/backend/pkg/response"
)

// StudyHandler 学习记录模块 HTTP 处理器
type StudyHandler struct {
	studySvc service.StudyService
}

// NewStudyHandler 创建 StudyHandler
func NewStudyHandler(studySvc service.StudyService) *StudyHandler {
	return &StudyHandler{studySvc: studySvc}
}

// CreateSession 创建学习记录
// POST /api/v1/study-sessions
func (h *StudyHandler) CreateSession(c *gin.Context) {
	var req dto.CreateStudySessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	session, err := h.studySvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleStudyError(c, err)
		return
	}

	response.Created(c, session)
}

// ListSessions 学习记录列表
// GET /api/v1/study-sessions?subject_id=&start_date=&end_date=
func (h *StudyHandler) ListSessions(c *gin.Context) {
	var req dto.StudySessionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sessions, err := h.studySvc.List(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleStudyError(c, err)
		return
	}

	response.OK(c, gin.H{"list": sessions})
}

// Stats 学习时长统计
// GET /api/v1/study-sessions/stats?period=day|week|month
func (h *StudyHandler) Stats(c *gin.Context) {
	var req dto.StudyStatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	stats, err := h.studySvc.Stats(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleStudyError(c, err)
		return
	}

	response.OK(c, stats)
}

// UpdateSession 更新学习记录
// PUT /api/v1/study-sessions/:sessionId
func (h *StudyHandler) UpdateSession(c *gin.Context) {
	var req dto.UpdateStudySessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	session, err := h.studySvc.Update(c.Request.Context(), c.Param("sessionId"), &req, callerID)
	if err != nil {
		h.handleStudyError(c, err)
		return
	}

	response.OK(c, session)
}

// DeleteSession 删除学习记录
// DELETE /api/v1/study-sessions/:sessionId
func (h *StudyHandler) DeleteSession(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.studySvc.Delete(c.Request.Context(), c.Param("sessionId"), callerID); err != nil {
		h.handleStudyError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleStudyError 统一处理学习记录模块业务错误
func (h *StudyHandler) handleStudyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudySessionNotFound):
		response.NotFound(c, 26001, "学习记录不存在")
	case errors.Is(err, service.ErrStudyTopicMismatch):
		response.BadRequest(c, 26002, "知识点不属于该课程")
	case errors.Is(err, service.ErrTopicNotFound):
		response.NotFound(c, 21001, "知识点不存在")
	default:
		handleCommonError(c, err)
	}
}
