package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"semester-manager/backend/internal/dto"
	"semester-manager/backend/internal/model"
	"semester-manager/backend/internal/service"
	"semester-manager/backend/pkg/response"
)

// TopicHandler 知识点模块 HTTP 处理器
type TopicHandler struct {
	topicSvc service.TopicService
}

// NewTopicHandler 创建 TopicHandler
func NewTopicHandler(topicSvc service.TopicService) *TopicHandler {
	return &TopicHandler{topicSvc: topicSvc}
}

// CreateTopic 创建知识点
// POST /api/v1/subjects/:id/topics
func (h *TopicHandler) CreateTopic(c *gin.Context) {
	var req dto.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	topic, err := h.topicSvc.Create(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleTopicError(c, err)
		return
	}

	response.Created(c, topic)
}

// ListTopics 获取课程下的知识点（附资料完成统计）
// GET /api/v1/subjects/:id/topics
func (h *TopicHandler) ListTopics(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	topics, err := h.topicSvc.ListBySubject(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleTopicError(c, err)
		return
	}

	response.OK(c, gin.H{"list": topics})
}

// WeakTopics 获取薄弱知识点
// GET /api/v1/subjects/:id/weak-topics
func (h *TopicHandler) WeakTopics(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	topics, err := h.topicSvc.WeakTopics(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleTopicError(c, err)
		return
	}

	response.OK(c, gin.H{"list": topics})
}

// GetTopic 获取知识点详情
// GET /api/v1/topics/:topicId
func (h *TopicHandler) GetTopic(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	topic, err := h.topicSvc.GetByID(c.Request.Context(), c.Param("topicId"), callerID)
	if err != nil {
		h.handleTopicError(c, err)
		return
	}

	response.OK(c, topic)
}

// UpdateTopic 更新知识点
// PUT /api/v1/topics/:topicId
func (h *TopicHandler) UpdateTopic(c *gin.Context) {
	var req dto.UpdateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	topic, err := h.topicSvc.Update(c.Request.Context(), c.Param("topicId"), &req, callerID)
	if err != nil {
		h.handleTopicError(c, err)
		return
	}

	response.OK(c, topic)
}

// UpdateTopicStatus 更新掌握状态
// PATCH /api/v1/topics/:topicId/status
func (h *TopicHandler) UpdateTopicStatus(c *gin.Context) {
	var req dto.UpdateTopicStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	topic, err := h.topicSvc.UpdateStatus(c.Request.Context(), c.Param("topicId"), model.TopicStatus(req.Status), callerID)
	if err != nil {
		h.handleTopicError(c, err)
		return
	}

	response.OK(c, topic)
}

// DeleteTopic 删除知识点
// DELETE /api/v1/topics/:topicId
func (h *TopicHandler) DeleteTopic(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.topicSvc.Delete(c.Request.Context(), c.Param("topicId"), callerID); err != nil {
		h.handleTopicError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleTopicError 统一处理知识点模块业务错误
func (h *TopicHandler) handleTopicError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrTopicNotFound) {
		response.NotFound(c, 21001, "知识点不存在")
		return
	}
	handleCommonError(c, err)
}
