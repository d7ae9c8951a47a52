package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"semester-manager/backend/internal/dto"
	"semester-manager/backend/internal/service"
	"semester-manager/backend/pkg/response"
)

// GradingHandler 评分模块 HTTP 处理器
type GradingHandler struct {
	gradingSvc service.GradingService
}

// NewGradingHandler 创建 GradingHandler
func NewGradingHandler(gradingSvc service.GradingService) *GradingHandler {
	return &GradingHandler{gradingSvc: gradingSvc}
}

// SetScheme 设置评分方案（覆盖式，POST/PUT 同义）
// POST /api/v1/subjects/:id/grading
// PUT  /api/v1/subjects/:id/grading
func (h *GradingHandler) SetScheme(c *gin.Context) {
	var req dto.SetGradingSchemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	scheme, err := h.gradingSvc.SetScheme(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleGradingError(c, err)
		return
	}

	response.OK(c, scheme)
}

// GetScheme 获取评分方案
// GET /api/v1/subjects/:id/grading
func (h *GradingHandler) GetScheme(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	scheme, err := h.gradingSvc.GetScheme(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleGradingError(c, err)
		return
	}

	response.OK(c, scheme)
}

// AddScore 录入成绩
// POST /api/v1/subjects/:id/scores
func (h *GradingHandler) AddScore(c *gin.Context) {
	var req dto.CreateScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	score, err := h.gradingSvc.AddScore(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleGradingError(c, err)
		return
	}

	response.Created(c, score)
}

// ListScores 获取课程成绩
// GET /api/v1/subjects/:id/scores
func (h *GradingHandler) ListScores(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	scores, err := h.gradingSvc.ListScores(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleGradingError(c, err)
		return
	}

	response.OK(c, gin.H{"list": scores})
}

// Calculate 计算当前总评
// GET /api/v1/subjects/:id/calculate
func (h *GradingHandler) Calculate(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	summary, err := h.gradingSvc.Calculate(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleGradingError(c, err)
		return
	}

	response.OK(c, summary)
}

// UpdateScore 更新成绩
// PUT /api/v1/scores/:scoreId
func (h *GradingHandler) UpdateScore(c *gin.Context) {
	var req dto.UpdateScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	score, err := h.gradingSvc.UpdateScore(c.Request.Context(), c.Param("scoreId"), &req, callerID)
	if err != nil {
		h.handleGradingError(c, err)
		return
	}

	response.OK(c, score)
}

// DeleteScore 删除成绩
// DELETE /api/v1/scores/:scoreId
func (h *GradingHandler) DeleteScore(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.gradingSvc.DeleteScore(c.Request.Context(), c.Param("scoreId"), callerID); err != nil {
		h.handleGradingError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleGradingError 统一处理评分模块业务错误
func (h *GradingHandler) handleGradingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGradingSchemeNotFound):
		response.NotFound(c, 23001, "该课程尚未设置评分方案")
	case errors.Is(err, service.ErrScoreNotFound):
		response.NotFound(c, 23002, "成绩记录不存在")
	default:
		handleCommonError(c, err)
	}
}
