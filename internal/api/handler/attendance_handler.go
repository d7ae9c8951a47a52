package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"semester-manager/backend/internal/dto"
	"semester-manager/backend/internal/service"
	"semester-manager/backend/pkg/response"
)

// AttendanceHandler 出勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// MarkAttendance 记录出勤
// POST /api/v1/subjects/:id/attendance
func (h *AttendanceHandler) MarkAttendance(c *gin.Context) {
	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	record, err := h.attendanceSvc.Mark(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.Created(c, record)
}

// ListAttendance 出勤记录列表
// GET /api/v1/subjects/:id/attendance?start_date=&end_date=
func (h *AttendanceHandler) ListAttendance(c *gin.Context) {
	var req dto.DateRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	records, err := h.attendanceSvc.List(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": records})
}

// AttendanceStats 出勤统计
// GET /api/v1/subjects/:id/attendance/stats
func (h *AttendanceHandler) AttendanceStats(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	stats, err := h.attendanceSvc.Stats(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, stats)
}

// UpdateAttendance 更新出勤记录
// PUT /api/v1/attendance/:attendanceId
func (h *AttendanceHandler) UpdateAttendance(c *gin.Context) {
	var req dto.UpdateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	record, err := h.attendanceSvc.Update(c.Request.Context(), c.Param("attendanceId"), &req, callerID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, record)
}

// DeleteAttendance 删除出勤记录
// DELETE /api/v1/attendance/:attendanceId
func (h *AttendanceHandler) DeleteAttendance(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.attendanceSvc.Delete(c.Request.Context(), c.Param("attendanceId"), callerID); err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleAttendanceError 统一处理出勤模块业务错误
func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrAttendanceNotFound) {
		response.NotFound(c, 24001, "出勤记录不存在")
		return
	}
	handleCommonError(c, err)
}
