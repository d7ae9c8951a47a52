package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"semester-manager/backend/internal/dto"
	"semester-manager/backend/internal/service"
	"semester-manager/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportSubjectReport 导出课程学业报告
// GET /api/v1/export/subjects/:id
func (h *ExportHandler) ExportSubjectReport(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportSubjectReport(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	response.Attachment(c, xlsxContentType, filename, buf.Bytes())
}

// ExportStudySessions 导出学习记录明细
// GET /api/v1/export/study-sessions?subject_id=&start_date=&end_date=
func (h *ExportHandler) ExportStudySessions(c *gin.Context) {
	var req dto.StudySessionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportStudySessions(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	response.Attachment(c, xlsxContentType, filename, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrExportGenerateFail) {
		response.Error(c, http.StatusInternalServerError, 27001, "生成 Excel 文件失败")
		return
	}
	handleCommonError(c, err)
}
