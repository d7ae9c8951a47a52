package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"semester-manager/backend/internal/api/middleware"
	"semester-manager/backend/internal/service"
	apperrors "semester-manager/backend/pkg/errors"
	"semester-manager/backend/pkg/response"
)

// 课程归属相关错误码（各模块共用）
const (
	codeSubjectNotFound  = 20001
	codeSubjectForbidden = 20002
)

// bindFailed 统一处理请求绑定失败：请求体超限返回 413，其余 400
func bindFailed(c *gin.Context, err error) {
	if middleware.IsBodyTooLarge(err) {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "请求体过大")
		return
	}
	response.BindError(c, err)
}

// handleCommonError 各模块 handleXxxError 的兜底：课程归属、数据校验与 500
func handleCommonError(c *gin.Context, err error) {
	if ve, ok := apperrors.AsValidation(err); ok {
		response.BadRequest(c, response.CodeBadRequest, ve.Message)
		return
	}
	switch {
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, codeSubjectNotFound, "课程不存在")
	case errors.Is(err, service.ErrSubjectForbidden):
		response.Forbidden(c, codeSubjectForbidden, "无权访问该课程")
	default:
		response.InternalError(c, err)
	}
}
