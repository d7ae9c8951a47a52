package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"semester-manager/backend/internal/api/middleware"
	"semester-manager/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.CtxUserID)
	if s == "" {
		response.Unauthorized(c, response.CodeUnauthorized, "未认证")
		return "", false
	}
	return s, true
}

// MustGetToken 提取当前 Access Token 的 jti 与过期时间（登出拉黑用）
func MustGetToken(c *gin.Context) (string, time.Time, bool) {
	jti := c.GetString(middleware.CtxTokenID)
	if jti == "" {
		response.Unauthorized(c, response.CodeUnauthorized, "未认证")
		return "", time.Time{}, false
	}
	return jti, c.GetTime(middleware.CtxTokenExpiresAt), true
}
