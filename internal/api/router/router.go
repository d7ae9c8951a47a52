package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"semester-manager/backend/config"
	"semester-manager/backend/internal/api/handler"
	"semester-manager/backend/internal/api/middleware"
	"semester-manager/backend/pkg/jwt"
	"semester-manager/backend/pkg/response"
)

const mb = 1 << 20

// HealthCheck 依赖健康检查（Mongo / Postgres / Redis 的 Ping）
type HealthCheck func(ctx context.Context) error

// Deps 路由所需的基础设施依赖
// Tokens / Limiter 为 nil 时对应功能降级（Redis 不可用）
type Deps struct {
	JWT      *jwt.Manager
	Tokens   middleware.TokenChecker
	Limiter  middleware.RateLimiter
	Registry *prometheus.Registry
	Checks   map[string]HealthCheck
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, deps Deps, logger *zap.Logger) *gin.Engine {
	binding.EnableDecoderDisallowUnknownFields = true

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(reg)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger, "/health", "/metrics"))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(metrics.Handler())

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, response.CodeNotFound, "接口不存在")
	})

	// ── 健康检查与指标 ──
	r.GET("/health", healthHandler(deps.Checks))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	bodyLimit := middleware.BodyLimit(cfg.Server.BodyLimitMB * mb)
	rateLimit := middleware.RateLimit(deps.Limiter, cfg.Server.RateLimit.Limit, cfg.Server.RateLimit.Window)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，限流）
		auth := v1.Group("/auth", bodyLimit, rateLimit)
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(deps.JWT, deps.Tokens))
		{
			// 文件上传单独放宽请求体上限
			authorized.POST("/uploads", middleware.BodyLimit(cfg.Server.UploadLimitMB*mb), h.Resource.Upload)

			api := authorized.Group("", bodyLimit)

			api.POST("/auth/logout", h.Auth.Logout)
			api.GET("/auth/me", h.Auth.Me)

			// 课程模块及其下属资源
			subjects := api.Group("/subjects")
			{
				subjects.POST("", h.Subject.CreateSubject)
				subjects.GET("", h.Subject.ListSubjects)
				subjects.GET("/:id", h.Subject.GetSubject)
				subjects.PUT("/:id", h.Subject.UpdateSubject)
				subjects.DELETE("/:id", h.Subject.DeleteSubject)

				subjects.POST("/:id/grading", h.Grading.SetScheme)
				subjects.PUT("/:id/grading", h.Grading.SetScheme)
				subjects.GET("/:id/grading", h.Grading.GetScheme)
				subjects.POST("/:id/scores", h.Grading.AddScore)
				subjects.GET("/:id/scores", h.Grading.ListScores)
				subjects.GET("/:id/calculate", h.Grading.Calculate)

				subjects.POST("/:id/topics", h.Topic.CreateTopic)
				subjects.GET("/:id/topics", h.Topic.ListTopics)
				subjects.GET("/:id/weak-topics", h.Topic.WeakTopics)

				subjects.POST("/:id/resources", h.Resource.CreateResource)
				subjects.GET("/:id/resources", h.Resource.ListResources)

				subjects.POST("/:id/attendance", h.Attendance.MarkAttendance)
				subjects.GET("/:id/attendance", h.Attendance.ListAttendance)
				subjects.GET("/:id/attendance/stats", h.Attendance.AttendanceStats)
			}

			// 成绩
			api.PUT("/scores/:scoreId", h.Grading.UpdateScore)
			api.DELETE("/scores/:scoreId", h.Grading.DeleteScore)

			// 知识点
			topics := api.Group("/topics")
			{
				topics.GET("/:topicId", h.Topic.GetTopic)
				topics.PUT("/:topicId", h.Topic.UpdateTopic)
				topics.PATCH("/:topicId/status", h.Topic.UpdateTopicStatus)
				topics.DELETE("/:topicId", h.Topic.DeleteTopic)
			}

			// 学习资料
			resources := api.Group("/resources")
			{
				resources.GET("/:resourceId", h.Resource.GetResource)
				resources.PUT("/:resourceId", h.Resource.UpdateResource)
				resources.DELETE("/:resourceId", h.Resource.DeleteResource)
				resources.PATCH("/:resourceId/complete", h.Resource.ToggleComplete)
				resources.POST("/:resourceId/link-notes", h.Resource.LinkPersonalNotes)
			}

			// 出勤
			api.PUT("/attendance/:attendanceId", h.Attendance.UpdateAttendance)
			api.DELETE("/attendance/:attendanceId", h.Attendance.DeleteAttendance)

			// 截止事项
			deadlines := api.Group("/deadlines")
			{
				deadlines.POST("", h.Deadline.CreateDeadline)
				deadlines.GET("", h.Deadline.ListDeadlines)
				deadlines.GET("/urgent", h.Deadline.UrgentDeadlines)
				deadlines.GET("/calendar.ics", h.Deadline.ExportCalendar)
				deadlines.PUT("/:deadlineId", h.Deadline.UpdateDeadline)
				deadlines.DELETE("/:deadlineId", h.Deadline.DeleteDeadline)
				deadlines.PATCH("/:deadlineId/complete", h.Deadline.ToggleComplete)
			}

			// 学习记录
			sessions := api.Group("/study-sessions")
			{
				sessions.POST("", h.Study.CreateSession)
				sessions.GET("", h.Study.ListSessions)
				sessions.GET("/stats", h.Study.Stats)
				sessions.PUT("/:sessionId", h.Study.UpdateSession)
				sessions.DELETE("/:sessionId", h.Study.DeleteSession)
			}

			// 导出
			export := api.Group("/export")
			{
				export.GET("/subjects/:id", h.Export.ExportSubjectReport)
				export.GET("/study-sessions", h.Export.ExportStudySessions)
			}
		}
	}

	return r
}

// healthHandler 逐项检查依赖，任一失败返回 503
func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		components := make(gin.H, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				components[name] = err.Error()
				continue
			}
			components[name] = "ok"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "components": components})
	}
}
