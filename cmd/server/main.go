package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"semester-manager/backend/config"
	"semester-manager/backend/internal/api/handler"
	"semester-manager/backend/internal/api/middleware"
	"semester-manager/backend/internal/api/router"
	"semester-manager/backend/internal/dto"
	"semester-manager/backend/internal/job"
	"semester-manager/backend/internal/repository"
	"semester-manager/backend/internal/service"
	"semester-manager/backend/pkg/database"
	"semester-manager/backend/pkg/jwt"
	applogger "semester-manager/backend/pkg/logger"
	"semester-manager/backend/pkg/mongodb"
	"semester-manager/backend/pkg/redis"
	"semester-manager/backend/pkg/storage"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接 PostgreSQL（账号数据）并执行迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 4. 连接 MongoDB（学业数据）并确保索引
	mongoClient, err := mongodb.NewClient(context.Background(), &cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("MongoDB 连接失败", zap.Error(err))
	}
	idxCtx, idxCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := repository.EnsureIndexes(idxCtx, mongoClient.Database()); err != nil {
		logger.Warn("创建 MongoDB 索引失败", zap.Error(err))
	}
	idxCancel()

	checks := map[string]router.HealthCheck{
		"mongo":    mongoClient.Ping,
		"postgres": sqlDB.PingContext,
	}

	// 5. 连接 Redis（可选：连接失败时降级运行，黑名单与限流关闭）
	var (
		tokens  service.TokenStore
		checker middleware.TokenChecker
		limiter middleware.RateLimiter
	)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与限流功能将不可用", zap.Error(err))
	} else {
		tokens, checker, limiter = rdb, rdb, rdb
		checks["redis"] = rdb.Ping
	}

	// 6. 文件存储（未配置时上传接口返回 503）
	var files service.FileStorage
	if cld := storage.NewCloudinary(&cfg.Storage); cld != nil {
		files = cld
	} else {
		logger.Warn("未配置 Cloudinary，文件上传功能关闭")
	}

	// 7. 初始化 JWT 管理器与请求校验器
	jwtMgr := jwt.NewManager(&cfg.Auth)
	if err := dto.RegisterValidators(); err != nil {
		logger.Fatal("注册校验器失败", zap.Error(err))
	}

	// 8. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db, mongoClient.Database())
	svc := service.NewService(cfg, repo, jwtMgr, tokens, files, logger)
	h := handler.NewHandler(svc)

	// 9. 初始化路由
	gin.SetMode(gin.ReleaseMode)
	engine := router.Setup(cfg, h, router.Deps{
		JWT:      jwtMgr,
		Tokens:   checker,
		Limiter:  limiter,
		Registry: prometheus.NewRegistry(),
		Checks:   checks,
	}, logger)

	// 10. 定时任务：按小时重算截止事项优先级
	var scheduler *job.Scheduler
	if cfg.Scheduler.Enabled {
		scheduler = job.NewScheduler(svc.Deadline, logger)
		if err := scheduler.Start(cfg.Scheduler.DeadlineRefreshCron); err != nil {
			logger.Fatal("定时任务启动失败", zap.Error(err))
		}
	}

	// 11. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 12. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if scheduler != nil {
		scheduler.Stop(ctx)
	}

	if err := mongoClient.Close(ctx); err != nil {
		logger.Error("关闭 MongoDB 连接失败", zap.Error(err))
	}

	// 关闭数据库连接
	if err := sqlDB.Close(); err != nil {
		logger.Error("关闭数据库连接失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
