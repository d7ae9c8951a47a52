package service

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"semester-manager/backend/config"
	"semester-manager/backend/internal/repository"
	"semester-manager/backend/pkg/jwt"
	"semester-manager/backend/pkg/storage"
)

// TokenStore Token 黑名单（由 Redis 实现）
type TokenStore interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// FileStorage 对象存储（由 Cloudinary 实现）
type FileStorage interface {
	Upload(ctx context.Context, r io.Reader, filename string) (*storage.UploadResult, error)
	Destroy(ctx context.Context, publicID, resourceType string) error
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Subject    SubjectService
	Topic      TopicService
	Resource   ResourceService
	Grading    GradingService
	Attendance AttendanceService
	Deadline   DeadlineService
	Study      StudyService
	Export     ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	tokens TokenStore,
	files FileStorage,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:       NewAuthService(repo, jwtMgr, tokens, logger),
		Subject:    NewSubjectService(repo, files, logger),
		Topic:      NewTopicService(repo, logger),
		Resource:   NewResourceService(repo, files, logger),
		Grading:    NewGradingService(repo, logger),
		Attendance: NewAttendanceService(repo, cfg.Academic.AttendanceTarget, logger),
		Deadline:   NewDeadlineService(repo, logger),
		Study:      NewStudyService(repo, logger),
		Export:     NewExportService(repo, cfg.Academic.AttendanceTarget, logger),
	}
}
