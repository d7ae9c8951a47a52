package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"semester-manager/backend/internal/dto"
	"semester-manager/backend/internal/model"
	"semester-manager/backend/internal/repository"
	"semester-manager/backend/pkg/storage"
)

// ── 课程模块业务错误 ──

var (
	ErrSubjectNotFound  = errors.New("课程不存在")
	ErrSubjectForbidden = errors.New("无权访问该课程")
)

// SubjectService 课程业务接口
type SubjectService interface {
	Create(ctx context.Context, req *dto.CreateSubjectRequest, callerID string) (*dto.SubjectResponse, error)
	List(ctx context.Context, callerID string) ([]dto.SubjectResponse, error)
	GetByID(ctx context.Context, id, callerID string) (*dto.SubjectResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSubjectRequest, callerID string) (*dto.SubjectResponse, error)
	// Delete 删除课程并级联删除其下所有数据（尽力而为，失败仅记录日志）
	Delete(ctx context.Context, id, callerID string) error
}

type subjectService struct {
	repo   *repository.Repository
	files  FileStorage
	logger *zap.Logger
	now    func() time.Time
}

// NewSubjectService 创建 SubjectService 实例
func NewSubjectService(repo *repository.Repository, files FileStorage, logger *zap.Logger) SubjectService {
	return &subjectService{repo: repo, files: files, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *subjectService) Create(ctx context.Context, req *dto.CreateSubjectRequest, callerID string) (*dto.SubjectResponse, error) {
	subject := &model.Subject{
		UserID:     callerID,
		Name:       strings.TrimSpace(req.Name),
		Code:       req.Code,
		Credits:    req.Credits,
		Instructor: req.Instructor,
		Semester:   req.Semester,
		Color:      req.Color,
	}
	if subject.Color == "" {
		subject.Color = model.DefaultSubjectColor
	}
	subject.Touch(s.now())

	if err := s.repo.Subject.Create(ctx, subject); err != nil {
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}

	return toSubjectResponse(subject), nil
}

// ────────────────────── List ──────────────────────

func (s *subjectService) List(ctx context.Context, callerID string) ([]dto.SubjectResponse, error) {
	subjects, err := s.repo.Subject.ListByUser(ctx, callerID)
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SubjectResponse, 0, len(subjects))
	for i := range subjects {
		result = append(result, *toSubjectResponse(&subjects[i]))
	}
	return result, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *subjectService) GetByID(ctx context.Context, id, callerID string) (*dto.SubjectResponse, error) {
	subject, err := ownedSubjectHex(ctx, s.repo, s.logger, id, callerID)
	if err != nil {
		return nil, err
	}
	return toSubjectResponse(subject), nil
}

// ────────────────────── Update ──────────────────────

func (s *subjectService) Update(ctx context.Context, id string, req *dto.UpdateSubjectRequest, callerID string) (*dto.SubjectResponse, error) {
	subject, err := ownedSubjectHex(ctx, s.repo, s.logger, id, callerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		subject.Name = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		subject.Code = *req.Code
	}
	if req.Credits != nil {
		subject.Credits = *req.Credits
	}
	if req.Instructor != nil {
		subject.Instructor = *req.Instructor
	}
	if req.Semester != nil {
		subject.Semester = *req.Semester
	}
	if req.Color != nil {
		subject.Color = *req.Color
	}
	subject.Touch(s.now())

	if err := s.repo.Subject.Update(ctx, subject); err != nil {
		if isNotFound(err) {
			return nil, ErrSubjectNotFound
		}
		s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toSubjectResponse(subject), nil
}

// ────────────────────── Delete ──────────────────────

func (s *subjectService) Delete(ctx context.Context, id, callerID string) error {
	subject, err := ownedSubjectHex(ctx, s.repo, s.logger, id, callerID)
	if err != nil {
		return err
	}

	s.cascade(ctx, subject)

	if err := s.repo.Subject.Delete(ctx, subject.ID); err != nil {
		if isNotFound(err) {
			return ErrSubjectNotFound
		}
		s.logger.Error("删除课程失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("课程已删除", zap.String("subject_id", id), zap.String("user_id", callerID))
	return nil
}

// cascade 依次清理课程下的数据，不使用事务
func (s *subjectService) cascade(ctx context.Context, subject *model.Subject) {
	log := s.logger.With(zap.String("subject_id", subject.ID.Hex()))

	resources, err := s.repo.Resource.List(ctx, repository.ResourceFilter{SubjectID: subject.ID})
	if err != nil {
		log.Warn("级联删除：查询资料失败", zap.Error(err))
	}
	for i := range resources {
		destroyStoredFile(ctx, s.files, &resources[i], log)
	}

	steps := []struct {
		name string
		fn   func() (int64, error)
	}{
		{"topics", func() (int64, error) { return s.repo.Topic.DeleteBySubject(ctx, subject.ID) }},
		{"resources", func() (int64, error) { return s.repo.Resource.DeleteBySubject(ctx, subject.ID) }},
		{"grading", func() (int64, error) { return s.repo.Grading.DeleteBySubject(ctx, subject.ID) }},
		{"scores", func() (int64, error) { return s.repo.Score.DeleteBySubject(ctx, subject.ID) }},
		{"attendance", func() (int64, error) { return s.repo.Attendance.DeleteBySubject(ctx, subject.ID) }},
		{"deadlines", func() (int64, error) { return s.repo.Deadline.DeleteBySubject(ctx, subject.ID) }},
		{"study_sessions", func() (int64, error) { return s.repo.StudySession.DeleteBySubject(ctx, subject.ID) }},
	}
	for _, step := range steps {
		n, err := step.fn()
		if err != nil {
			log.Warn("级联删除失败", zap.String("collection", step.name), zap.Error(err))
			continue
		}
		log.Debug("级联删除完成", zap.String("collection", step.name), zap.Int64("deleted", n))
	}
}

// destroyStoredFile 删除资料对应的存储文件；失败只记录日志
func destroyStoredFile(ctx context.Context, files FileStorage, res *model.Resource, log *zap.Logger) {
	publicID := res.FilePublicID
	if publicID == "" && res.FileURL != "" {
		publicID = storage.PublicIDFromURL(res.FileURL)
	}
	if publicID == "" || files == nil {
		return
	}
	if err := files.Destroy(ctx, publicID, res.FileResourceType); err != nil {
		if errors.Is(err, storage.ErrStorageDisabled) {
			return
		}
		log.Warn("删除存储文件失败",
			zap.String("resource_id", res.ID.Hex()),
			zap.String("public_id", publicID),
			zap.Error(err))
	}
}

// ── 内部辅助方法 ──

func toSubjectResponse(s *model.Subject) *dto.SubjectResponse {
	return &dto.SubjectResponse{
		ID:         s.ID.Hex(),
		UserID:     s.UserID,
		Name:       s.Name,
		Code:       s.Code,
		Credits:    s.Credits,
		Instructor: s.Instructor,
		Semester:   s.Semester,
		Color:      s.Color,
		CreatedAt:  dto.FormatTime(s.CreatedAt),
		UpdatedAt:  dto.FormatTime(s.UpdatedAt),
	}
}
