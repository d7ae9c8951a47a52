package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"semester-manager/backend/internal/dto"
	"semester-manager/backend/internal/model"
	"semester-manager/backend/internal/repository"
	"semester-manager/backend/pkg/storage"
)

// ── 学习资料模块业务错误 ──

var (
	ErrResourceNotFound      = errors.New("资料不存在")
	ErrResourceTopicMismatch = errors.New("知识点不属于该课程")
	ErrStorageUnavailable    = errors.New("文件存储服务未配置")
	ErrUploadFailed          = errors.New("文件上传失败")
)

// ResourceService 学习资料业务接口
type ResourceService interface {
	Create(ctx context.Context, subjectID string, req *dto.CreateResourceRequest, callerID string) (*dto.ResourceResponse, error)
	List(ctx context.Context, subjectID string, req *dto.ResourceListRequest, callerID string) ([]dto.ResourceResponse, error)
	GetByID(ctx context.Context, id, callerID string) (*dto.ResourceResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateResourceRequest, callerID string) (*dto.ResourceResponse, error)
	// Delete 同时删除存储中的文件，存储删除失败不阻断
	Delete(ctx context.Context, id, callerID string) error
	ToggleComplete(ctx context.Context, id, callerID string) (*dto.ResourceResponse, error)
	LinkPersonalNotes(ctx context.Context, id string, req *dto.LinkNotesRequest, callerID string) (*dto.ResourceResponse, error)
	Upload(ctx context.Context, r io.Reader, filename string) (*dto.UploadResponse, error)
}

type resourceService struct {
	repo   *repository.Repository
	files  FileStorage
	logger *zap.Logger
	now    func() time.Time
}

// NewResourceService 创建 ResourceService 实例
func NewResourceService(repo *repository.Repository, files FileStorage, logger *zap.Logger) ResourceService {
	return &resourceService{repo: repo, files: files, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *resourceService) Create(ctx context.Context, subjectID string, req *dto.CreateResourceRequest, callerID string) (*dto.ResourceResponse, error) {
	subject, err := ownedSubjectHex(ctx, s.repo, s.logger, subjectID, callerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	res := &model.Resource{
		SubjectID:        subject.ID,
		Title:            strings.TrimSpace(req.Title),
		Type:             model.ResourceType(req.Type),
		FileURL:          req.FileURL,
		FilePublicID:     req.FilePublicID,
		FileResourceType: req.FileResourceType,
		ExternalLink:     req.ExternalLink,
		UploadDate:       now,
		Tags:             req.Tags,
	}
	if res.Tags == nil {
		res.Tags = []string{}
	}
	if res.FileURL != "" && res.FilePublicID == "" {
		res.FilePublicID = storage.PublicIDFromURL(res.FileURL)
	}
	if req.TopicID != "" {
		if err := s.attachTopic(ctx, res, req.TopicID); err != nil {
			return nil, err
		}
	}
	res.Touch(now)

	if err := s.repo.Resource.Create(ctx, res); err != nil {
		s.logger.Error("创建资料失败", zap.Error(err))
		return nil, err
	}
	return toResourceResponse(res), nil
}

// ────────────────────── List ──────────────────────

func (s *resourceService) List(ctx context.Context, subjectID string, req *dto.ResourceListRequest, callerID string) ([]dto.ResourceResponse, error) {
	subject, err := ownedSubjectHex(ctx, s.repo, s.logger, subjectID, callerID)
	if err != nil {
		return nil, err
	}

	filter := repository.ResourceFilter{
		SubjectID: subject.ID,
		Type:      model.ResourceType(req.Type),
		Completed: req.Completed,
	}
	if req.TopicID != "" {
		topicID, err := parseID(req.TopicID)
		if err != nil {
			return nil, ErrTopicNotFound
		}
		filter.TopicID = &topicID
	}

	resources, err := s.repo.Resource.List(ctx, filter)
	if err != nil {
		s.logger.Error("列出资料失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ResourceResponse, 0, len(resources))
	for i := range resources {
		result = append(result, *toResourceResponse(&resources[i]))
	}
	return result, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *resourceService) GetByID(ctx context.Context, id, callerID string) (*dto.ResourceResponse, error) {
	res, err := s.ownedResource(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	return toResourceResponse(res), nil
}

// ────────────────────── Update ──────────────────────

func (s *resourceService) Update(ctx context.Context, id string, req *dto.UpdateResourceRequest, callerID string) (*dto.ResourceResponse, error) {
	res, err := s.ownedResource(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		res.Title = strings.TrimSpace(*req.Title)
	}
	if req.Type != nil {
		res.Type = model.ResourceType(*req.Type)
	}
	if req.ExternalLink != nil {
		res.ExternalLink = *req.ExternalLink
	}
	if req.Tags != nil {
		res.Tags = *req.Tags
	}
	if req.TopicID != nil {
		if *req.TopicID == "" {
			res.TopicID = nil
		} else if err := s.attachTopic(ctx, res, *req.TopicID); err != nil {
			return nil, err
		}
	}
	res.Touch(s.now())

	if err := s.repo.Resource.Update(ctx, res); err != nil {
		if isNotFound(err) {
			return nil, ErrResourceNotFound
		}
		s.logger.Error("更新资料失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toResourceResponse(res), nil
}

// ────────────────────── Delete ──────────────────────

func (s *resourceService) Delete(ctx context.Context, id, callerID string) error {
	res, err := s.ownedResource(ctx, id, callerID)
	if err != nil {
		return err
	}

	destroyStoredFile(ctx, s.files, res, s.logger)

	if err := s.repo.Resource.Delete(ctx, res.ID); err != nil {
		if isNotFound(err) {
			return ErrResourceNotFound
		}
		s.logger.Error("删除资料失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ToggleComplete ──────────────────────

func (s *resourceService) ToggleComplete(ctx context.Context, id, callerID string) (*dto.ResourceResponse, error) {
	res, err := s.ownedResource(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	completed := !res.Completed
	if err := s.repo.Resource.SetCompleted(ctx, res.ID, completed, now); err != nil {
		if isNotFound(err) {
			return nil, ErrResourceNotFound
		}
		s.logger.Error("切换资料完成状态失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	res.Completed = completed
	res.UpdatedAt = now
	return toResourceResponse(res), nil
}

// ────────────────────── LinkPersonalNotes ──────────────────────

func (s *resourceService) LinkPersonalNotes(ctx context.Context, id string, req *dto.LinkNotesRequest, callerID string) (*dto.ResourceResponse, error) {
	res, err := s.ownedResource(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	notes, err := s.ownedResource(ctx, req.PersonalNotesID, callerID)
	if err != nil {
		return nil, err
	}

	res.HasPersonalNotes = true
	res.PersonalNotesID = &notes.ID
	res.Touch(s.now())

	if err := s.repo.Resource.Update(ctx, res); err != nil {
		if isNotFound(err) {
			return nil, ErrResourceNotFound
		}
		s.logger.Error("关联个人笔记失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toResourceResponse(res), nil
}

// ────────────────────── Upload ──────────────────────

func (s *resourceService) Upload(ctx context.Context, r io.Reader, filename string) (*dto.UploadResponse, error) {
	if s.files == nil {
		return nil, ErrStorageUnavailable
	}

	result, err := s.files.Upload(ctx, r, filename)
	if err != nil {
		if errors.Is(err, storage.ErrStorageDisabled) {
			return nil, ErrStorageUnavailable
		}
		s.logger.Error("上传文件失败", zap.String("filename", filename), zap.Error(err))
		return nil, ErrUploadFailed
	}

	url := result.SecureURL
	if url == "" {
		url = result.URL
	}
	return &dto.UploadResponse{URL: url, PublicID: result.PublicID, ResourceType: result.ResourceType}, nil
}

// ── 内部辅助方法 ──

func (s *resourceService) ownedResource(ctx context.Context, id, callerID string) (*model.Resource, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, ErrResourceNotFound
	}
	res, err := s.repo.Resource.GetByID(ctx, oid)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrResourceNotFound
		}
		s.logger.Error("查询资料失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if err := checkParentSubject(ctx, s.repo, s.logger, res.SubjectID, callerID, ErrResourceNotFound); err != nil {
		return nil, err
	}
	return res, nil
}

// attachTopic 关联的知识点必须属于同一课程
func (s *resourceService) attachTopic(ctx context.Context, res *model.Resource, topicHex string) error {
	topicID, err := parseID(topicHex)
	if err != nil {
		return ErrTopicNotFound
	}
	topic, err := s.repo.Topic.GetByID(ctx, topicID)
	if err != nil {
		if isNotFound(err) {
			return ErrTopicNotFound
		}
		s.logger.Error("查询知识点失败", zap.String("topic_id", topicHex), zap.Error(err))
		return err
	}
	if topic.SubjectID != res.SubjectID {
		return ErrResourceTopicMismatch
	}
	res.TopicID = &topic.ID
	return nil
}

func toResourceResponse(r *model.Resource) *dto.ResourceResponse {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return &dto.ResourceResponse{
		ID:               r.ID.Hex(),
		SubjectID:        r.SubjectID.Hex(),
		TopicID:          hexOrEmpty(r.TopicID),
		Title:            r.Title,
		Type:             string(r.Type),
		FileURL:          r.FileURL,
		FilePublicID:     r.FilePublicID,
		ExternalLink:     r.ExternalLink,
		Completed:        r.Completed,
		HasPersonalNotes: r.HasPersonalNotes,
		PersonalNotesID:  hexOrEmpty(r.PersonalNotesID),
		UploadDate:       dto.FormatTime(r.UploadDate),
		Tags:             tags,
		CreatedAt:        dto.FormatTime(r.CreatedAt),
		UpdatedAt:        dto.FormatTime(r.UpdatedAt),
	}
}
