package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"semester-manager/backend/internal/academic"
	"semester-manager/backend/internal/dto"
	"semester-manager/backend/internal/model"
	"semester-manager/backend/internal/repository"
)

// ── 知识点模块业务错误 ──

var (
	ErrTopicNotFound = errors.New("知识点不存在")
)

// TopicService 知识点业务接口
type TopicService interface {
	Create(ctx context.Context, subjectID string, req *dto.CreateTopicRequest, callerID string) (*dto.TopicResponse, error)
	// ListBySubject 附带每个知识点的资料完成统计
	ListBySubject(ctx context.Context, subjectID, callerID string) ([]dto.TopicResponse, error)
	WeakTopics(ctx context.Context, subjectID, callerID string) ([]dto.WeakTopicResponse, error)
	GetByID(ctx context.Context, id, callerID string) (*dto.TopicResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateTopicRequest, callerID string) (*dto.TopicResponse, error)
	UpdateStatus(ctx context.Context, id string, status model.TopicStatus, callerID string) (*dto.TopicResponse, error)
	Delete(ctx context.Context, id, callerID string) error
}

type topicService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewTopicService 创建 TopicService 实例
func NewTopicService(repo *repository.Repository, logger *zap.Logger) TopicService {
	return &topicService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *topicService) Create(ctx context.Context, subjectID string, req *dto.CreateTopicRequest, callerID string) (*dto.TopicResponse, error) {
	subject, err := ownedSubjectHex(ctx, s.repo, s.logger, subjectID, callerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	topic := &model.Topic{
		SubjectID: subject.ID,
		Name:      strings.TrimSpace(req.Name),
		Unit:      req.Unit,
		Status:    model.TopicNotStarted,
		Notes:     req.Notes,
	}
	if req.Status != "" {
		s.applyStatus(topic, model.TopicStatus(req.Status), now)
	}
	topic.Touch(now)

	if err := s.repo.Topic.Create(ctx, topic); err != nil {
		s.logger.Error("创建知识点失败", zap.Error(err))
		return nil, err
	}

	progress := academic.NewTopicProgress(0, 0)
	return toTopicResponse(topic, &progress), nil
}

// ────────────────────── ListBySubject ──────────────────────

func (s *topicService) ListBySubject(ctx context.Context, subjectID, callerID string) ([]dto.TopicResponse, error) {
	topics, progress, err := s.loadWithProgress(ctx, subjectID, callerID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.TopicResponse, 0, len(topics))
	for i := range topics {
		p := progress[topics[i].ID]
		result = append(result, *toTopicResponse(&topics[i], &p))
	}
	return result, nil
}

// ────────────────────── WeakTopics ──────────────────────

func (s *topicService) WeakTopics(ctx context.Context, subjectID, callerID string) ([]dto.WeakTopicResponse, error) {
	topics, progress, err := s.loadWithProgress(ctx, subjectID, callerID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.WeakTopicResponse, 0)
	for i := range topics {
		p := progress[topics[i].ID]
		weak, reason := academic.ClassifyWeakness(topics[i].Status, p)
		if !weak {
			continue
		}
		result = append(result, dto.WeakTopicResponse{
			TopicResponse: *toTopicResponse(&topics[i], &p),
			Reason:        reason,
		})
	}
	return result, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *topicService) GetByID(ctx context.Context, id, callerID string) (*dto.TopicResponse, error) {
	topic, err := s.ownedTopic(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.Resource.CountByTopic(ctx, topic.SubjectID)
	if err != nil {
		s.logger.Error("统计知识点资料失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	c := counts[topic.ID]
	p := academic.NewTopicProgress(c.Total, c.Completed)
	return toTopicResponse(topic, &p), nil
}

// ────────────────────── Update ──────────────────────

func (s *topicService) Update(ctx context.Context, id string, req *dto.UpdateTopicRequest, callerID string) (*dto.TopicResponse, error) {
	topic, err := s.ownedTopic(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if req.Name != nil {
		topic.Name = strings.TrimSpace(*req.Name)
	}
	if req.Unit != nil {
		topic.Unit = *req.Unit
	}
	if req.Notes != nil {
		topic.Notes = *req.Notes
	}
	if req.Status != nil {
		s.applyStatus(topic, model.TopicStatus(*req.Status), now)
	}
	topic.Touch(now)

	if err := s.repo.Topic.Update(ctx, topic); err != nil {
		if isNotFound(err) {
			return nil, ErrTopicNotFound
		}
		s.logger.Error("更新知识点失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toTopicResponse(topic, nil), nil
}

// ────────────────────── UpdateStatus ──────────────────────

func (s *topicService) UpdateStatus(ctx context.Context, id string, status model.TopicStatus, callerID string) (*dto.TopicResponse, error) {
	topic, err := s.ownedTopic(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	s.applyStatus(topic, status, now)
	topic.Touch(now)

	if err := s.repo.Topic.Update(ctx, topic); err != nil {
		if isNotFound(err) {
			return nil, ErrTopicNotFound
		}
		s.logger.Error("更新知识点状态失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toTopicResponse(topic, nil), nil
}

// ────────────────────── Delete ──────────────────────

func (s *topicService) Delete(ctx context.Context, id, callerID string) error {
	topic, err := s.ownedTopic(ctx, id, callerID)
	if err != nil {
		return err
	}

	if err := s.repo.Topic.Delete(ctx, topic.ID); err != nil {
		if isNotFound(err) {
			return ErrTopicNotFound
		}
		s.logger.Error("删除知识点失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Resource.UnlinkTopic(ctx, topic.ID); err != nil {
		s.logger.Warn("解除资料关联失败", zap.String("topic_id", id), zap.Error(err))
	}
	return nil
}

// ── 内部辅助方法 ──

// applyStatus 状态置为 confident 时记录复习时间
func (s *topicService) applyStatus(topic *model.Topic, status model.TopicStatus, now time.Time) {
	topic.Status = status
	if status == model.TopicConfident {
		t := now
		topic.LastRevisedAt = &t
	}
}

func (s *topicService) ownedTopic(ctx context.Context, id, callerID string) (*model.Topic, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, ErrTopicNotFound
	}
	topic, err := s.repo.Topic.GetByID(ctx, oid)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTopicNotFound
		}
		s.logger.Error("查询知识点失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if err := checkParentSubject(ctx, s.repo, s.logger, topic.SubjectID, callerID, ErrTopicNotFound); err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *topicService) loadWithProgress(ctx context.Context, subjectID, callerID string) ([]model.Topic, map[primitive.ObjectID]academic.TopicProgress, error) {
	subject, err := ownedSubjectHex(ctx, s.repo, s.logger, subjectID, callerID)
	if err != nil {
		return nil, nil, err
	}

	topics, err := s.repo.Topic.ListBySubject(ctx, subject.ID)
	if err != nil {
		s.logger.Error("列出知识点失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, nil, err
	}

	counts, err := s.repo.Resource.CountByTopic(ctx, subject.ID)
	if err != nil {
		s.logger.Error("统计知识点资料失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, nil, err
	}

	progress := make(map[primitive.ObjectID]academic.TopicProgress, len(topics))
	for _, t := range topics {
		c := counts[t.ID]
		progress[t.ID] = academic.NewTopicProgress(c.Total, c.Completed)
	}
	return topics, progress, nil
}

func toTopicResponse(t *model.Topic, progress *academic.TopicProgress) *dto.TopicResponse {
	return &dto.TopicResponse{
		ID:            t.ID.Hex(),
		SubjectID:     t.SubjectID.Hex(),
		Name:          t.Name,
		Unit:          t.Unit,
		Status:        string(t.Status),
		Notes:         t.Notes,
		LastRevisedAt: dto.FormatTimePtr(t.LastRevisedAt),
		Stats:         progress,
		CreatedAt:     dto.FormatTime(t.CreatedAt),
		UpdatedAt:     dto.FormatTime(t.UpdatedAt),
	}
}
