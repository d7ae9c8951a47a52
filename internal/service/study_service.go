package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"semester-manager/backend/internal/academic"
	"semester-manager/backend/internal/dto"
	"semester-manager/backend/internal/model"
	"semester-manager/backend/internal/repository"
)

// ── 学习记录模块业务错误 ──

var (
	ErrStudySessionNotFound = errors.New("学习记录不存在")
	ErrStudyTopicMismatch   = errors.New("知识点不属于该课程")
)

// StudyService 学习记录业务接口
type StudyService interface {
	Create(ctx context.Context, req *dto.CreateStudySessionRequest, callerID string) (*dto.StudySessionResponse, error)
	List(ctx context.Context, req *dto.StudySessionListRequest, callerID string) ([]dto.StudySessionResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateStudySessionRequest, callerID string) (*dto.StudySessionResponse, error)
	Delete(ctx context.Context, id, callerID string) error
	// Stats 统计周期内时长分布，热力图固定取近 90 天
	Stats(ctx context.Context, req *dto.StudyStatsRequest, callerID string) (*dto.StudyStatsResponse, error)
}

type studyService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewStudyService 创建 StudyService 实例
func NewStudyService(repo *repository.Repository, logger *zap.Logger) StudyService {
	return &studyService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *studyService) Create(ctx context.Context, req *dto.CreateStudySessionRequest, callerID string) (*dto.StudySessionResponse, error) {
	subject, err := ownedSubjectHex(ctx, s.repo, s.logger, req.SubjectID, callerID)
	if err != nil {
		return nil, err
	}

	session := &model.StudySession{
		UserID:     callerID,
		SubjectID:  subject.ID,
		StartTime:  req.StartTime.Time,
		Notes:      req.Notes,
		FocusLevel: model.FocusLevel(req.FocusLevel),
	}
	session.Date = session.StartTime
	if req.Date != nil {
		session.Date = req.Date.Time
	}
	if req.EndTime != nil {
		t := req.EndTime.Time
		session.EndTime = &t
	}
	var duration int
	if req.Duration != nil {
		duration = *req.Duration
	}
	session.Duration = academic.SessionMinutes(session.StartTime, session.EndTime, duration)

	if req.TopicID != "" {
		if err := s.attachTopic(ctx, session, req.TopicID); err != nil {
			return nil, err
		}
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}

	session.Touch(s.now())
	if err := s.repo.StudySession.Create(ctx, session); err != nil {
		s.logger.Error("创建学习记录失败", zap.Error(err))
		return nil, err
	}
	return toStudySessionResponse(session, subject), nil
}

// ────────────────────── List ──────────────────────

func (s *studyService) List(ctx context.Context, req *dto.StudySessionListRequest, callerID string) ([]dto.StudySessionResponse, error) {
	from, to, err := parseDateRange(&dto.DateRangeRequest{StartDate: req.StartDate, EndDate: req.EndDate})
	if err != nil {
		return nil, err
	}

	filter := repository.StudySessionFilter{UserID: callerID, From: from, To: to}
	var byID map[primitive.ObjectID]*model.Subject

	if req.SubjectID != "" {
		subject, err := ownedSubjectHex(ctx, s.repo, s.logger, req.SubjectID, callerID)
		if err != nil {
			return nil, err
		}
		filter.SubjectID = &subject.ID
		byID = map[primitive.ObjectID]*model.Subject{subject.ID: subject}
	} else {
		subjects, err := s.repo.Subject.ListByUser(ctx, callerID)
		if err != nil {
			s.logger.Error("列出课程失败", zap.Error(err))
			return nil, err
		}
		byID, _ = indexSubjects(subjects)
	}

	sessions, err := s.repo.StudySession.List(ctx, filter)
	if err != nil {
		s.logger.Error("列出学习记录失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.StudySessionResponse, 0, len(sessions))
	for i := range sessions {
		result = append(result, *toStudySessionResponse(&sessions[i], byID[sessions[i].SubjectID]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *studyService) Update(ctx context.Context, id string, req *dto.UpdateStudySessionRequest, callerID string) (*dto.StudySessionResponse, error) {
	session, err := s.ownedSession(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if req.TopicID != nil {
		if *req.TopicID == "" {
			session.TopicID = nil
		} else if err := s.attachTopic(ctx, session, *req.TopicID); err != nil {
			return nil, err
		}
	}
	if req.Date != nil {
		session.Date = req.Date.Time
	}
	if req.StartTime != nil {
		session.StartTime = req.StartTime.Time
	}
	if req.EndTime != nil {
		t := req.EndTime.Time
		session.EndTime = &t
	}
	switch {
	case req.Duration != nil:
		session.Duration = academic.SessionMinutes(session.StartTime, session.EndTime, *req.Duration)
	case req.StartTime != nil || req.EndTime != nil:
		// 起止时间变化且未显式给出时长时重新推导
		session.Duration = academic.SessionMinutes(session.StartTime, session.EndTime, 0)
	}
	if req.Notes != nil {
		session.Notes = *req.Notes
	}
	if req.FocusLevel != nil {
		session.FocusLevel = model.FocusLevel(*req.FocusLevel)
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}

	session.Touch(s.now())
	if err := s.repo.StudySession.Update(ctx, session); err != nil {
		if isNotFound(err) {
			return nil, ErrStudySessionNotFound
		}
		s.logger.Error("更新学习记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	subject, err := s.repo.Subject.GetByID(ctx, session.SubjectID)
	if err != nil {
		subject = nil
	}
	return toStudySessionResponse(session, subject), nil
}

// ────────────────────── Delete ──────────────────────

func (s *studyService) Delete(ctx context.Context, id, callerID string) error {
	session, err := s.ownedSession(ctx, id, callerID)
	if err != nil {
		return err
	}

	if err := s.repo.StudySession.Delete(ctx, session.ID); err != nil {
		if isNotFound(err) {
			return ErrStudySessionNotFound
		}
		s.logger.Error("删除学习记录失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Stats ──────────────────────

func (s *studyService) Stats(ctx context.Context, req *dto.StudyStatsRequest, callerID string) (*dto.StudyStatsResponse, error) {
	now := s.now()
	period := academic.ParsePeriod(req.Period)
	periodStart := academic.PeriodStart(period, now)

	// 一次取回较长窗口，周期统计在内存中截取；晚于当前时刻的记录不计入
	since := academic.HeatmapStart(now)
	if periodStart.Before(since) {
		since = periodStart
	}
	sessions, err := s.repo.StudySession.List(ctx, repository.StudySessionFilter{UserID: callerID, From: &since, To: &now})
	if err != nil {
		s.logger.Error("查询学习记录失败", zap.Error(err))
		return nil, err
	}

	subjects, err := s.repo.Subject.ListByUser(ctx, callerID)
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, err
	}
	byID, _ := indexSubjects(subjects)

	inPeriod := academic.FilterSince(sessions, periodStart)
	total := academic.TotalMinutes(inPeriod)

	resp := &dto.StudyStatsResponse{
		Period:              string(period),
		TotalMinutes:        total,
		TotalHours:          academic.HoursFromMinutes(total),
		SessionCount:        len(inPeriod),
		SubjectDistribution: make([]dto.SubjectDistributionItem, 0),
		DailyStats:          academic.MinutesByDay(inPeriod),
		HeatmapData:         heatmapPoints(academic.FilterSince(sessions, academic.HeatmapStart(now))),
	}

	for _, t := range academic.TotalsBySubject(inPeriod) {
		item := dto.SubjectDistributionItem{
			SubjectID:    t.SubjectID.Hex(),
			TotalMinutes: t.TotalMinutes,
			SessionCount: t.SessionCount,
		}
		if subject, ok := byID[t.SubjectID]; ok {
			item.Name = subject.Name
			item.Color = subject.Color
		}
		resp.SubjectDistribution = append(resp.SubjectDistribution, item)
	}
	return resp, nil
}

// ── 内部辅助方法 ──

// ownedSession 记录归属按 user_id 判断
func (s *studyService) ownedSession(ctx context.Context, id, callerID string) (*model.StudySession, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, ErrStudySessionNotFound
	}
	session, err := s.repo.StudySession.GetByID(ctx, oid)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrStudySessionNotFound
		}
		s.logger.Error("查询学习记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if session.UserID != callerID {
		return nil, ErrSubjectForbidden
	}
	return session, nil
}

func (s *studyService) attachTopic(ctx context.Context, session *model.StudySession, topicHex string) error {
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
	if topic.SubjectID != session.SubjectID {
		return ErrStudyTopicMismatch
	}
	session.TopicID = &topic.ID
	return nil
}

func heatmapPoints(sessions []model.StudySession) []dto.HeatmapPoint {
	days := academic.MinutesByDay(sessions)
	points := make([]dto.HeatmapPoint, 0, len(days))
	for day, minutes := range days {
		points = append(points, dto.HeatmapPoint{Date: day, Minutes: minutes})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

func toStudySessionResponse(session *model.StudySession, subject *model.Subject) *dto.StudySessionResponse {
	return &dto.StudySessionResponse{
		ID:         session.ID.Hex(),
		SubjectID:  session.SubjectID.Hex(),
		Subject:    subjectBrief(subject),
		TopicID:    hexOrEmpty(session.TopicID),
		Date:       dto.FormatTime(session.Date),
		StartTime:  dto.FormatTime(session.StartTime),
		EndTime:    dto.FormatTimePtr(session.EndTime),
		Duration:   session.Duration,
		Notes:      session.Notes,
		FocusLevel: string(session.FocusLevel),
	}
}
