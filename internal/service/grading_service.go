package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"semester-manager/backend/internal/academic"
	"semester-manager/backend/internal/dto"
	"semester-manager/backend/internal/model"
	"semester-manager/backend/internal/repository"
)

// ── 评分模块业务错误 ──

var (
	ErrGradingSchemeNotFound = errors.New("该课程尚未设置评分方案")
	ErrScoreNotFound         = errors.New("成绩记录不存在")
)

// GradingService 评分方案与成绩业务接口
type GradingService interface {
	// SetScheme 覆盖式保存评分方案，权重总和须为 100
	SetScheme(ctx context.Context, subjectID string, req *dto.SetGradingSchemeRequest, callerID string) (*dto.GradingSchemeResponse, error)
	GetScheme(ctx context.Context, subjectID, callerID string) (*dto.GradingSchemeResponse, error)
	AddScore(ctx context.Context, subjectID string, req *dto.CreateScoreRequest, callerID string) (*dto.ScoreResponse, error)
	ListScores(ctx context.Context, subjectID, callerID string) ([]dto.ScoreResponse, error)
	UpdateScore(ctx context.Context, scoreID string, req *dto.UpdateScoreRequest, callerID string) (*dto.ScoreResponse, error)
	DeleteScore(ctx context.Context, scoreID, callerID string) error
	Calculate(ctx context.Context, subjectID, callerID string) (*academic.GradeSummary, error)
}

type gradingService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewGradingService 创建 GradingService 实例
func NewGradingService(repo *repository.Repository, logger *zap.Logger) GradingService {
	return &gradingService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── SetScheme ──────────────────────

func (s *gradingService) SetScheme(ctx context.Context, subjectID string, req *dto.SetGradingSchemeRequest, callerID string) (*dto.GradingSchemeResponse, error) {
	subject, err := ownedSubjectHex(ctx, s.repo, s.logger, subjectID, callerID)
	if err != nil {
		return nil, err
	}

	scheme := &model.GradingScheme{SubjectID: subject.ID}
	existing, err := s.repo.Grading.GetBySubject(ctx, subject.ID)
	switch {
	case err == nil:
		scheme.DocumentBase = existing.DocumentBase
	case !isNotFound(err):
		s.logger.Error("查询评分方案失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}

	scheme.Components = make([]model.GradingItem, 0, len(req.Components))
	for _, c := range req.Components {
		scheme.Components = append(scheme.Components, model.GradingItem{
			Name:      strings.TrimSpace(c.Name),
			Weightage: c.Weightage,
			MaxMarks:  c.MaxMarks,
		})
	}
	scheme.Touch(s.now())

	if err := scheme.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Grading.Upsert(ctx, scheme); err != nil {
		s.logger.Error("保存评分方案失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}
	return toGradingSchemeResponse(scheme), nil
}

// ────────────────────── GetScheme ──────────────────────

func (s *gradingService) GetScheme(ctx context.Context, subjectID, callerID string) (*dto.GradingSchemeResponse, error) {
	subject, err := ownedSubjectHex(ctx, s.repo, s.logger, subjectID, callerID)
	if err != nil {
		return nil, err
	}

	scheme, err := s.loadScheme(ctx, subject)
	if err != nil {
		return nil, err
	}
	return toGradingSchemeResponse(scheme), nil
}

// ────────────────────── AddScore ──────────────────────

func (s *gradingService) AddScore(ctx context.Context, subjectID string, req *dto.CreateScoreRequest, callerID string) (*dto.ScoreResponse, error) {
	subject, err := ownedSubjectHex(ctx, s.repo, s.logger, subjectID, callerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	score := &model.Score{
		SubjectID:     subject.ID,
		ComponentName: strings.TrimSpace(req.ComponentName),
		Obtained:      *req.Obtained,
		Max:           req.Max,
		ClassAverage:  req.ClassAverage,
		ClassMax:      req.ClassMax,
		ClassMin:      req.ClassMin,
		Date:          now,
		LastUpdated:   now,
	}
	if req.Date != nil {
		score.Date = req.Date.Time
	}
	score.Touch(now)

	if err := score.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Score.Create(ctx, score); err != nil {
		s.logger.Error("录入成绩失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}
	return toScoreResponse(score), nil
}

// ────────────────────── ListScores ──────────────────────

func (s *gradingService) ListScores(ctx context.Context, subjectID, callerID string) ([]dto.ScoreResponse, error) {
	subject, err := ownedSubjectHex(ctx, s.repo, s.logger, subjectID, callerID)
	if err != nil {
		return nil, err
	}

	scores, err := s.repo.Score.ListBySubject(ctx, subject.ID)
	if err != nil {
		s.logger.Error("列出成绩失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ScoreResponse, 0, len(scores))
	for i := range scores {
		result = append(result, *toScoreResponse(&scores[i]))
	}
	return result, nil
}

// ────────────────────── UpdateScore ──────────────────────

func (s *gradingService) UpdateScore(ctx context.Context, scoreID string, req *dto.UpdateScoreRequest, callerID string) (*dto.ScoreResponse, error) {
	score, err := s.ownedScore(ctx, scoreID, callerID)
	if err != nil {
		return nil, err
	}

	if req.ComponentName != nil {
		score.ComponentName = strings.TrimSpace(*req.ComponentName)
	}
	if req.Obtained != nil {
		score.Obtained = *req.Obtained
	}
	if req.Max != nil {
		score.Max = *req.Max
	}
	if req.ClassAverage != nil {
		score.ClassAverage = req.ClassAverage
	}
	if req.ClassMax != nil {
		score.ClassMax = req.ClassMax
	}
	if req.ClassMin != nil {
		score.ClassMin = req.ClassMin
	}
	if req.Date != nil {
		score.Date = req.Date.Time
	}
	now := s.now()
	score.LastUpdated = now
	score.Touch(now)

	if err := score.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Score.Update(ctx, score); err != nil {
		if isNotFound(err) {
			return nil, ErrScoreNotFound
		}
		s.logger.Error("更新成绩失败", zap.String("id", scoreID), zap.Error(err))
		return nil, err
	}
	return toScoreResponse(score), nil
}

// ────────────────────── DeleteScore ──────────────────────

func (s *gradingService) DeleteScore(ctx context.Context, scoreID, callerID string) error {
	score, err := s.ownedScore(ctx, scoreID, callerID)
	if err != nil {
		return err
	}

	if err := s.repo.Score.Delete(ctx, score.ID); err != nil {
		if isNotFound(err) {
			return ErrScoreNotFound
		}
		s.logger.Error("删除成绩失败", zap.String("id", scoreID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Calculate ──────────────────────

func (s *gradingService) Calculate(ctx context.Context, subjectID, callerID string) (*academic.GradeSummary, error) {
	subject, err := ownedSubjectHex(ctx, s.repo, s.logger, subjectID, callerID)
	if err != nil {
		return nil, err
	}

	scheme, err := s.loadScheme(ctx, subject)
	if err != nil {
		return nil, err
	}

	scores, err := s.repo.Score.ListBySubject(ctx, subject.ID)
	if err != nil {
		s.logger.Error("列出成绩失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}

	summary := academic.ComputeBreakdown(scheme, scores)
	return &summary, nil
}

// ── 内部辅助方法 ──

func (s *gradingService) loadScheme(ctx context.Context, subject *model.Subject) (*model.GradingScheme, error) {
	scheme, err := s.repo.Grading.GetBySubject(ctx, subject.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrGradingSchemeNotFound
		}
		s.logger.Error("查询评分方案失败", zap.String("subject_id", subject.ID.Hex()), zap.Error(err))
		return nil, err
	}
	return scheme, nil
}

func (s *gradingService) ownedScore(ctx context.Context, id, callerID string) (*model.Score, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, ErrScoreNotFound
	}
	score, err := s.repo.Score.GetByID(ctx, oid)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrScoreNotFound
		}
		s.logger.Error("查询成绩失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if err := checkParentSubject(ctx, s.repo, s.logger, score.SubjectID, callerID, ErrScoreNotFound); err != nil {
		return nil, err
	}
	return score, nil
}

func toGradingSchemeResponse(g *model.GradingScheme) *dto.GradingSchemeResponse {
	items := make([]dto.GradingItemResponse, 0, len(g.Components))
	for _, c := range g.Components {
		items = append(items, dto.GradingItemResponse{Name: c.Name, Weightage: c.Weightage, MaxMarks: c.MaxMarks})
	}
	return &dto.GradingSchemeResponse{
		ID:             g.ID.Hex(),
		SubjectID:      g.SubjectID.Hex(),
		Components:     items,
		TotalWeightage: academic.Round2(g.TotalWeightage()),
		UpdatedAt:      dto.FormatTime(g.UpdatedAt),
	}
}

func toScoreResponse(s *model.Score) *dto.ScoreResponse {
	var pct float64
	if s.Max > 0 {
		pct = academic.Round2(s.Obtained / s.Max * 100)
	}
	return &dto.ScoreResponse{
		ID:            s.ID.Hex(),
		SubjectID:     s.SubjectID.Hex(),
		ComponentName: s.ComponentName,
		Obtained:      s.Obtained,
		Max:           s.Max,
		Percentage:    pct,
		ClassAverage:  s.ClassAverage,
		ClassMax:      s.ClassMax,
		ClassMin:      s.ClassMin,
		Date:          dto.FormatTime(s.Date),
		LastUpdated:   dto.FormatTime(s.LastUpdated),
	}
}
