package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"semester-manager/backend/internal/academic"
	"semester-manager/backend/internal/dto"
	"semester-manager/backend/internal/model"
	"semester-manager/backend/internal/repository"
)

// ── 出勤模块业务错误 ──

var (
	ErrAttendanceNotFound = errors.New("出勤记录不存在")
)

// AttendanceService 出勤业务接口
type AttendanceService interface {
	Mark(ctx context.Context, subjectID string, req *dto.MarkAttendanceRequest, callerID string) (*dto.AttendanceResponse, error)
	List(ctx context.Context, subjectID string, req *dto.DateRangeRequest, callerID string) ([]dto.AttendanceResponse, error)
	Stats(ctx context.Context, subjectID, callerID string) (*academic.AttendanceStats, error)
	Update(ctx context.Context, id string, req *dto.UpdateAttendanceRequest, callerID string) (*dto.AttendanceResponse, error)
	Delete(ctx context.Context, id, callerID string) error
}

type attendanceService struct {
	repo   *repository.Repository
	target float64
	logger *zap.Logger
	now    func() time.Time
}

// NewAttendanceService 创建 AttendanceService 实例；target 为出勤率目标（百分比）
func NewAttendanceService(repo *repository.Repository, target float64, logger *zap.Logger) AttendanceService {
	if target <= 0 || target >= 100 {
		target = academic.DefaultAttendanceTarget
	}
	return &attendanceService{repo: repo, target: target, logger: logger, now: time.Now}
}

// ────────────────────── Mark ──────────────────────

func (s *attendanceService) Mark(ctx context.Context, subjectID string, req *dto.MarkAttendanceRequest, callerID string) (*dto.AttendanceResponse, error) {
	subject, err := ownedSubjectHex(ctx, s.repo, s.logger, subjectID, callerID)
	if err != nil {
		return nil, err
	}

	a := &model.Attendance{
		SubjectID: subject.ID,
		Date:      req.Date.Time,
		Status:    model.AttendanceStatus(req.Status),
		Notes:     req.Notes,
	}
	a.Touch(s.now())

	if err := s.repo.Attendance.Create(ctx, a); err != nil {
		s.logger.Error("记录出勤失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}
	return toAttendanceResponse(a), nil
}

// ────────────────────── List ──────────────────────

func (s *attendanceService) List(ctx context.Context, subjectID string, req *dto.DateRangeRequest, callerID string) ([]dto.AttendanceResponse, error) {
	subject, err := ownedSubjectHex(ctx, s.repo, s.logger, subjectID, callerID)
	if err != nil {
		return nil, err
	}
	from, to, err := parseDateRange(req)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.Attendance.List(ctx, subject.ID, from, to)
	if err != nil {
		s.logger.Error("列出出勤记录失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.AttendanceResponse, 0, len(records))
	for i := range records {
		result = append(result, *toAttendanceResponse(&records[i]))
	}
	return result, nil
}

// ────────────────────── Stats ──────────────────────

func (s *attendanceService) Stats(ctx context.Context, subjectID, callerID string) (*academic.AttendanceStats, error) {
	subject, err := ownedSubjectHex(ctx, s.repo, s.logger, subjectID, callerID)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.Attendance.List(ctx, subject.ID, nil, nil)
	if err != nil {
		s.logger.Error("列出出勤记录失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}

	stats := academic.ComputeAttendance(records, s.target)
	return &stats, nil
}

// ────────────────────── Update ──────────────────────

func (s *attendanceService) Update(ctx context.Context, id string, req *dto.UpdateAttendanceRequest, callerID string) (*dto.AttendanceResponse, error) {
	a, err := s.ownedAttendance(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if req.Date != nil {
		a.Date = req.Date.Time
	}
	if req.Status != nil {
		a.Status = model.AttendanceStatus(*req.Status)
	}
	if req.Notes != nil {
		a.Notes = *req.Notes
	}
	a.Touch(s.now())

	if err := s.repo.Attendance.Update(ctx, a); err != nil {
		if isNotFound(err) {
			return nil, ErrAttendanceNotFound
		}
		s.logger.Error("更新出勤记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toAttendanceResponse(a), nil
}

// ────────────────────── Delete ──────────────────────

func (s *attendanceService) Delete(ctx context.Context, id, callerID string) error {
	a, err := s.ownedAttendance(ctx, id, callerID)
	if err != nil {
		return err
	}

	if err := s.repo.Attendance.Delete(ctx, a.ID); err != nil {
		if isNotFound(err) {
			return ErrAttendanceNotFound
		}
		s.logger.Error("删除出勤记录失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *attendanceService) ownedAttendance(ctx context.Context, id, callerID string) (*model.Attendance, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, ErrAttendanceNotFound
	}
	a, err := s.repo.Attendance.GetByID(ctx, oid)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAttendanceNotFound
		}
		s.logger.Error("查询出勤记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if err := checkParentSubject(ctx, s.repo, s.logger, a.SubjectID, callerID, ErrAttendanceNotFound); err != nil {
		return nil, err
	}
	return a, nil
}

func toAttendanceResponse(a *model.Attendance) *dto.AttendanceResponse {
	return &dto.AttendanceResponse{
		ID:        a.ID.Hex(),
		SubjectID: a.SubjectID.Hex(),
		Date:      dto.FormatTime(a.Date),
		Status:    string(a.Status),
		Notes:     a.Notes,
	}
}
