package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"semester-manager/backend/internal/academic"
	"semester-manager/backend/internal/dto"
	"semester-manager/backend/internal/model"
	"semester-manager/backend/internal/repository"
)

// ── 截止事项模块业务错误 ──

var (
	ErrDeadlineNotFound = errors.New("截止事项不存在")
)

// DeadlineService 截止事项业务接口
//
// 优先级只在写路径（创建、修改、切换完成状态）以及定时刷新任务中推导，
// 已完成的事项保留完成时的优先级。
type DeadlineService interface {
	Create(ctx context.Context, req *dto.CreateDeadlineRequest, callerID string) (*dto.DeadlineResponse, error)
	List(ctx context.Context, req *dto.DeadlineListRequest, callerID string) ([]dto.DeadlineResponse, error)
	// Urgent 未完成且为 urgent/overdue 的事项
	Urgent(ctx context.Context, callerID string) ([]dto.DeadlineResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateDeadlineRequest, callerID string) (*dto.DeadlineResponse, error)
	ToggleComplete(ctx context.Context, id, callerID string) (*dto.DeadlineResponse, error)
	Delete(ctx context.Context, id, callerID string) error
	// ExportCalendar 导出未完成事项为 iCalendar
	ExportCalendar(ctx context.Context, callerID string) ([]byte, error)
	// RefreshPriorities 重新推导所有未完成事项的优先级，返回实际修改条数
	RefreshPriorities(ctx context.Context) (int64, error)
}

type deadlineService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewDeadlineService 创建 DeadlineService 实例
func NewDeadlineService(repo *repository.Repository, logger *zap.Logger) DeadlineService {
	return &deadlineService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *deadlineService) Create(ctx context.Context, req *dto.CreateDeadlineRequest, callerID string) (*dto.DeadlineResponse, error) {
	subject, err := ownedSubjectHex(ctx, s.repo, s.logger, req.SubjectID, callerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	d := &model.Deadline{
		SubjectID:   subject.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Type:        model.DeadlineType(req.Type),
		DueDate:     req.DueDate.Time,
		DueTime:     req.DueTime,
		Priority:    academic.DerivePriority(req.DueDate.Time, now),
	}
	d.Touch(now)

	if err := s.repo.Deadline.Create(ctx, d); err != nil {
		s.logger.Error("创建截止事项失败", zap.Error(err))
		return nil, err
	}
	return s.toResponse(d, subject, now), nil
}

// ────────────────────── List ──────────────────────

func (s *deadlineService) List(ctx context.Context, req *dto.DeadlineListRequest, callerID string) ([]dto.DeadlineResponse, error) {
	filter := repository.DeadlineFilter{Completed: req.Completed}
	if req.Priority != "" {
		filter.Priorities = []model.Priority{model.Priority(req.Priority)}
	}
	return s.list(ctx, filter, req.SubjectID, callerID)
}

// ────────────────────── Urgent ──────────────────────

func (s *deadlineService) Urgent(ctx context.Context, callerID string) ([]dto.DeadlineResponse, error) {
	open := false
	filter := repository.DeadlineFilter{
		Completed:  &open,
		Priorities: []model.Priority{model.PriorityOverdue, model.PriorityUrgent},
	}
	return s.list(ctx, filter, "", callerID)
}

// ────────────────────── Update ──────────────────────

func (s *deadlineService) Update(ctx context.Context, id string, req *dto.UpdateDeadlineRequest, callerID string) (*dto.DeadlineResponse, error) {
	d, subject, err := s.ownedDeadline(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		d.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.Type != nil {
		d.Type = model.DeadlineType(*req.Type)
	}
	if req.DueDate != nil {
		d.DueDate = req.DueDate.Time
	}
	if req.DueTime != nil {
		d.DueTime = *req.DueTime
	}

	now := s.now()
	if !d.Completed {
		d.Priority = academic.DerivePriority(d.DueDate, now)
	}
	d.Touch(now)

	if err := s.repo.Deadline.Update(ctx, d); err != nil {
		if isNotFound(err) {
			return nil, ErrDeadlineNotFound
		}
		s.logger.Error("更新截止事项失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toResponse(d, subject, now), nil
}

// ────────────────────── ToggleComplete ──────────────────────

// ToggleComplete 取消完成时重新推导优先级
func (s *deadlineService) ToggleComplete(ctx context.Context, id, callerID string) (*dto.DeadlineResponse, error) {
	d, subject, err := s.ownedDeadline(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	d.Completed = !d.Completed
	if d.Completed {
		t := now
		d.CompletedDate = &t
	} else {
		d.CompletedDate = nil
		d.Priority = academic.DerivePriority(d.DueDate, now)
	}
	d.Touch(now)

	if err := s.repo.Deadline.Update(ctx, d); err != nil {
		if isNotFound(err) {
			return nil, ErrDeadlineNotFound
		}
		s.logger.Error("切换截止事项完成状态失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toResponse(d, subject, now), nil
}

// ────────────────────── Delete ──────────────────────

func (s *deadlineService) Delete(ctx context.Context, id, callerID string) error {
	d, _, err := s.ownedDeadline(ctx, id, callerID)
	if err != nil {
		return err
	}

	if err := s.repo.Deadline.Delete(ctx, d.ID); err != nil {
		if isNotFound(err) {
			return ErrDeadlineNotFound
		}
		s.logger.Error("删除截止事项失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ExportCalendar ──────────────────────

func (s *deadlineService) ExportCalendar(ctx context.Context, callerID string) ([]byte, error) {
	subjects, err := s.repo.Subject.ListByUser(ctx, callerID)
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, err
	}
	byID, ids := indexSubjects(subjects)

	open := false
	deadlines, err := s.repo.Deadline.List(ctx, repository.DeadlineFilter{SubjectIDs: ids, Completed: &open})
	if err != nil {
		s.logger.Error("列出截止事项失败", zap.Error(err))
		return nil, err
	}

	now := s.now()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//semester-manager//deadlines//CN")
	cal.SetXWRCalName("截止事项")

	for i := range deadlines {
		d := &deadlines[i]
		subject := byID[d.SubjectID]

		event := cal.AddEvent(d.ID.Hex() + "@semester-manager")
		event.SetDtStampTime(now)
		event.SetModifiedAt(d.UpdatedAt)
		event.SetSummary(calendarSummary(d, subject))
		if d.Description != "" {
			event.SetDescription(d.Description)
		}
		event.AddProperty(ics.ComponentPropertyCategories, string(d.Type))

		if start, ok := dueAt(d); ok {
			event.SetStartAt(start)
			event.SetEndAt(start.Add(time.Hour))
		} else {
			event.SetAllDayStartAt(d.DueDate)
			event.SetAllDayEndAt(d.DueDate.AddDate(0, 0, 1))
		}

		alarm := event.AddAlarm()
		alarm.SetAction(ics.ActionDisplay)
		alarm.SetTrigger("-PT24H")
	}

	return []byte(cal.Serialize()), nil
}

// ────────────────────── RefreshPriorities ──────────────────────

func (s *deadlineService) RefreshPriorities(ctx context.Context) (int64, error) {
	open := false
	deadlines, err := s.repo.Deadline.List(ctx, repository.DeadlineFilter{Completed: &open})
	if err != nil {
		s.logger.Error("列出未完成截止事项失败", zap.Error(err))
		return 0, err
	}

	now := s.now()
	changed := make(map[primitive.ObjectID]model.Priority)
	for _, d := range deadlines {
		if p := academic.DerivePriority(d.DueDate, now); p != d.Priority {
			changed[d.ID] = p
		}
	}

	n, err := s.repo.Deadline.SetPriorities(ctx, changed, now)
	if err != nil {
		s.logger.Error("批量更新优先级失败", zap.Int("count", len(changed)), zap.Error(err))
		return 0, err
	}
	return n, nil
}

// ── 内部辅助方法 ──

func (s *deadlineService) list(ctx context.Context, filter repository.DeadlineFilter, subjectHex, callerID string) ([]dto.DeadlineResponse, error) {
	var byID map[primitive.ObjectID]*model.Subject

	if subjectHex != "" {
		subject, err := ownedSubjectHex(ctx, s.repo, s.logger, subjectHex, callerID)
		if err != nil {
			return nil, err
		}
		byID = map[primitive.ObjectID]*model.Subject{subject.ID: subject}
		filter.SubjectIDs = []primitive.ObjectID{subject.ID}
	} else {
		subjects, err := s.repo.Subject.ListByUser(ctx, callerID)
		if err != nil {
			s.logger.Error("列出课程失败", zap.Error(err))
			return nil, err
		}
		byID, filter.SubjectIDs = indexSubjects(subjects)
	}

	deadlines, err := s.repo.Deadline.List(ctx, filter)
	if err != nil {
		s.logger.Error("列出截止事项失败", zap.Error(err))
		return nil, err
	}

	now := s.now()
	result := make([]dto.DeadlineResponse, 0, len(deadlines))
	for i := range deadlines {
		result = append(result, *s.toResponse(&deadlines[i], byID[deadlines[i].SubjectID], now))
	}
	return result, nil
}

func (s *deadlineService) ownedDeadline(ctx context.Context, id, callerID string) (*model.Deadline, *model.Subject, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, nil, ErrDeadlineNotFound
	}
	d, err := s.repo.Deadline.GetByID(ctx, oid)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrDeadlineNotFound
		}
		s.logger.Error("查询截止事项失败", zap.String("id", id), zap.Error(err))
		return nil, nil, err
	}
	subject, err := ownedSubject(ctx, s.repo, s.logger, d.SubjectID, callerID)
	if err != nil {
		if errors.Is(err, ErrSubjectNotFound) {
			return nil, nil, ErrDeadlineNotFound
		}
		return nil, nil, err
	}
	return d, subject, nil
}

func (s *deadlineService) toResponse(d *model.Deadline, subject *model.Subject, now time.Time) *dto.DeadlineResponse {
	return &dto.DeadlineResponse{
		ID:            d.ID.Hex(),
		SubjectID:     d.SubjectID.Hex(),
		Subject:       subjectBrief(subject),
		Title:         d.Title,
		Description:   d.Description,
		Type:          string(d.Type),
		DueDate:       dto.FormatTime(d.DueDate),
		DueTime:       d.DueTime,
		DaysUntil:     academic.DaysUntil(d.DueDate, now),
		Completed:     d.Completed,
		CompletedDate: dto.FormatTimePtr(d.CompletedDate),
		Priority:      string(d.Priority),
		CreatedAt:     dto.FormatTime(d.CreatedAt),
		UpdatedAt:     dto.FormatTime(d.UpdatedAt),
	}
}

func indexSubjects(subjects []model.Subject) (map[primitive.ObjectID]*model.Subject, []primitive.ObjectID) {
	byID := make(map[primitive.ObjectID]*model.Subject, len(subjects))
	ids := make([]primitive.ObjectID, 0, len(subjects))
	for i := range subjects {
		byID[subjects[i].ID] = &subjects[i]
		ids = append(ids, subjects[i].ID)
	}
	return byID, ids
}

// dueAt 有 due_time 时合成具体时刻（UTC）
func dueAt(d *model.Deadline) (time.Time, bool) {
	if d.DueTime == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("15:04", d.DueTime)
	if err != nil {
		return time.Time{}, false
	}
	y, m, day := d.DueDate.UTC().Date()
	return time.Date(y, m, day, t.Hour(), t.Minute(), 0, 0, time.UTC), true
}

func calendarSummary(d *model.Deadline, subject *model.Subject) string {
	if subject == nil {
		return fmt.Sprintf("[%s] %s", d.Type, d.Title)
	}
	label := subject.Code
	if label == "" {
		label = subject.Name
	}
	return fmt.Sprintf("[%s] %s · %s", d.Type, d.Title, label)
}
