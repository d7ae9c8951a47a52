package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"semester-manager/backend/internal/dto"
	"semester-manager/backend/internal/model"
	"semester-manager/backend/internal/repository"
	apperrors "semester-manager/backend/pkg/errors"
)

var errInvalidID = errors.New("无效的 ID")

// parseID 非法 ObjectID 一律按“不存在”处理
func parseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, errInvalidID
	}
	return id, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, errInvalidID)
}

// ownedSubject 加载课程并校验归属：不存在 → ErrSubjectNotFound，非本人 → ErrSubjectForbidden
func ownedSubject(ctx context.Context, repo *repository.Repository, logger *zap.Logger, subjectID primitive.ObjectID, callerID string) (*model.Subject, error) {
	subject, err := repo.Subject.GetByID(ctx, subjectID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSubjectNotFound
		}
		logger.Error("查询课程失败", zap.String("subject_id", subjectID.Hex()), zap.Error(err))
		return nil, err
	}
	if subject.UserID != callerID {
		return nil, ErrSubjectForbidden
	}
	return subject, nil
}

func ownedSubjectHex(ctx context.Context, repo *repository.Repository, logger *zap.Logger, hex, callerID string) (*model.Subject, error) {
	id, err := parseID(hex)
	if err != nil {
		return nil, ErrSubjectNotFound
	}
	return ownedSubject(ctx, repo, logger, id, callerID)
}

// checkParentSubject 子实体的归属校验；课程已不存在时视为子实体不存在
func checkParentSubject(ctx context.Context, repo *repository.Repository, logger *zap.Logger, subjectID primitive.ObjectID, callerID string, notFound error) error {
	_, err := ownedSubject(ctx, repo, logger, subjectID, callerID)
	if errors.Is(err, ErrSubjectNotFound) {
		return notFound
	}
	return err
}

// parseDateRange 解析查询区间；仅有日期的 end_date 包含当天全天
func parseDateRange(req *dto.DateRangeRequest) (from, to *time.Time, err error) {
	if req.StartDate != "" {
		t, perr := dto.ParseDate(req.StartDate)
		if perr != nil {
			return nil, nil, apperrors.NewValidation("start_date 格式错误: %s", req.StartDate)
		}
		from = &t
	}
	if req.EndDate != "" {
		t, perr := dto.ParseDate(req.EndDate)
		if perr != nil {
			return nil, nil, apperrors.NewValidation("end_date 格式错误: %s", req.EndDate)
		}
		if !strings.Contains(req.EndDate, "T") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		to = &t
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, apperrors.NewValidation("end_date 不能早于 start_date")
	}
	return from, to, nil
}

func subjectBrief(s *model.Subject) *dto.SubjectBrief {
	if s == nil {
		return nil
	}
	return &dto.SubjectBrief{ID: s.ID.Hex(), Name: s.Name, Code: s.Code, Color: s.Color}
}

func optionalObjectID(hex string) (*primitive.ObjectID, error) {
	if hex == "" {
		return nil, nil
	}
	id, err := parseID(hex)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func hexOrEmpty(id *primitive.ObjectID) string {
	if id == nil {
		return ""
	}
	return id.Hex()
}
