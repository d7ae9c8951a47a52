package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"semester-manager/backend/internal/model"
)

// StudySessionFilter 学习记录查询条件
type StudySessionFilter struct {
	UserID    string
	SubjectID *primitive.ObjectID
	From      *time.Time
	To        *time.Time
}

// StudySessionRepository 学习记录数据访问接口
type StudySessionRepository interface {
	Create(ctx context.Context, s *model.StudySession) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.StudySession, error)
	List(ctx context.Context, filter StudySessionFilter) ([]model.StudySession, error)
	Update(ctx context.Context, s *model.StudySession) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteBySubject(ctx context.Context, subjectID primitive.ObjectID) (int64, error)
}

type studySessionRepo struct {
	coll *mongo.Collection
}

// NewStudySessionRepo 创建 StudySessionRepository 实例
func NewStudySessionRepo(db *mongo.Database) StudySessionRepository {
	return &studySessionRepo{coll: db.Collection(CollStudySessions)}
}

func (r *studySessionRepo) Create(ctx context.Context, s *model.StudySession) error {
	id, err := insertOne(ctx, r.coll, s)
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

func (r *studySessionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.StudySession, error) {
	return findByID[model.StudySession](ctx, r.coll, id)
}

// List 按日期倒序
func (r *studySessionRepo) List(ctx context.Context, f StudySessionFilter) ([]model.StudySession, error) {
	filter := bson.M{"user_id": f.UserID}
	if f.SubjectID != nil {
		filter["subject_id"] = *f.SubjectID
	}
	if cond := dateRange(f.From, f.To); cond != nil {
		filter["date"] = cond
	}
	return findAll[model.StudySession](ctx, r.coll, filter, sortBy("date", -1))
}

func (r *studySessionRepo) Update(ctx context.Context, s *model.StudySession) error {
	return replaceByID(ctx, r.coll, s.ID, s)
}

func (r *studySessionRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id)
}

func (r *studySessionRepo) DeleteBySubject(ctx context.Context, subjectID primitive.ObjectID) (int64, error) {
	return deleteBySubject(ctx, r.coll, subjectID)
}
