package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"semester-manager/backend/internal/model"
)

// AttendanceRepository 出勤数据访问接口
type AttendanceRepository interface {
	Create(ctx context.Context, a *model.Attendance) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Attendance, error)
	List(ctx context.Context, subjectID primitive.ObjectID, from, to *time.Time) ([]model.Attendance, error)
	Update(ctx context.Context, a *model.Attendance) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteBySubject(ctx context.Context, subjectID primitive.ObjectID) (int64, error)
}

type attendanceRepo struct {
	coll *mongo.Collection
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *mongo.Database) AttendanceRepository {
	return &attendanceRepo{coll: db.Collection(CollAttendances)}
}

func (r *attendanceRepo) Create(ctx context.Context, a *model.Attendance) error {
	id, err := insertOne(ctx, r.coll, a)
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

func (r *attendanceRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Attendance, error) {
	return findByID[model.Attendance](ctx, r.coll, id)
}

// List 按日期倒序；from/to 为空表示不限
func (r *attendanceRepo) List(ctx context.Context, subjectID primitive.ObjectID, from, to *time.Time) ([]model.Attendance, error) {
	filter := bson.M{"subject_id": subjectID}
	if cond := dateRange(from, to); cond != nil {
		filter["date"] = cond
	}
	return findAll[model.Attendance](ctx, r.coll, filter, sortBy("date", -1))
}

func (r *attendanceRepo) Update(ctx context.Context, a *model.Attendance) error {
	return replaceByID(ctx, r.coll, a.ID, a)
}

func (r *attendanceRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id)
}

func (r *attendanceRepo) DeleteBySubject(ctx context.Context, subjectID primitive.ObjectID) (int64, error) {
	return deleteBySubject(ctx, r.coll, subjectID)
}
