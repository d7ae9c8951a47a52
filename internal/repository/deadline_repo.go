package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"semester-manager/backend/internal/model"
)

// DeadlineFilter 截止事项查询条件；SubjectIDs 为空时不限课程
type DeadlineFilter struct {
	SubjectIDs []primitive.ObjectID
	Completed  *bool
	Priorities []model.Priority
}

// DeadlineRepository 截止事项数据访问接口
type DeadlineRepository interface {
	Create(ctx context.Context, d *model.Deadline) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Deadline, error)
	List(ctx context.Context, filter DeadlineFilter) ([]model.Deadline, error)
	Update(ctx context.Context, d *model.Deadline) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteBySubject(ctx context.Context, subjectID primitive.ObjectID) (int64, error)
	SetPriorities(ctx context.Context, priorities map[primitive.ObjectID]model.Priority, at time.Time) (int64, error)
}

type deadlineRepo struct {
	coll *mongo.Collection
}

// NewDeadlineRepo 创建 DeadlineRepository 实例
func NewDeadlineRepo(db *mongo.Database) DeadlineRepository {
	return &deadlineRepo{coll: db.Collection(CollDeadlines)}
}

func (r *deadlineRepo) Create(ctx context.Context, d *model.Deadline) error {
	id, err := insertOne(ctx, r.coll, d)
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}

func (r *deadlineRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Deadline, error) {
	return findByID[model.Deadline](ctx, r.coll, id)
}

// List 按截止时间升序
func (r *deadlineRepo) List(ctx context.Context, f DeadlineFilter) ([]model.Deadline, error) {
	filter := bson.M{}
	if f.SubjectIDs != nil {
		filter["subject_id"] = bson.M{"$in": f.SubjectIDs}
	}
	if f.Completed != nil {
		filter["completed"] = *f.Completed
	}
	if len(f.Priorities) > 0 {
		filter["priority"] = bson.M{"$in": f.Priorities}
	}
	return findAll[model.Deadline](ctx, r.coll, filter, sortBy("due_date", 1))
}

func (r *deadlineRepo) Update(ctx context.Context, d *model.Deadline) error {
	return replaceByID(ctx, r.coll, d.ID, d)
}

func (r *deadlineRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id)
}

func (r *deadlineRepo) DeleteBySubject(ctx context.Context, subjectID primitive.ObjectID) (int64, error) {
	return deleteBySubject(ctx, r.coll, subjectID)
}

// SetPriorities 批量写入优先级，只更新仍未完成的事项
func (r *deadlineRepo) SetPriorities(ctx context.Context, priorities map[primitive.ObjectID]model.Priority, at time.Time) (int64, error) {
	if len(priorities) == 0 {
		return 0, nil
	}

	models := make([]mongo.WriteModel, 0, len(priorities))
	for id, p := range priorities {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id, "completed": false}).
			SetUpdate(bson.M{"$set": bson.M{"priority": p, "updated_at": at}}))
	}

	res, err := r.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
