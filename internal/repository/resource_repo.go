package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"semester-manager/backend/internal/model"
)

// ResourceFilter 资料查询条件
type ResourceFilter struct {
	SubjectID primitive.ObjectID
	Type      model.ResourceType
	Completed *bool
	TopicID   *primitive.ObjectID
}

// TopicResourceCount 单个知识点关联资料的数量
type TopicResourceCount struct {
	TopicID   primitive.ObjectID `bson:"_id"`
	Total     int                `bson:"total"`
	Completed int                `bson:"completed"`
}

// ResourceRepository 学习资料数据访问接口
type ResourceRepository interface {
	Create(ctx context.Context, res *model.Resource) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Resource, error)
	List(ctx context.Context, filter ResourceFilter) ([]model.Resource, error)
	Update(ctx context.Context, res *model.Resource) error
	SetCompleted(ctx context.Context, id primitive.ObjectID, completed bool, at time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteBySubject(ctx context.Context, subjectID primitive.ObjectID) (int64, error)
	UnlinkTopic(ctx context.Context, topicID primitive.ObjectID) error
	CountByTopic(ctx context.Context, subjectID primitive.ObjectID) (map[primitive.ObjectID]TopicResourceCount, error)
}

type resourceRepo struct {
	coll *mongo.Collection
}

// NewResourceRepo 创建 ResourceRepository 实例
func NewResourceRepo(db *mongo.Database) ResourceRepository {
	return &resourceRepo{coll: db.Collection(CollResources)}
}

func (r *resourceRepo) Create(ctx context.Context, res *model.Resource) error {
	id, err := insertOne(ctx, r.coll, res)
	if err != nil {
		return err
	}
	res.ID = id
	return nil
}

func (r *resourceRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Resource, error) {
	return findByID[model.Resource](ctx, r.coll, id)
}

func (r *resourceRepo) List(ctx context.Context, f ResourceFilter) ([]model.Resource, error) {
	filter := bson.M{"subject_id": f.SubjectID}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Completed != nil {
		filter["completed"] = *f.Completed
	}
	if f.TopicID != nil {
		filter["topic_id"] = *f.TopicID
	}
	return findAll[model.Resource](ctx, r.coll, filter, sortBy("upload_date", -1))
}

func (r *resourceRepo) Update(ctx context.Context, res *model.Resource) error {
	return replaceByID(ctx, r.coll, res.ID, res)
}

// SetCompleted 只更新完成标记，不触碰其他字段
func (r *resourceRepo) SetCompleted(ctx context.Context, id primitive.ObjectID, completed bool, at time.Time) error {
	return setByID(ctx, r.coll, id, bson.M{"completed": completed, "updated_at": at})
}

func (r *resourceRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id)
}

func (r *resourceRepo) DeleteBySubject(ctx context.Context, subjectID primitive.ObjectID) (int64, error) {
	return deleteBySubject(ctx, r.coll, subjectID)
}

// UnlinkTopic 知识点删除后解除资料关联
func (r *resourceRepo) UnlinkTopic(ctx context.Context, topicID primitive.ObjectID) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"topic_id": topicID},
		bson.M{"$unset": bson.M{"topic_id": ""}},
	)
	return err
}

// CountByTopic 按知识点统计资料总数与已完成数
func (r *resourceRepo) CountByTopic(ctx context.Context, subjectID primitive.ObjectID) (map[primitive.ObjectID]TopicResourceCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"subject_id": subjectID,
			"topic_id":   bson.M{"$exists": true, "$ne": nil},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$topic_id",
			"total": bson.M{"$sum": 1},
			"completed": bson.M{"$sum": bson.M{
				"$cond": bson.A{"$completed", 1, 0},
			}},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []TopicResourceCount
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[primitive.ObjectID]TopicResourceCount, len(rows))
	for _, row := range rows {
		counts[row.TopicID] = row
	}
	return counts, nil
}
