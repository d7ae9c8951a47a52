package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"semester-manager/backend/internal/model"
)

// TopicRepository 知识点数据访问接口
type TopicRepository interface {
	Create(ctx context.Context, topic *model.Topic) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Topic, error)
	ListBySubject(ctx context.Context, subjectID primitive.ObjectID) ([]model.Topic, error)
	Update(ctx context.Context, topic *model.Topic) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteBySubject(ctx context.Context, subjectID primitive.ObjectID) (int64, error)
}

type topicRepo struct {
	coll *mongo.Collection
}

// NewTopicRepo 创建 TopicRepository 实例
func NewTopicRepo(db *mongo.Database) TopicRepository {
	return &topicRepo{coll: db.Collection(CollTopics)}
}

func (r *topicRepo) Create(ctx context.Context, topic *model.Topic) error {
	id, err := insertOne(ctx, r.coll, topic)
	if err != nil {
		return err
	}
	topic.ID = id
	return nil
}

func (r *topicRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Topic, error) {
	return findByID[model.Topic](ctx, r.coll, id)
}

// ListBySubject 按单元、名称排序
func (r *topicRepo) ListBySubject(ctx context.Context, subjectID primitive.ObjectID) ([]model.Topic, error) {
	opts := options.Find().SetSort(bson.D{{Key: "unit", Value: 1}, {Key: "name", Value: 1}})
	return findAll[model.Topic](ctx, r.coll, bson.M{"subject_id": subjectID}, opts)
}

func (r *topicRepo) Update(ctx context.Context, topic *model.Topic) error {
	return replaceByID(ctx, r.coll, topic.ID, topic)
}

func (r *topicRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id)
}

func (r *topicRepo) DeleteBySubject(ctx context.Context, subjectID primitive.ObjectID) (int64, error) {
	return deleteBySubject(ctx, r.coll, subjectID)
}
