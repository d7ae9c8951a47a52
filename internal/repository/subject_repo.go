package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"semester-manager/backend/internal/model"
)

// SubjectRepository 课程数据访问接口
type SubjectRepository interface {
	Create(ctx context.Context, subject *model.Subject) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Subject, error)
	ListByUser(ctx context.Context, userID string) ([]model.Subject, error)
	Update(ctx context.Context, subject *model.Subject) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type subjectRepo struct {
	coll *mongo.Collection
}

// NewSubjectRepo 创建 SubjectRepository 实例
func NewSubjectRepo(db *mongo.Database) SubjectRepository {
	return &subjectRepo{coll: db.Collection(CollSubjects)}
}

func (r *subjectRepo) Create(ctx context.Context, subject *model.Subject) error {
	id, err := insertOne(ctx, r.coll, subject)
	if err != nil {
		return err
	}
	subject.ID = id
	return nil
}

func (r *subjectRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Subject, error) {
	return findByID[model.Subject](ctx, r.coll, id)
}

func (r *subjectRepo) ListByUser(ctx context.Context, userID string) ([]model.Subject, error) {
	return findAll[model.Subject](ctx, r.coll, bson.M{"user_id": userID}, sortBy("created_at", -1))
}

func (r *subjectRepo) Update(ctx context.Context, subject *model.Subject) error {
	return replaceByID(ctx, r.coll, subject.ID, subject)
}

func (r *subjectRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id)
}
