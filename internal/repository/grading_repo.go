package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"semester-manager/backend/internal/model"
)

// GradingRepository 评分方案数据访问接口（每门课程一份）
type GradingRepository interface {
	GetBySubject(ctx context.Context, subjectID primitive.ObjectID) (*model.GradingScheme, error)
	Upsert(ctx context.Context, scheme *model.GradingScheme) error
	DeleteBySubject(ctx context.Context, subjectID primitive.ObjectID) (int64, error)
}

type gradingRepo struct {
	coll *mongo.Collection
}

// NewGradingRepo 创建 GradingRepository 实例
func NewGradingRepo(db *mongo.Database) GradingRepository {
	return &gradingRepo{coll: db.Collection(CollGrading)}
}

func (r *gradingRepo) GetBySubject(ctx context.Context, subjectID primitive.ObjectID) (*model.GradingScheme, error) {
	var scheme model.GradingScheme
	if err := r.coll.FindOne(ctx, bson.M{"subject_id": subjectID}).Decode(&scheme); err != nil {
		return nil, err
	}
	return &scheme, nil
}

// Upsert 以 subject_id 为键整体覆盖
func (r *gradingRepo) Upsert(ctx context.Context, scheme *model.GradingScheme) error {
	res, err := r.coll.ReplaceOne(ctx,
		bson.M{"subject_id": scheme.SubjectID},
		scheme,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return err
	}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		scheme.ID = id
	}
	return nil
}

func (r *gradingRepo) DeleteBySubject(ctx context.Context, subjectID primitive.ObjectID) (int64, error) {
	return deleteBySubject(ctx, r.coll, subjectID)
}
