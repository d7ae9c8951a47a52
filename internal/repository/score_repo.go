package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"semester-manager/backend/internal/model"
)

// ScoreRepository 成绩数据访问接口
type ScoreRepository interface {
	Create(ctx context.Context, score *model.Score) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Score, error)
	ListBySubject(ctx context.Context, subjectID primitive.ObjectID) ([]model.Score, error)
	Update(ctx context.Context, score *model.Score) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteBySubject(ctx context.Context, subjectID primitive.ObjectID) (int64, error)
}

type scoreRepo struct {
	coll *mongo.Collection
}

// NewScoreRepo 创建 ScoreRepository 实例
func NewScoreRepo(db *mongo.Database) ScoreRepository {
	return &scoreRepo{coll: db.Collection(CollScores)}
}

func (r *scoreRepo) Create(ctx context.Context, score *model.Score) error {
	id, err := insertOne(ctx, r.coll, score)
	if err != nil {
		return err
	}
	score.ID = id
	return nil
}

func (r *scoreRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Score, error) {
	return findByID[model.Score](ctx, r.coll, id)
}

// ListBySubject 按日期倒序
func (r *scoreRepo) ListBySubject(ctx context.Context, subjectID primitive.ObjectID) ([]model.Score, error) {
	return findAll[model.Score](ctx, r.coll, bson.M{"subject_id": subjectID}, sortBy("date", -1))
}

func (r *scoreRepo) Update(ctx context.Context, score *model.Score) error {
	return replaceByID(ctx, r.coll, score.ID, score)
}

func (r *scoreRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id)
}

func (r *scoreRepo) DeleteBySubject(ctx context.Context, subjectID primitive.ObjectID) (int64, error) {
	return deleteBySubject(ctx, r.coll, subjectID)
}
