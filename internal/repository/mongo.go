package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// 集合名称
const (
	CollSubjects      = "subjects"
	CollTopics        = "topics"
	CollResources     = "resources"
	CollGrading       = "grading_components"
	CollScores        = "scores"
	CollAttendances   = "attendances"
	CollDeadlines     = "deadlines"
	CollStudySessions = "study_sessions"
)

// ── 通用读写辅助 ──

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func findByID[T any](ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) (*T, error) {
	var doc T
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func insertOne(ctx context.Context, coll *mongo.Collection, doc interface{}) (primitive.ObjectID, error) {
	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

// replaceByID 整体覆盖文档，未命中时返回 mongo.ErrNoDocuments
func replaceByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, doc interface{}) error {
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// setByID 局部更新，未命中时返回 mongo.ErrNoDocuments
func setByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, fields bson.M) error {
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func deleteBySubject(ctx context.Context, coll *mongo.Collection, subjectID primitive.ObjectID) (int64, error) {
	res, err := coll.DeleteMany(ctx, bson.M{"subject_id": subjectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// dateRange 构造 [from, to] 闭区间条件；两端均为空时返回 nil
func dateRange(from, to *time.Time) bson.M {
	if from == nil && to == nil {
		return nil
	}
	cond := bson.M{}
	if from != nil {
		cond["$gte"] = *from
	}
	if to != nil {
		cond["$lte"] = *to
	}
	return cond
}

func sortBy(field string, order int) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: order}, {Key: "_id", Value: order}})
}
