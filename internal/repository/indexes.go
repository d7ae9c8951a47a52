package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes 启动时创建集合索引（幂等）
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		CollSubjects: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		CollTopics: {
			{Keys: bson.D{{Key: "subject_id", Value: 1}}},
		},
		CollResources: {
			{Keys: bson.D{{Key: "subject_id", Value: 1}, {Key: "type", Value: 1}}},
			{Keys: bson.D{{Key: "topic_id", Value: 1}}},
		},
		CollGrading: {
			{Keys: bson.D{{Key: "subject_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollScores: {
			{Keys: bson.D{{Key: "subject_id", Value: 1}, {Key: "component_name", Value: 1}}},
		},
		CollAttendances: {
			{Keys: bson.D{{Key: "subject_id", Value: 1}, {Key: "date", Value: -1}}},
		},
		CollDeadlines: {
			{Keys: bson.D{{Key: "subject_id", Value: 1}, {Key: "due_date", Value: 1}}},
			{Keys: bson.D{{Key: "priority", Value: 1}}},
		},
		CollStudySessions: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}}},
			{Keys: bson.D{{Key: "subject_id", Value: 1}}},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("创建 %s 索引失败: %w", coll, err)
		}
	}
	return nil
}
