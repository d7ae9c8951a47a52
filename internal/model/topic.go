package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TopicStatus 知识点掌握状态
type TopicStatus string

const (
	TopicNotStarted    TopicStatus = "not-started"
	TopicLearning      TopicStatus = "learning"
	TopicNeedsPractice TopicStatus = "needs-practice"
	TopicConfident     TopicStatus = "confident"
)

// Valid 是否为合法状态
func (s TopicStatus) Valid() bool {
	switch s {
	case TopicNotStarted, TopicLearning, TopicNeedsPractice, TopicConfident:
		return true
	}
	return false
}

// Topic 知识点，对应 topics 集合
type Topic struct {
	DocumentBase  `bson:",inline"`
	SubjectID     primitive.ObjectID `bson:"subject_id"                json:"subject_id"`
	Name          string             `bson:"name"                      json:"name"`
	Unit          string             `bson:"unit"                      json:"unit,omitempty"`
	Status        TopicStatus        `bson:"status"                    json:"status"`
	Notes         string             `bson:"notes"                     json:"notes,omitempty"`
	LastRevisedAt *time.Time         `bson:"last_revised_at,omitempty" json:"last_revised_at,omitempty"`
}
