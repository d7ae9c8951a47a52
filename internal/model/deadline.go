package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeadlineType 截止事项类型
type DeadlineType string

const (
	DeadlineAssignment DeadlineType = "Assignment"
	DeadlineQuiz       DeadlineType = "Quiz"
	DeadlineMidterm    DeadlineType = "Midterm"
	DeadlineEndterm    DeadlineType = "Endterm"
	DeadlineProject    DeadlineType = "Project"
)

// Valid 是否为合法类型
func (t DeadlineType) Valid() bool {
	switch t {
	case DeadlineAssignment, DeadlineQuiz, DeadlineMidterm, DeadlineEndterm, DeadlineProject:
		return true
	}
	return false
}

// Priority 截止事项紧急程度（由截止时间推导）
type Priority string

const (
	PriorityOverdue Priority = "overdue"
	PriorityUrgent  Priority = "urgent"
	PrioritySoon    Priority = "soon"
	PriorityLater   Priority = "later"
)

// Valid 是否为合法优先级
func (p Priority) Valid() bool {
	switch p {
	case PriorityOverdue, PriorityUrgent, PrioritySoon, PriorityLater:
		return true
	}
	return false
}

// Deadline 截止事项，对应 deadlines 集合
type Deadline struct {
	DocumentBase     `bson:",inline"`
	SubjectID        primitive.ObjectID `bson:"subject_id"               json:"subject_id"`
	Title            string             `bson:"title"                    json:"title"`
	Description      string             `bson:"description"              json:"description,omitempty"`
	Type             DeadlineType       `bson:"type"                     json:"type"`
	DueDate          time.Time          `bson:"due_date"                 json:"due_date"`
	DueTime          string             `bson:"due_time,omitempty"       json:"due_time,omitempty"`
	Completed        bool               `bson:"completed"                json:"completed"`
	CompletedDate    *time.Time         `bson:"completed_date,omitempty" json:"completed_date,omitempty"`
	Priority         Priority           `bson:"priority"                 json:"priority"`
	NotificationSent bool               `bson:"notification_sent"        json:"notification_sent"`
}
