package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "semester-manager/backend/pkg/errors"
)

// FocusLevel 学习专注度
type FocusLevel string

const (
	FocusLow    FocusLevel = "low"
	FocusMedium FocusLevel = "medium"
	FocusHigh   FocusLevel = "high"
)

// Valid 是否为合法专注度；空值表示未填写
func (f FocusLevel) Valid() bool {
	switch f {
	case "", FocusLow, FocusMedium, FocusHigh:
		return true
	}
	return false
}

// StudySession 学习记录，对应 study_sessions 集合
type StudySession struct {
	DocumentBase `bson:",inline"`
	UserID       string              `bson:"user_id"               json:"user_id"`
	SubjectID    primitive.ObjectID  `bson:"subject_id"            json:"subject_id"`
	TopicID      *primitive.ObjectID `bson:"topic_id,omitempty"    json:"topic_id,omitempty"`
	Date         time.Time           `bson:"date"                  json:"date"`
	StartTime    time.Time           `bson:"start_time"            json:"start_time"`
	EndTime      *time.Time          `bson:"end_time,omitempty"    json:"end_time,omitempty"`
	Duration     int                 `bson:"duration"              json:"duration"` // 分钟
	Notes        string              `bson:"notes"                 json:"notes,omitempty"`
	FocusLevel   FocusLevel          `bson:"focus_level,omitempty" json:"focus_level,omitempty"`
}

// Validate 持久化前校验：结束时间不能早于开始时间
func (s *StudySession) Validate() error {
	if s.EndTime != nil && s.EndTime.Before(s.StartTime) {
		return apperrors.NewValidation("结束时间不能早于开始时间")
	}
	if s.Duration < 0 {
		return apperrors.NewValidation("学习时长不能为负数")
	}
	if !s.FocusLevel.Valid() {
		return apperrors.NewValidation("专注度取值无效: %s", s.FocusLevel)
	}
	return nil
}
