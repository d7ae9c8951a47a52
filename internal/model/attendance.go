package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AttendanceStatus 出勤状态
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
)

// Valid 是否为合法状态
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	}
	return false
}

// Attendance 出勤记录，对应 attendances 集合
type Attendance struct {
	DocumentBase `bson:",inline"`
	SubjectID    primitive.ObjectID `bson:"subject_id" json:"subject_id"`
	Date         time.Time          `bson:"date"       json:"date"`
	Status       AttendanceStatus   `bson:"status"     json:"status"`
	Notes        string             `bson:"notes"      json:"notes,omitempty"`
}
