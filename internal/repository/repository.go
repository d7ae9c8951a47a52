package repository

import (
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
// 账号数据在 PostgreSQL，学业数据在 MongoDB
type Repository struct {
	User         UserRepository
	Subject      SubjectRepository
	Topic        TopicRepository
	Resource     ResourceRepository
	Grading      GradingRepository
	Score        ScoreRepository
	Attendance   AttendanceRepository
	Deadline     DeadlineRepository
	StudySession StudySessionRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB, mdb *mongo.Database) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Subject:      NewSubjectRepo(mdb),
		Topic:        NewTopicRepo(mdb),
		Resource:     NewResourceRepo(mdb),
		Grading:      NewGradingRepo(mdb),
		Score:        NewScoreRepo(mdb),
		Attendance:   NewAttendanceRepo(mdb),
		Deadline:     NewDeadlineRepo(mdb),
		StudySession: NewStudySessionRepo(mdb),
	}
}
