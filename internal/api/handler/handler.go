package handler

import "semester-manager/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Subject    *SubjectHandler
	Topic      *TopicHandler
	Resource   *ResourceHandler
	Grading    *GradingHandler
	Attendance *AttendanceHandler
	Deadline   *DeadlineHandler
	Study      *StudyHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Subject:    NewSubjectHandler(svc.Subject),
		Topic:      NewTopicHandler(svc.Topic),
		Resource:   NewResourceHandler(svc.Resource),
		Grading:    NewGradingHandler(svc.Grading),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Deadline:   NewDeadlineHandler(svc.Deadline),
		Study:      NewStudyHandler(svc.Study),
		Export:     NewExportHandler(svc.Export),
	}
}
