package dto

import "semester-manager/backend/internal/academic"

// ── 知识点模块 DTO ──

// CreateTopicRequest 创建知识点请求
type CreateTopicRequest struct {
	Name   string `json:"name"   binding:"required,min=1,max=200"`
	Unit   string `json:"unit"   binding:"omitempty,max=100"`
	Status string `json:"status" binding:"omitempty,oneof=not-started learning needs-practice confident"`
	Notes  string `json:"notes"  binding:"omitempty,max=5000"`
}

// UpdateTopicRequest 更新知识点请求
type UpdateTopicRequest struct {
	Name   *string `json:"name"   binding:"omitempty,min=1,max=200"`
	Unit   *string `json:"unit"   binding:"omitempty,max=100"`
	Status *string `json:"status" binding:"omitempty,oneof=not-started learning needs-practice confident"`
	Notes  *string `json:"notes"  binding:"omitempty,max=5000"`
}

// UpdateTopicStatusRequest 更新掌握状态请求
type UpdateTopicStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=not-started learning needs-practice confident"`
}

// TopicResponse 知识点信息响应
type TopicResponse struct {
	ID            string                  `json:"id"`
	SubjectID     string                  `json:"subject_id"`
	Name          string                  `json:"name"`
	Unit          string                  `json:"unit,omitempty"`
	Status        string                  `json:"status"`
	Notes         string                  `json:"notes,omitempty"`
	LastRevisedAt *string                 `json:"last_revised_at,omitempty"`
	Stats         *academic.TopicProgress `json:"stats,omitempty"`
	CreatedAt     string                  `json:"created_at"`
	UpdatedAt     string                  `json:"updated_at"`
}

// WeakTopicResponse 薄弱知识点
type WeakTopicResponse struct {
	TopicResponse
	Reason string `json:"reason"`
}
