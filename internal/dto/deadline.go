package dto

// ── 截止事项模块 DTO ──

// CreateDeadlineRequest 创建截止事项请求
type CreateDeadlineRequest struct {
	SubjectID   string `json:"subject_id"  binding:"required,objectid"`
	Title       string `json:"title"       binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Type        string `json:"type"        binding:"required,oneof=Assignment Quiz Midterm Endterm Project"`
	DueDate     *Date  `json:"due_date"    binding:"required"`
	DueTime     string `json:"due_time"    binding:"omitempty,datetime=15:04"`
}

// UpdateDeadlineRequest 更新截止事项请求
type UpdateDeadlineRequest struct {
	Title       *string `json:"title"       binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Type        *string `json:"type"        binding:"omitempty,oneof=Assignment Quiz Midterm Endterm Project"`
	DueDate     *Date   `json:"due_date"`
	DueTime     *string `json:"due_time"    binding:"omitempty,datetime=15:04"`
}

// DeadlineListRequest 截止事项列表查询参数
type DeadlineListRequest struct {
	SubjectID string `form:"subject_id" binding:"omitempty,objectid"`
	Completed *bool  `form:"completed"`
	Priority  string `form:"priority"   binding:"omitempty,oneof=overdue urgent soon later"`
}

// DeadlineResponse 截止事项响应
type DeadlineResponse struct {
	ID            string        `json:"id"`
	SubjectID     string        `json:"subject_id"`
	Subject       *SubjectBrief `json:"subject,omitempty"`
	Title         string        `json:"title"`
	Description   string        `json:"description,omitempty"`
	Type          string        `json:"type"`
	DueDate       string        `json:"due_date"`
	DueTime       string        `json:"due_time,omitempty"`
	DaysUntil     int           `json:"days_until"`
	Completed     bool          `json:"completed"`
	CompletedDate *string       `json:"completed_date,omitempty"`
	Priority      string        `json:"priority"`
	CreatedAt     string        `json:"created_at"`
	UpdatedAt     string        `json:"updated_at"`
}
