package dto

// ── 课程模块 DTO ──

// CreateSubjectRequest 创建课程请求
type CreateSubjectRequest struct {
	Name       string `json:"name"       binding:"required,min=1,max=100"`
	Code       string `json:"code"       binding:"omitempty,max=20"`
	Credits    int    `json:"credits"    binding:"min=0,max=30"`
	Instructor string `json:"instructor" binding:"omitempty,max=100"`
	Semester   string `json:"semester"   binding:"omitempty,max=50"`
	Color      string `json:"color"      binding:"omitempty,hexcolor"`
}

// UpdateSubjectRequest 更新课程请求
type UpdateSubjectRequest struct {
	Name       *string `json:"name"       binding:"omitempty,min=1,max=100"`
	Code       *string `json:"code"       binding:"omitempty,max=20"`
	Credits    *int    `json:"credits"    binding:"omitempty,min=0,max=30"`
	Instructor *string `json:"instructor" binding:"omitempty,max=100"`
	Semester   *string `json:"semester"   binding:"omitempty,max=50"`
	Color      *string `json:"color"      binding:"omitempty,hexcolor"`
}

// SubjectResponse 课程信息响应
type SubjectResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Code       string `json:"code,omitempty"`
	Credits    int    `json:"credits"`
	Instructor string `json:"instructor,omitempty"`
	Semester   string `json:"semester,omitempty"`
	Color      string `json:"color"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}
