package dto

// ── 评分模块 DTO ──

// GradingItemRequest 评分项
type GradingItemRequest struct {
	Name      string   `json:"name"      binding:"required,min=1,max=100"`
	Weightage float64  `json:"weightage" binding:"min=0,max=100"`
	MaxMarks  *float64 `json:"max_marks" binding:"omitempty,gt=0"`
}

// SetGradingSchemeRequest 设置评分方案请求（覆盖式）
type SetGradingSchemeRequest struct {
	Components []GradingItemRequest `json:"components" binding:"required,min=1,max=50,dive"`
}

// GradingItemResponse 评分项响应
type GradingItemResponse struct {
	Name      string   `json:"name"`
	Weightage float64  `json:"weightage"`
	MaxMarks  *float64 `json:"max_marks,omitempty"`
}

// GradingSchemeResponse 评分方案响应
type GradingSchemeResponse struct {
	ID             string                `json:"id"`
	SubjectID      string                `json:"subject_id"`
	Components     []GradingItemResponse `json:"components"`
	TotalWeightage float64               `json:"total_weightage"`
	UpdatedAt      string                `json:"updated_at"`
}

// CreateScoreRequest 录入成绩请求
type CreateScoreRequest struct {
	ComponentName string   `json:"component_name" binding:"required,min=1,max=100"`
	Obtained      *float64 `json:"obtained"       binding:"required,min=0"`
	Max           float64  `json:"max"            binding:"required,gt=0"`
	ClassAverage  *float64 `json:"class_average"  binding:"omitempty,min=0"`
	ClassMax      *float64 `json:"class_max"      binding:"omitempty,min=0"`
	ClassMin      *float64 `json:"class_min"      binding:"omitempty,min=0"`
	Date          *Date    `json:"date"`
}

// UpdateScoreRequest 更新成绩请求
type UpdateScoreRequest struct {
	ComponentName *string  `json:"component_name" binding:"omitempty,min=1,max=100"`
	Obtained      *float64 `json:"obtained"       binding:"omitempty,min=0"`
	Max           *float64 `json:"max"            binding:"omitempty,gt=0"`
	ClassAverage  *float64 `json:"class_average"  binding:"omitempty,min=0"`
	ClassMax      *float64 `json:"class_max"      binding:"omitempty,min=0"`
	ClassMin      *float64 `json:"class_min"      binding:"omitempty,min=0"`
	Date          *Date    `json:"date"`
}

// ScoreResponse 成绩响应
type ScoreResponse struct {
	ID            string   `json:"id"`
	SubjectID     string   `json:"subject_id"`
	ComponentName string   `json:"component_name"`
	Obtained      float64  `json:"obtained"`
	Max           float64  `json:"max"`
	Percentage    float64  `json:"percentage"`
	ClassAverage  *float64 `json:"class_average,omitempty"`
	ClassMax      *float64 `json:"class_max,omitempty"`
	ClassMin      *float64 `json:"class_min,omitempty"`
	Date          string   `json:"date"`
	LastUpdated   string   `json:"last_updated"`
}
