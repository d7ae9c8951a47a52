package dto

// ── 学习记录模块 DTO ──

// CreateStudySessionRequest 创建学习记录请求
type CreateStudySessionRequest struct {
	SubjectID  string `json:"subject_id"  binding:"required,objectid"`
	TopicID    string `json:"topic_id"    binding:"omitempty,objectid"`
	Date       *Date  `json:"date"`
	StartTime  *Date  `json:"start_time"  binding:"required"`
	EndTime    *Date  `json:"end_time"`
	Duration   *int   `json:"duration"    binding:"omitempty,min=0,max=1440"`
	Notes      string `json:"notes"       binding:"omitempty,max=2000"`
	FocusLevel string `json:"focus_level" binding:"omitempty,oneof=low medium high"`
}

// UpdateStudySessionRequest 更新学习记录请求
type UpdateStudySessionRequest struct {
	TopicID    *string `json:"topic_id"    binding:"omitempty,objectid"`
	Date       *Date   `json:"date"`
	StartTime  *Date   `json:"start_time"`
	EndTime    *Date   `json:"end_time"`
	Duration   *int    `json:"duration"    binding:"omitempty,min=0,max=1440"`
	Notes      *string `json:"notes"       binding:"omitempty,max=2000"`
	FocusLevel *string `json:"focus_level" binding:"omitempty,oneof=low medium high"`
}

// StudySessionListRequest 学习记录列表查询参数
type StudySessionListRequest struct {
	SubjectID string `form:"subject_id" binding:"omitempty,objectid"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// StudyStatsRequest 学习统计查询参数；非法周期按 week 处理
type StudyStatsRequest struct {
	Period string `form:"period"`
}

// StudySessionResponse 学习记录响应
type StudySessionResponse struct {
	ID         string        `json:"id"`
	SubjectID  string        `json:"subject_id"`
	Subject    *SubjectBrief `json:"subject,omitempty"`
	TopicID    string        `json:"topic_id,omitempty"`
	Date       string        `json:"date"`
	StartTime  string        `json:"start_time"`
	EndTime    *string       `json:"end_time,omitempty"`
	Duration   int           `json:"duration"`
	Notes      string        `json:"notes,omitempty"`
	FocusLevel string        `json:"focus_level,omitempty"`
}

// SubjectDistributionItem 单门课程学习时长
type SubjectDistributionItem struct {
	SubjectID    string `json:"subject_id"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	TotalMinutes int    `json:"total_minutes"`
	SessionCount int    `json:"session_count"`
}

// HeatmapPoint 热力图单日数据
type HeatmapPoint struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

// StudyStatsResponse 学习统计响应
type StudyStatsResponse struct {
	Period              string                    `json:"period"`
	TotalMinutes        int                       `json:"total_minutes"`
	TotalHours          float64                   `json:"total_hours"`
	SessionCount        int                       `json:"session_count"`
	SubjectDistribution []SubjectDistributionItem `json:"subject_distribution"`
	DailyStats          map[string]int            `json:"daily_stats"`
	HeatmapData         []HeatmapPoint            `json:"heatmap_data"`
}
