package dto

// ── 出勤模块 DTO ──

// MarkAttendanceRequest 记录出勤请求
type MarkAttendanceRequest struct {
	Date   *Date  `json:"date"   binding:"required"`
	Status string `json:"status" binding:"required,oneof=present absent late"`
	Notes  string `json:"notes"  binding:"omitempty,max=500"`
}

// UpdateAttendanceRequest 更新出勤请求
type UpdateAttendanceRequest struct {
	Date   *Date   `json:"date"`
	Status *string `json:"status" binding:"omitempty,oneof=present absent late"`
	Notes  *string `json:"notes"  binding:"omitempty,max=500"`
}

// DateRangeRequest 日期区间查询参数
type DateRangeRequest struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// AttendanceResponse 出勤记录响应
type AttendanceResponse struct {
	ID        string `json:"id"`
	SubjectID string `json:"subject_id"`
	Date      string `json:"date"`
	Status    string `json:"status"`
	Notes     string `json:"notes,omitempty"`
}
