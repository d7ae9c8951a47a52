package dto

// ── 学习资料模块 DTO ──

// CreateResourceRequest 创建资料请求
type CreateResourceRequest struct {
	Title            string   `json:"title"              binding:"required,min=1,max=200"`
	Type             string   `json:"type"               binding:"required,oneof=PYQ Book 'Class Notes' 'Personal Notes'"`
	TopicID          string   `json:"topic_id"           binding:"omitempty,objectid"`
	FileURL          string   `json:"file_url"           binding:"omitempty,url"`
	FilePublicID     string   `json:"file_public_id"     binding:"omitempty,max=255"`
	FileResourceType string   `json:"file_resource_type" binding:"omitempty,oneof=image video raw"`
	ExternalLink     string   `json:"external_link"      binding:"omitempty,url"`
	Tags             []string `json:"tags"               binding:"omitempty,max=20,dive,min=1,max=50"`
}

// UpdateResourceRequest 更新资料请求；topic_id 传空字符串表示解除关联
type UpdateResourceRequest struct {
	Title        *string   `json:"title"         binding:"omitempty,min=1,max=200"`
	Type         *string   `json:"type"          binding:"omitempty,oneof=PYQ Book 'Class Notes' 'Personal Notes'"`
	TopicID      *string   `json:"topic_id"      binding:"omitempty,objectid"`
	ExternalLink *string   `json:"external_link" binding:"omitempty,url"`
	Tags         *[]string `json:"tags"          binding:"omitempty,max=20,dive,min=1,max=50"`
}

// ResourceListRequest 资料列表查询参数
type ResourceListRequest struct {
	Type      string `form:"type"      binding:"omitempty,oneof=PYQ Book 'Class Notes' 'Personal Notes'"`
	Completed *bool  `form:"completed"`
	TopicID   string `form:"topic_id"  binding:"omitempty,objectid"`
}

// LinkNotesRequest 关联个人笔记请求
type LinkNotesRequest struct {
	PersonalNotesID string `json:"personal_notes_id" binding:"required,objectid"`
}

// ResourceResponse 资料信息响应
type ResourceResponse struct {
	ID               string   `json:"id"`
	SubjectID        string   `json:"subject_id"`
	TopicID          string   `json:"topic_id,omitempty"`
	Title            string   `json:"title"`
	Type             string   `json:"type"`
	FileURL          string   `json:"file_url,omitempty"`
	FilePublicID     string   `json:"file_public_id,omitempty"`
	ExternalLink     string   `json:"external_link,omitempty"`
	Completed        bool     `json:"completed"`
	HasPersonalNotes bool     `json:"has_personal_notes"`
	PersonalNotesID  string   `json:"personal_notes_id,omitempty"`
	UploadDate       string   `json:"upload_date"`
	Tags             []string `json:"tags"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

// UploadResponse 文件上传结果
type UploadResponse struct {
	URL          string `json:"url"`
	PublicID     string `json:"public_id"`
	ResourceType string `json:"resource_type"`
}
