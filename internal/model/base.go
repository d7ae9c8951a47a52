package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BaseModel 通用审计字段（PostgreSQL 表嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// DocumentBase 文档通用字段（MongoDB 集合嵌入）
type DocumentBase struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at"    json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"    json:"updated_at"`
}

// Touch 写入前刷新时间戳；首次写入时同时设置 CreatedAt
func (d *DocumentBase) Touch(now time.Time) {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
}
