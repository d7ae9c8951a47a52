package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResourceType 学习资料类型
type ResourceType string

const (
	ResourcePYQ           ResourceType = "PYQ"
	ResourceBook          ResourceType = "Book"
	ResourceClassNotes    ResourceType = "Class Notes"
	ResourcePersonalNotes ResourceType = "Personal Notes"
)

// Valid 是否为合法类型
func (t ResourceType) Valid() bool {
	switch t {
	case ResourcePYQ, ResourceBook, ResourceClassNotes, ResourcePersonalNotes:
		return true
	}
	return false
}

// Resource 学习资料，对应 resources 集合
type Resource struct {
	DocumentBase     `bson:",inline"`
	SubjectID        primitive.ObjectID  `bson:"subject_id"                  json:"subject_id"`
	TopicID          *primitive.ObjectID `bson:"topic_id,omitempty"          json:"topic_id,omitempty"`
	Title            string              `bson:"title"                       json:"title"`
	Type             ResourceType        `bson:"type"                        json:"type"`
	FileURL          string              `bson:"file_url,omitempty"          json:"file_url,omitempty"`
	FilePublicID     string              `bson:"file_public_id,omitempty"    json:"file_public_id,omitempty"`
	FileResourceType string              `bson:"file_resource_type,omitempty" json:"file_resource_type,omitempty"`
	ExternalLink     string              `bson:"external_link,omitempty"     json:"external_link,omitempty"`
	Completed        bool                `bson:"completed"                   json:"completed"`
	HasPersonalNotes bool                `bson:"has_personal_notes"          json:"has_personal_notes"`
	PersonalNotesID  *primitive.ObjectID `bson:"personal_notes_id,omitempty" json:"personal_notes_id,omitempty"`
	UploadDate       time.Time           `bson:"upload_date"                 json:"upload_date"`
	Tags             []string            `bson:"tags"                        json:"tags"`
}
