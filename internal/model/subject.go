package model

// DefaultSubjectColor 未指定颜色时使用的默认颜色
const DefaultSubjectColor = "#3B82F6"

// Subject 课程，对应 subjects 集合
type Subject struct {
	DocumentBase `bson:",inline"`
	UserID       string `bson:"user_id"    json:"user_id"`
	Name         string `bson:"name"       json:"name"`
	Code         string `bson:"code"       json:"code,omitempty"`
	Credits      int    `bson:"credits"    json:"credits"`
	Instructor   string `bson:"instructor" json:"instructor,omitempty"`
	Semester     string `bson:"semester"   json:"semester,omitempty"`
	Color        string `bson:"color"      json:"color"`
}
