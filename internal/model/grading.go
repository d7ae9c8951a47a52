package model

import (
	"math"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "semester-manager/backend/pkg/errors"
)

// WeightageTolerance 权重总和允许的误差
const WeightageTolerance = 0.01

// GradingItem 评分方案中的一个组成部分
type GradingItem struct {
	Name      string   `bson:"name"                json:"name"`
	Weightage float64  `bson:"weightage"           json:"weightage"`
	MaxMarks  *float64 `bson:"max_marks,omitempty" json:"max_marks,omitempty"`
}

// GradingScheme 课程评分方案，对应 grading_components 集合，每门课程唯一
type GradingScheme struct {
	DocumentBase `bson:",inline"`
	SubjectID    primitive.ObjectID `bson:"subject_id" json:"subject_id"`
	Components   []GradingItem      `bson:"components" json:"components"`
}

// TotalWeightage 各组成部分权重之和
func (g *GradingScheme) TotalWeightage() float64 {
	var total float64
	for _, c := range g.Components {
		total += c.Weightage
	}
	return total
}

// Validate 持久化前校验：权重总和须为 100（±0.01）
func (g *GradingScheme) Validate() error {
	for _, c := range g.Components {
		if c.Name == "" {
			return apperrors.NewValidation("评分项名称不能为空")
		}
		if c.Weightage < 0 || c.Weightage > 100 {
			return apperrors.NewValidation("评分项 %s 的权重必须在 0-100 之间", c.Name)
		}
	}

	total := g.TotalWeightage()
	if math.Abs(total-100) > WeightageTolerance {
		return apperrors.NewValidation("权重总和必须为 100%%，当前为 %s%%", formatPercent(total))
	}
	return nil
}

// Score 成绩记录，对应 scores 集合
type Score struct {
	DocumentBase  `bson:",inline"`
	SubjectID     primitive.ObjectID `bson:"subject_id"              json:"subject_id"`
	ComponentName string             `bson:"component_name"          json:"component_name"`
	Obtained      float64            `bson:"obtained"                json:"obtained"`
	Max           float64            `bson:"max"                     json:"max"`
	ClassAverage  *float64           `bson:"class_average,omitempty" json:"class_average,omitempty"`
	ClassMax      *float64           `bson:"class_max,omitempty"     json:"class_max,omitempty"`
	ClassMin      *float64           `bson:"class_min,omitempty"     json:"class_min,omitempty"`
	Date          time.Time          `bson:"date"                    json:"date"`
	LastUpdated   time.Time          `bson:"last_updated"            json:"last_updated"`
}

// Validate 持久化前校验：得分不能超过满分
func (s *Score) Validate() error {
	if s.Max <= 0 {
		return apperrors.NewValidation("满分必须大于 0")
	}
	if s.Obtained < 0 {
		return apperrors.NewValidation("得分不能为负数")
	}
	if s.Obtained > s.Max {
		return apperrors.NewValidation("得分 %s 不能超过满分 %s", formatPercent(s.Obtained), formatPercent(s.Max))
	}
	return nil
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
