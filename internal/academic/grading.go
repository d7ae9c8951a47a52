package academic

import (
	"bytes"

	"semester-manager/backend/internal/model"
)

// ComponentBreakdown 单个评分项的计算结果；未录入成绩时得分相关字段为 null
type ComponentBreakdown struct {
	Name          string   `json:"name"`
	Weightage     float64  `json:"weightage"`
	Obtained      *float64 `json:"obtained"`
	Max           *float64 `json:"max"`
	Percentage    *float64 `json:"percentage"`
	WeightedScore float64  `json:"weighted_score"`
	ClassAverage  *float64 `json:"class_average"`
}

// GradeSummary 课程当前加权总分与明细
type GradeSummary struct {
	CurrentTotal float64              `json:"current_total"`
	Breakdown    []ComponentBreakdown `json:"breakdown"`
}

// ComputeBreakdown 按评分方案顺序计算每项得分。
// 成绩按 component_name 精确匹配，同名多条时取最先录入的一条（created_at，其次 _id）。
// 未匹配的评分项计 0 分，总分不做归一化。
func ComputeBreakdown(scheme *model.GradingScheme, scores []model.Score) GradeSummary {
	matched := firstStoredScores(scores)

	summary := GradeSummary{Breakdown: make([]ComponentBreakdown, 0, len(scheme.Components))}
	var total float64

	for _, comp := range scheme.Components {
		item := ComponentBreakdown{Name: comp.Name, Weightage: comp.Weightage}

		if s, ok := matched[comp.Name]; ok {
			pct := s.Obtained / s.Max * 100
			weighted := pct * comp.Weightage / 100
			total += weighted

			obtained, max, roundedPct := s.Obtained, s.Max, Round2(pct)
			item.Obtained = &obtained
			item.Max = &max
			item.Percentage = &roundedPct
			item.WeightedScore = Round2(weighted)
			if s.ClassAverage != nil {
				avg := *s.ClassAverage
				item.ClassAverage = &avg
			}
		}

		summary.Breakdown = append(summary.Breakdown, item)
	}

	summary.CurrentTotal = Round2(total)
	return summary
}

func firstStoredScores(scores []model.Score) map[string]model.Score {
	first := make(map[string]model.Score, len(scores))
	for _, s := range scores {
		if s.Max <= 0 {
			continue
		}
		cur, ok := first[s.ComponentName]
		if !ok || storedBefore(s, cur) {
			first[s.ComponentName] = s
		}
	}
	return first
}

// storedBefore 比较录入先后；两者都无录入信息时保持原顺序
func storedBefore(a, b model.Score) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	if a.ID.IsZero() || b.ID.IsZero() {
		return false
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}
