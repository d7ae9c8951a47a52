package academic

import (
	"fmt"

	"semester-manager/backend/internal/model"
)

// WeakCompletionThreshold 资料完成率低于该值视为薄弱
const WeakCompletionThreshold = 50.0

// TopicProgress 知识点关联资料的完成情况
type TopicProgress struct {
	TotalResources     int     `json:"total_resources"`
	CompletedResources int     `json:"completed_resources"`
	CompletionRate     float64 `json:"completion_rate"`
}

// NewTopicProgress total 为 0 时完成率为 0
func NewTopicProgress(total, completed int) TopicProgress {
	p := TopicProgress{TotalResources: total, CompletedResources: completed}
	if total > 0 {
		p.CompletionRate = Round2(float64(completed) / float64(total) * 100)
	}
	return p
}

// ClassifyWeakness 判断知识点是否薄弱并给出原因
func ClassifyWeakness(status model.TopicStatus, p TopicProgress) (bool, string) {
	hasResources := p.TotalResources > 0
	lowRate := p.CompletionRate < WeakCompletionThreshold

	weak := status == model.TopicNeedsPractice ||
		status == model.TopicLearning ||
		(lowRate && hasResources) ||
		(status == model.TopicNotStarted && hasResources)
	if !weak {
		return false, ""
	}

	if lowRate {
		return true, "Low completion rate"
	}
	return true, fmt.Sprintf("Status: %s", status)
}
