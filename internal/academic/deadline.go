package academic

import (
	"math"
	"time"

	"semester-manager/backend/internal/model"
)

// 优先级分档上界（天，含）
const (
	UrgentWithinDays = 3
	SoonWithinDays   = 7
)

// DaysUntil 距截止的天数，向上取整；已过期为负数
func DaysUntil(due, now time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}

// DerivePriority 根据截止时间推导优先级
func DerivePriority(due, now time.Time) model.Priority {
	days := DaysUntil(due, now)
	switch {
	case days < 0:
		return model.PriorityOverdue
	case days <= UrgentWithinDays:
		return model.PriorityUrgent
	case days <= SoonWithinDays:
		return model.PrioritySoon
	default:
		return model.PriorityLater
	}
}
