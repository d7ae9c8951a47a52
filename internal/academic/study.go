package academic

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"semester-manager/backend/internal/model"
)

// Period 学习统计周期
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// HeatmapWindow 热力图固定窗口
const HeatmapWindow = 90 * 24 * time.Hour

// ParsePeriod 非法取值回退为 week
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return Period(s)
	}
	return PeriodWeek
}

// PeriodStart 统计窗口起点：day 为当日零点（now 所在时区），week/month 为 7/30 天前
func PeriodStart(p Period, now time.Time) time.Time {
	switch p {
	case PeriodDay:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case PeriodMonth:
		return now.Add(-30 * 24 * time.Hour)
	default:
		return now.Add(-7 * 24 * time.Hour)
	}
}

// HeatmapStart 热力图窗口起点
func HeatmapStart(now time.Time) time.Time {
	return now.Add(-HeatmapWindow)
}

// SubjectTotal 单门课程的学习时长
type SubjectTotal struct {
	SubjectID    primitive.ObjectID
	TotalMinutes int
	SessionCount int
}

// DayKey 以存储日期的 UTC 日历日作为键
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// FilterSince 保留 date >= since 的记录
func FilterSince(sessions []model.StudySession, since time.Time) []model.StudySession {
	out := make([]model.StudySession, 0, len(sessions))
	for _, s := range sessions {
		if !s.Date.Before(since) {
			out = append(out, s)
		}
	}
	return out
}

// TotalMinutes 总时长（分钟）
func TotalMinutes(sessions []model.StudySession) int {
	var total int
	for _, s := range sessions {
		total += s.Duration
	}
	return total
}

// HoursFromMinutes 分钟换算为小时，保留两位小数
func HoursFromMinutes(minutes int) float64 {
	return Round2(float64(minutes) / 60)
}

// TotalsBySubject 按课程汇总，时长降序
func TotalsBySubject(sessions []model.StudySession) []SubjectTotal {
	idx := make(map[primitive.ObjectID]int)
	var totals []SubjectTotal

	for _, s := range sessions {
		i, ok := idx[s.SubjectID]
		if !ok {
			i = len(totals)
			idx[s.SubjectID] = i
			totals = append(totals, SubjectTotal{SubjectID: s.SubjectID})
		}
		totals[i].TotalMinutes += s.Duration
		totals[i].SessionCount++
	}

	sort.SliceStable(totals, func(a, b int) bool {
		return totals[a].TotalMinutes > totals[b].TotalMinutes
	})
	return totals
}

// MinutesByDay 按日汇总时长
func MinutesByDay(sessions []model.StudySession) map[string]int {
	days := make(map[string]int)
	for _, s := range sessions {
		days[DayKey(s.Date)] += s.Duration
	}
	return days
}

// SessionMinutes 未填写时长时由起止时间推导（向下取整到分钟）
func SessionMinutes(start time.Time, end *time.Time, duration int) int {
	if duration > 0 || end == nil {
		return duration
	}
	if mins := int(end.Sub(start).Minutes()); mins > 0 {
		return mins
	}
	return 0
}
