package academic

import (
	"math"

	"semester-manager/backend/internal/model"
)

// DefaultAttendanceTarget 默认出勤率目标（百分比）
const DefaultAttendanceTarget = 75.0

// AttendanceStats 出勤统计；迟到计入出勤
type AttendanceStats struct {
	Total         int     `json:"total"`
	Present       int     `json:"present"`
	Late          int     `json:"late"`
	Absent        int     `json:"absent"`
	Attended      int     `json:"attended"`
	Percentage    float64 `json:"percentage"`
	Target        float64 `json:"target"`
	BelowTarget   bool    `json:"below_target"`
	ClassesNeeded int     `json:"classes_needed"`
}

// ComputeAttendance 汇总出勤记录
func ComputeAttendance(records []model.Attendance, target float64) AttendanceStats {
	if target <= 0 || target >= 100 {
		target = DefaultAttendanceTarget
	}

	stats := AttendanceStats{Total: len(records), Target: target}
	for _, r := range records {
		switch r.Status {
		case model.AttendancePresent:
			stats.Present++
		case model.AttendanceLate:
			stats.Late++
		case model.AttendanceAbsent:
			stats.Absent++
		}
	}
	stats.Attended = stats.Present + stats.Late

	if stats.Total > 0 {
		stats.Percentage = Round2(float64(stats.Attended) / float64(stats.Total) * 100)
	}
	stats.BelowTarget = belowTarget(stats.Total, stats.Attended, target)
	stats.ClassesNeeded = ClassesNeeded(stats.Total, stats.Attended, target)
	return stats
}

// ClassesNeeded 连续出勤多少节课后出勤率可回到目标线。
// 未低于目标时返回 0；target 须在 (0, 100) 之间。
func ClassesNeeded(total, attended int, target float64) int {
	if target <= 0 || target >= 100 || !belowTarget(total, attended, target) {
		return 0
	}
	needed := (target*float64(total) - float64(attended)*100) / (100 - target)
	// 消除浮点误差，避免整数结果被 ceil 进一
	n := int(math.Ceil(needed - 1e-9))
	if n < 0 {
		return 0
	}
	return n
}

func belowTarget(total, attended int, target float64) bool {
	return float64(attended)*100 < target*float64(total)
}
