package academic

import (
	"testing"

	"semester-manager/backend/internal/model"
)

func records(present, late, absent int) []model.Attendance {
	var out []model.Attendance
	for i := 0; i < present; i++ {
		out = append(out, model.Attendance{Status: model.AttendancePresent})
	}
	for i := 0; i < late; i++ {
		out = append(out, model.Attendance{Status: model.AttendanceLate})
	}
	for i := 0; i < absent; i++ {
		out = append(out, model.Attendance{Status: model.AttendanceAbsent})
	}
	return out
}

func TestComputeAttendance(t *testing.T) {
	tests := []struct {
		name                  string
		present, late, absent int
		wantPct               float64
		wantNeeded            int
		wantBelow             bool
	}{
		{"迟到计入出勤", 10, 2, 3, 80, 0, false},
		{"低于目标", 3, 0, 7, 30, 18, true},
		{"无记录", 0, 0, 0, 0, 0, false},
		{"恰好达标", 3, 0, 1, 75, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeAttendance(records(tt.present, tt.late, tt.absent), DefaultAttendanceTarget)
			if got.Percentage != tt.wantPct {
				t.Errorf("出勤率期望 %v，实际=%v", tt.wantPct, got.Percentage)
			}
			if got.ClassesNeeded != tt.wantNeeded {
				t.Errorf("所需课次期望 %d，实际=%d", tt.wantNeeded, got.ClassesNeeded)
			}
			if got.BelowTarget != tt.wantBelow {
				t.Errorf("BelowTarget 期望 %v，实际=%v", tt.wantBelow, got.BelowTarget)
			}
			if got.Attended != tt.present+tt.late {
				t.Errorf("出勤数期望 %d，实际=%d", tt.present+tt.late, got.Attended)
			}
		})
	}
}

// 目标为 75 时通用公式应与 max(0, 3T-4A) 一致
func TestClassesNeeded_MatchesThreeTotalMinusFourAttended(t *testing.T) {
	for total := 0; total <= 60; total++ {
		for attended := 0; attended <= total; attended++ {
			want := 3*total - 4*attended
			if want < 0 {
				want = 0
			}
			if got := ClassesNeeded(total, attended, 75); got != want {
				t.Fatalf("T=%d A=%d: 期望 %d，实际=%d", total, attended, want, got)
			}
		}
	}
}

// 补足所需课次后出勤率应达到目标，少一节则不达标
func TestClassesNeeded_ReachesTarget(t *testing.T) {
	for _, target := range []float64{60, 66.5, 80, 90} {
		for total := 1; total <= 40; total++ {
			for attended := 0; attended <= total; attended++ {
				n := ClassesNeeded(total, attended, target)
				if n == 0 {
					continue
				}
				after := float64(attended+n) / float64(total+n) * 100
				if after+1e-9 < target {
					t.Fatalf("target=%v T=%d A=%d n=%d: 补课后仍未达标 %.4f", target, total, attended, n, after)
				}
				before := float64(attended+n-1) / float64(total+n-1) * 100
				if before >= target {
					t.Fatalf("target=%v T=%d A=%d n=%d: 所需课次偏大", target, total, attended, n)
				}
			}
		}
	}
}

func TestComputeAttendance_InvalidTargetFallsBack(t *testing.T) {
	got := ComputeAttendance(records(3, 0, 7), 0)
	if got.Target != DefaultAttendanceTarget {
		t.Errorf("非法目标应回退为 %v，实际=%v", DefaultAttendanceTarget, got.Target)
	}
	if got.ClassesNeeded != 18 {
		t.Errorf("期望 18，实际=%d", got.ClassesNeeded)
	}
}
