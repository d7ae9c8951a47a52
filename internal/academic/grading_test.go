package academic

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"semester-manager/backend/internal/model"
)

func f64(v float64) *float64 { return &v }

func TestComputeBreakdown_WeightedTotal(t *testing.T) {
	scheme := &model.GradingScheme{Components: []model.GradingItem{
		{Name: "Quiz", Weightage: 30},
		{Name: "Exam", Weightage: 70},
	}}
	scores := []model.Score{
		{ComponentName: "Quiz", Obtained: 8, Max: 10},
		{ComponentName: "Exam", Obtained: 45, Max: 50, ClassAverage: f64(38.5)},
	}

	got := ComputeBreakdown(scheme, scores)
	if got.CurrentTotal != 87 {
		t.Errorf("期望总分 87.00，实际=%v", got.CurrentTotal)
	}
	if len(got.Breakdown) != 2 {
		t.Fatalf("期望 2 项明细，实际=%d", len(got.Breakdown))
	}
	if got.Breakdown[0].Name != "Quiz" || got.Breakdown[0].WeightedScore != 24 {
		t.Errorf("Quiz 明细错误: %+v", got.Breakdown[0])
	}
	exam := got.Breakdown[1]
	if exam.Percentage == nil || *exam.Percentage != 90 {
		t.Errorf("Exam 百分比应为 90: %+v", exam)
	}
	if exam.ClassAverage == nil || *exam.ClassAverage != 38.5 {
		t.Errorf("Exam 班级均分应为 38.5: %+v", exam)
	}
}

func TestComputeBreakdown_UnmatchedIsNull(t *testing.T) {
	scheme := &model.GradingScheme{Components: []model.GradingItem{
		{Name: "Quiz", Weightage: 30},
		{Name: "Exam", Weightage: 70},
	}}
	scores := []model.Score{{ComponentName: "Quiz", Obtained: 10, Max: 10}}

	got := ComputeBreakdown(scheme, scores)
	if got.CurrentTotal != 30 {
		t.Errorf("未录入项不应参与归一化，期望 30，实际=%v", got.CurrentTotal)
	}
	exam := got.Breakdown[1]
	if exam.Obtained != nil || exam.Max != nil || exam.Percentage != nil {
		t.Errorf("未匹配项得分字段应为 null: %+v", exam)
	}
	if exam.WeightedScore != 0 {
		t.Errorf("未匹配项加权分应为 0，实际=%v", exam.WeightedScore)
	}
}

func TestComputeBreakdown_FirstStoredScoreWins(t *testing.T) {
	scheme := &model.GradingScheme{Components: []model.GradingItem{{Name: "Quiz", Weightage: 100}}}
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	older := model.Score{ComponentName: "Quiz", Obtained: 2, Max: 10, Date: day}
	older.CreatedAt = day
	newer := model.Score{ComponentName: "Quiz", Obtained: 9, Max: 10, Date: day.AddDate(0, 0, 7)}
	newer.CreatedAt = day.AddDate(0, 0, 7)
	other := model.Score{ComponentName: "quiz", Obtained: 10, Max: 10, Date: day.AddDate(0, 0, -1)}
	other.CreatedAt = day.AddDate(0, 0, -1)

	// 列表按日期倒序返回，匹配结果不受顺序影响
	got := ComputeBreakdown(scheme, []model.Score{newer, older, other})
	if got.CurrentTotal != 20 {
		t.Errorf("应取最先录入且名称精确匹配的成绩，期望 20，实际=%v", got.CurrentTotal)
	}
}

func TestComputeBreakdown_SameCreatedAtUsesObjectID(t *testing.T) {
	scheme := &model.GradingScheme{Components: []model.GradingItem{{Name: "Quiz", Weightage: 100}}}
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	first := model.Score{ComponentName: "Quiz", Obtained: 3, Max: 10}
	first.ID, first.CreatedAt = primitive.NewObjectID(), at
	second := model.Score{ComponentName: "Quiz", Obtained: 7, Max: 10}
	second.ID, second.CreatedAt = primitive.NewObjectID(), at

	got := ComputeBreakdown(scheme, []model.Score{second, first})
	if got.CurrentTotal != 30 {
		t.Errorf("created_at 相同时应按 _id 取先录入的一条，期望 30，实际=%v", got.CurrentTotal)
	}
}

func TestComputeBreakdown_RoundsToTwoDecimals(t *testing.T) {
	scheme := &model.GradingScheme{Components: []model.GradingItem{{Name: "Lab", Weightage: 100}}}
	scores := []model.Score{{ComponentName: "Lab", Obtained: 1, Max: 3}}

	got := ComputeBreakdown(scheme, scores)
	if got.CurrentTotal != 33.33 {
		t.Errorf("期望 33.33，实际=%v", got.CurrentTotal)
	}
}
