package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"semester-manager/backend/internal/dto"
	"semester-manager/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestExportService() (ExportService, *mockRepos) {
	repo, mocks := newMockRepos()
	return NewExportService(repo, 75, zap.NewNop()), mocks
}

// ── ExportSubjectReport 测试 ──

func TestExportService_ExportSubjectReport_Forbidden(t *testing.T) {
	svc, mocks := setupTestExportService()
	s := seedSubject(t, mocks, "user-1", "A")

	_, _, err := svc.ExportSubjectReport(context.Background(), s.ID.Hex(), "user-2")
	if !errors.Is(err, ErrSubjectForbidden) {
		t.Errorf("期望 ErrSubjectForbidden，实际: %v", err)
	}
}

func TestExportService_ExportSubjectReport_Success(t *testing.T) {
	svc, mocks := setupTestExportService()
	ctx := context.Background()
	s := seedSubject(t, mocks, "user-1", "数据结构")

	_ = mocks.grading.Upsert(ctx, &model.GradingScheme{SubjectID: s.ID, Components: []model.GradingItem{
		{Name: "Quiz", Weightage: 30}, {Name: "Exam", Weightage: 70},
	}})
	_ = mocks.score.Create(ctx, &model.Score{SubjectID: s.ID, ComponentName: "Quiz", Obtained: 8, Max: 10, Date: time.Now()})
	_ = mocks.score.Create(ctx, &model.Score{SubjectID: s.ID, ComponentName: "Exam", Obtained: 45, Max: 50, Date: time.Now()})
	for i, status := range []model.AttendanceStatus{model.AttendancePresent, model.AttendanceLate, model.AttendanceAbsent} {
		_ = mocks.attendance.Create(ctx, &model.Attendance{
			SubjectID: s.ID, Date: time.Date(2026, 3, 1+i, 0, 0, 0, 0, time.UTC), Status: status,
		})
	}
	topic := &model.Topic{SubjectID: s.ID, Unit: "Unit 1", Name: "链表", Status: model.TopicLearning}
	_ = mocks.topic.Create(ctx, topic)
	seedResources(t, mocks, s, topic, 2, 1)

	buf, filename, err := svc.ExportSubjectReport(ctx, s.ID.Hex(), "user-1")
	if err != nil {
		t.Fatalf("导出应成功: %v", err)
	}
	if filename != "课程报告_数据结构.xlsx" {
		t.Errorf("文件名不符: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("生成的文件应为合法 xlsx: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 {
		t.Fatalf("期望 3 个 Sheet，实际: %v", sheets)
	}

	// 成绩：两行评分项之后为总分行
	total, _ := f.GetCellValue("成绩", "F5")
	if total != "87" {
		t.Errorf("当前总分应为 87，实际 %q", total)
	}

	pct, _ := f.GetCellValue("出勤", "B6")
	if pct != "66.67" {
		t.Errorf("出勤率应为 66.67，实际 %q", pct)
	}

	progress, _ := f.GetCellValue("知识点", "D3")
	if progress != "1/2" {
		t.Errorf("资料完成度应为 1/2，实际 %q", progress)
	}
}

func TestExportService_ExportSubjectReport_NoScheme(t *testing.T) {
	svc, mocks := setupTestExportService()
	s := seedSubject(t, mocks, "user-1", "A")

	buf, _, err := svc.ExportSubjectReport(context.Background(), s.ID.Hex(), "user-1")
	if err != nil {
		t.Fatalf("未设置评分方案时导出也应成功: %v", err)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("生成的文件应为合法 xlsx: %v", err)
	}
	defer f.Close()

	note, _ := f.GetCellValue("成绩", "A3")
	if note != ErrGradingSchemeNotFound.Error() {
		t.Errorf("成绩页应提示未设置评分方案，实际 %q", note)
	}
}

// ── ExportStudySessions 测试 ──

func TestExportService_ExportStudySessions(t *testing.T) {
	svc, mocks := setupTestExportService()
	ctx := context.Background()
	s := seedSubject(t, mocks, "user-1", "Math")

	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	_ = mocks.study.Create(ctx, &model.StudySession{UserID: "user-1", SubjectID: s.ID, Date: day, StartTime: day, Duration: 90, FocusLevel: model.FocusHigh})
	_ = mocks.study.Create(ctx, &model.StudySession{UserID: "user-1", SubjectID: s.ID, Date: day.AddDate(0, 0, 1), StartTime: day, Duration: 30})
	_ = mocks.study.Create(ctx, &model.StudySession{UserID: "user-2", SubjectID: s.ID, Date: day, StartTime: day, Duration: 999})

	buf, filename, err := svc.ExportStudySessions(ctx, &dto.StudySessionListRequest{}, "user-1")
	if err != nil {
		t.Fatalf("导出应成功: %v", err)
	}
	if filename != "学习记录.xlsx" {
		t.Errorf("文件名不符: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("生成的文件应为合法 xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("学习记录")
	if err != nil {
		t.Fatalf("读取 Sheet 失败: %v", err)
	}
	// 表头 + 2 条记录 + 合计
	if len(rows) != 4 {
		t.Fatalf("期望 4 行，实际 %d: %v", len(rows), rows)
	}
	if rows[1][0] != "2026-03-03" || rows[1][1] != "Math" {
		t.Errorf("首条记录应为最新日期: %v", rows[1])
	}
	if rows[3][4] != "120" {
		t.Errorf("合计时长应为 120，实际 %q", rows[3][4])
	}
}

func TestExportService_ExportStudySessions_BadRange(t *testing.T) {
	svc, _ := setupTestExportService()

	_, _, err := svc.ExportStudySessions(context.Background(), &dto.StudySessionListRequest{StartDate: "not-a-date"}, "user-1")
	if err == nil {
		t.Error("非法日期应返回错误")
	}
}
