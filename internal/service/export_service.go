package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"semester-manager/backend/internal/academic"
	"semester-manager/backend/internal/dto"
	"semester-manager/backend/internal/model"
	"semester-manager/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 课程报告按 成绩 / 出勤 / 知识点 分 Sheet
type ExportService interface {
	// ExportSubjectReport 导出单门课程的学业报告
	ExportSubjectReport(ctx context.Context, subjectID, callerID string) (*bytes.Buffer, string, error)
	// ExportStudySessions 导出学习记录明细
	ExportStudySessions(ctx context.Context, req *dto.StudySessionListRequest, callerID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo             *repository.Repository
	attendanceTarget float64
	logger           *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, attendanceTarget float64, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, attendanceTarget: attendanceTarget, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportSubjectReport: 导出课程报告为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "成绩"：评分项 × (权重, 得分, 满分, 百分比, 加权得分)，末行为当前总分
//   - Sheet "出勤"：统计摘要 + 逐条记录（日期倒序）
//   - Sheet "知识点"：单元, 名称, 状态, 资料完成度
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportSubjectReport(ctx context.Context, subjectID, callerID string) (*bytes.Buffer, string, error) {
	// 1. 校验课程归属
	subject, err := ownedSubjectHex(ctx, s.repo, s.logger, subjectID, callerID)
	if err != nil {
		return nil, "", err
	}

	// 2. 成绩数据；未设置评分方案时成绩页仅输出提示
	scheme, err := s.repo.Grading.GetBySubject(ctx, subject.ID)
	if err != nil && !isNotFound(err) {
		s.logger.Error("查询评分方案失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, "", err
	}
	scores, err := s.repo.Score.ListBySubject(ctx, subject.ID)
	if err != nil {
		s.logger.Error("查询成绩失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, "", err
	}

	// 3. 出勤数据
	records, err := s.repo.Attendance.List(ctx, subject.ID, nil, nil)
	if err != nil {
		s.logger.Error("查询出勤记录失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, "", err
	}

	// 4. 知识点及资料完成度
	topics, err := s.repo.Topic.ListBySubject(ctx, subject.ID)
	if err != nil {
		s.logger.Error("列出知识点失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, "", err
	}
	counts, err := s.repo.Resource.CountByTopic(ctx, subject.ID)
	if err != nil {
		s.logger.Error("统计知识点资料失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, "", err
	}

	// 5. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	headerStyle := newHeaderStyle(f)
	title := subject.Name
	if subject.Code != "" {
		title = fmt.Sprintf("%s (%s)", subject.Name, subject.Code)
	}

	s.writeGradesSheet(f, headerStyle, title, scheme, scores)
	s.writeAttendanceSheet(f, headerStyle, title, records)
	writeTopicsSheet(f, headerStyle, title, topics, counts)

	if idx, err := f.GetSheetIndex("成绩"); err == nil {
		f.SetActiveSheet(idx)
	}
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("课程报告_%s.xlsx", subject.Name)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportStudySessions: 导出学习记录为 Excel
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportStudySessions(ctx context.Context, req *dto.StudySessionListRequest, callerID string) (*bytes.Buffer, string, error) {
	from, to, err := parseDateRange(&dto.DateRangeRequest{StartDate: req.StartDate, EndDate: req.EndDate})
	if err != nil {
		return nil, "", err
	}

	filter := repository.StudySessionFilter{UserID: callerID, From: from, To: to}
	if req.SubjectID != "" {
		subject, err := ownedSubjectHex(ctx, s.repo, s.logger, req.SubjectID, callerID)
		if err != nil {
			return nil, "", err
		}
		filter.SubjectID = &subject.ID
	}

	sessions, err := s.repo.StudySession.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询学习记录失败", zap.Error(err))
		return nil, "", err
	}
	subjects, err := s.repo.Subject.ListByUser(ctx, callerID)
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, "", err
	}
	byID, _ := indexSubjects(subjects)

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "学习记录"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 20)
	f.SetColWidth(sheetName, "C", "D", 10)
	f.SetColWidth(sheetName, "E", "E", 10)
	f.SetColWidth(sheetName, "F", "F", 10)
	f.SetColWidth(sheetName, "G", "G", 40)

	headerStyle := newHeaderStyle(f)
	headers := []string{"日期", "课程", "开始", "结束", "时长(分钟)", "专注度", "备注"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	row := 2
	for _, ss := range sessions {
		subjectName := ss.SubjectID.Hex()
		if subject, ok := byID[ss.SubjectID]; ok {
			subjectName = subject.Name
		}
		f.SetCellValue(sheetName, cell("A", row), academic.DayKey(ss.Date))
		f.SetCellValue(sheetName, cell("B", row), subjectName)
		f.SetCellValue(sheetName, cell("C", row), clock(ss.StartTime))
		if ss.EndTime != nil {
			f.SetCellValue(sheetName, cell("D", row), clock(*ss.EndTime))
		}
		f.SetCellValue(sheetName, cell("E", row), ss.Duration)
		f.SetCellValue(sheetName, cell("F", row), string(ss.FocusLevel))
		f.SetCellValue(sheetName, cell("G", row), ss.Notes)
		row++
	}

	// 合计行
	total := academic.TotalMinutes(sessions)
	f.SetCellValue(sheetName, cell("A", row), "合计")
	f.SetCellValue(sheetName, cell("E", row), total)
	f.SetCellValue(sheetName, cell("F", row), fmt.Sprintf("%.2f 小时", academic.HoursFromMinutes(total)))
	f.SetCellStyle(sheetName, cell("A", row), cell("F", row), headerStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, "学习记录.xlsx", nil
}

// ── 各 Sheet 写入 ──

func (s *exportService) writeGradesSheet(f *excelize.File, headerStyle int, title string, scheme *model.GradingScheme, scores []model.Score) {
	sheetName := "成绩"
	f.NewSheet(sheetName)

	f.SetColWidth(sheetName, "A", "A", 20)
	f.SetColWidth(sheetName, "B", "F", 12)

	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s · 成绩", title))
	f.MergeCell(sheetName, "A1", "F1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	if scheme == nil {
		f.SetCellValue(sheetName, "A3", ErrGradingSchemeNotFound.Error())
		return
	}

	headers := []string{"评分项", "权重(%)", "得分", "满分", "百分比", "加权得分"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}

	summary := academic.ComputeBreakdown(scheme, scores)
	row := 3
	for _, b := range summary.Breakdown {
		f.SetCellValue(sheetName, cell("A", row), b.Name)
		f.SetCellValue(sheetName, cell("B", row), b.Weightage)
		if b.Obtained != nil {
			f.SetCellValue(sheetName, cell("C", row), *b.Obtained)
			f.SetCellValue(sheetName, cell("D", row), *b.Max)
			f.SetCellValue(sheetName, cell("E", row), *b.Percentage)
		} else {
			f.SetCellValue(sheetName, cell("C", row), "-")
		}
		f.SetCellValue(sheetName, cell("F", row), b.WeightedScore)
		row++
	}

	f.SetCellValue(sheetName, cell("A", row), "当前总分")
	f.SetCellValue(sheetName, cell("F", row), summary.CurrentTotal)
	f.SetCellStyle(sheetName, cell("A", row), cell("F", row), headerStyle)
}

func (s *exportService) writeAttendanceSheet(f *excelize.File, headerStyle int, title string, records []model.Attendance) {
	sheetName := "出勤"
	f.NewSheet(sheetName)

	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 10)
	f.SetColWidth(sheetName, "C", "C", 36)

	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s · 出勤", title))
	f.MergeCell(sheetName, "A1", "C1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	stats := academic.ComputeAttendance(records, s.attendanceTarget)
	summary := [][2]interface{}{
		{"总课时", stats.Total},
		{"出勤", stats.Present},
		{"迟到", stats.Late},
		{"缺勤", stats.Absent},
		{"出勤率(%)", stats.Percentage},
		{"目标(%)", stats.Target},
		{"还需连续出勤", stats.ClassesNeeded},
	}
	row := 2
	for _, kv := range summary {
		f.SetCellValue(sheetName, cell("A", row), kv[0])
		f.SetCellValue(sheetName, cell("B", row), kv[1])
		row++
	}

	row++
	f.SetCellValue(sheetName, cell("A", row), "日期")
	f.SetCellValue(sheetName, cell("B", row), "状态")
	f.SetCellValue(sheetName, cell("C", row), "备注")
	f.SetCellStyle(sheetName, cell("A", row), cell("C", row), headerStyle)
	row++

	for _, a := range records {
		f.SetCellValue(sheetName, cell("A", row), academic.DayKey(a.Date))
		f.SetCellValue(sheetName, cell("B", row), string(a.Status))
		f.SetCellValue(sheetName, cell("C", row), a.Notes)
		row++
	}
}

func writeTopicsSheet(f *excelize.File, headerStyle int, title string, topics []model.Topic, counts map[primitive.ObjectID]repository.TopicResourceCount) {
	sheetName := "知识点"
	f.NewSheet(sheetName)

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 28)
	f.SetColWidth(sheetName, "C", "C", 16)
	f.SetColWidth(sheetName, "D", "E", 12)

	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s · 知识点", title))
	f.MergeCell(sheetName, "A1", "E1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	headers := []string{"单元", "名称", "状态", "资料完成", "完成率(%)"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}

	row := 3
	for _, t := range topics {
		c := counts[t.ID]
		p := academic.NewTopicProgress(c.Total, c.Completed)
		f.SetCellValue(sheetName, cell("A", row), t.Unit)
		f.SetCellValue(sheetName, cell("B", row), t.Name)
		f.SetCellValue(sheetName, cell("C", row), string(t.Status))
		f.SetCellValue(sheetName, cell("D", row), fmt.Sprintf("%d/%d", p.CompletedResources, p.TotalResources))
		f.SetCellValue(sheetName, cell("E", row), p.CompletionRate)
		row++
	}
}

// ── 辅助函数 ──

func newHeaderStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	return style
}

func clock(t time.Time) string {
	return t.UTC().Format("15:04")
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
