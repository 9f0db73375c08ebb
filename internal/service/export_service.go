package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/model"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoProjects   = errors.New("该学期暂无项目")
	ErrExportNoMeetings   = errors.New("该导师暂无会议")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

const laPazTimezone = "America/La_Paz"

// ExportService 导出业务接口
//
// 设计说明：
//   - 学期进度导出为 Excel (.xlsx)：每个项目一行，列出阶段与各审批状态
//   - 导师会议导出为 iCalendar (.ics)：每次会议一个 VEVENT
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportPeriodProgress 导出学期内全部项目的进度表
	ExportPeriodProgress(ctx context.Context, periodID string) (*bytes.Buffer, string, error)
	// ExportAdvisorMeetingsICS 导出导师的指导会议日历
	ExportAdvisorMeetingsICS(ctx context.Context, advisorID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportPeriodProgress — 导出学期进度为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet "进度表"
//   - 行：项目；列：标题 / 学生 / 导师 / 当前阶段 / 三个阶段的批准时间 / 答辩状态
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportPeriodProgress(ctx context.Context, periodID string) (*bytes.Buffer, string, error) {
	period, err := s.repo.Period.GetByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrPeriodNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return nil, "", err
	}

	projects, err := s.repo.Project.ListByPeriodGroups(ctx, periodID)
	if err != nil {
		s.logger.Error("查询学期项目失败", zap.Error(err))
		return nil, "", err
	}
	if len(projects) == 0 {
		return nil, "", ErrExportNoProjects
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "进度表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 36)
	f.SetColWidth(sheetName, "B", "C", 24)
	f.SetColWidth(sheetName, "D", "H", 18)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — 项目进度表", period.Name))
	f.MergeCell(sheetName, "A1", "H1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"项目标题", "学生", "导师", "当前阶段", "选题批准", "Perfil 批准", "项目批准", "答辩"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}

	row := 3
	for i := range projects {
		p := &projects[i]

		var studentNames []string
		for j := range p.Students {
			if p.Students[j].User != nil {
				studentNames = append(studentNames, p.Students[j].User.Name)
			}
		}
		advisorName := "-"
		if p.Advisor != nil && p.Advisor.User != nil {
			advisorName = p.Advisor.User.Name
		}

		f.SetCellValue(sheetName, cell("A", row), p.Title)
		f.SetCellValue(sheetName, cell("B", row), strings.Join(studentNames, ", "))
		f.SetCellValue(sheetName, cell("C", row), advisorName)
		f.SetCellValue(sheetName, cell("D", row), stageLabel(p.Stage))
		f.SetCellValue(sheetName, cell("E", row), approvalCell(p.ProposalApproved, p.ProposalApprovedAt))
		f.SetCellValue(sheetName, cell("F", row), approvalCell(p.ProfileApproved, p.ProfileApprovedAt))
		f.SetCellValue(sheetName, cell("G", row), approvalCell(p.ProjectApproved, p.ProjectApprovedAt))
		f.SetCellValue(sheetName, cell("H", row), defenseCell(p))
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("进度表_%s.xlsx", period.Name)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportAdvisorMeetingsICS — 导出导师会议为 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportAdvisorMeetingsICS(ctx context.Context, advisorID string) (*bytes.Buffer, string, error) {
	if _, err := s.repo.Advisor.GetByID(ctx, advisorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrAdvisorNotFound
		}
		s.logger.Error("查询导师失败", zap.Error(err))
		return nil, "", err
	}

	meetings, err := s.repo.Meeting.ListByAdvisor(ctx, advisorID)
	if err != nil {
		s.logger.Error("查询导师会议失败", zap.Error(err))
		return nil, "", err
	}
	if len(meetings) == 0 {
		return nil, "", ErrExportNoMeetings
	}

	loc, err := time.LoadLocation(laPazTimezone)
	if err != nil {
		loc = time.UTC
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//sicoprot//meetings//ES")

	for i := range meetings {
		m := &meetings[i]
		if m.Status == model.MeetingCancelled {
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("%s@sicoprot", m.MeetingID))
		event.SetCreatedTime(m.CreatedAt)
		event.SetDtStampTime(m.CreatedAt)
		event.SetStartAt(m.ScheduledAt.In(loc))
		event.SetEndAt(m.ScheduledAt.Add(time.Duration(m.DurationMin) * time.Minute).In(loc))
		event.SetSummary(m.Subject)
		if m.Notes != "" {
			event.SetDescription(m.Notes)
		}
		if m.Project != nil {
			event.SetLocation(m.Project.Title)
		}
	}

	buf := new(bytes.Buffer)
	if err := cal.SerializeTo(buf); err != nil {
		s.logger.Error("写入 ICS 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := "会议日历.ics"
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func stageLabel(stage string) string {
	labels := map[string]string{
		model.StageProposal:         "选题",
		model.StageProfile:          "Perfil",
		model.StageProject:          "项目",
		model.StageReadyForDefense:  "待答辩",
		model.StageDefenseRequested: "已申请答辩",
		model.StageFinished:         "已完结",
	}
	if label, ok := labels[stage]; ok {
		return label
	}
	return stage
}

func approvalCell(approved bool, at *time.Time) string {
	if !approved {
		return "-"
	}
	if at == nil {
		return "已批准"
	}
	return at.Format("2006-01-02")
}

func defenseCell(p *model.Project) string {
	switch p.Stage {
	case model.StageFinished:
		return fmt.Sprintf("已完结（委员会 %d 人）", len(p.Tribunal))
	case model.StageDefenseRequested:
		return "待答复"
	case model.StageReadyForDefense:
		return "可申请"
	default:
		return "-"
	}
}
