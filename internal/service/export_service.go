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

	"optimus/backend/internal/dto"
	"optimus/backend/internal/engine"
	"optimus/backend/internal/model"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoPeople     = errors.New("未选择任何人员")
	ErrExportBadWeek      = errors.New("week_of 日期格式应为 YYYY-MM-DD")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
	icsProductID    = "-//optimus//timetable free slots//EN"
	icsFloatingTime = "20060102T150405"
)

// ExportFile 导出结果
type ExportFile struct {
	Buf         *bytes.Buffer
	Filename    string
	ContentType string
}

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// FreeSlotsXLSX 共同空闲时间导出为 Excel：合并后的区间 + 完整忙闲矩阵
	FreeSlotsXLSX(ctx context.Context, req *dto.AvailabilityRequest) (*ExportFile, error)
	// FreeSlotsICS 共同空闲时间导出为每周重复的日历事件，从 weekOf 所在周开始
	FreeSlotsICS(ctx context.Context, req *dto.AvailabilityRequest, weekOf string) (*ExportFile, error)
	// ConflictsXLSX 冲突报告导出为 Excel
	ConflictsXLSX(ctx context.Context) (*ExportFile, error)
}

type exportService struct {
	availability AvailabilityService
	conflict     ConflictService
	logger       *zap.Logger
	now          func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(availability AvailabilityService, conflict ConflictService, logger *zap.Logger) ExportService {
	return &exportService{availability: availability, conflict: conflict, logger: logger, now: time.Now}
}

// ════════════════════════════════════════════════════════════
// FreeSlotsXLSX
// ════════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "空闲时间"：星期 / 开始 / 结束 / 时长（小时），相邻小时已合并
//   - Sheet "忙闲矩阵"：行为星期，列为整点，单元格为占用者或 "空闲"

func (s *exportService) FreeSlotsXLSX(ctx context.Context, req *dto.AvailabilityRequest) (*ExportFile, error) {
	result, err := s.computeFree(ctx, req)
	if err != nil {
		return nil, err
	}
	m := result.Matrix
	ranges := engine.CoalesceFreeSlots(result.Free)

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	busyStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#F8CBAD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	freeStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// ── 空闲时间 ──
	sheet := "空闲时间"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", "D", 12)
	f.SetCellValue(sheet, "A1", "共同空闲时间："+strings.Join(m.Selected, ", "))
	f.MergeCell(sheet, "A1", "D1")
	f.SetCellStyle(sheet, "A1", "D1", headerStyle)

	for i, h := range []string{"星期", "开始", "结束", "时长（小时）"} {
		f.SetCellValue(sheet, cell(colName(i), 2), h)
	}
	row := 3
	for _, r := range ranges {
		f.SetCellValue(sheet, cell("A", row), r.Day.String())
		f.SetCellValue(sheet, cell("B", row), formatHour(r.StartHour))
		f.SetCellValue(sheet, cell("C", row), formatHour(r.EndHour))
		f.SetCellValue(sheet, cell("D", row), r.EndHour-r.StartHour)
		row++
	}

	// ── 忙闲矩阵 ──
	grid := "忙闲矩阵"
	f.NewSheet(grid)
	hours := m.Window.Hours()
	f.SetColWidth(grid, "A", "A", 14)
	f.SetColWidth(grid, colName(1), colName(len(hours)), 16)
	f.SetCellValue(grid, "A1", "星期")
	for i, h := range hours {
		f.SetCellValue(grid, cell(colName(i+1), 1), formatHour(h))
	}
	f.SetCellStyle(grid, "A1", cell(colName(len(hours)), 1), headerStyle)

	for ri, r := range m.Rows() {
		row := ri + 2
		f.SetCellValue(grid, cell("A", row), r.Day.String())
		for ci, c := range r.Cells {
			addr := cell(colName(ci+1), row)
			if c.Busy {
				f.SetCellValue(grid, addr, strings.Join(c.Occupants, ", "))
				f.SetCellStyle(grid, addr, addr, busyStyle)
			} else {
				f.SetCellValue(grid, addr, "空闲")
				f.SetCellStyle(grid, addr, addr, freeStyle)
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}

	return &ExportFile{
		Buf:         buf,
		Filename:    fmt.Sprintf("free_slots_%s.xlsx", s.now().Format("20060102")),
		ContentType: xlsxContentType,
	}, nil
}

// ════════════════════════════════════════════════════════════
// FreeSlotsICS
// ════════════════════════════════════════════════════════════
//
// 每个合并后的空闲区间生成一个 VEVENT：DTSTART 为 weekOf 所在周对应星期的日期，
// RRULE:FREQ=WEEKLY。时间为浮动时间，按日历客户端本地时区显示。

func (s *exportService) FreeSlotsICS(ctx context.Context, req *dto.AvailabilityRequest, weekOf string) (*ExportFile, error) {
	monday, err := s.weekStart(weekOf)
	if err != nil {
		return nil, err
	}

	result, err := s.computeFree(ctx, req)
	if err != nil {
		return nil, err
	}
	ranges := engine.CoalesceFreeSlots(result.Free)
	summary := "共同空闲：" + strings.Join(result.Matrix.Selected, ", ")
	stamp := s.now().UTC()

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName("共同空闲时间")

	for _, r := range ranges {
		day := monday.AddDate(0, 0, int(r.Day)-int(model.Monday))
		start := day.Add(time.Duration(r.StartHour) * time.Hour)
		end := day.Add(time.Duration(r.EndHour) * time.Hour)

		uid := fmt.Sprintf("%s-%s-%02d%02d@optimus", monday.Format("20060102"), strings.ToLower(r.Day.String()[:3]), r.StartHour, r.EndHour)
		event := cal.AddEvent(uid)
		event.SetDtStampTime(stamp)
		event.SetProperty(ics.ComponentPropertyDtStart, start.Format(icsFloatingTime))
		event.SetProperty(ics.ComponentPropertyDtEnd, end.Format(icsFloatingTime))
		event.SetSummary(summary)
		event.SetDescription(fmt.Sprintf("%s %s-%s", r.Day, formatHour(r.StartHour), formatHour(r.EndHour)))
		event.AddProperty(ics.ComponentPropertyRrule, "FREQ=WEEKLY")
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return &ExportFile{
		Buf:         buf,
		Filename:    fmt.Sprintf("free_slots_%s.ics", monday.Format("20060102")),
		ContentType: icsContentType,
	}, nil
}

// weekStart weekOf 所在周的周一（零点，浮动时间）；为空时取当前周
func (s *exportService) weekStart(weekOf string) (time.Time, error) {
	var ref time.Time
	if weekOf == "" {
		now := s.now()
		ref = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		t, err := time.Parse("2006-01-02", weekOf)
		if err != nil {
			return time.Time{}, ErrExportBadWeek
		}
		ref = t
	}
	offset := int(model.FromTimeWeekday(ref.Weekday()) - model.Monday)
	return ref.AddDate(0, 0, -offset), nil
}

// ════════════════════════════════════════════════════════════
// ConflictsXLSX
// ════════════════════════════════════════════════════════════

func (s *exportService) ConflictsXLSX(ctx context.Context) (*ExportFile, error) {
	conflicts, err := s.conflict.Detect(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "冲突报告"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#C00000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"类型", "冲突对象", "课程 A", "时间 A", "来源 A", "课程 B", "时间 B", "来源 B"}
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)
	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "B", 24)
	f.SetColWidth(sheet, "C", colName(len(headers)-1), 20)

	row := 2
	for _, c := range conflicts {
		values := []interface{}{
			string(c.Kind), c.Entity,
			c.Source.CourseCode, c.Source.Slot.String(), c.Source.SourceFile,
			c.Target.CourseCode, c.Target.Slot.String(), c.Target.SourceFile,
		}
		if err := f.SetSheetRow(sheet, cell("A", row), &values); err != nil {
			s.logger.Error("写入冲突行失败", zap.Int("row", row), zap.Error(err))
			return nil, ErrExportGenerateFail
		}
		row++
	}
	f.AutoFilter(sheet, fmt.Sprintf("A1:%s%d", colName(len(headers)-1), row-1), nil)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}

	return &ExportFile{
		Buf:         buf,
		Filename:    fmt.Sprintf("conflicts_%s.xlsx", s.now().Format("20060102")),
		ContentType: xlsxContentType,
	}, nil
}

func (s *exportService) computeFree(ctx context.Context, req *dto.AvailabilityRequest) (engine.Availability, error) {
	result, err := s.availability.Free(ctx, req)
	if err != nil {
		return engine.Availability{}, err
	}
	if len(result.Matrix.Selected) == 0 {
		return engine.Availability{}, ErrExportNoPeople
	}
	return result, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
