package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"

	"optimus/backend/internal/dto"
	"optimus/backend/internal/engine"
)

// ── 测试辅助 ──

func setupTestExportService() ExportService {
	repos := sampleRecords()
	avail := NewAvailabilityService(repos.repo, engine.NewAvailabilityEngine(engine.DefaultWindow()), testLogger)
	conflict := NewConflictService(repos.repo, engine.NewConflictDetector(engine.MatchMembers), nil, testLogger)
	svc := NewExportService(avail, conflict, testLogger).(*exportService)
	svc.now = func() time.Time { return time.Date(2024, 9, 4, 15, 0, 0, 0, time.UTC) }
	return svc
}

// ── FreeSlotsXLSX ──

func TestExportService_FreeSlotsXLSX(t *testing.T) {
	svc := setupTestExportService()

	file, err := svc.FreeSlotsXLSX(context.Background(), &dto.AvailabilityRequest{People: []string{"Alice"}})
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if file.Filename != "free_slots_20240904.xlsx" {
		t.Errorf("文件名不符: %s", file.Filename)
	}
	// Excel .xlsx 文件以 PK (0x504B) 开头
	if file.Buf.Len() < 2 || file.Buf.Bytes()[0] != 0x50 || file.Buf.Bytes()[1] != 0x4B {
		t.Fatal("导出内容不是有效的 xlsx 文件")
	}

	f, err := excelize.OpenReader(bytes.NewReader(file.Buf.Bytes()))
	if err != nil {
		t.Fatalf("无法打开导出文件: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("空闲时间")
	if err != nil {
		t.Fatal(err)
	}
	// 标题 + 表头 + 合并区间；周一 8-9 / 10-18，周三 8-10 / 11-18，其余三天各一段
	if len(rows) != 2+7 {
		t.Errorf("空闲区间行数不符，实际 %d 行", len(rows))
	}
	if rows[2][0] != "Monday" || rows[2][1] != "08:00" || rows[2][2] != "09:00" {
		t.Errorf("首个区间不符: %v", rows[2])
	}

	grid, err := f.GetRows("忙闲矩阵")
	if err != nil {
		t.Fatal(err)
	}
	if len(grid) != 6 || grid[1][2] != "Alice" || grid[1][1] != "空闲" {
		t.Errorf("矩阵内容不符: %v", grid[:2])
	}
}

func TestExportService_FreeSlotsXLSX_NoPeople(t *testing.T) {
	svc := setupTestExportService()

	_, err := svc.FreeSlotsXLSX(context.Background(), &dto.AvailabilityRequest{People: []string{" "}})
	if !errors.Is(err, ErrExportNoPeople) {
		t.Errorf("期望 ErrExportNoPeople，实际: %v", err)
	}
}

// ── FreeSlotsICS ──

func TestExportService_FreeSlotsICS(t *testing.T) {
	svc := setupTestExportService()

	file, err := svc.FreeSlotsICS(context.Background(), &dto.AvailabilityRequest{People: []string{"Alice"}}, "2024-09-05")
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if file.Filename != "free_slots_20240902.ics" {
		t.Errorf("文件名应以所在周周一命名，实际 %s", file.Filename)
	}

	cal, err := ics.ParseCalendar(strings.NewReader(file.Buf.String()))
	if err != nil {
		t.Fatalf("无法解析导出的日历: %v", err)
	}
	events := cal.Events()
	if len(events) != 7 {
		t.Fatalf("应有 7 个事件，实际 %d", len(events))
	}

	first := events[0]
	if p := first.GetProperty(ics.ComponentPropertyDtStart); p == nil || p.Value != "20240902T080000" {
		t.Errorf("首个事件开始时间不符: %+v", p)
	}
	if p := first.GetProperty(ics.ComponentPropertyDtEnd); p == nil || p.Value != "20240902T090000" {
		t.Errorf("首个事件结束时间不符: %+v", p)
	}
	if p := first.GetProperty(ics.ComponentPropertyRrule); p == nil || p.Value != "FREQ=WEEKLY" {
		t.Errorf("应每周重复: %+v", p)
	}
	if p := first.GetProperty(ics.ComponentPropertySummary); p == nil || !strings.Contains(p.Value, "Alice") {
		t.Errorf("摘要应包含人员姓名: %+v", p)
	}

	// 周三的区间落在 2024-09-04
	var wed bool
	for _, e := range events {
		if p := e.GetProperty(ics.ComponentPropertyDtStart); p != nil && strings.HasPrefix(p.Value, "20240904T") {
			wed = true
		}
	}
	if !wed {
		t.Error("应包含周三的事件")
	}
}

func TestExportService_FreeSlotsICS_BadWeek(t *testing.T) {
	svc := setupTestExportService()

	_, err := svc.FreeSlotsICS(context.Background(), &dto.AvailabilityRequest{People: []string{"Alice"}}, "next week")
	if !errors.Is(err, ErrExportBadWeek) {
		t.Errorf("期望 ErrExportBadWeek，实际: %v", err)
	}
}

func TestExportService_FreeSlotsICS_DefaultWeek(t *testing.T) {
	svc := setupTestExportService()

	file, err := svc.FreeSlotsICS(context.Background(), &dto.AvailabilityRequest{People: []string{"Alice"}}, "")
	if err != nil {
		t.Fatal(err)
	}
	if file.Filename != "free_slots_20240902.ics" {
		t.Errorf("未指定周时应取当前周，实际 %s", file.Filename)
	}
}

// ── ConflictsXLSX ──

func TestExportService_ConflictsXLSX(t *testing.T) {
	svc := setupTestExportService()

	file, err := svc.ConflictsXLSX(context.Background())
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(file.Buf.Bytes()))
	if err != nil {
		t.Fatalf("无法打开导出文件: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("冲突报告")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("表头 + 2 条冲突，实际 %d 行", len(rows))
	}
	if rows[1][0] != "INSTRUCTOR" || rows[1][1] != "Alice" {
		t.Errorf("首条冲突应为 Alice 教师冲突: %v", rows[1])
	}
	if rows[2][0] != "ROOM" || rows[2][1] != "R1" {
		t.Errorf("第二条冲突应为 R1 教室冲突: %v", rows[2])
	}
}
