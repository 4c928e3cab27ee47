package service

import (
	"fmt"
	"time"

	"optimus/backend/internal/dto"
	"optimus/backend/internal/engine"
	"optimus/backend/internal/model"
)

// formatMinute 一天中的第 n 分钟 → "HH:MM"
func formatMinute(n int) string {
	return fmt.Sprintf("%02d:%02d", n/60, n%60)
}

func formatHour(h int) string {
	return fmt.Sprintf("%02d:00", h)
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func toSlotResponse(s model.CourseSlot) dto.SlotResponse {
	return dto.SlotResponse{
		Day:   s.Day.String(),
		Start: formatMinute(s.Start),
		End:   formatMinute(s.End),
	}
}

func toRecordResponse(r *model.CourseRecord) dto.CourseRecordResponse {
	slots := make([]dto.SlotResponse, 0, len(r.Slots))
	for _, s := range r.Slots {
		slots = append(slots, toSlotResponse(s))
	}
	return dto.CourseRecordResponse{
		ID:         r.RecordID,
		SourceFile: r.SourceFile,
		CourseCode: r.CourseCode,
		CourseName: r.CourseName,
		Instructor: r.Instructor,
		Room:       r.Room,
		Dept:       r.Dept,
		Slots:      slots,
	}
}

func toRecordResponses(records []model.CourseRecord) []dto.CourseRecordResponse {
	out := make([]dto.CourseRecordResponse, 0, len(records))
	for i := range records {
		out = append(out, toRecordResponse(&records[i]))
	}
	return out
}

func toOccurrenceResponse(o engine.Occurrence) dto.OccurrenceResponse {
	return dto.OccurrenceResponse{
		RecordID:   o.RecordID,
		CourseCode: o.CourseCode,
		Instructor: o.Instructor,
		Room:       o.Room,
		SourceFile: o.SourceFile,
		Slot:       toSlotResponse(o.Slot),
	}
}

func toFreeSlotResponses(slots []engine.FreeSlot) []dto.FreeSlotResponse {
	out := make([]dto.FreeSlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, dto.FreeSlotResponse{
			Day:   s.Day.String(),
			Start: formatHour(s.StartHour),
			End:   formatHour(s.EndHour),
		})
	}
	return out
}

func weekdayNames(days []model.Weekday) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.String())
	}
	return out
}
