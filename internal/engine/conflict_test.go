package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optimus/backend/internal/model"
)

func record(id, instructor, room string, slots ...model.CourseSlot) model.CourseRecord {
	if slots == nil {
		slots = []model.CourseSlot{}
	}
	return model.CourseRecord{
		RecordID:   id,
		SourceFile: "test.csv",
		CourseCode: "CS " + id,
		Instructor: instructor,
		Room:       room,
		Dept:       "CS",
		Slots:      slots,
	}
}

func TestDetect_InstructorOverlap(t *testing.T) {
	a := record("a", "Smith", "R1", mustSlot(t, model.Monday, 540, 590))
	b := record("b", "Smith", "R2", mustSlot(t, model.Monday, 560, 600))

	conflicts := DetectConflicts([]model.CourseRecord{a, b})
	require.Len(t, conflicts, 1)
	c := conflicts[0]
	assert.Equal(t, ConflictInstructor, c.Kind)
	assert.Equal(t, "Smith", c.Entity)
	assert.Equal(t, "a", c.Source.RecordID)
	assert.Equal(t, "b", c.Target.RecordID)
	assert.Equal(t, 540, c.Source.Slot.Start)

	counts := CountByKind(conflicts)
	assert.Equal(t, 1, counts[ConflictInstructor])
	assert.Equal(t, 0, counts[ConflictRoom])
}

func TestDetect_RoomOverlap(t *testing.T) {
	a := record("a", "Smith", "R1", mustSlot(t, model.Tuesday, 600, 650))
	b := record("b", "Lee", "R1", mustSlot(t, model.Tuesday, 600, 650))

	conflicts := DetectConflicts([]model.CourseRecord{a, b})
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictRoom, conflicts[0].Kind)
	assert.Equal(t, "R1", conflicts[0].Entity)
}

func TestDetect_BothKindsInstructorFirst(t *testing.T) {
	a := record("a", "Smith", "R1", mustSlot(t, model.Friday, 600, 650))
	b := record("b", "Smith", "R1", mustSlot(t, model.Friday, 620, 670))

	conflicts := DetectConflicts([]model.CourseRecord{a, b})
	require.Len(t, conflicts, 2)
	assert.Equal(t, ConflictInstructor, conflicts[0].Kind)
	assert.Equal(t, ConflictRoom, conflicts[1].Kind)
}

func TestDetect_NoConflict(t *testing.T) {
	tests := []struct {
		name string
		a, b model.CourseRecord
	}{
		{
			name: "首尾相接",
			a:    record("a", "Smith", "R1", mustSlot(t, model.Monday, 540, 590)),
			b:    record("b", "Smith", "R1", mustSlot(t, model.Monday, 590, 640)),
		},
		{
			name: "不同日",
			a:    record("a", "Smith", "R1", mustSlot(t, model.Monday, 540, 590)),
			b:    record("b", "Smith", "R1", mustSlot(t, model.Tuesday, 540, 590)),
		},
		{
			name: "TBA 教师与教室",
			a:    record("a", model.TBA, model.TBA, mustSlot(t, model.Monday, 540, 590)),
			b:    record("b", model.TBA, model.TBA, mustSlot(t, model.Monday, 540, 590)),
		},
		{
			name: "空字段",
			a:    record("a", "", "", mustSlot(t, model.Monday, 540, 590)),
			b:    record("b", "", "", mustSlot(t, model.Monday, 540, 590)),
		},
		{
			name: "无时段",
			a:    record("a", "Smith", "R1"),
			b:    record("b", "Smith", "R1"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, DetectConflicts([]model.CourseRecord{tt.a, tt.b}))
		})
	}
}

func TestDetect_SameRecordNeverConflicts(t *testing.T) {
	a := record("a", "Smith", "R1",
		mustSlot(t, model.Monday, 540, 590),
		mustSlot(t, model.Monday, 560, 610),
	)
	assert.Empty(t, DetectConflicts([]model.CourseRecord{a}))
}

func TestDetect_SharedMember(t *testing.T) {
	a := record("a", "Smith & Lee", "R1", mustSlot(t, model.Wednesday, 480, 530))
	b := record("b", "Lee / Kim", "R2", mustSlot(t, model.Wednesday, 500, 550))

	conflicts := DetectConflicts([]model.CourseRecord{a, b})
	require.Len(t, conflicts, 1)
	assert.Equal(t, "Lee", conflicts[0].Entity)

	verbatim := NewConflictDetector(MatchVerbatim).Detect([]model.CourseRecord{a, b})
	assert.Empty(t, verbatim)
}

func TestDetect_Symmetric(t *testing.T) {
	records := []model.CourseRecord{
		record("a", "Smith", "R1", mustSlot(t, model.Monday, 540, 590), mustSlot(t, model.Wednesday, 540, 590)),
		record("b", "Smith", "R2", mustSlot(t, model.Monday, 560, 600)),
		record("c", "Lee", "R1", mustSlot(t, model.Wednesday, 500, 560)),
		record("d", "Kim", "R3", mustSlot(t, model.Thursday, 480, 530)),
		record("e", "Xu, Young", "R4", mustSlot(t, model.Friday, 480, 530)),
		record("f", "Young / Xu", "R4", mustSlot(t, model.Friday, 500, 550)),
	}
	reversed := make([]model.CourseRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		reversed = append(reversed, records[i])
	}

	forward := DetectConflicts(records)
	backward := DetectConflicts(reversed)
	require.Len(t, forward, 4)
	assert.Equal(t, CountByKind(forward), CountByKind(backward))

	// (记录对, 类型) → 冲突对象
	pairs := func(cs []Conflict) map[[3]string]string {
		out := make(map[[3]string]string)
		for _, c := range cs {
			x, y := c.Source.RecordID, c.Target.RecordID
			if x > y {
				x, y = y, x
			}
			out[[3]string{x, y, string(c.Kind)}] = c.Entity
		}
		return out
	}
	assert.Equal(t, pairs(forward), pairs(backward))
	assert.Equal(t, "Xu, Young", pairs(forward)[[3]string{"e", "f", string(ConflictInstructor)}])
}

func TestDetect_OrderFollowsFlattenedSlots(t *testing.T) {
	records := []model.CourseRecord{
		record("a", "Smith", "R1", mustSlot(t, model.Tuesday, 540, 590), mustSlot(t, model.Monday, 540, 590)),
		record("b", "Smith", "R9", mustSlot(t, model.Monday, 540, 590), mustSlot(t, model.Tuesday, 540, 590)),
	}
	conflicts := DetectConflicts(records)
	require.Len(t, conflicts, 2)
	assert.Equal(t, model.Tuesday, conflicts[0].Source.Slot.Day)
	assert.Equal(t, model.Monday, conflicts[1].Source.Slot.Day)
}

func TestParseMatchPolicy(t *testing.T) {
	assert.Equal(t, MatchVerbatim, ParseMatchPolicy(" Verbatim "))
	assert.Equal(t, MatchMembers, ParseMatchPolicy("members"))
	assert.Equal(t, MatchMembers, ParseMatchPolicy(""))
}
