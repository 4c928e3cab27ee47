package model

import (
	"errors"
	"fmt"
)

// TBA 未指定 / 待定的哨兵值
const TBA = "TBA"

// UnknownDept 课程代码无法推导出院系时的占位值
const UnknownDept = "Unknown"

// MinutesPerDay 一天的分钟数，时段结束分钟不可超过该值
const MinutesPerDay = 24 * 60

// ErrInvalidSlot 时段不满足 0 <= start < end <= 1440 或星期无效
var ErrInvalidSlot = errors.New("无效的时段")

// CourseRecord 课程记录表 — 对应 course_records
type CourseRecord struct {
	RecordID   string       `gorm:"type:uuid;primaryKey"                json:"id"`
	DatasetID  string       `gorm:"type:uuid;not null;index"            json:"dataset_id,omitempty"`
	SourceFile string       `gorm:"type:varchar(255);not null;index"    json:"source_file"`
	CourseCode string       `gorm:"type:varchar(20);not null"           json:"course_code"`
	CourseName string       `gorm:"type:text;not null"                  json:"course_name"`
	Instructor string       `gorm:"type:text;not null"                  json:"instructor"`
	Room       string       `gorm:"type:text;not null"                  json:"room"`
	Dept       string       `gorm:"type:varchar(50);not null"           json:"dept"`
	Position   int          `gorm:"not null;default:0"                  json:"-"` // 原文件中的行序
	Slots      []CourseSlot `gorm:"foreignKey:RecordID;references:RecordID;constraint:OnDelete:CASCADE" json:"slots"`
	BaseModel
}

// TableName 指定表名
func (CourseRecord) TableName() string { return "course_records" }

// CourseSlot 每周重复的上课时段 — 对应 course_slots
//
// 只能通过 NewCourseSlot 构造；创建后视为不可变值。
type CourseSlot struct {
	SlotID   int64   `gorm:"primaryKey;autoIncrement"   json:"-"`
	RecordID string  `gorm:"type:uuid;not null;index"   json:"-"`
	Position int     `gorm:"not null;default:0"         json:"-"`
	Day      Weekday `gorm:"column:day_of_week;type:smallint;not null" json:"day"`
	Start    int     `gorm:"column:start_minute;not null"              json:"start"`
	End      int     `gorm:"column:end_minute;not null"                json:"end"`
}

// TableName 指定表名
func (CourseSlot) TableName() string { return "course_slots" }

// NewCourseSlot 构造时段并校验区间
func NewCourseSlot(day Weekday, start, end int) (CourseSlot, error) {
	if !day.Valid() {
		return CourseSlot{}, fmt.Errorf("%w: 星期 %d", ErrInvalidSlot, int(day))
	}
	if start < 0 || start >= end || end > MinutesPerDay {
		return CourseSlot{}, fmt.Errorf("%w: %d-%d", ErrInvalidSlot, start, end)
	}
	return CourseSlot{Day: day, Start: start, End: end}, nil
}

// Overlaps 同一天且半开区间相交（仅首尾相接不算重叠）
func (s CourseSlot) Overlaps(o CourseSlot) bool {
	return s.Day == o.Day && s.Start < o.End && o.Start < s.End
}

// Duration 时长（分钟）
func (s CourseSlot) Duration() int { return s.End - s.Start }

func (s CourseSlot) String() string {
	return fmt.Sprintf("%s %02d:%02d-%02d:%02d", s.Day, s.Start/60, s.Start%60, s.End/60, s.End%60)
}
